// Package benchfixture loads the canned response the front door serves
// in benchmark mode from an on-disk msgpack blob, as an alternative to
// the inline status/body pair in the YAML config for larger or
// binary fixtures.
package benchfixture

import (
	"fmt"
	"os"

	"github.com/vmihailenco/msgpack/v5"
)

// Fixture is the canned response: a status, a header set, and a body.
type Fixture struct {
	Status  int                 `msgpack:"status"`
	Headers map[string][]string `msgpack:"headers"`
	Body    []byte              `msgpack:"body"`
}

// LoadFile reads and decodes a fixture from path.
func LoadFile(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading benchmark fixture: %w", err)
	}
	var f Fixture
	if err := msgpack.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding benchmark fixture: %w", err)
	}
	return &f, nil
}

// Encode serializes f, for tests and for whatever writes fixtures ahead
// of a benchmark run.
func (f *Fixture) Encode() ([]byte, error) {
	return msgpack.Marshal(f)
}
