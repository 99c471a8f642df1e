// Package reload describes the small control payload the bridge reads
// on a graceful reload: a new backend generation to switch the socket
// pool to without dropping the listening port or in-flight requests.
package reload

import (
	"fmt"
	"os"

	"github.com/vmihailenco/msgpack/v5"
)

// Manifest is serialized with msgpack rather than YAML, matching the
// teacher's habit of reserving msgpack for internal control payloads
// separate from the bridge protocol's own wire format.
type Manifest struct {
	Generation     uint64 `msgpack:"generation"`
	BackendNetwork string `msgpack:"backend_network"`
	BackendAddress string `msgpack:"backend_address"`
	MaxIdle        int    `msgpack:"max_idle"`
}

// LoadFile reads and decodes a manifest from path.
func LoadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading reload manifest: %w", err)
	}
	var m Manifest
	if err := msgpack.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding reload manifest: %w", err)
	}
	return &m, nil
}

// Encode serializes m, for tests and for whatever writes the manifest
// file ahead of a SIGUSR1.
func (m *Manifest) Encode() ([]byte, error) {
	return msgpack.Marshal(m)
}
