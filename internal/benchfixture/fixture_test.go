package benchfixture

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestEncodeLoadRoundTrip(t *testing.T) {
	f := &Fixture{
		Status:  200,
		Headers: map[string][]string{"Content-Type": {"text/plain"}},
		Body:    []byte("ok"),
	}

	data, err := f.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	path := filepath.Join(t.TempDir(), "fixture.msgpack")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got.Status != f.Status || string(got.Body) != string(f.Body) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, f)
	}
	if !reflect.DeepEqual(got.Headers, f.Headers) {
		t.Fatalf("header mismatch: got %v, want %v", got.Headers, f.Headers)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.msgpack")); err == nil {
		t.Fatalf("expected error for missing fixture file")
	}
}
