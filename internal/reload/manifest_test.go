package reload

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEncodeLoadRoundTrip(t *testing.T) {
	m := &Manifest{Generation: 7, BackendNetwork: "tcp", BackendAddress: "127.0.0.1:9100", MaxIdle: 32}

	data, err := m.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	path := filepath.Join(t.TempDir(), "reload.manifest")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if *got != *m {
		t.Fatalf("round trip mismatch: got %+v, want %+v", *got, *m)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.manifest")); err == nil {
		t.Fatalf("expected error for missing manifest file")
	}
}
