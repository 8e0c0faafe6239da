package creds

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/advancepark/parkterm/pkg/domain"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens")
	s := NewFileStore(path)

	if got := s.Tokens(); got.HasAccess() || got.HasRefresh() {
		t.Fatalf("fresh store Tokens() = %+v, want empty", got)
	}

	pair := domain.TokenPair{Access: "acc-1", Refresh: "ref-1"}
	if err := s.Save(pair); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if got := s.Tokens(); got != pair {
		t.Errorf("Tokens() = %+v, want %+v", got, pair)
	}

	// A second store over the same file sees the saved pair.
	s2 := NewFileStore(path)
	if got := s2.Tokens(); got != pair {
		t.Errorf("reloaded Tokens() = %+v, want %+v", got, pair)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat token file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("token file mode = %o, want 600", perm)
	}
}

func TestFileStoreClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens")
	s := NewFileStore(path)
	if err := s.Save(domain.TokenPair{Access: "a", Refresh: "r"}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if got := s.Tokens(); got.HasAccess() || got.HasRefresh() {
		t.Errorf("Tokens() after Clear = %+v, want empty", got)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("token file still exists after Clear")
	}

	// Clearing again is fine.
	if err := s.Clear(); err != nil {
		t.Errorf("second Clear() error: %v", err)
	}
}

func TestFileStoreLegacySingleLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens")
	if err := os.WriteFile(path, []byte("bare-access-token\n"), 0600); err != nil {
		t.Fatal(err)
	}
	s := NewFileStore(path)
	got := s.Tokens()
	if got.Access != "bare-access-token" {
		t.Errorf("Access = %q, want legacy bare token", got.Access)
	}
	if got.HasRefresh() {
		t.Errorf("Refresh = %q, want empty for legacy file", got.Refresh)
	}
}
