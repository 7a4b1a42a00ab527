package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dropguard/dashboard/internal/config"
	"go.uber.org/zap"
)

// exercise runs the Store contract against s
func exercise(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	token, ok, err := s.Read(ctx)
	if err != nil {
		t.Fatalf("Read() on empty store failed: %v", err)
	}
	if ok || token != "" {
		t.Errorf("Read() on empty store = (%q, %v), want (\"\", false)", token, ok)
	}

	if err := s.Write(ctx, "first"); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
	if err := s.Write(ctx, "second"); err != nil {
		t.Fatalf("Write() overwrite failed: %v", err)
	}

	token, ok, err = s.Read(ctx)
	if err != nil {
		t.Fatalf("Read() failed: %v", err)
	}
	if !ok || token != "second" {
		t.Errorf("Read() = (%q, %v), want (%q, true)", token, ok, "second")
	}

	if err := s.Write(ctx, ""); !errors.Is(err, ErrEmptyToken) {
		t.Errorf("Write(\"\") error = %v, want ErrEmptyToken", err)
	}

	for i := 0; i < 2; i++ {
		if err := s.Clear(ctx); err != nil {
			t.Fatalf("Clear() #%d failed: %v", i+1, err)
		}
		token, ok, err = s.Read(ctx)
		if err != nil {
			t.Fatalf("Read() after Clear() failed: %v", err)
		}
		if ok || token != "" {
			t.Errorf("Read() after Clear() = (%q, %v), want (\"\", false)", token, ok)
		}
	}
}

func TestMemoryStore(t *testing.T) {
	exercise(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	fs, err := NewFileStore(t.TempDir(), "default")
	if err != nil {
		t.Fatalf("NewFileStore() failed: %v", err)
	}
	exercise(t, fs)
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	first, err := NewFileStore(dir, "default")
	if err != nil {
		t.Fatalf("NewFileStore() failed: %v", err)
	}
	if err := first.Write(ctx, "persisted-token"); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}

	second, err := NewFileStore(dir, "default")
	if err != nil {
		t.Fatalf("NewFileStore() failed: %v", err)
	}
	token, ok, err := second.Read(ctx)
	if err != nil {
		t.Fatalf("Read() failed: %v", err)
	}
	if !ok || token != "persisted-token" {
		t.Errorf("Read() = (%q, %v), want (%q, true)", token, ok, "persisted-token")
	}

	info, err := os.Stat(second.Path())
	if err != nil {
		t.Fatalf("Stat() failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("session file mode = %o, want 600", perm)
	}
}

func TestFileStore_ProfilesAreIsolated(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	alice, _ := NewFileStore(dir, "alice")
	bob, _ := NewFileStore(dir, "bob")

	if err := alice.Write(ctx, "alice-token"); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}

	if _, ok, _ := bob.Read(ctx); ok {
		t.Error("bob's store should be empty")
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	fs, err := NewFileStore(dir, "default")
	if err != nil {
		t.Fatalf("NewFileStore() failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "default.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}

	if _, _, err := fs.Read(ctx); err == nil {
		t.Error("Read() should fail on a corrupt file")
	}

	// Write replaces the corrupt document
	if err := fs.Write(ctx, "fresh"); err != nil {
		t.Fatalf("Write() failed: %v", err)
	}
	token, ok, err := fs.Read(ctx)
	if err != nil || !ok || token != "fresh" {
		t.Errorf("Read() = (%q, %v, %v), want (%q, true, nil)", token, ok, err, "fresh")
	}
}

func TestNewFileStore_RejectsUnsafeProfile(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "sessions")

	for _, profile := range []string{"", "../x", "a/b", `a\b`, ".."} {
		if _, err := NewFileStore(dir, profile); err == nil {
			t.Errorf("NewFileStore(%q) should fail", profile)
		}
	}

	if _, err := os.Stat(filepath.Join(parent, "x.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("file written outside the session dir: %v", err)
	}
}

func TestRedisKey(t *testing.T) {
	if got := RedisKey("default"); got != "session:default:token" {
		t.Errorf("RedisKey() = %q, want %q", got, "session:default:token")
	}
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name        string
		driver      string
		shouldError bool
	}{
		{"memory", config.DriverMemory, false},
		{"file", config.DriverFile, false},
		{"unknown", "cookie", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Session: config.SessionConfig{
				Driver:  tt.driver,
				Profile: "default",
				Dir:     t.TempDir(),
			}}

			s, closeFn, err := Open(context.Background(), cfg, zap.NewNop())
			if (err != nil) != tt.shouldError {
				t.Fatalf("Open() error = %v, shouldError = %v", err, tt.shouldError)
			}
			if err != nil {
				return
			}
			defer closeFn()

			if s == nil {
				t.Fatal("Open() returned nil store")
			}
		})
	}
}
