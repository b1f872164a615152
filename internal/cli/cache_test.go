package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/synmed/synviz/pkg/cache"
)

func TestCacheDir(t *testing.T) {
	tests := []struct {
		name      string
		xdg       string
		wantUnder string
	}{
		{"xdg cache home", "/tmp/xdg-cache", "/tmp/xdg-cache"},
		{"home fallback", "", ".cache"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_CACHE_HOME", tt.xdg)
			dir, err := cacheDir()
			if err != nil {
				t.Fatalf("cacheDir() error: %v", err)
			}
			if filepath.Base(dir) != appName {
				t.Errorf("cacheDir() = %q, should end with %q", dir, appName)
			}
			if !strings.Contains(dir, tt.wantUnder) {
				t.Errorf("cacheDir() = %q, should be under %q", dir, tt.wantUnder)
			}
		})
	}
}

func TestCacheDirStructure(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")
	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	// $HOME/.cache/synviz
	home, _ := os.UserHomeDir()
	if expected := filepath.Join(home, ".cache", appName); dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestCachePathCommand(t *testing.T) {
	dir := t.TempDir()
	out, err := runCommand(t, "cache", "path", "--cache-dir", dir)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != dir {
		t.Errorf("cache path = %q, want %q", out, dir)
	}
}

func TestCacheClearCommand(t *testing.T) {
	dir := t.TempDir()
	if _, err := runCommand(t, "render", "--cache-dir", dir, "-o", t.TempDir()); err != nil {
		t.Fatal(err)
	}
	if n := countFiles(t, dir); n == 0 {
		t.Fatal("render left the cache empty")
	}

	if _, err := runCommand(t, "cache", "clear", "--cache-dir", dir); err != nil {
		t.Fatal(err)
	}
	if n := countFiles(t, dir); n != 0 {
		t.Errorf("%d files left in the cache after clear", n)
	}
}

func TestCacheNamespace(t *testing.T) {
	dir := t.TempDir()
	render := func(ns string) {
		t.Helper()
		if _, err := runCommand(t, "render", "--cache-dir", dir, "--cache-namespace", ns, "-o", t.TempDir()); err != nil {
			t.Fatal(err)
		}
	}

	render("site-a")
	first := countFiles(t, dir)
	render("site-a")
	if n := countFiles(t, dir); n != first {
		t.Errorf("same namespace grew the cache from %d to %d entries", first, n)
	}
	render("site-b")
	if n := countFiles(t, dir); n != 2*first {
		t.Errorf("second namespace: %d entries, want %d", n, 2*first)
	}
}

func TestNewCacheSelection(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)
	c.noCache = true
	store, err := c.newCache(t.Context())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	if _, ok := store.(*cache.NullCache); !ok {
		t.Errorf("--no-cache backend = %T, want *cache.NullCache", store)
	}
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(dir, func(_ string, d os.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			n++
		}
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	return n
}
