package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestKeyWithinPrefix(t *testing.T) {
	cases := []struct {
		key    string
		prefix string
		want   bool
	}{
		{"uploads/user-1/ref.png", "uploads", true},
		{"uploads/../secrets/key", "uploads", false},
		{"assets/final.webp", "uploads", false},
		{"uploads", "uploads", false},
		{"/uploads/a.png", "uploads", true},
		{"anything/here.bin", "", true},
	}
	for _, tc := range cases {
		if got := KeyWithinPrefix(tc.key, tc.prefix); got != tc.want {
			t.Errorf("KeyWithinPrefix(%q, %q) = %v, want %v", tc.key, tc.prefix, got, tc.want)
		}
	}
}

func TestFileStorePut(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, "http://localhost:8080/assets")
	if err != nil {
		t.Fatal(err)
	}

	url, err := store.Put(context.Background(), "jobs/abc/out.webp", "image/webp", []byte("payload"))
	if err != nil {
		t.Fatal(err)
	}
	if url != "http://localhost:8080/assets/jobs/abc/out.webp" {
		t.Errorf("unexpected public url %q", url)
	}

	data, err := os.ReadFile(filepath.Join(dir, "jobs", "abc", "out.webp"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "payload" {
		t.Errorf("stored content = %q", data)
	}
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Put(context.Background(), "../escape.txt", "text/plain", []byte("x")); err == nil {
		t.Fatal("expected traversal key to be rejected")
	}
}

func TestFileStorePresignUnsupported(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.PresignPut(context.Background(), "uploads/a.png", "image/png", 0); err == nil {
		t.Fatal("expected presign to fail for filesystem storage")
	}
}
