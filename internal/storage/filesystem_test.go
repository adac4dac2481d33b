package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStorePutAndURL(t *testing.T) {
	base := t.TempDir()
	store, err := NewFileStore(base, "http://localhost:8080/static/")
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}

	src := filepath.Join(t.TempDir(), "playlist.m3u8")
	if err := os.WriteFile(src, []byte("#EXTM3U"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	if err := store.PutFile(context.Background(), "videos", "job-1/playlist.m3u8", src, "application/vnd.apple.mpegurl"); err != nil {
		t.Fatalf("PutFile returned error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(base, "videos", "job-1", "playlist.m3u8"))
	if err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
	if string(data) != "#EXTM3U" {
		t.Fatalf("stored content = %q", data)
	}

	url, err := store.ObjectURL(context.Background(), "videos", "job-1/playlist.m3u8")
	if err != nil {
		t.Fatalf("ObjectURL returned error: %v", err)
	}
	if url != "http://localhost:8080/static/videos/job-1/playlist.m3u8" {
		t.Fatalf("url = %q", url)
	}
}

func TestFileStoreRejectsTraversalKeys(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), "http://localhost")
	if err != nil {
		t.Fatalf("NewFileStore returned error: %v", err)
	}

	src := filepath.Join(t.TempDir(), "f")
	_ = os.WriteFile(src, []byte("x"), 0o644)

	if err := store.PutFile(context.Background(), "b", "../escape", src, ""); err == nil {
		t.Fatal("expected error for traversal key")
	}
	if _, err := store.ObjectURL(context.Background(), "b", ""); err == nil {
		t.Fatal("expected error for empty key")
	}
}
