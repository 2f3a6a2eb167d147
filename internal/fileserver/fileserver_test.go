package fileserver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestFileServer(t *testing.T) (*FileServer, string) {
	t.Helper()
	base := t.TempDir()
	return New(base, "http://localhost:8080/", "/files/"), base
}

func TestCleanPath(t *testing.T) {
	baseDir := filepath.Join("testdata", "base")
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		t.Fatalf("failed to get abs base: %v", err)
	}

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{name: "simple relative path", path: "images/foo.png", want: filepath.Join(absBase, "images", "foo.png")},
		{name: "dot segments", path: "./images/./foo.png", want: filepath.Join(absBase, "images", "foo.png")},
		{name: "inner dot-dot inside base", path: "images/2025/../foo.png", want: filepath.Join(absBase, "images", "foo.png")},
		{name: "empty path resolves to base", path: "", want: absBase},
		{name: "escapes base", path: "../secret", wantErr: true},
		{name: "escapes base through nested dot-dot", path: "images/../../secret", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cleanPath(baseDir, tt.path)
			if tt.wantErr {
				if !errors.Is(err, ErrPathEscapesBase) {
					t.Fatalf("expected ErrPathEscapesBase, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("cleanPath() returned unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("cleanPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPutURLDelete(t *testing.T) {
	ctx := context.Background()
	fs, base := newTestFileServer(t)
	key := "images/u1/recipes/r1.png"
	data := []byte("png data")

	if err := fs.Put(ctx, key, "image/png", data); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := os.ReadFile(filepath.Join(base, "images", "u1", "recipes", "r1.png"))
	if err != nil {
		t.Fatalf("reading written file: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("file contents = %q, want %q", got, data)
	}

	url, err := fs.URL(ctx, key)
	if err != nil {
		t.Fatalf("URL() error = %v", err)
	}
	if url != "http://localhost:8080/files/images/u1/recipes/r1.png" {
		t.Errorf("URL() = %q", url)
	}

	exists, err := fs.Exists(key)
	if err != nil || !exists {
		t.Fatalf("Exists() = %v, %v; want true", exists, err)
	}

	if err := fs.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := fs.Delete(ctx, key); err != nil {
		t.Errorf("deleting a missing file should succeed, got %v", err)
	}
	exists, err = fs.Exists(key)
	if err != nil || exists {
		t.Errorf("Exists() after delete = %v, %v; want false", exists, err)
	}
}

func TestPutRejectsTraversal(t *testing.T) {
	fs, _ := newTestFileServer(t)
	err := fs.Put(context.Background(), "../outside.png", "image/png", []byte("x"))
	if !errors.Is(err, ErrPathEscapesBase) {
		t.Errorf("expected ErrPathEscapesBase, got %v", err)
	}
}
