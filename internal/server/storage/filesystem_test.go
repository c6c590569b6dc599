package storage

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTree_List(t *testing.T) {
	t.Run("splits folders and files", func(t *testing.T) {
		dir := t.TempDir()
		tree := NewTree(dir)

		os.Mkdir(filepath.Join(dir, "docs"), 0755)
		os.Mkdir(filepath.Join(dir, "images"), 0755)
		os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("hi"), 0644)

		listing, err := tree.List("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(listing.Folders) != 2 || listing.Folders[0] != "docs" || listing.Folders[1] != "images" {
			t.Errorf("unexpected folders: %v", listing.Folders)
		}
		if len(listing.Files) != 1 || listing.Files[0] != "readme.txt" {
			t.Errorf("unexpected files: %v", listing.Files)
		}
	})

	t.Run("lists nested folder", func(t *testing.T) {
		dir := t.TempDir()
		tree := NewTree(dir)

		os.MkdirAll(filepath.Join(dir, "a", "b"), 0755)
		os.WriteFile(filepath.Join(dir, "a", "b", "f.txt"), []byte("x"), 0644)

		listing, err := tree.List("a/b")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if listing.Path != "a/b" {
			t.Errorf("expected path a/b, got %q", listing.Path)
		}
		if len(listing.Files) != 1 || listing.Files[0] != "f.txt" {
			t.Errorf("unexpected files: %v", listing.Files)
		}
	})

	t.Run("missing folder", func(t *testing.T) {
		tree := NewTree(t.TempDir())

		_, err := tree.List("docs")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("does not hide dotfiles", func(t *testing.T) {
		dir := t.TempDir()
		tree := NewTree(dir)

		os.WriteFile(filepath.Join(dir, ".hidden"), []byte("x"), 0644)

		listing, err := tree.List("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(listing.Files) != 1 || listing.Files[0] != ".hidden" {
			t.Errorf("expected dotfile listed, got %v", listing.Files)
		}
	})

	t.Run("traversal is confined to the root", func(t *testing.T) {
		dir := t.TempDir()
		tree := NewTree(filepath.Join(dir, "uploads"))
		tree.EnsureRoot()

		// A sibling directory outside the root must stay unreachable.
		os.Mkdir(filepath.Join(dir, "secrets"), 0755)

		_, err := tree.List("../secrets")
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrInvalidPath) {
			t.Errorf("expected containment failure, got %v", err)
		}
	})
}

func TestTree_CreateFolder(t *testing.T) {
	t.Run("creates an empty folder", func(t *testing.T) {
		dir := t.TempDir()
		tree := NewTree(dir)

		if err := tree.CreateFolder("", "docs"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		info, err := os.Stat(filepath.Join(dir, "docs"))
		if err != nil || !info.IsDir() {
			t.Errorf("expected docs directory, got %v %v", info, err)
		}
	})

	t.Run("second create observes AlreadyExists", func(t *testing.T) {
		dir := t.TempDir()
		tree := NewTree(dir)

		if err := tree.CreateFolder("", "docs"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := tree.CreateFolder("", "docs"); !errors.Is(err, ErrFolderExists) {
			t.Errorf("expected ErrFolderExists, got %v", err)
		}

		entries, _ := os.ReadDir(dir)
		if len(entries) != 1 {
			t.Errorf("expected exactly one folder, got %d", len(entries))
		}
	})

	t.Run("empty name", func(t *testing.T) {
		tree := NewTree(t.TempDir())

		if err := tree.CreateFolder("", ""); !errors.Is(err, ErrEmptyName) {
			t.Errorf("expected ErrEmptyName, got %v", err)
		}
		if err := tree.CreateFolder("", "   "); !errors.Is(err, ErrEmptyName) {
			t.Errorf("expected ErrEmptyName for whitespace, got %v", err)
		}
	})

	t.Run("name with separators rejected", func(t *testing.T) {
		tree := NewTree(t.TempDir())

		if err := tree.CreateFolder("", "a/b"); !errors.Is(err, ErrInvalidPath) {
			t.Errorf("expected ErrInvalidPath, got %v", err)
		}
		if err := tree.CreateFolder("", `..\evil`); !errors.Is(err, ErrInvalidPath) {
			t.Errorf("expected ErrInvalidPath, got %v", err)
		}
	})

	t.Run("missing parent folder", func(t *testing.T) {
		tree := NewTree(t.TempDir())

		if err := tree.CreateFolder("nope", "docs"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestTree_SaveUpload(t *testing.T) {
	t.Run("stores content under a generated name", func(t *testing.T) {
		dir := t.TempDir()
		tree := NewTree(dir)

		saved, err := tree.SaveUpload("", "report.pdf", bytes.NewReader([]byte("test content")))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if saved.OriginalName != "report.pdf" {
			t.Errorf("expected original name preserved, got %q", saved.OriginalName)
		}
		if !strings.HasPrefix(saved.StoredName, "file-") || !strings.HasSuffix(saved.StoredName, ".pdf") {
			t.Errorf("unexpected stored name %q", saved.StoredName)
		}
		if saved.Size != 12 {
			t.Errorf("expected 12 bytes, got %d", saved.Size)
		}

		content, err := os.ReadFile(filepath.Join(dir, saved.StoredName))
		if err != nil {
			t.Fatalf("failed to read saved file: %v", err)
		}
		if string(content) != "test content" {
			t.Errorf("expected 'test content', got %q", content)
		}
	})

	t.Run("stored names do not collide", func(t *testing.T) {
		tree := NewTree(t.TempDir())

		seen := make(map[string]bool)
		for i := 0; i < 20; i++ {
			saved, err := tree.SaveUpload("", "a.txt", strings.NewReader("x"))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if seen[saved.StoredName] {
				t.Fatalf("duplicate stored name %q", saved.StoredName)
			}
			seen[saved.StoredName] = true
		}
	})

	t.Run("saves into nested folder", func(t *testing.T) {
		dir := t.TempDir()
		tree := NewTree(dir)
		os.MkdirAll(filepath.Join(dir, "docs"), 0755)

		saved, err := tree.SaveUpload("docs", "notes.txt", strings.NewReader("n"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, "docs", saved.StoredName)); err != nil {
			t.Errorf("file not under docs: %v", err)
		}
		if saved.Path != "docs/"+saved.StoredName {
			t.Errorf("unexpected relative path %q", saved.Path)
		}
	})

	t.Run("missing target folder", func(t *testing.T) {
		tree := NewTree(t.TempDir())

		_, err := tree.SaveUpload("nope", "a.txt", strings.NewReader("x"))
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("original name cannot smuggle a path", func(t *testing.T) {
		dir := t.TempDir()
		tree := NewTree(dir)

		saved, err := tree.SaveUpload("", "../../etc/passwd", strings.NewReader("x"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(saved.StoredName, "/") || strings.Contains(saved.StoredName, "..") {
			t.Errorf("stored name leaks path segments: %q", saved.StoredName)
		}
		if _, err := os.Stat(filepath.Join(dir, saved.StoredName)); err != nil {
			t.Errorf("file not confined to root: %v", err)
		}
	})
}
