package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("folder not found")
	ErrFolderExists = errors.New("folder already exists")
	ErrEmptyName    = errors.New("folder name is required")
	ErrInvalidPath  = errors.New("path escapes upload root")
)

// Listing holds the immediate children of a folder, split by kind.
type Listing struct {
	Path    string
	Folders []string
	Files   []string
}

// SavedFile describes a stored upload. The original name is response metadata
// only; StoredName is what lands on disk.
type SavedFile struct {
	OriginalName string
	StoredName   string
	Path         string
	Size         int64
}

// Tree exposes folder and file operations confined beneath a fixed root
// directory. Every relative path is normalized and containment-checked
// before it touches the filesystem.
type Tree struct {
	root string
}

// NewTree creates a tree rooted at the given directory.
func NewTree(root string) *Tree {
	return &Tree{root: root}
}

// EnsureRoot creates the upload root if it doesn't exist.
func (t *Tree) EnsureRoot() error {
	if err := os.MkdirAll(t.root, 0755); err != nil {
		return fmt.Errorf("failed to create upload root %s: %w", t.root, err)
	}
	return nil
}

// resolve maps a client-supplied relative path to an absolute path under the
// root. Cleaning the path rooted at "/" strips any ".." prefix tricks before
// the join, so the result can never climb out of the root.
func (t *Tree) resolve(rel string) (string, error) {
	rel = strings.ReplaceAll(rel, "\\", "/")
	cleaned := path.Clean("/" + rel)

	abs := filepath.Join(t.root, filepath.FromSlash(cleaned))

	rootAbs, err := filepath.Abs(t.root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve root: %w", err)
	}
	target, err := filepath.Abs(abs)
	if err != nil {
		return "", ErrInvalidPath
	}
	if target != rootAbs && !strings.HasPrefix(target, rootAbs+string(filepath.Separator)) {
		return "", ErrInvalidPath
	}
	return target, nil
}

// List returns the immediate child folder and file names at the given
// relative path. No recursion, no hidden-file filtering.
func (t *Tree) List(rel string) (*Listing, error) {
	dir, err := t.resolve(rel)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read folder %s: %w", rel, err)
	}

	listing := &Listing{Path: strings.TrimPrefix(path.Clean("/"+rel), "/")}
	for _, entry := range entries {
		if entry.IsDir() {
			listing.Folders = append(listing.Folders, entry.Name())
		} else {
			listing.Files = append(listing.Files, entry.Name())
		}
	}
	sort.Strings(listing.Folders)
	sort.Strings(listing.Files)
	return listing, nil
}

// CreateFolder creates an empty folder named name under the given relative
// path. Two concurrent calls for the same name race best-effort: the loser
// observes ErrFolderExists from the mkdir itself.
func (t *Tree) CreateFolder(rel, name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if strings.ContainsAny(name, "/\\") {
		return ErrInvalidPath
	}

	parent, err := t.resolve(rel)
	if err != nil {
		return err
	}
	if _, err := os.Stat(parent); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to stat folder %s: %w", rel, err)
	}

	target := filepath.Join(parent, name)
	if err := os.Mkdir(target, 0755); err != nil {
		if os.IsExist(err) {
			return ErrFolderExists
		}
		return fmt.Errorf("failed to create folder %s: %w", name, err)
	}
	return nil
}

// SaveUpload streams an upload into the folder at rel under a generated
// collision-resistant name, preserving the original extension.
func (t *Tree) SaveUpload(rel, originalName string, data io.Reader) (*SavedFile, error) {
	dir, err := t.resolve(rel)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to stat folder %s: %w", rel, err)
	}

	storedName := generateStoredName(originalName)
	target := filepath.Join(dir, storedName)

	file, err := os.Create(target)
	if err != nil {
		return nil, fmt.Errorf("failed to create file %s: %w", target, err)
	}
	defer file.Close()

	n, err := io.Copy(file, data)
	if err != nil {
		// Clean up partial file on error
		os.Remove(target)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	return &SavedFile{
		OriginalName: originalName,
		StoredName:   storedName,
		Path:         path.Join(strings.TrimPrefix(path.Clean("/"+rel), "/"), storedName),
		Size:         n,
	}, nil
}

// generateStoredName builds "file-<unixms>-<uuid><ext>" from the original
// filename, keeping only its extension.
func generateStoredName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(strings.ReplaceAll(originalName, "\\", "/"))))
	if len(ext) > 16 {
		ext = ""
	}
	return fmt.Sprintf("file-%d-%s%s", time.Now().UnixMilli(), uuid.NewString(), ext)
}
