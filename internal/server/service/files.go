package service

import (
	"errors"
	"io"
	"log/slog"

	"clubhouse/internal/server/storage"
)

// FileService fronts the upload-root filesystem tree and folds its errors
// into the service taxonomy.
type FileService struct {
	tree *storage.Tree
}

// NewFileService creates a file service over the given tree.
func NewFileService(tree *storage.Tree) *FileService {
	return &FileService{tree: tree}
}

// ListFolder returns the immediate children of the folder at rel.
func (s *FileService) ListFolder(rel string) (*storage.Listing, error) {
	listing, err := s.tree.List(rel)
	if err != nil {
		return nil, mapStorageError(err)
	}
	return listing, nil
}

// CreateFolder creates an empty subfolder under rel.
func (s *FileService) CreateFolder(rel, name string) error {
	if err := s.tree.CreateFolder(rel, name); err != nil {
		return mapStorageError(err)
	}
	slog.Info("folder created", "path", rel, "name", name)
	return nil
}

// SaveUpload stores an uploaded file into the folder at rel.
func (s *FileService) SaveUpload(rel, originalName string, data io.Reader) (*storage.SavedFile, error) {
	saved, err := s.tree.SaveUpload(rel, originalName, data)
	if err != nil {
		return nil, mapStorageError(err)
	}
	slog.Info("file uploaded",
		"folder", rel,
		"original_name", saved.OriginalName,
		"stored_name", saved.StoredName,
		"size", saved.Size,
	)
	return saved, nil
}

func mapStorageError(err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, storage.ErrFolderExists):
		return ErrFolderExists
	case errors.Is(err, storage.ErrEmptyName):
		return ErrMissingField
	case errors.Is(err, storage.ErrInvalidPath):
		return ErrInvalidPath
	default:
		return err
	}
}
