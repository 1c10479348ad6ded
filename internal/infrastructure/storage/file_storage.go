package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/uptpik/amanat/internal/application/port"
	"github.com/uptpik/amanat/internal/domain/entity"
)

// LocalFileStore implements port.FileStore on the local filesystem. Files
// live under baseDir in one folder per letter; the stored name is a random
// UUID with the original extension so uploads can never collide or carry a
// hostile path.
type LocalFileStore struct {
	baseDir string
	logger  *zap.Logger
}

// NewLocalFileStore creates a new LocalFileStore
func NewLocalFileStore(baseDir string, logger *zap.Logger) port.FileStore {
	return &LocalFileStore{
		baseDir: baseDir,
		logger:  logger,
	}
}

// Save streams the upload to disk and returns the generated stored name
func (s *LocalFileStore) Save(ctx context.Context, ref entity.LetterRef, fileName string, r io.Reader) (string, int64, error) {
	storedName := uuid.NewString() + strings.ToLower(filepath.Ext(fileName))

	dir := s.letterDir(ref)
	if err := os.MkdirAll(dir, 0755); err != nil {
		s.logger.Error("Failed to create letter directory",
			zap.String("path", dir),
			zap.Error(err))
		return "", 0, fmt.Errorf("failed to create directories: %w", err)
	}

	fullPath := filepath.Join(dir, storedName)
	if err := s.validatePath(fullPath); err != nil {
		return "", 0, err
	}

	f, err := os.Create(fullPath)
	if err != nil {
		s.logger.Error("Failed to create file",
			zap.String("path", fullPath),
			zap.Error(err))
		return "", 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(fullPath)
		return "", 0, fmt.Errorf("failed to write file: %w", err)
	}

	s.logger.Debug("File saved successfully",
		zap.String("path", fullPath),
		zap.Int64("size", size))

	return storedName, size, nil
}

// Open returns a reader over a previously stored file
func (s *LocalFileStore) Open(ctx context.Context, ref entity.LetterRef, storedName string) (io.ReadCloser, error) {
	fullPath := filepath.Join(s.letterDir(ref), storedName)
	if err := s.validatePath(fullPath); err != nil {
		return nil, err
	}

	f, err := os.Open(fullPath)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: attachment file %s", port.ErrNotFound, storedName)
	}
	if err != nil {
		s.logger.Error("Failed to open file",
			zap.String("path", fullPath),
			zap.Error(err))
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

// letterDir returns the per-letter folder, e.g. <base>/incoming/42
func (s *LocalFileStore) letterDir(ref entity.LetterRef) string {
	return filepath.Join(s.baseDir, strings.ToLower(string(ref.Direction)), fmt.Sprintf("%d", ref.ID))
}

// validatePath checks that the path stays within baseDir
func (s *LocalFileStore) validatePath(fullPath string) error {
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) && absPath != absBase {
		return fmt.Errorf("path escapes base directory: %s", fullPath)
	}
	return nil
}
