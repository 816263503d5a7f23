// Package docstore persists uploaded files on local disk and computes
// integrity checksums.
package docstore

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"hospital-onboarding/internal/common/apperr"
	"hospital-onboarding/internal/common/logger"
)

// Store writes files under a base directory, one subdirectory per
// application.
type Store struct {
	baseDir string
	maxSize int64
	log     logger.Logger
}

func New(baseDir string, maxSizeMB int, log logger.Logger) *Store {
	return &Store{
		baseDir: baseDir,
		maxSize: int64(maxSizeMB) * 1024 * 1024,
		log:     log,
	}
}

// SaveResult describes a stored file.
type SaveResult struct {
	Path      string
	Checksum  string
	SizeBytes int64
}

// Save streams the upload to disk and returns its sha256 checksum. Files
// over the size limit are rejected before anything is written through.
func (s *Store) Save(applicationID, fileName string, r io.Reader) (*SaveResult, error) {
	dir := filepath.Join(s.baseDir, applicationID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperr.IO("docstore", fmt.Errorf("create directory: %w", err))
	}

	path := filepath.Join(dir, filepath.Base(fileName))
	f, err := os.Create(path)
	if err != nil {
		return nil, apperr.IO("docstore", fmt.Errorf("create file: %w", err))
	}
	defer f.Close()

	hasher := sha256.New()
	limited := io.LimitReader(r, s.maxSize+1)

	n, err := io.Copy(io.MultiWriter(f, hasher), limited)
	if err != nil {
		_ = os.Remove(path)
		return nil, apperr.IO("docstore", fmt.Errorf("write file: %w", err))
	}
	if n > s.maxSize {
		_ = os.Remove(path)
		return nil, apperr.Validation("file too large",
			fmt.Sprintf("maximum size is %d bytes", s.maxSize))
	}

	return &SaveResult{
		Path:      path,
		Checksum:  hex.EncodeToString(hasher.Sum(nil)),
		SizeBytes: n,
	}, nil
}

// SaveRendered stores generated content such as contract snapshots.
func (s *Store) SaveRendered(subdir, fileName string, content []byte) (*SaveResult, error) {
	dir := filepath.Join(s.baseDir, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperr.IO("docstore", fmt.Errorf("create directory: %w", err))
	}

	path := filepath.Join(dir, filepath.Base(fileName))
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return nil, apperr.IO("docstore", fmt.Errorf("write file: %w", err))
	}

	sum := sha256.Sum256(content)
	return &SaveResult{
		Path:      path,
		Checksum:  hex.EncodeToString(sum[:]),
		SizeBytes: int64(len(content)),
	}, nil
}

// Delete removes a stored file. A missing file is not an error.
func (s *Store) Delete(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return apperr.IO("docstore", fmt.Errorf("delete file: %w", err))
	}
	return nil
}
