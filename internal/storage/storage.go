package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	uploadDir      = "chat_files"
	maxFilenameLen = 100
)

// ErrTooLarge is returned when an upload exceeds the configured size cap.
var ErrTooLarge = errors.New("file exceeds the maximum upload size")

// FileStore keeps message attachments on the local filesystem under
// <root>/chat_files/YYYY/MM/DD/<name> and serves them below baseURL.
type FileStore struct {
	root    string
	baseURL string
	maxSize int64
	now     func() time.Time
}

// Default is the store used by the HTTP handlers.
var Default *FileStore

// NewFileStore creates a store rooted at root. maxSize <= 0 disables the size check.
func NewFileStore(root, baseURL string, maxSize int64) *FileStore {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &FileStore{root: root, baseURL: baseURL, maxSize: maxSize, now: time.Now}
}

// Init sets Default.
func Init(root, baseURL string, maxSize int64) {
	Default = NewFileStore(root, baseURL, maxSize)
}

// Root is the directory attachments are written to.
func (s *FileStore) Root() string {
	return s.root
}

// Save writes an uploaded file and returns its path relative to the root,
// using forward slashes.
func (s *FileStore) Save(header *multipart.FileHeader) (string, error) {
	if s.maxSize > 0 && header.Size > s.maxSize {
		return "", ErrTooLarge
	}

	src, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	now := s.now()
	dir := path.Join(uploadDir, now.Format("2006"), now.Format("01"), now.Format("02"))
	if err := os.MkdirAll(filepath.Join(s.root, filepath.FromSlash(dir)), 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := SanitizeFilename(header.Filename)
	rel := path.Join(dir, name)
	dst, err := os.OpenFile(s.fullPath(rel), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, os.ErrExist) {
		rel = path.Join(dir, withSuffix(name, uuid.NewString()[:7]))
		dst, err = os.OpenFile(s.fullPath(rel), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	}
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}

	written, err := io.Copy(dst, src)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err == nil && s.maxSize > 0 && written > s.maxSize {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(s.fullPath(rel))
		return "", err
	}

	return rel, nil
}

// Remove deletes a stored file. A file that is already gone is not an error.
func (s *FileStore) Remove(rel string) error {
	if err := os.Remove(s.fullPath(rel)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

// URL returns the public URL of a stored file.
func (s *FileStore) URL(rel string) string {
	return s.baseURL + strings.TrimPrefix(rel, "/")
}

func (s *FileStore) fullPath(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

// SanitizeFilename keeps only the base name of an upload and strips characters
// that are unsafe in a path.
func SanitizeFilename(raw string) string {
	name := filepath.Base(strings.ReplaceAll(strings.TrimSpace(raw), "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r == ' ':
			return '_'
		case r < 0x20, strings.ContainsRune(`/\:*?"<>|`, r):
			return -1
		}
		return r
	}, name)
	name = strings.TrimLeft(name, ".")
	if name == "" {
		name = "file"
	}
	if len(name) > maxFilenameLen {
		ext := filepath.Ext(name)
		if len(ext) > 16 {
			ext = ""
		}
		name = strings.ToValidUTF8(name[:maxFilenameLen-len(ext)], "") + ext
	}
	return name
}

func withSuffix(name, suffix string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + "_" + suffix + ext
}
