// Package avatars stores character portrait images for lore entries on
// local disk and serves them back by name.
package avatars

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// MaxSize caps an avatar image.
const MaxSize = 5 << 20 // 5 MB

// URLPrefix is where saved avatars are served.
const URLPrefix = "/avatars/"

var (
	allowedExtensions = map[string]bool{
		".png": true, ".jpg": true, ".jpeg": true,
		".gif": true, ".webp": true, ".svg": true,
	}

	mimeToExt = map[string]string{
		"image/png":     ".png",
		"image/jpeg":    ".jpg",
		"image/gif":     ".gif",
		"image/webp":    ".webp",
		"image/svg+xml": ".svg",
	}

	safeFilenameRe = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
)

// ErrInvalidImage is returned for content that is not an accepted image.
var ErrInvalidImage = errors.New("avatars: invalid image")

// Store keeps avatars in one directory.
type Store struct {
	dir string
}

// NewStore creates the directory if needed.
func NewStore(dir string) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("avatars: resolve dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("avatars: create dir: %w", err)
	}
	return &Store{dir: abs}, nil
}

// Save validates data and writes it as "<loreID>-<filename>", replacing an
// earlier avatar of the same name. ext is the extension implied by the
// source (MIME type) and is used when filename has none. It returns the
// URL the image is served under.
func (s *Store) Save(loreID, filename, ext string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", ErrInvalidImage)
	}
	if len(data) > MaxSize {
		return "", fmt.Errorf("%w: file too large: %d bytes (max %d)", ErrInvalidImage, len(data), MaxSize)
	}

	if filename == "" {
		filename = "avatar" + ext
	}
	filename = sanitizeFilename(filename)
	if filepath.Ext(filename) == "" && ext != "" {
		filename += ext
	}
	fext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[fext] {
		return "", fmt.Errorf("%w: unsupported file extension %q (allowed: png, jpg, jpeg, gif, webp, svg)", ErrInvalidImage, fext)
	}
	if err := validateMagicBytes(data, fext); err != nil {
		return "", err
	}

	name := sanitizeFilename(loreID) + "-" + filename
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("avatars: create temp: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("avatars: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("avatars: close: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("avatars: rename: %w", err)
	}
	return URLPrefix + name, nil
}

// Path resolves a served name to its file. Names with separators or
// traversal are rejected.
func (s *Store) Path(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("filename is required")
	}
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") || strings.HasPrefix(cleaned, ".") {
		return "", fmt.Errorf("invalid filename: %s", name)
	}
	return filepath.Join(s.dir, cleaned), nil
}

// sanitizeFilename strips path separators and unsafe characters.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = safeFilenameRe.ReplaceAllString(name, "_")
	if name == "" || name == "." || name == "_" {
		name = uuid.New().String()
	}
	return name
}

// validateMagicBytes verifies file content matches the declared extension.
func validateMagicBytes(data []byte, ext string) error {
	if ext == ".svg" {
		prefix := data
		if len(prefix) > 1024 {
			prefix = prefix[:1024]
		}
		if !bytes.Contains(prefix, []byte("<svg")) {
			return fmt.Errorf("%w: content does not appear to be a valid SVG (missing <svg tag)", ErrInvalidImage)
		}
		return nil
	}

	detected := http.DetectContentType(data)
	got := mimeToExt[strings.Split(detected, ";")[0]]

	switch ext {
	case ".jpg", ".jpeg":
		if got != ".jpg" {
			return fmt.Errorf("%w: content does not match extension %s (detected: %s)", ErrInvalidImage, ext, detected)
		}
	default:
		if got != ext {
			return fmt.Errorf("%w: content does not match extension %s (detected: %s)", ErrInvalidImage, ext, detected)
		}
	}
	return nil
}
