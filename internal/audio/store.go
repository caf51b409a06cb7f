package audio

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// InvalidUploadError rejects a ringtone upload (wrong type or size).
// It is surfaced to the user immediately and never retried.
type InvalidUploadError struct {
	Reason string
}

func (e *InvalidUploadError) Error() string {
	return "invalid ringtone upload: " + e.Reason
}

var allowedExtensions = map[string]bool{
	".mp3": true, ".wav": true, ".ogg": true, ".webm": true,
}

var allowedMimeTypes = map[string]bool{
	"audio/mpeg": true, "audio/mp3": true,
	"audio/wav": true, "audio/x-wav": true, "audio/wave": true,
	"audio/ogg": true, "application/ogg": true,
	"audio/webm": true, "video/webm": true,
}

// Ringtone describes a stored custom ringtone.
type Ringtone struct {
	Filename string
	Path     string
}

// Store keeps at most one uploaded custom ringtone per user on disk,
// named user_<id>_<unix>.<ext>.
type Store struct {
	dir      string
	maxBytes int64
	now      func() time.Time
}

func NewStore(dir string, maxBytes int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Store{dir: dir, maxBytes: maxBytes, now: time.Now}, nil
}

// Save validates and stores an upload, replacing and deleting any
// previous ringtone for the user.
func (s *Store) Save(userID int, filename string, data []byte) (Ringtone, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if int64(len(data)) > s.maxBytes {
		return Ringtone{}, &InvalidUploadError{Reason: fmt.Sprintf("file is too large, maximum size is %d bytes", s.maxBytes)}
	}
	if len(data) == 0 {
		return Ringtone{}, &InvalidUploadError{Reason: "no file content"}
	}
	// Accept when either the extension or the sniffed content type is an
	// allowed audio format.
	if !allowedExtensions[ext] && !allowedMimeTypes[sniffType(data)] {
		return Ringtone{}, &InvalidUploadError{Reason: "invalid file type, upload MP3, WAV, OGG, or WebM files only"}
	}
	if ext == "" {
		ext = ".mp3"
	}

	if err := s.removeAll(userID); err != nil {
		return Ringtone{}, err
	}

	name := fmt.Sprintf("user_%d_%d%s", userID, s.now().Unix(), ext)
	dest := filepath.Join(s.dir, name)
	if err := os.WriteFile(dest, data, 0644); err != nil {
		return Ringtone{}, err
	}
	return Ringtone{Filename: name, Path: dest}, nil
}

// Get returns the user's custom ringtone, if any.
func (s *Store) Get(userID int) (Ringtone, bool, error) {
	files, err := s.userFiles(userID)
	if err != nil {
		return Ringtone{}, false, err
	}
	if len(files) == 0 {
		return Ringtone{}, false, nil
	}
	return Ringtone{Filename: filepath.Base(files[0]), Path: files[0]}, true, nil
}

// Read returns the raw bytes of the user's custom ringtone.
func (s *Store) Read(userID int) ([]byte, error) {
	rt, ok, err := s.Get(userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, os.ErrNotExist
	}
	return os.ReadFile(rt.Path)
}

// Delete removes the user's custom ringtone and reports whether one
// existed.
func (s *Store) Delete(userID int) (bool, error) {
	files, err := s.userFiles(userID)
	if err != nil {
		return false, err
	}
	deleted := false
	for _, f := range files {
		if err := os.Remove(f); err != nil {
			return deleted, err
		}
		deleted = true
	}
	return deleted, nil
}

func (s *Store) removeAll(userID int) error {
	files, err := s.userFiles(userID)
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := os.Remove(f); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) userFiles(userID int) ([]string, error) {
	return filepath.Glob(filepath.Join(s.dir, fmt.Sprintf("user_%d_*", userID)))
}

func sniffType(data []byte) string {
	t := http.DetectContentType(data)
	if i := strings.Index(t, ";"); i >= 0 {
		t = t[:i]
	}
	return strings.TrimSpace(t)
}
