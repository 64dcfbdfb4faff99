package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	errs "dydl/pkg/errors"
)

// maxDescRunes caps how much of the item description makes it into the
// folder name
const maxDescRunes = 50

// Manager handles file storage under a base directory
type Manager struct {
	baseDir string
}

// NewManager creates a storage manager rooted at baseDir
func NewManager(baseDir string) (*Manager, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, errs.Newf(errs.ErrorTypeFilesystem, "failed to create base directory: %v", err)
	}
	return &Manager{baseDir: baseDir}, nil
}

// BaseDir returns the root of the storage tree
func (m *Manager) BaseDir() string {
	return m.baseDir
}

// sanitize makes a string safe for use as a path component
func sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', '\x00':
			return '_'
		}
		return r
	}, s)
	s = strings.TrimSpace(s)
	if s == "" {
		return "_"
	}
	return s
}

// FolderName builds the canonical folder name for an item:
// "<publish time>_<truncated desc>", or the timestamp alone when the
// description is empty. A zero publish time uses the current time.
func FolderName(createTime time.Time, desc string) string {
	if createTime.IsZero() {
		createTime = time.Now()
	}
	name := createTime.Format("2006-01-02_15-04-05")

	desc = strings.TrimSpace(desc)
	if desc == "" {
		return name
	}
	runes := []rune(desc)
	if len(runes) > maxDescRunes {
		desc = string(runes[:maxDescRunes])
	}
	return name + "_" + sanitize(desc)
}

// ItemDir creates and returns the directory for one item's files, along
// with the folder name used as the filename stem inside it.
func (m *Manager) ItemDir(author string, createTime time.Time, desc string) (dir, folder string, err error) {
	folder = FolderName(createTime, desc)
	dir = filepath.Join(m.baseDir, sanitize(author), folder)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", errs.Newf(errs.ErrorTypeFilesystem, "failed to create item directory: %v", err)
	}
	return dir, folder, nil
}

// Exists reports whether a file already exists at path
func (m *Manager) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Save streams r into path atomically: the data lands in a temp file in
// the same directory and is renamed into place only when fully written.
// A cancelled or failed transfer never leaves a partial file at path.
func (m *Manager) Save(path string, r io.Reader) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errs.Newf(errs.ErrorTypeFilesystem, "failed to create directory: %v", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return errs.Newf(errs.ErrorTypeFilesystem, "failed to create temp file: %v", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errs.Newf(errs.ErrorTypeFilesystem, "failed to write file: %v", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errs.Newf(errs.ErrorTypeFilesystem, "failed to close temp file: %v", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errs.Newf(errs.ErrorTypeFilesystem, "failed to move file into place: %v", err)
	}
	return nil
}

// SaveMetadata writes raw JSON pretty-printed to <dir>/<name>, atomically
func (m *Manager) SaveMetadata(dir, name string, raw json.RawMessage) error {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		// Not valid JSON; store it as-is rather than losing it
		pretty.Reset()
		pretty.Write(raw)
	}
	pretty.WriteByte('\n')

	return m.Save(filepath.Join(dir, name), &pretty)
}

// SidecarName is the metadata filename stored next to an item's media
func SidecarName(folder string) string {
	return fmt.Sprintf("%s_data.json", folder)
}
