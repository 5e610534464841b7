// Package facestore persists enrolled face references as opaque blobs on
// disk and hands back a path handle. Callers never interpret the blob; a
// future matcher implementation owns that.
package facestore

import (
	"encoding/base64"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
)

// Store saves inline face payloads and answers path existence checks.
type Store interface {
	// Save decodes a browser data URL ("data:image/jpeg;base64,....") and
	// writes the blob, returning the stored path handle.
	Save(prefix, phoneNumber, dataURL string) (string, error)
	// Exists reports whether a previously returned path handle still resolves.
	Exists(path string) bool
}

// DiskStore writes face blobs into a flat directory.
type DiskStore struct {
	dir string
}

// NewDiskStore creates the storage directory if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create face image dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

func (s *DiskStore) Save(prefix, phoneNumber, dataURL string) (string, error) {
	_, encoded, found := strings.Cut(dataURL, ",")
	if !found {
		return "", fmt.Errorf("missing data URL header")
	}

	blob, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode face image: %w", err)
	}

	name := fmt.Sprintf("%s_%d.jpg", phoneNumber, 1000+rand.IntN(9000))
	if prefix != "" {
		name = prefix + "_" + name
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, blob, 0o644); err != nil {
		return "", fmt.Errorf("write face image: %w", err)
	}
	return path, nil
}

func (s *DiskStore) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
