package util

import (
	"errors"
	"path"
	"strings"
)

// SanitizeFileName removes path separators and rejects traversal patterns.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	if s == "" {
		return "", errors.New("invalid file name")
	}
	return s, nil
}

// ObjectKey builds the storage key for a document's archived upload:
// documents/<documentID>/<sanitized file name>.
func ObjectKey(documentID, fileName string) (string, error) {
	id := strings.TrimSpace(documentID)
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return "", errors.New("invalid document id")
	}
	name, err := SanitizeFileName(fileName)
	if err != nil {
		return "", err
	}
	return path.Join("documents", id, name), nil
}
