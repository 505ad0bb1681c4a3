package ingest

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Document is a loaded source document ready for chunking.
type Document struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// plain-text formats only; binary document formats need a parser this service
// does not carry.
var supportedExtensions = map[string]bool{
	".txt": true,
	".md":  true,
}

// SupportedFile reports whether the filename has an ingestable extension.
func SupportedFile(filename string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// LoadDocument reads an uploaded file into a Document. Rejects unsupported
// extensions and empty content.
func LoadDocument(filename string, r io.Reader) (*Document, error) {
	if !SupportedFile(filename) {
		return nil, fmt.Errorf("unsupported file type %q: only .txt and .md are accepted", filepath.Ext(filename))
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, fmt.Errorf("document %s is empty", filename)
	}

	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return &Document{Name: name, Text: text}, nil
}
