// Package seotag annotates images with AI-generated SEO metadata.
package seotag

import (
	"errors"
	"fmt"
	"strings"
)

// Software is written to the EXIF Software field of every output.
const Software = "SEO Image AI"

var (
	// ErrInputNotFound means the source image vanished before it could be written.
	ErrInputNotFound = errors.New("input not found")
	// ErrValidation means a required metadata field was empty.
	ErrValidation = errors.New("metadata validation failed")
	// ErrMetadataWrite means embedding metadata into the output copy failed.
	ErrMetadataWrite = errors.New("metadata write failed")
	// ErrBackendUnavailable means the optional IPTC/XMP backend could not be started.
	ErrBackendUnavailable = errors.New("metadata backend unavailable")
	// ErrUnsupportedFormat means no available backend can embed EXIF into this format.
	ErrUnsupportedFormat = errors.New("unsupported output format")
)

// DefaultExtensions are the file extensions processed when none are configured.
var DefaultExtensions = []string{"jpg", "jpeg", "png", "webp", "heic", "heif", "gif", "avif", "svg"}

// FieldSource selects which AI field feeds an output slot.
type FieldSource int

const (
	FieldTitle FieldSource = iota
	FieldDescription
	FieldSubject
	FieldKeywords
	FieldFilename
)

var fieldSourceNames = map[string]FieldSource{
	"title":       FieldTitle,
	"description": FieldDescription,
	"subject":     FieldSubject,
	"keywords":    FieldKeywords,
	"filename":    FieldFilename,
}

var fieldAccessors = map[FieldSource]func(*AIGeneratedMetadata) string{
	FieldTitle:       func(m *AIGeneratedMetadata) string { return m.Title },
	FieldDescription: func(m *AIGeneratedMetadata) string { return m.Description },
	FieldSubject:     func(m *AIGeneratedMetadata) string { return m.Subject },
	FieldKeywords:    func(m *AIGeneratedMetadata) string { return m.Keywords },
	FieldFilename:    func(m *AIGeneratedMetadata) string { return m.Filename },
}

// ParseFieldSource resolves a configured field name.
func ParseFieldSource(s string) (FieldSource, error) {
	fs, ok := fieldSourceNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return FieldTitle, fmt.Errorf("unknown field source %q", s)
	}
	return fs, nil
}

// Value returns the field selected by fs, falling back to the title when it is empty.
func (fs FieldSource) Value(m *AIGeneratedMetadata) string {
	if f, ok := fieldAccessors[fs]; ok {
		if v := strings.TrimSpace(f(m)); v != "" {
			return v
		}
	}
	return m.Title
}

func (fs FieldSource) String() string {
	for k, v := range fieldSourceNames {
		if v == fs {
			return k
		}
	}
	return fmt.Sprintf("FieldSource(%d)", int(fs))
}

// Config holds configuration for seotag. It is built once by LoadConfig and not modified afterwards.
type Config struct {
	InDir      string
	OutDir     string
	Extensions []string

	Author    string
	Copyright string
	Website   string
	Email     string
	Rating    int

	Location    string
	CameraMake  string
	CameraModel string

	DescriptionSource FieldSource
	SubjectSource     FieldSource
	FilenameSource    FieldSource

	RemoveBackup   bool
	XMP            bool
	KeywordBackend string
	ExiftoolPath   string
	JPEGQuality    int

	Model  string
	Prompt string
	APIKey string

	LogJSON   bool
	Verbosity int
}

// CopyrightNotice composes "{website} {copyright} {email}", skipping empty parts.
func (c *Config) CopyrightNotice(copyrightText string) string {
	parts := []string{}
	for _, p := range []string{c.Website, copyrightText, c.Email} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}
