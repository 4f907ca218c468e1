package seotag

import (
	"fmt"
	"strings"
	"time"
)

// AIGeneratedMetadata is the structured record returned by the model for one image.
type AIGeneratedMetadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Subject     string `json:"subject"`
	Keywords    string `json:"keywords"`
	Filename    string `json:"filename"`
	Category    string `json:"category,omitempty"`
	Mood        string `json:"mood,omitempty"`
	Style       string `json:"style,omitempty"`
}

// Validate checks the fields the writer requires.
func (m *AIGeneratedMetadata) Validate() error {
	for _, f := range []struct {
		name  string
		value string
	}{
		{"title", m.Title},
		{"description", m.Description},
		{"subject", m.Subject},
		{"keywords", m.Keywords},
	} {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s is empty", ErrValidation, f.name)
		}
	}
	return nil
}

// Operator holds the fields supplied by whoever runs the tool rather than the model.
type Operator struct {
	Author      string
	Copyright   string
	Rating      int
	Location    string
	CameraMake  string
	CameraModel string
}

// ImageMetadata combines an AI record with operator fields.
type ImageMetadata struct {
	AIGeneratedMetadata
	Operator
}

// NewImageMetadata validates and combines ai and op. A zero Rating means unrated.
func NewImageMetadata(ai AIGeneratedMetadata, op Operator) (*ImageMetadata, error) {
	if strings.TrimSpace(ai.Title) == "" {
		return nil, fmt.Errorf("%w: title is empty", ErrValidation)
	}
	if strings.TrimSpace(ai.Keywords) == "" {
		return nil, fmt.Errorf("%w: keywords is empty", ErrValidation)
	}
	if op.Rating != 0 && !validRating(op.Rating) {
		return nil, fmt.Errorf("%w: rating %d not in 1-5", ErrValidation, op.Rating)
	}
	return &ImageMetadata{AIGeneratedMetadata: ai, Operator: op}, nil
}

func validRating(r int) bool {
	return r >= 1 && r <= 5
}

// Fields are the cleaned values embedded into an output file.
type Fields struct {
	Title       string
	Description string
	Subject     string
	Keywords    []string
	Caption     string

	Author    string
	Copyright string
	Rating    int

	Location    string
	CameraMake  string
	CameraModel string

	Software string
	DateTime time.Time
}

// KeywordText is the keyword list as written to single-value fields.
func (f *Fields) KeywordText() string {
	return strings.Join(f.Keywords, ", ")
}

// caption summarizes the keyword list together with the optional descriptors.
func caption(m *AIGeneratedMetadata, keywords []string) string {
	var sb strings.Builder
	sb.WriteString("Keywords: ")
	sb.WriteString(strings.Join(keywords, ", "))
	for _, d := range []struct {
		label string
		value string
	}{
		{"Category", m.Category},
		{"Mood", m.Mood},
		{"Style", m.Style},
	} {
		if v := strings.TrimSpace(d.value); v != "" {
			fmt.Fprintf(&sb, ", %s: %s", d.label, v)
		}
	}
	return sb.String()
}
