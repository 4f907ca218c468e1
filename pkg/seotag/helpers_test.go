package seotag

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var sample = AIGeneratedMetadata{
	Title:       "Fresh Fruit Salad",
	Description: "Healthy summer fruit salad in a coconut bowl.",
	Subject:     "Fruit salad",
	Keywords:    "fruit, salad, Fruit, summer",
	Filename:    "fresh-fruit-salad",
	Category:    "food",
	Mood:        "refreshing",
}

func testConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		OutDir:       filepath.Join(t.TempDir(), "out"),
		Extensions:   DefaultExtensions,
		Author:       "Jane Doe",
		Copyright:    "© 2026 Jane Doe. All rights reserved.",
		Website:      "https://example.com",
		Email:        "jane@example.com",
		Rating:       5,
		RemoveBackup: true,
		JPEGQuality:  90,
	}
}

func testWriter(c *Config, b KeywordBackend) *Writer {
	w := NewWriter(c, b)
	w.now = func() time.Time { return time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC) }
	return w
}

func writeJPEG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for x := 0; x < 16; x++ {
		for y := 0; y < 16; y++ {
			img.Set(x, y, color.RGBA{R: 30, G: 120, B: 200, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, jpeg.Encode(f, img, nil))
}

// writePNG writes a fully transparent PNG with one opaque red pixel at 0,0.
func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	des, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []string{}
	}
	require.NoError(t, err)
	names := []string{}
	for _, de := range des {
		names = append(names, de.Name())
	}
	return names
}
