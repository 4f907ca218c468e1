package seotag

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// DefaultStem is used when a title sanitizes to nothing.
var DefaultStem = "image"

// filenameDenylist are characters that are unsafe in a filename on at least one common filesystem.
const filenameDenylist = "/\\:*?\"'<>|"

// MaxStemBytes leaves room for a collision suffix and extension within the
// common 255-byte filename limit.
var MaxStemBytes = 200

// SanitizeFilename converts an arbitrary title into a filename stem.
func SanitizeFilename(title string) string {
	s := strings.Map(func(r rune) rune {
		if r < 0x20 || strings.ContainsRune(filenameDenylist, r) {
			return '_'
		}
		return r
	}, title)

	s = strings.Trim(truncate(strings.Trim(s, " \t."), MaxStemBytes), " \t.")
	if s == "" {
		return DefaultStem
	}
	return s
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// uniquePath returns dir/stem+ext, or dir/stem_N+ext for the first N that is not taken.
func uniquePath(dir string, stem string, ext string) (string, error) {
	p := filepath.Join(dir, stem+ext)
	for n := 1; ; n++ {
		_, err := os.Lstat(p)
		if errors.Is(err, fs.ErrNotExist) {
			return p, nil
		}
		if err != nil {
			return "", fmt.Errorf("stat: %w", err)
		}
		p = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, n, ext))
	}
}

// outputExt returns the extension an input is written with. PNG has no EXIF
// container the embedders support, so it is transcoded to JPEG.
func outputExt(path string) string {
	ext := filepath.Ext(path)
	if strings.EqualFold(ext, ".png") {
		return ".jpg"
	}
	return ext
}

func isJPEG(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return true
	}
	return false
}
