package seotag

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/otiai10/copy"
	"k8s.io/klog/v2"
)

// backupSuffixes are the names metadata tools leave next to a modified file.
var backupSuffixes = []string{"~", "_original"}

// Writer embeds metadata into renamed copies of input images.
type Writer struct {
	c       *Config
	backend KeywordBackend
	now     func() time.Time
}

// NewWriter returns a Writer. A nil backend behaves as unavailable.
func NewWriter(c *Config, backend KeywordBackend) *Writer {
	if backend == nil {
		backend = unavailableBackend{reason: ErrBackendUnavailable}
	}
	return &Writer{c: c, backend: backend, now: time.Now}
}

// Write copies the image at path into the output directory under a name derived
// from the AI title, then embeds md. author and copyrightText override the
// configured values when non-empty. It returns the path of the new file.
func (w *Writer) Write(path string, md AIGeneratedMetadata, author string, copyrightText string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return "", fmt.Errorf("stat: %w", err)
	}

	f, err := w.fields(md, author, copyrightText)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(w.c.OutDir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir: %w", err)
	}

	stem := SanitizeFilename(w.c.FilenameSource.Value(&md))
	dest, err := uniquePath(w.c.OutDir, stem, outputExt(path))
	if err != nil {
		return "", fmt.Errorf("unique path: %w", err)
	}

	if err := w.place(path, dest); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("place %s: %w", dest, err)
	}

	if err := w.embed(dest, f); err != nil {
		if rerr := os.Remove(dest); rerr != nil && !errors.Is(rerr, fs.ErrNotExist) {
			klog.Errorf("unable to remove %s: %v", dest, rerr)
		}
		w.removeBackups(dest)
		return "", fmt.Errorf("%w: %s: %w", ErrMetadataWrite, dest, err)
	}

	if w.backend.Available() {
		if err := w.backend.Write(dest, f); err != nil {
			klog.Warningf("IPTC/XMP write failed for %s, keeping EXIF only: %v", dest, err)
		}
	}

	if w.c.RemoveBackup {
		w.removeBackups(dest)
	}
	return dest, nil
}

// fields builds the cleaned values to embed, validating md first.
func (w *Writer) fields(md AIGeneratedMetadata, author string, copyrightText string) (*Fields, error) {
	if err := md.Validate(); err != nil {
		return nil, err
	}

	if strings.TrimSpace(author) == "" {
		author = w.c.Author
	}
	if strings.TrimSpace(copyrightText) == "" {
		copyrightText = w.c.Copyright
	}

	rating := w.c.Rating
	if rating != 0 && !validRating(rating) {
		klog.Warningf("rating %d is not in 1-5, omitting", rating)
		rating = 0
	}

	im, err := NewImageMetadata(md, Operator{
		Author:      strings.TrimSpace(author),
		Copyright:   w.c.CopyrightNotice(copyrightText),
		Rating:      rating,
		Location:    w.c.Location,
		CameraMake:  w.c.CameraMake,
		CameraModel: w.c.CameraModel,
	})
	if err != nil {
		return nil, err
	}

	keywords := ProcessKeywords(im.Keywords)
	if len(keywords) == 0 {
		return nil, fmt.Errorf("%w: keywords %q contain no usable terms", ErrValidation, im.Keywords)
	}

	return &Fields{
		Title:       strings.TrimSpace(im.Title),
		Description: w.c.DescriptionSource.Value(&im.AIGeneratedMetadata),
		Subject:     w.c.SubjectSource.Value(&im.AIGeneratedMetadata),
		Keywords:    keywords,
		Caption:     caption(&im.AIGeneratedMetadata, keywords),
		Author:      im.Author,
		Copyright:   im.Copyright,
		Rating:      im.Rating,
		Location:    im.Location,
		CameraMake:  im.CameraMake,
		CameraModel: im.CameraModel,
		Software:    Software,
		DateTime:    w.now(),
	}, nil
}

// place puts a copy of src at dest: byte-identical, or transcoded for PNG.
func (w *Writer) place(src string, dest string) error {
	if strings.EqualFold(filepath.Ext(src), ".png") {
		q := w.c.JPEGQuality
		if q <= 0 || q > 100 {
			q = DefaultJPEGQuality
		}
		return transcodePNG(src, dest, q)
	}
	return copy.Copy(src, dest, copy.Options{PreserveTimes: true})
}

// embed writes the primary EXIF fields.
func (w *Writer) embed(path string, f *Fields) error {
	if isJPEG(path) {
		return embedJPEG(path, f)
	}
	if ew, ok := w.backend.(EXIFWriter); ok && w.backend.Available() {
		return ew.WriteEXIF(path, f)
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
}

func (w *Writer) removeBackups(path string) {
	for _, sfx := range backupSuffixes {
		b := path + sfx
		err := os.Remove(b)
		if err == nil {
			klog.V(1).Infof("removed backup %s", b)
			continue
		}
		if !errors.Is(err, fs.ErrNotExist) {
			klog.Warningf("unable to remove backup %s: %v", b, err)
		}
	}
}
