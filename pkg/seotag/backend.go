package seotag

import (
	"fmt"
	"strings"

	"github.com/barasher/go-exiftool"
	"k8s.io/klog/v2"
)

// KeywordBackend writes the structured IPTC/XMP fields that catalog tools read.
// It is optional: Available reports whether Write can succeed.
type KeywordBackend interface {
	Available() bool
	Write(path string, f *Fields) error
	Close() error
}

// EXIFWriter is implemented by backends that can also embed the primary EXIF
// fields into formats the built-in JPEG embedder does not handle.
type EXIFWriter interface {
	WriteEXIF(path string, f *Fields) error
}

// NewKeywordBackend returns the backend selected by c, or an unavailable
// backend when it is disabled or cannot be started.
func NewKeywordBackend(c *Config) KeywordBackend {
	switch strings.ToLower(c.KeywordBackend) {
	case "none", "off":
		klog.V(1).Infof("keyword backend disabled, writing EXIF only")
		return unavailableBackend{reason: fmt.Errorf("%w: disabled", ErrBackendUnavailable)}
	}

	b, err := NewExiftoolBackend(c)
	if err != nil {
		klog.V(1).Infof("IPTC/XMP unavailable, writing EXIF only: %v", err)
		return unavailableBackend{reason: err}
	}
	return b
}

type unavailableBackend struct {
	reason error
}

func (unavailableBackend) Available() bool { return false }

func (u unavailableBackend) Write(string, *Fields) error { return u.reason }

func (unavailableBackend) Close() error { return nil }

// ExiftoolBackend writes IPTC and XMP fields through a long-running exiftool process.
type ExiftoolBackend struct {
	et  *exiftool.Exiftool
	xmp bool
}

// NewExiftoolBackend starts exiftool. Unless c.RemoveBackup is set, exiftool
// keeps a <path>_original copy of every file it modifies.
func NewExiftoolBackend(c *Config) (*ExiftoolBackend, error) {
	opts := []func(*exiftool.Exiftool) error{
		exiftool.Charset("filename=utf8"),
	}
	if c.ExiftoolPath != "" {
		opts = append(opts, exiftool.SetExiftoolBinaryPath(c.ExiftoolPath))
	}
	if !c.RemoveBackup {
		opts = append(opts, exiftool.BackupOriginal())
	}

	et, err := exiftool.NewExiftool(opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: exiftool: %w", ErrBackendUnavailable, err)
	}
	return &ExiftoolBackend{et: et, xmp: c.XMP}, nil
}

func (b *ExiftoolBackend) Available() bool { return b.et != nil }

func (b *ExiftoolBackend) Close() error {
	if b.et == nil {
		return nil
	}
	return b.et.Close()
}

// Write sets the IPTC title, caption and keyword list, plus XMP Dublin Core when enabled.
func (b *ExiftoolBackend) Write(path string, f *Fields) error {
	return b.write(path, iptcFields(f, b.xmp))
}

// WriteEXIF sets the primary EXIF fields. exiftool handles the XP* UTF-16 encoding itself.
func (b *ExiftoolBackend) WriteEXIF(path string, f *Fields) error {
	return b.write(path, exifFields(f))
}

// iptcFields maps f onto exiftool tag names. An empty string deletes the tag,
// so nothing omitted from f survives from the input file.
func iptcFields(f *Fields, xmp bool) map[string]interface{} {
	kv := map[string]interface{}{
		"IPTC:CodedCharacterSet": "UTF8",
		"IPTC:ObjectName":        f.Title,
		"IPTC:Headline":          f.Subject,
		"IPTC:Caption-Abstract":  f.Caption,
		"IPTC:By-line":           f.Author,
		"IPTC:CopyrightNotice":   f.Copyright,
		"IPTC:Sub-location":      f.Location,
		"IPTC:Keywords":          keywordList(f.Keywords),
	}
	if !xmp {
		return kv
	}

	kv["XMP-dc:Title"] = f.Title
	kv["XMP-dc:Description"] = f.Description
	kv["XMP-dc:Creator"] = f.Author
	kv["XMP-dc:Rights"] = f.Copyright
	kv["XMP-iptcCore:Location"] = f.Location
	kv["XMP-xmp:CreatorTool"] = f.Software
	kv["XMP-dc:Subject"] = keywordList(f.Keywords)
	kv["XMP-xmp:Rating"] = ratingValue(f.Rating)
	return kv
}

// exifFields is the exiftool equivalent of exifTags.
func exifFields(f *Fields) map[string]interface{} {
	kv := map[string]interface{}{
		"EXIF:XPTitle":          f.Title,
		"EXIF:XPComment":        f.Description,
		"EXIF:XPSubject":        f.Subject,
		"EXIF:XPKeywords":       f.KeywordText(),
		"EXIF:XPAuthor":         f.Author,
		"EXIF:ImageDescription": latinSafe(f.Description),
		"EXIF:Artist":           latinSafe(f.Author),
		"EXIF:Copyright":        latinSafe(f.Copyright),
		"EXIF:Software":         latinSafe(f.Software),
		"EXIF:Make":             latinSafe(f.CameraMake),
		"EXIF:Model":            latinSafe(f.CameraModel),
		"EXIF:ModifyDate":       "",
		"EXIF:UserComment":      asciiText(f.Caption),
		"EXIF:Rating":           ratingValue(f.Rating),
	}
	if !f.DateTime.IsZero() {
		kv["EXIF:ModifyDate"] = f.DateTime.Format(exifDate)
	}
	return kv
}

// keywordList returns ks, or "" to delete the list when there are none.
func keywordList(ks []string) interface{} {
	if len(ks) == 0 {
		return ""
	}
	return ks
}

func ratingValue(r int) interface{} {
	if !validRating(r) {
		return ""
	}
	return int64(r)
}

// Read returns the IPTC fields of path as catalog tools would see them.
func (b *ExiftoolBackend) Read(path string) (*Fields, error) {
	fis := b.et.ExtractMetadata(path)
	fi := fis[0]
	f := &Fields{}

	if fi.Err != nil {
		return f, fmt.Errorf("extract fail for %q: %w", path, fi.Err)
	}

	for k, v := range fi.Fields {
		klog.V(2).Infof("%q=%v", k, v)
	}

	var err error
	f.Title, err = fi.GetString("ObjectName")
	if err != nil {
		klog.V(1).Infof("unable to get object name for %s: %v", path, err)
	}
	f.Caption, err = fi.GetString("Caption-Abstract")
	if err != nil {
		klog.V(1).Infof("unable to get caption for %s: %v", path, err)
	}
	f.Keywords, err = fi.GetStrings("Keywords")
	if err != nil {
		klog.V(1).Infof("unable to get keywords for %s: %v", path, err)
	}
	f.Author, _ = fi.GetString("By-line")
	f.Copyright, _ = fi.GetString("CopyrightNotice")
	f.Location, _ = fi.GetString("Sub-location")
	return f, nil
}

func (b *ExiftoolBackend) write(path string, kv map[string]interface{}) error {
	fm := exiftool.EmptyFileMetadata()
	fm.File = path
	for k, v := range kv {
		klog.V(2).Infof("%s: %s=%v", path, k, v)
		switch t := v.(type) {
		case string:
			fm.SetString(k, strings.TrimSpace(t))
		case []string:
			fm.SetStrings(k, t)
		case int64:
			fm.SetInt(k, t)
		}
	}

	fms := []exiftool.FileMetadata{fm}
	b.et.WriteMetadata(fms)
	if fms[0].Err != nil {
		return fmt.Errorf("exiftool write %s: %w", path, fms[0].Err)
	}
	return nil
}
