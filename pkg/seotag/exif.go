package seotag

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
	exifundefined "github.com/dsoprea/go-exif/v3/undefined"
	jpegstructure "github.com/dsoprea/go-jpeg-image-structure/v2"
	"k8s.io/klog/v2"
)

var exifDate = "2006:01:02 15:04:05"

// rootIFD is the IfdPath go-exif reports for IFD0 tags.
var rootIFD = "IFD"

var exifIFD = "IFD/Exif"

// managedTags are the IFD0 tags this package owns. They are cleared before
// writing, so a value omitted from Fields is absent rather than inherited from the input.
var managedTags = map[string]uint16{
	"ImageDescription": 0x010e,
	"Make":             0x010f,
	"Model":            0x0110,
	"Software":         0x0131,
	"DateTime":         0x0132,
	"Artist":           0x013b,
	"Rating":           0x4746,
	"RatingPercent":    0x4749,
	"Copyright":        0x8298,
	"XPTitle":          0x9c9b,
	"XPComment":        0x9c9c,
	"XPAuthor":         0x9c9d,
	"XPKeywords":       0x9c9e,
	"XPSubject":        0x9c9f,
}

const userCommentTag = 0x9286

type exifTag struct {
	name  string
	value interface{}
}

// exifTags maps f onto IFD0 tags. XP* tags are BYTE arrays of UTF-16LE text,
// ASCII tags carry Latin-1.
func exifTags(f *Fields) ([]exifTag, error) {
	ts := []exifTag{}

	wide := map[string]string{
		"XPTitle":    f.Title,
		"XPComment":  f.Description,
		"XPSubject":  f.Subject,
		"XPKeywords": f.KeywordText(),
		"XPAuthor":   f.Author,
	}
	for _, name := range []string{"XPTitle", "XPComment", "XPSubject", "XPKeywords", "XPAuthor"} {
		if wide[name] == "" {
			continue
		}
		bs, err := wideText(wide[name])
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", name, err)
		}
		ts = append(ts, exifTag{name, bs})
	}

	ascii := []exifTag{
		{"ImageDescription", f.Description},
		{"Artist", f.Author},
		{"Copyright", f.Copyright},
		{"Software", f.Software},
		{"Make", f.CameraMake},
		{"Model", f.CameraModel},
	}
	if !f.DateTime.IsZero() {
		ascii = append(ascii, exifTag{"DateTime", f.DateTime.Format(exifDate)})
	}
	for _, t := range ascii {
		s := latinText(t.value.(string))
		if s == "" {
			continue
		}
		ts = append(ts, exifTag{t.name, s})
	}

	if validRating(f.Rating) {
		ts = append(ts, exifTag{"Rating", []uint16{uint16(f.Rating)}})
	}
	return ts, nil
}

// embedJPEG writes f into the EXIF block of the JPEG at path. Tags outside
// managedTags are kept as they were.
func embedJPEG(path string, f *Fields) error {
	mc, err := jpegstructure.NewJpegMediaParser().ParseFile(path)
	if err != nil {
		return fmt.Errorf("parse jpeg: %w", err)
	}
	sl, ok := mc.(*jpegstructure.SegmentList)
	if !ok {
		return fmt.Errorf("unexpected media context %T", mc)
	}

	ib, err := exifBuilder(sl)
	if err != nil {
		return fmt.Errorf("exif builder: %w", err)
	}

	for name, id := range managedTags {
		if _, err := ib.DeleteAll(id); err != nil {
			return fmt.Errorf("clear %s: %w", name, err)
		}
	}

	ts, err := exifTags(f)
	if err != nil {
		return err
	}
	for _, t := range ts {
		klog.V(2).Infof("%s: %s=%v", path, t.name, t.value)
		if err := ib.SetStandardWithName(t.name, t.value); err != nil {
			return fmt.Errorf("set %s: %w", t.name, err)
		}
	}

	if err := setUserComment(ib, f.Caption); err != nil {
		return fmt.Errorf("user comment: %w", err)
	}

	if err := sl.SetExif(ib); err != nil {
		return fmt.Errorf("set exif: %w", err)
	}

	var b bytes.Buffer
	if err := sl.Write(&b); err != nil {
		return fmt.Errorf("encode jpeg: %w", err)
	}
	return os.WriteFile(path, b.Bytes(), 0o644)
}

// setUserComment replaces the Exif UserComment with caption as ASCII text.
func setUserComment(ib *exif.IfdBuilder, caption string) error {
	caption = asciiText(caption)
	if caption == "" {
		return nil
	}

	eib, err := exif.GetOrCreateIbFromRootIb(ib, exifIFD)
	if err != nil {
		return fmt.Errorf("exif ifd: %w", err)
	}
	if _, err := eib.DeleteAll(userCommentTag); err != nil {
		return fmt.Errorf("clear: %w", err)
	}

	uc := exifundefined.Tag9286UserComment{
		EncodingType:  exifundefined.TagUndefinedType_9286_UserComment_Encoding_ASCII,
		EncodingBytes: []byte(caption),
	}
	return eib.SetStandardWithName("UserComment", uc)
}

func exifBuilder(sl *jpegstructure.SegmentList) (*exif.IfdBuilder, error) {
	if _, _, err := sl.FindExif(); err == nil {
		ib, err := sl.ConstructExifBuilder()
		if err == nil {
			return ib, nil
		}
		klog.Warningf("unable to load existing EXIF, starting fresh: %v", err)
	}

	im, err := exifcommon.NewIfdMappingWithStandard()
	if err != nil {
		return nil, fmt.Errorf("ifd mapping: %w", err)
	}
	return exif.NewIfdBuilder(im, exif.NewTagIndex(), exifcommon.IfdStandardIfdIdentity, exifcommon.EncodeDefaultByteOrder), nil
}

// ReadEXIF returns the IFD0 tags of the image at path, with XP* tags decoded to
// text, plus the Exif UserComment.
func ReadEXIF(path string) (map[string]string, error) {
	raw, err := exif.SearchFileAndExtractExif(path)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	ets, _, err := exif.GetFlatExifData(raw, nil)
	if err != nil {
		return nil, fmt.Errorf("flat exif: %w", err)
	}

	fields := map[string]string{}
	for _, et := range ets {
		if et.IfdPath == exifIFD && et.TagId == userCommentTag {
			switch v := et.Value.(type) {
			case exifundefined.Tag9286UserComment:
				fields["UserComment"] = strings.TrimRight(string(v.EncodingBytes), "\x00 ")
			case *exifundefined.Tag9286UserComment:
				fields["UserComment"] = strings.TrimRight(string(v.EncodingBytes), "\x00 ")
			}
			continue
		}
		if et.IfdPath != rootIFD || et.TagName == "" {
			continue
		}
		switch v := et.Value.(type) {
		case string:
			fields[et.TagName] = decodeLatinText(strings.TrimRight(v, "\x00"))
		case []byte:
			if !strings.HasPrefix(et.TagName, "XP") {
				fields[et.TagName] = string(v)
				continue
			}
			s, err := decodeWideText(v)
			if err != nil {
				return nil, fmt.Errorf("decode %s: %w", et.TagName, err)
			}
			fields[et.TagName] = s
		case []uint16:
			if len(v) > 0 {
				fields[et.TagName] = strconv.Itoa(int(v[0]))
			}
		default:
			fields[et.TagName] = et.FormattedFirst
		}
	}
	return fields, nil
}
