package seotag

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"k8s.io/klog/v2"
)

// credentialFiles maps files in a credentials directory to configuration keys.
var credentialFiles = map[string]string{
	"input_dir.txt":      "in_dir",
	"output_dir.txt":     "out_dir",
	"author.txt":         "author",
	"website.txt":        "website",
	"email.txt":          "email",
	"copyright_info.txt": "copyright",
	"gemini_api_key.txt": "api_key",
	"prompt.txt":         "prompt",
	"model.txt":          "model",
}

var configDefaults = map[string]interface{}{
	"out_dir":            "output",
	"extensions":         DefaultExtensions,
	"description_source": "title",
	"subject_source":     "title",
	"filename_source":    "title",
	"remove_backup":      true,
	"rating":             5,
	"xmp":                true,
	"keyword_backend":    "exiftool",
	"jpeg_quality":       DefaultJPEGQuality,
	"model":              DefaultModel,
	"log_json":           false,
	"verbosity":          0,
}

// LoadOptions controls where LoadConfig looks for settings.
type LoadOptions struct {
	// File is an optional YAML, TOML or JSON configuration file.
	File string
	// CredentialsDir is an optional directory of single-value .txt files.
	CredentialsDir string
	// Overrides take precedence over every other source, typically set from flags.
	Overrides map[string]string
	// SkipDirs skips validation of the input and output directories.
	SkipDirs bool
}

// LoadConfig reads configuration from defaults, credential files, a config file,
// SEOTAG_* environment variables and overrides, in increasing precedence.
func LoadConfig(o LoadOptions) (*Config, error) {
	v := viper.New()
	for k, val := range configDefaults {
		v.SetDefault(k, val)
	}

	if o.CredentialsDir != "" {
		creds, err := readCredentials(o.CredentialsDir)
		if err != nil {
			return nil, fmt.Errorf("credentials: %w", err)
		}
		for k, val := range creds {
			v.SetDefault(k, val)
		}
	}

	if o.File != "" {
		v.SetConfigFile(o.File)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", o.File, err)
		}
		klog.V(1).Infof("loaded config from %s", o.File)
	}

	v.SetEnvPrefix("SEOTAG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("api_key", "SEOTAG_API_KEY", "GEMINI_API_KEY", "GOOGLE_AI_API_KEY"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	for k, val := range o.Overrides {
		v.Set(k, val)
	}

	c := &Config{
		InDir:          strings.TrimSpace(v.GetString("in_dir")),
		OutDir:         strings.TrimSpace(v.GetString("out_dir")),
		Extensions:     stringList(v.Get("extensions")),
		Author:         strings.TrimSpace(v.GetString("author")),
		Copyright:      strings.TrimSpace(v.GetString("copyright")),
		Website:        strings.TrimSpace(v.GetString("website")),
		Email:          strings.TrimSpace(v.GetString("email")),
		Rating:         v.GetInt("rating"),
		Location:       v.GetString("location"),
		CameraMake:     v.GetString("camera_make"),
		CameraModel:    v.GetString("camera_model"),
		RemoveBackup:   v.GetBool("remove_backup"),
		XMP:            v.GetBool("xmp"),
		KeywordBackend: v.GetString("keyword_backend"),
		ExiftoolPath:   v.GetString("exiftool_path"),
		JPEGQuality:    v.GetInt("jpeg_quality"),
		Model:          strings.TrimSpace(v.GetString("model")),
		Prompt:         strings.TrimSpace(v.GetString("prompt")),
		APIKey:         strings.TrimSpace(v.GetString("api_key")),
		LogJSON:        v.GetBool("log_json"),
		Verbosity:      v.GetInt("verbosity"),
	}

	var err error
	for _, src := range []struct {
		key  string
		dest *FieldSource
	}{
		{"description_source", &c.DescriptionSource},
		{"subject_source", &c.SubjectSource},
		{"filename_source", &c.FilenameSource},
	} {
		*src.dest, err = ParseFieldSource(v.GetString(src.key))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src.key, err)
		}
	}

	if c.Copyright == "" {
		c.Copyright = defaultCopyright(c.Author, time.Now())
	}

	if err := c.validate(o.SkipDirs); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) validate(skipDirs bool) error {
	if c.APIKey == "" {
		return errors.New("api_key is required (set GEMINI_API_KEY or SEOTAG_API_KEY)")
	}
	if len(c.Extensions) == 0 {
		return errors.New("extensions must not be empty")
	}
	if skipDirs {
		return nil
	}

	if c.InDir == "" {
		return errors.New("in_dir is required")
	}
	st, err := os.Stat(c.InDir)
	if err != nil {
		return fmt.Errorf("in_dir: %w", err)
	}
	if !st.IsDir() {
		return fmt.Errorf("in_dir %s is not a directory", c.InDir)
	}
	if c.OutDir == "" {
		return errors.New("out_dir is required")
	}
	return nil
}

func defaultCopyright(author string, now time.Time) string {
	if author == "" {
		return fmt.Sprintf("© %d. All rights reserved.", now.Year())
	}
	return fmt.Sprintf("© %d %s. All rights reserved.", now.Year(), author)
}

// readCredentials reads the known credential files present in dir.
func readCredentials(dir string) (map[string]string, error) {
	st, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	creds := map[string]string{}
	for name, key := range credentialFiles {
		bs, err := os.ReadFile(filepath.Join(dir, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		if s := strings.TrimSpace(string(bs)); s != "" {
			creds[key] = s
		}
	}
	return creds, nil
}

// stringList accepts a list or a comma/space separated string. Entries are
// lowercased and stripped of a leading dot.
func stringList(v interface{}) []string {
	var raw []string
	switch t := v.(type) {
	case []string:
		raw = t
	case []interface{}:
		for _, e := range t {
			raw = append(raw, fmt.Sprint(e))
		}
	case string:
		raw = strings.FieldsFunc(t, func(r rune) bool {
			return r == ',' || r == ' ' || r == ';'
		})
	}

	out := []string{}
	for _, s := range raw {
		s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
