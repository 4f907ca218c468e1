package seotag

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GEMINI_API_KEY", "GOOGLE_AI_API_KEY", "SEOTAG_API_KEY", "SEOTAG_AUTHOR", "SEOTAG_IN_DIR", "SEOTAG_OUT_DIR", "SEOTAG_EXTENSIONS"} {
		t.Setenv(k, "")
	}
}

func writeCredentials(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content+"\n"), 0o600))
	}
	return dir
}

func TestLoadConfigCredentials(t *testing.T) {
	clearEnv(t)
	in := t.TempDir()
	dir := writeCredentials(t, map[string]string{
		"input_dir.txt":      in,
		"output_dir.txt":     "/tmp/seotag-out",
		"author.txt":         "Jane Doe",
		"website.txt":        "https://example.com",
		"gemini_api_key.txt": "secret",
	})

	c, err := LoadConfig(LoadOptions{CredentialsDir: dir})
	require.NoError(t, err)
	assert.Equal(t, in, c.InDir)
	assert.Equal(t, "/tmp/seotag-out", c.OutDir)
	assert.Equal(t, "Jane Doe", c.Author)
	assert.Equal(t, "https://example.com", c.Website)
	assert.Equal(t, "secret", c.APIKey)
	assert.Equal(t, defaultCopyright("Jane Doe", time.Now()), c.Copyright)

	assert.Equal(t, DefaultExtensions, c.Extensions)
	assert.Equal(t, FieldTitle, c.DescriptionSource)
	assert.Equal(t, FieldTitle, c.SubjectSource)
	assert.Equal(t, FieldTitle, c.FilenameSource)
	assert.Equal(t, 5, c.Rating)
	assert.True(t, c.RemoveBackup)
	assert.True(t, c.XMP)
	assert.Equal(t, DefaultModel, c.Model)
}

func TestLoadConfigPrecedence(t *testing.T) {
	clearEnv(t)
	in := t.TempDir()
	dir := writeCredentials(t, map[string]string{
		"author.txt":         "from credentials",
		"gemini_api_key.txt": "secret",
	})

	t.Setenv("SEOTAG_AUTHOR", "from env")
	c, err := LoadConfig(LoadOptions{CredentialsDir: dir, Overrides: map[string]string{"in_dir": in}})
	require.NoError(t, err)
	assert.Equal(t, "from env", c.Author)

	c, err = LoadConfig(LoadOptions{CredentialsDir: dir, Overrides: map[string]string{"in_dir": in, "author": "from flag"}})
	require.NoError(t, err)
	assert.Equal(t, "from flag", c.Author)

	t.Setenv("GOOGLE_AI_API_KEY", "env-key")
	c, err = LoadConfig(LoadOptions{Overrides: map[string]string{"in_dir": in}})
	require.NoError(t, err)
	assert.Equal(t, "env-key", c.APIKey)
}

func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)
	in := t.TempDir()
	path := filepath.Join(t.TempDir(), "seotag.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
in_dir: `+in+`
out_dir: out
api_key: file-key
extensions: [jpg, .PNG]
description_source: description
subject_source: subject
filename_source: filename
remove_backup: false
rating: 3
copyright: "Some rights reserved."
keyword_backend: none
`), 0o600))

	c, err := LoadConfig(LoadOptions{File: path})
	require.NoError(t, err)
	assert.Equal(t, []string{"jpg", "png"}, c.Extensions)
	assert.Equal(t, FieldDescription, c.DescriptionSource)
	assert.Equal(t, FieldSubject, c.SubjectSource)
	assert.Equal(t, FieldFilename, c.FilenameSource)
	assert.False(t, c.RemoveBackup)
	assert.Equal(t, 3, c.Rating)
	assert.Equal(t, "Some rights reserved.", c.Copyright)
	assert.Equal(t, "none", c.KeywordBackend)
}

func TestLoadConfigExtensionsString(t *testing.T) {
	clearEnv(t)
	c, err := LoadConfig(LoadOptions{SkipDirs: true, Overrides: map[string]string{"api_key": "k", "extensions": "jpg, .webp;heic"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"jpg", "webp", "heic"}, c.Extensions)
}

func TestLoadConfigFailures(t *testing.T) {
	clearEnv(t)
	in := t.TempDir()
	file := filepath.Join(in, "file.txt")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	tests := []struct {
		name string
		o    LoadOptions
	}{
		{"no api key", LoadOptions{Overrides: map[string]string{"in_dir": in}}},
		{"no in_dir", LoadOptions{Overrides: map[string]string{"api_key": "k"}}},
		{"missing in_dir", LoadOptions{Overrides: map[string]string{"api_key": "k", "in_dir": filepath.Join(in, "nope")}}},
		{"in_dir is a file", LoadOptions{Overrides: map[string]string{"api_key": "k", "in_dir": file}}},
		{"empty out_dir", LoadOptions{Overrides: map[string]string{"api_key": "k", "in_dir": in, "out_dir": " "}}},
		{"bad source", LoadOptions{SkipDirs: true, Overrides: map[string]string{"api_key": "k", "subject_source": "headline"}}},
		{"no extensions", LoadOptions{SkipDirs: true, Overrides: map[string]string{"api_key": "k", "extensions": " , "}}},
		{"missing file", LoadOptions{File: filepath.Join(in, "missing.yaml")}},
		{"missing credentials", LoadOptions{CredentialsDir: filepath.Join(in, "nope")}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(tc.o)
			assert.Error(t, err)
		})
	}

	_, err := LoadConfig(LoadOptions{SkipDirs: true, Overrides: map[string]string{"api_key": "k"}})
	assert.NoError(t, err)
}

func TestDefaultCopyright(t *testing.T) {
	now := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "© 2026 Jane. All rights reserved.", defaultCopyright("Jane", now))
	assert.Equal(t, "© 2026. All rights reserved.", defaultCopyright("", now))
}
