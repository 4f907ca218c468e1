// seotag annotates a directory of images with AI-generated SEO metadata.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"k8s.io/klog/v2"

	"github.com/tstromberg/seotag/pkg/seotag"
)

var (
	configFile = flag.String("config", "", "Path to a YAML/TOML/JSON configuration file")
	credsDir   = flag.String("credentials", "credentials", "Directory of credential .txt files (ignored if missing)")
	watchFlag  = flag.Bool("watch", false, "after the initial batch, watch the input directory for new images")
	verify     = flag.Bool("verify", false, "re-read EXIF fields from each output and log them")

	// flags that override configuration keys of the same name
	overrideFlags = map[string]*string{
		"in_dir":             flag.String("in", "", "Location of input directory"),
		"out_dir":            flag.String("out", "", "Location of output directory"),
		"author":             flag.String("author", "", "Author name"),
		"copyright":          flag.String("copyright", "", "Copyright text"),
		"website":            flag.String("website", "", "Website included in the copyright notice"),
		"email":              flag.String("email", "", "Email included in the copyright notice"),
		"extensions":         flag.String("extensions", "", "Comma-separated list of accepted extensions"),
		"model":              flag.String("model", "", "Model name"),
		"rating":             flag.String("rating", "", "Rating (1-5) written to every output"),
		"description_source": flag.String("description-source", "", "AI field feeding the description: title, description, subject, keywords"),
		"subject_source":     flag.String("subject-source", "", "AI field feeding the subject: title, description, subject, keywords"),
		"filename_source":    flag.String("filename-source", "", "AI field feeding the filename: title or filename"),
		"keyword_backend":    flag.String("keyword-backend", "", "IPTC/XMP backend: exiftool or none"),
		"remove_backup":      flag.String("remove-backup", "", "remove backup files left by metadata tools (true/false)"),
		"log_json":           flag.String("json", "", "log AI metadata as JSON (true/false)"),
	}
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		klog.V(1).Infof("no .env loaded: %v", err)
	}

	c, err := seotag.LoadConfig(seotag.LoadOptions{
		File:           *configFile,
		CredentialsDir: credentialsDir(*credsDir),
		Overrides:      overrides(),
	})
	if err != nil {
		klog.Exitf("config: %v", err)
	}
	setVerbosity(c.Verbosity)

	klog.Infof("Input directory: %s", c.InDir)
	klog.Infof("Output directory: %s", c.OutDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gen, err := seotag.NewGenaiGenerator(ctx, c.APIKey)
	if err != nil {
		klog.Exitf("genai: %v", err)
	}

	backend := seotag.NewKeywordBackend(c)
	defer func() {
		if err := backend.Close(); err != nil {
			klog.Errorf("Failed to close metadata backend: %v", err)
		}
	}()

	p := seotag.NewProcessor(c, seotag.NewAnalyzer(c, gen), seotag.NewWriter(c, backend))
	s, err := p.RunDir(ctx)
	if err != nil {
		klog.Errorf("batch failed: %v", err)
		return
	}

	if *verify {
		for _, out := range s.Outputs {
			fields, err := seotag.ReadEXIF(out)
			if err != nil {
				klog.Errorf("verify %s: %v", out, err)
				continue
			}
			klog.Infof("%s: title=%q keywords=%q artist=%q rating=%q", out, fields["XPTitle"], fields["XPKeywords"], fields["Artist"], fields["Rating"])

			et, ok := backend.(*seotag.ExiftoolBackend)
			if !ok {
				continue
			}
			iptc, err := et.Read(out)
			if err != nil {
				klog.Errorf("verify IPTC %s: %v", out, err)
				continue
			}
			klog.Infof("%s: IPTC object name=%q keywords=%v", out, iptc.Title, iptc.Keywords)
		}
	}

	for _, f := range s.Failures {
		klog.Warningf("not annotated: %s: %v", f.Path, f.Err)
	}
	klog.Infof("%d SEO optimized images created", len(s.Outputs))

	if *watchFlag {
		if err := p.Watch(ctx, s.Inputs); err != nil {
			klog.Errorf("watch: %v", err)
		}
	}
}

// overrides returns the configuration keys set explicitly on the command line.
func overrides() map[string]string {
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	o := map[string]string{}
	for key, val := range overrideFlags {
		f := flag.Lookup(flagName(key))
		if f != nil && set[f.Name] {
			o[key] = *val
		}
	}
	return o
}

// flagName maps a configuration key to the flag that overrides it.
func flagName(key string) string {
	switch key {
	case "in_dir":
		return "in"
	case "out_dir":
		return "out"
	case "log_json":
		return "json"
	}
	return strings.ReplaceAll(key, "_", "-")
}

func credentialsDir(dir string) string {
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return ""
	}
	return dir
}

// setVerbosity applies the configured klog level unless -v was given.
func setVerbosity(v int) {
	given := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "v" {
			given = true
		}
	})
	if given || v <= 0 {
		return
	}
	if err := flag.Set("v", strconv.Itoa(v)); err != nil {
		klog.Warningf("unable to set verbosity: %v", err)
	}
}
