// describe prints the AI-generated SEO metadata for images without writing anything.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"k8s.io/klog/v2"

	"github.com/tstromberg/seotag/pkg/seotag"
)

var (
	configFile = flag.String("config", "", "Path to a YAML/TOML/JSON configuration file")
	model      = flag.String("model", "", "Model name")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	if len(flag.Args()) == 0 {
		klog.Exitf("No images provided. Usage: %s [-model <name>] <image> [image ...]", os.Args[0])
	}

	if err := godotenv.Load(); err != nil {
		klog.V(1).Infof("no .env loaded: %v", err)
	}

	o := map[string]string{}
	if *model != "" {
		o["model"] = *model
	}
	c, err := seotag.LoadConfig(seotag.LoadOptions{File: *configFile, Overrides: o, SkipDirs: true})
	if err != nil {
		klog.Exitf("config: %v", err)
	}

	ctx := context.Background()
	gen, err := seotag.NewGenaiGenerator(ctx, c.APIKey)
	if err != nil {
		klog.Exitf("genai: %v", err)
	}
	a := seotag.NewAnalyzer(c, gen)

	out := map[string]seotag.AIGeneratedMetadata{}
	for _, path := range flag.Args() {
		klog.Infof("analyzing %s ...", path)
		out[path] = a.Analyze(ctx, path)
	}

	bs, err := json.MarshalIndent(out, "", "    ")
	if err != nil {
		klog.Exitf("marshal: %v", err)
	}
	fmt.Println(string(bs))
}
