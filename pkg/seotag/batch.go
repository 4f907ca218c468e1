package seotag

import (
	"context"
	"fmt"
	"path/filepath"

	"k8s.io/klog/v2"
)

// Failure records an image the batch skipped.
type Failure struct {
	Path string
	Err  error
}

// Summary is the outcome of a batch.
type Summary struct {
	Inputs   []string
	Outputs  []string
	Failures []Failure
}

// Processor analyzes and writes images one at a time.
type Processor struct {
	c        *Config
	analyzer *Analyzer
	writer   *Writer
}

// NewProcessor returns a Processor.
func NewProcessor(c *Config, a *Analyzer, w *Writer) *Processor {
	return &Processor{c: c, analyzer: a, writer: w}
}

// ProcessOne analyzes the image at path and writes its annotated copy.
func (p *Processor) ProcessOne(ctx context.Context, path string) (string, error) {
	klog.Infof("analyzing: %s", filepath.Base(path))
	md := p.analyzer.Analyze(ctx, path)

	out, err := p.writer.Write(path, md, p.c.Author, p.c.Copyright)
	if err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	klog.Infof("created: %s", out)
	return out, nil
}

// Run processes paths in order. Failures are logged and recorded, never fatal.
// Run stops early only if ctx is cancelled.
func (p *Processor) Run(ctx context.Context, paths []string) *Summary {
	s := &Summary{Inputs: paths, Outputs: []string{}, Failures: []Failure{}}

	for i, path := range paths {
		if ctx.Err() != nil {
			klog.Warningf("stopping after %d of %d images: %v", i, len(paths), ctx.Err())
			break
		}
		klog.V(1).Infof("image %d of %d", i+1, len(paths))

		out, err := p.ProcessOne(ctx, path)
		if err != nil {
			klog.Errorf("skipping %s: %v", path, err)
			s.Failures = append(s.Failures, Failure{Path: path, Err: err})
			continue
		}
		s.Outputs = append(s.Outputs, out)
	}

	klog.Infof("%d of %d images annotated", len(s.Outputs), len(paths))
	return s
}

// RunDir processes every accepted image in the configured input directory.
func (p *Processor) RunDir(ctx context.Context) (*Summary, error) {
	paths, err := Find(p.c.InDir, p.c.Extensions)
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	klog.Infof("found %d images in %s", len(paths), p.c.InDir)
	return p.Run(ctx, paths), nil
}
