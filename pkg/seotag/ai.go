package seotag

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"google.golang.org/genai"
	"k8s.io/klog/v2"
)

// DefaultModel is the model used when none is configured.
var DefaultModel = "gemini-2.5-flash"

// DefaultPrompt asks for the JSON record AIGeneratedMetadata decodes.
var DefaultPrompt = "Analyze this image and generate SEO-optimized metadata for a stock photo catalog. " +
	"Respond with a single JSON object and nothing else, using exactly these keys: " +
	`"title" (a concise descriptive title, under 70 characters), ` +
	`"description" (one or two sentences describing the image for search engines), ` +
	`"subject" (the main subject in a few words), ` +
	`"keywords" (15-30 comma-separated keywords, most relevant first), ` +
	`"filename" (a lowercase hyphenated slug suitable as a file name, no extension), ` +
	`"category" (a single broad category), ` +
	`"mood" (a few comma-separated words), ` +
	`"style" (the photographic or artistic style).`

// Generator sends an image and prompt to a model and returns its text response.
type Generator interface {
	Generate(ctx context.Context, model string, prompt string, image []byte, mimeType string) (string, error)
}

// GenaiGenerator is a Generator backed by the Gemini API.
type GenaiGenerator struct {
	client *genai.Client
}

// NewGenaiGenerator creates a Gemini API client.
func NewGenaiGenerator(ctx context.Context, apiKey string) (*GenaiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}
	return &GenaiGenerator{client: client}, nil
}

func (g *GenaiGenerator) Generate(ctx context.Context, model string, prompt string, image []byte, mimeType string) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
		genai.NewPartFromBytes(image, mimeType),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := g.client.Models.GenerateContent(ctx, model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return resp.Text(), nil
}

// Analyzer turns images into AIGeneratedMetadata.
type Analyzer struct {
	gen     Generator
	model   string
	prompt  string
	logJSON bool
}

// NewAnalyzer returns an Analyzer that uses gen with the model and prompt from c.
func NewAnalyzer(c *Config, gen Generator) *Analyzer {
	a := &Analyzer{gen: gen, model: c.Model, prompt: c.Prompt, logJSON: c.LogJSON}
	if a.model == "" {
		a.model = DefaultModel
	}
	if a.prompt == "" {
		a.prompt = DefaultPrompt
	}
	return a
}

// Analyze never fails: any error reading the image, calling the model, or
// parsing its response yields fallback metadata instead.
func (a *Analyzer) Analyze(ctx context.Context, path string) AIGeneratedMetadata {
	md, err := a.analyze(ctx, path)
	if err != nil {
		klog.Errorf("AI analysis failed for %s, using fallback metadata: %v", path, err)
		return FallbackMetadata(path)
	}

	if a.logJSON {
		bs, err := json.MarshalIndent(md, "", "    ")
		if err == nil {
			klog.Infof("AI metadata for %s:\n%s", filepath.Base(path), bs)
		}
	}
	return md
}

func (a *Analyzer) analyze(ctx context.Context, path string) (AIGeneratedMetadata, error) {
	md := AIGeneratedMetadata{}

	bs, err := os.ReadFile(path)
	if err != nil {
		return md, fmt.Errorf("read: %w", err)
	}

	text, err := a.gen.Generate(ctx, a.model, a.prompt, bs, mimetype.Detect(bs).String())
	if err != nil {
		return md, err
	}

	if err := json.Unmarshal([]byte(stripCodeFence(text)), &md); err != nil {
		klog.V(1).Infof("unparseable AI response for %s: %q", path, text)
		return md, fmt.Errorf("parse response: %w", err)
	}
	return md, nil
}

// stripCodeFence removes a surrounding ```json ... ``` markdown fence.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimPrefix(s, "JSON")
	}
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// FallbackMetadata is substituted when analysis fails.
func FallbackMetadata(path string) AIGeneratedMetadata {
	base := filepath.Base(path)
	if i := strings.Index(base, "."); i >= 0 {
		base = base[:i]
	}
	return AIGeneratedMetadata{
		Title:       "Beautiful Image",
		Description: "A stunning image with great visual appeal",
		Subject:     "Photography",
		Keywords:    "image,photo,beautiful,visual,content",
		Filename:    "beautiful-image-" + base,
		Category:    "general",
		Mood:        "neutral",
		Style:       "natural",
	}
}
