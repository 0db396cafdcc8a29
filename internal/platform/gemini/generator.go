// Package gemini implements the generation.ExampleGenerator interface
// using Google's Gemini API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/lgrenier/vocable-api/internal/config"
	"github.com/lgrenier/vocable-api/internal/domain"
	"github.com/lgrenier/vocable-api/internal/generation"
	"github.com/lgrenier/vocable-api/internal/platform/logger"
	"google.golang.org/genai"
)

// promptTemplate asks for a strict JSON array so the response parses
// without post-processing beyond stripping code fences.
const promptTemplate = `You are helping a learner of {{.Language}} study vocabulary.
Write {{.Count}} short example sentences in {{.Language}} using the word "{{.Lemma}}"{{if .Pos}} ({{.Pos}}){{end}}, meaning: {{.Meaning}}.
Each sentence should be simple and natural{{if .CEFR}}, around CEFR level {{.CEFR}}{{end}}.
Respond with ONLY a JSON array, no prose, in this form:
[{"text": "<sentence in {{.Language}}>", "translation": "<English translation>", "cefr": "<estimated CEFR level>"}]`

// Generator calls the Gemini API to produce example sentences.
type Generator struct {
	client *genai.Client
	model  string
	prompt *template.Template
	logger *slog.Logger
}

// Ensure Generator implements generation.ExampleGenerator
var _ generation.ExampleGenerator = (*Generator)(nil)

// NewGenerator creates a Gemini-backed example generator. Returns
// generation.ErrNotConfigured if no API key is set, so callers can
// degrade the feature instead of failing startup.
func NewGenerator(ctx context.Context, cfg config.LLMConfig, log *slog.Logger) (*Generator, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, generation.ErrNotConfigured
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}
	if log == nil {
		log = slog.Default()
	}

	prompt, err := template.New("examples").Parse(promptTemplate)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v",
			generation.ErrInvalidConfig, err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return &Generator{
		client: client,
		model:  cfg.ModelName,
		prompt: prompt,
		logger: log.With(slog.String("component", "gemini_generator")),
	}, nil
}

// GenerateExamples implements generation.ExampleGenerator.
func (g *Generator) GenerateExamples(ctx context.Context, cardID int64, word *domain.Word, language string, count int) ([]*domain.Example, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	if count <= 0 {
		count = 3
	}

	prompt, err := g.buildPrompt(word, language, count)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		log.Error("gemini request failed",
			slog.String("error", err.Error()),
			slog.String("lemma", word.Lemma))
		return nil, fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}

	text := resp.Text()
	if text == "" {
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
			return nil, generation.ErrContentBlocked
		}
		return nil, fmt.Errorf("%w: empty response", generation.ErrInvalidResponse)
	}

	examples, err := parseExamples(cardID, text)
	if err != nil {
		log.Warn("failed to parse gemini response",
			slog.String("error", err.Error()),
			slog.String("lemma", word.Lemma))
		return nil, err
	}

	log.Debug("examples generated",
		slog.String("lemma", word.Lemma),
		slog.Int("count", len(examples)))

	return examples, nil
}

func (g *Generator) buildPrompt(word *domain.Word, language string, count int) (string, error) {
	data := struct {
		Language string
		Count    int
		Lemma    string
		Pos      string
		Meaning  string
		CEFR     string
	}{
		Language: languageName(language),
		Count:    count,
		Lemma:    word.Lemma,
		Pos:      word.Pos,
		Meaning:  word.Meaning,
		CEFR:     word.CEFR,
	}

	var buf bytes.Buffer
	if err := g.prompt.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// exampleJSON mirrors the JSON objects requested in the prompt.
type exampleJSON struct {
	Text        string `json:"text"`
	Translation string `json:"translation"`
	CEFR        string `json:"cefr"`
}

// parseExamples decodes the model's JSON array, tolerating markdown
// code fences the model sometimes wraps it in.
func parseExamples(cardID int64, text string) ([]*domain.Example, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var raw []exampleJSON
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrInvalidResponse, err)
	}

	var examples []*domain.Example
	for _, e := range raw {
		if strings.TrimSpace(e.Text) == "" {
			continue
		}
		example, err := domain.NewExample(cardID, e.Text, e.Translation, "gemini")
		if err != nil {
			continue
		}
		example.CEFR = strings.TrimSpace(e.CEFR)
		examples = append(examples, example)
	}
	if len(examples) == 0 {
		return nil, fmt.Errorf("%w: no usable examples in response", generation.ErrInvalidResponse)
	}

	return examples, nil
}

// languageName expands common language codes so the prompt reads
// naturally; unknown codes pass through unchanged.
func languageName(code string) string {
	switch strings.ToLower(code) {
	case "fr":
		return "French"
	case "en":
		return "English"
	case "de":
		return "German"
	case "es":
		return "Spanish"
	case "it":
		return "Italian"
	case "ja":
		return "Japanese"
	case "zh":
		return "Chinese"
	default:
		return code
	}
}
