// Package gemini drafts matching sets with the Gemini API.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"wordmatch-service/internal/domain"
)

// DefaultModel is used when the config leaves the model empty.
const DefaultModel = "gemini-2.5-flash"

// contentGenerator is the part of genai.Models the generator needs.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator asks the model for 3 to 4 word/meaning pairs built around the
// seed words.
type Generator struct {
	models contentGenerator
	model  string
	logger *zap.Logger
}

// NewGenerator creates a Gemini-backed generator.
func NewGenerator(ctx context.Context, apiKey, model string, logger *zap.Logger) (*Generator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return newGenerator(client.Models, model, logger), nil
}

func newGenerator(models contentGenerator, model string, logger *zap.Logger) *Generator {
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{models: models, model: model, logger: logger}
}

type generatedItem struct {
	ID      string `json:"id"`
	Word    string `json:"word"`
	Meaning string `json:"meaning"`
}

// Generate implements app.SetGenerator.
func (g *Generator) Generate(ctx context.Context, words []string) (domain.MatchingSet, error) {
	if len(words) == 0 {
		return domain.MatchingSet{}, domain.ErrNoWords
	}

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt(words)), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return domain.MatchingSet{}, fmt.Errorf("generate content: %w", err)
	}

	raw := cleanJSON(resp.Text())
	var generated []generatedItem
	if err := json.Unmarshal([]byte(raw), &generated); err != nil {
		g.logger.Warn("model returned unparsable set", zap.String("raw", raw), zap.Error(err))
		return domain.MatchingSet{}, fmt.Errorf("parse generated set: %w", err)
	}

	set := domain.MatchingSet{Title: strings.Join(words, ", ")}
	for i, it := range generated {
		id := it.ID
		if id == "" {
			id = fmt.Sprintf("word_%d", i+1)
		}
		set.Items = append(set.Items, domain.SetItem{
			ID:        id,
			LeftText:  strings.TrimSpace(it.Word),
			RightText: strings.TrimSpace(it.Meaning),
		})
	}
	g.logger.Debug("set generated", zap.Strings("words", words), zap.Int("items", len(set.Items)))
	return set, nil
}

func prompt(words []string) string {
	var b strings.Builder
	b.WriteString("You are a Korean language teacher building a word-to-meaning matching exercise.\n")
	fmt.Fprintf(&b, "Seed words: %s\n", strings.Join(words, ", "))
	b.WriteString("Include every seed word and add related words of similar level or topic so there are 3 or 4 words in total.\n")
	b.WriteString("Explain each word in one short, simple Korean sentence a foreign learner can follow.\n")
	b.WriteString(`Reply with a JSON list only, no markdown: [{"id": "word_1", "word": "...", "meaning": "..."}]`)
	return b.String()
}

// cleanJSON drops markdown fences some models add despite the MIME type.
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	if start, end := strings.Index(s, "["), strings.LastIndex(s, "]"); start >= 0 && end > start {
		s = s[start : end+1]
	}
	return s
}
