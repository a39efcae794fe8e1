// Package extractor holds the generative-model adapters behind extract.Extractor.
package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/monegment/monegment/pkg/config"
	"github.com/monegment/monegment/pkg/domain/transaction"
	"github.com/monegment/monegment/pkg/service/extract"
	"google.golang.org/genai"
)

// ErrEmptyResponse is returned when the model answered with no text.
var ErrEmptyResponse = errors.New("empty response from model")

// Gemini extracts transactions with the Gemini API.
type Gemini struct {
	models  *genai.Models
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// NewGemini creates the adapter. cfg.ApiKey must be set.
func NewGemini(ctx context.Context, cfg *config.Extractor, logger *slog.Logger) (*Gemini, error) {
	if cfg == nil || cfg.ApiKey == "" {
		return nil, extract.ErrUnavailable
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.ApiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{
		models:  client.Models,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  logger.With("extractor", "gemini", "model", cfg.Model),
	}, nil
}

// Extract sends text or inline media to the model and parses its JSON answer.
func (g *Gemini) Extract(ctx context.Context, in extract.Input) ([]extract.Raw, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	contents := []*genai.Content{{Role: "user", Parts: parts(in)}}
	resp, err := g.models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return nil, ErrEmptyResponse
	}
	raw, err := ParseResponse(text)
	if err != nil {
		g.logger.Warn("unparseable model output", "error", err, "response", text)
		return nil, err
	}
	return raw, nil
}

func parts(in extract.Input) []*genai.Part {
	if !in.IsMedia() {
		return []*genai.Part{{Text: prompt() + fmt.Sprintf("\nText: %q", in.Text)}}
	}
	hint := "Analyze the receipt image."
	if strings.HasPrefix(in.MIME, "audio/") {
		hint = "Listen to the voice note."
	}
	return []*genai.Part{
		{Text: prompt() + "\n" + hint},
		{InlineData: &genai.Blob{MIMEType: in.MIME, Data: in.Media}},
	}
}

func prompt() string {
	names := make([]string, 0, len(transaction.UserCategories))
	for _, c := range transaction.UserCategories {
		names = append(names, string(c))
	}
	return "Extract ALL financial transactions.\n" +
		"Category MUST be one of: " + strings.Join(names, ", ") + ".\n" +
		"Amount MUST be an integer in rupiah (e.g. 50000). Wallet default is \"Cash\".\n" +
		"Output a JSON array ONLY: [{\"amount\": int, \"category\": str, \"wallet\": str, \"description\": str}]\n" +
		"Do NOT wrap the response in code fences."
}

// ParseResponse accepts a JSON array or a single object, tolerating Markdown fences and
// stray text around the JSON.
func ParseResponse(text string) ([]extract.Raw, error) {
	clean := cleanModelJSON(text)
	var list []extract.Raw
	if err := decode(clean, &list); err == nil {
		return list, nil
	}
	if start, end := strings.Index(clean, "{"), strings.LastIndex(clean, "}"); start != -1 && end > start {
		var one extract.Raw
		if err := decode(clean[start:end+1], &one); err == nil {
			return []extract.Raw{one}, nil
		}
	}
	return nil, fmt.Errorf("decode model output: %q", clean)
}

func decode(s string, v any) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	return dec.Decode(v)
}

func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		idx := strings.Index(s, "\n")
		if idx == -1 {
			return s
		}
		s = strings.TrimSpace(s[idx+1:])
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)
	if start := strings.Index(s, "["); start != -1 {
		if end := strings.LastIndex(s, "]"); end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}

var _ extract.Extractor = (*Gemini)(nil)
