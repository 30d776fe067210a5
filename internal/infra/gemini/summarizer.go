// Package gemini runs the announcement summarization prompt on Google Gemini.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"class_info_hub/internal/domain/summary"
)

const systemPrompt = `You summarize a school class's daily announcement for students.
Read the JSON input field "announcementText" (markdown) and answer with JSON {"summary": "..."}.
The summary is a short markdown bullet list ("- " per line) in the language of the announcement.
Keep dates, times, items to bring and deadlines. Do not invent information.`

// KeySource returns the current API key, read at call time.
type KeySource interface {
	APIKey() string
}

type Summarizer struct {
	keys     KeySource
	model    string
	validate *validator.Validate
}

func NewSummarizer(keys KeySource, model string) *Summarizer {
	return &Summarizer{keys: keys, model: model, validate: validator.New()}
}

// Summarize opens a client with the key current at call time, so a rotated key is
// picked up without a restart.
func (s *Summarizer) Summarize(ctx context.Context, req summary.Request) (summary.Response, error) {
	if err := s.validate.Struct(req); err != nil {
		return summary.Response{}, fmt.Errorf("invalid summary request: %w", err)
	}
	key := s.keys.APIKey()
	if key == "" {
		return summary.Response{}, &summary.ConfigurationError{Message: "AI summaries are not available: no API key configured"}
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(key))
	if err != nil {
		return summary.Response{}, fmt.Errorf("unable to create Gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(s.model)
	configureModel(model)

	input, err := json.Marshal(req)
	if err != nil {
		return summary.Response{}, fmt.Errorf("error encoding summary request: %w", err)
	}
	resp, err := model.GenerateContent(ctx, genai.Text(input))
	if err != nil {
		return summary.Response{}, fmt.Errorf("Gemini generation failed: %w", err)
	}
	return s.parseResponse(resp)
}

func configureModel(model *genai.GenerativeModel) {
	model.SystemInstruction = genai.NewUserContent(genai.Text(systemPrompt))
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"summary": {Type: genai.TypeString, Description: "markdown bullet list"},
		},
		Required: []string{"summary"},
	}
}

// parseResponse reads the JSON answer out of the first candidate and validates it.
// A missing or blank summary is summary.ErrEmptySummary.
func (s *Summarizer) parseResponse(resp *genai.GenerateContentResponse) (summary.Response, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return summary.Response{}, fmt.Errorf("Gemini returned no candidates: %w", summary.ErrEmptySummary)
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}
	raw := strings.TrimSpace(text.String())
	if raw == "" {
		return summary.Response{}, fmt.Errorf("Gemini returned no text: %w", summary.ErrEmptySummary)
	}

	var out summary.Response
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return summary.Response{}, fmt.Errorf("failed to parse Gemini response %q: %w", raw, err)
	}
	out.Summary = strings.TrimSpace(out.Summary)
	if err := s.validate.Struct(out); err != nil {
		return summary.Response{}, fmt.Errorf("%w: %v", summary.ErrEmptySummary, err)
	}
	return out, nil
}
