package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"smartair-backend/internal/config"
)

const (
	chatTemperature     = 0.7
	chatTopP            = 0.9
	chatMaxOutputTokens = 500
)

type GeminiService struct {
	client    *genai.Client
	modelName string
	apiKey    string
}

// NewGeminiService returns a ConfigurationError when apiKey is empty or still
// an unexpanded ${VAR} placeholder.
func NewGeminiService(ctx context.Context, apiKey, modelName string, opts ...option.ClientOption) (*GeminiService, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" || config.IsPlaceholder(apiKey) {
		return nil, &ConfigurationError{Message: "Gemini API key is not configured"}
	}

	client, err := genai.NewClient(ctx, append(opts, option.WithAPIKey(apiKey))...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiService{
		client:    client,
		modelName: modelName,
		apiKey:    apiKey,
	}, nil
}

func (s *GeminiService) Close() {
	s.client.Close()
}

func (s *GeminiService) newModel(system string) *genai.GenerativeModel {
	model := s.client.GenerativeModel(s.modelName)
	model.SetTemperature(chatTemperature)
	model.SetTopP(chatTopP)
	model.SetMaxOutputTokens(chatMaxOutputTokens)
	if system != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(system))
	}
	return model
}

func (s *GeminiService) Generate(ctx context.Context, system string, history []Turn, message string) (string, error) {
	cs := s.newModel(system).StartChat()
	cs.History = toContents(history)

	resp, err := cs.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", s.classify(ctx, err)
	}

	text, ok := firstCandidateText(resp)
	if !ok {
		return "", &UpstreamError{Message: "unexpected response from chat provider"}
	}
	return text, nil
}

func toContents(turns []Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		contents = append(contents, &genai.Content{
			Role:  t.Role,
			Parts: []genai.Part{genai.Text(t.Text)},
		})
	}
	return contents
}

// firstCandidateText joins the text parts of the first candidate.
func firstCandidateText(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", false
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return "", false
	}

	var text strings.Builder
	found := false
	for _, part := range cand.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
			found = true
		}
	}
	return text.String(), found
}

// classify turns a provider error into an UpstreamError, keeping the HTTP
// status when the provider answered.
func (s *GeminiService) classify(ctx context.Context, err error) error {
	if status := upstreamStatus(err); status > 0 {
		return &UpstreamError{
			StatusCode: status,
			Message:    fmt.Sprintf("chat provider returned status %d", status),
			Err:        err,
		}
	}

	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return &UpstreamError{Message: "unexpected response from chat provider", Err: err}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &UpstreamError{Message: "chat provider timed out: " + s.redact(err.Error()), Err: err}
	}

	return &UpstreamError{Message: "chat provider request failed: " + s.redact(err.Error()), Err: err}
}

func upstreamStatus(err error) int {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code > 0 {
		return gerr.Code
	}
	var aerr *apierror.APIError
	if errors.As(err, &aerr) && aerr.HTTPCode() > 0 {
		return aerr.HTTPCode()
	}
	return 0
}

func (s *GeminiService) redact(msg string) string {
	if s.apiKey == "" {
		return msg
	}
	return strings.ReplaceAll(msg, s.apiKey, "[redacted]")
}
