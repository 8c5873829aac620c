package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"amana-grc/internal/adapters/persistence/models"
	"amana-grc/internal/config"
)

// VerdictUnknown is returned whenever the inference backend cannot be asked
// or gives an unusable answer.
const VerdictUnknown = "UNKNOWN"

// Assessment is the AI reviewer's opinion on an evidence record
type Assessment struct {
	Verdict    string   `json:"verdict"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// AIService asks a vLLM inference server, speaking the OpenAI chat API, to
// pre-assess evidence against its control. It degrades to an UNKNOWN verdict
// on any failure so the evidence workflow never depends on the model.
type AIService struct {
	cfg    config.AIConfig
	client *http.Client
}

// NewAIService creates a new AI service
func NewAIService(cfg config.AIConfig) *AIService {
	return &AIService{
		cfg: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// modelVerdict is the JSON shape the model is instructed to answer with
type modelVerdict struct {
	Verdict    string  `json:"verdict"`
	Confidence float64 `json:"confidence"`
}

// AssessEvidence asks the model whether the evidence plausibly supports the
// control. Never returns an error; failures degrade to UNKNOWN.
func (s *AIService) AssessEvidence(ctx context.Context, control *models.Control, evidence *models.Evidence) *Assessment {
	if !s.cfg.Enabled {
		return &Assessment{Verdict: VerdictUnknown}
	}

	prompt := fmt.Sprintf(
		"You are a compliance reviewer. Control %s: %s\n%s\n\n"+
			"Evidence titled %q (%s, %d bytes): %s\n\n"+
			"Does this evidence plausibly support the control? Answer with JSON only: "+
			`{"verdict": "SUPPORTS" | "INSUFFICIENT" | "UNRELATED", "confidence": 0.0-1.0}`,
		control.Code, control.TitleEN, control.DescriptionEN,
		evidence.Title, evidence.FileType, evidence.FileSize, evidence.Description,
	)

	content, err := s.chat(ctx, prompt)
	if err != nil {
		log.Printf("AI assessment failed: %v", err)
		return &Assessment{Verdict: VerdictUnknown}
	}

	var verdict modelVerdict
	if err := json.Unmarshal([]byte(extractJSON(content)), &verdict); err != nil || verdict.Verdict == "" {
		log.Printf("AI assessment unparseable: %.80s", content)
		return &Assessment{Verdict: VerdictUnknown}
	}

	return &Assessment{
		Verdict:    verdict.Verdict,
		Confidence: &verdict.Confidence,
	}
}

func (s *AIService) chat(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: s.cfg.Model,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
		MaxTokens:   256,
		Temperature: 0,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("inference server returned %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("inference server returned no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}

// extractJSON pulls the first JSON object out of a model reply that may be
// wrapped in prose or a code fence.
func extractJSON(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return content
	}
	return content[start : end+1]
}
