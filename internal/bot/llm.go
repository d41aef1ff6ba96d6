package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/alexcjwei/llms-play-spyfall/internal"
)

const defaultMessagesURL = "https://api.anthropic.com/v1/messages"

// LLMConfig configures the Anthropic-backed decision provider.
type LLMConfig struct {
	APIKey      string
	Model       string
	MessagesURL string
	HTTPClient  *http.Client
}

// LLMGateway produces decisions by prompting the Anthropic messages
// API for a strict-JSON reply. Any transport, parsing or content
// failure is returned to the engine, which substitutes its fallback;
// this provider never stalls a session beyond the context deadline.
type LLMGateway struct {
	cfg LLMConfig
}

func NewLLMGateway(cfg LLMConfig) (*LLMGateway, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("llm gateway: api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "claude-3-5-haiku-20241022"
	}
	if cfg.MessagesURL == "" {
		cfg.MessagesURL = defaultMessagesURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	return &LLMGateway{cfg: cfg}, nil
}

func (g *LLMGateway) Decide(ctx context.Context, kind Kind, view internal.SessionView, botID string) (Decision, error) {
	prompt := buildPrompt(kind, view, botID)

	text, err := g.complete(ctx, prompt)
	if err != nil {
		return Decision{}, err
	}

	raw, err := extractJSONObject(text)
	if err != nil {
		return Decision{}, fmt.Errorf("llm reply for %s: %w", kind, err)
	}

	var reply struct {
		TargetID string `json:"target_id"`
		Content  string `json:"content"`
		Guess    string `json:"guess"`
		Guilty   bool   `json:"guilty"`
		Accuse   bool   `json:"accuse"`
		Accused  string `json:"accused_id"`
	}
	if err := json.Unmarshal(raw, &reply); err != nil {
		return Decision{}, fmt.Errorf("decode llm reply: %w", err)
	}

	dec := Decision{
		TargetID:  reply.TargetID,
		Content:   truncate(reply.Content, internal.MaxExchangeContentLen),
		Guess:     reply.Guess,
		Guilty:    reply.Guilty,
		Accuse:    reply.Accuse,
		AccusedID: reply.Accused,
	}

	// Minimal shape checks; the engine re-validates everything anyway.
	switch kind {
	case KindQuestion:
		if dec.Guess == "" && (dec.TargetID == "" || dec.Content == "") {
			return Decision{}, fmt.Errorf("llm question reply missing target or content")
		}
	case KindAnswer:
		if dec.Content == "" {
			return Decision{}, fmt.Errorf("llm answer reply missing content")
		}
	case KindSlot:
		if dec.Accuse && dec.AccusedID == "" {
			return Decision{}, fmt.Errorf("llm slot reply accuses nobody")
		}
	}
	return dec, nil
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (g *LLMGateway) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(anthropicRequest{
		Model:       g.cfg.Model,
		MaxTokens:   1024,
		Temperature: 0.7,
		Messages:    []anthropicMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.MessagesURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", g.cfg.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := g.cfg.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("messages api: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		log.Printf("[LLMGateway] messages api status=%d body=%s", resp.StatusCode, payload)
		return "", fmt.Errorf("messages api status %d", resp.StatusCode)
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Content) == 0 {
		return "", fmt.Errorf("empty completion")
	}
	return parsed.Content[0].Text, nil
}

// extractJSONObject pulls the first top-level JSON object out of a
// completion, tolerating prose or code fences around it.
func extractJSONObject(text string) (json.RawMessage, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no json object in completion")
	}
	raw := json.RawMessage(text[start : end+1])
	if !json.Valid(raw) {
		return nil, fmt.Errorf("malformed json object in completion")
	}
	return raw, nil
}

// truncate clips to n runes; the engine's content cap is rune-based
// and a byte cut could split a multi-byte character.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
