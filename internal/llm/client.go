// Package llm translates note content through an OpenAI-compatible
// chat-completions endpoint. Credentials are resolved once from the
// configuration: the primary API key wins, a gateway token is the second
// choice, and with neither the service either fails or answers with a
// deterministic mock translation when mock mode is on.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"strings"
	"time"

	"dailynote.app/notes-api/internal/config"
	"dailynote.app/notes-api/internal/logging"
)

// ErrNotConfigured means no usable credential was found and mock mode is off.
var ErrNotConfigured = errors.New("no API key configured, set OPENAI_API_KEY in .env or environment")

const (
	defaultEndpoint = "https://api.openai.com/v1"
	gatewayEndpoint = "https://models.github.ai/inference"

	maxAttempts    = 3
	requestTimeout = 15 * time.Second
)

type Service struct {
	cfg   config.Config
	httpc *http.Client
	sleep func(time.Duration)
}

func New(cfg config.Config) *Service {
	return &Service{
		cfg:   cfg,
		httpc: &http.Client{Timeout: requestTimeout},
		sleep: time.Sleep,
	}
}

// NewWithTransport injects a transport and sleeper, used by tests.
func NewWithTransport(cfg config.Config, rt http.RoundTripper, sleep func(time.Duration)) *Service {
	return &Service{
		cfg:   cfg,
		httpc: &http.Client{Timeout: requestTimeout, Transport: rt},
		sleep: sleep,
	}
}

type endpointClient struct {
	endpoint string
	apiKey   string
	model    string
}

// resolveClient picks credentials, endpoint and model. The gateway token is
// only used when the primary key is absent.
func (s *Service) resolveClient() (*endpointClient, error) {
	if s.cfg.APIKey != "" {
		ep := s.cfg.BaseURL
		if ep == "" {
			ep = defaultEndpoint
		}
		model := s.cfg.Model
		if model == "" {
			model = config.DefaultModel
		}
		return &endpointClient{endpoint: ep, apiKey: s.cfg.APIKey, model: model}, nil
	}
	if s.cfg.GatewayToken != "" {
		ep := s.cfg.BaseURL
		if ep == "" {
			ep = gatewayEndpoint
		}
		model := s.cfg.Model
		if model == "" {
			model = config.DefaultGatewayModel
		}
		return &endpointClient{endpoint: ep, apiKey: s.cfg.GatewayToken, model: model}, nil
	}
	return nil, ErrNotConfigured
}

// Translate returns text translated into targetLang. Without credentials it
// either returns a mock translation (mock mode) or ErrNotConfigured. Any
// other failure is the final network attempt's error, unwrapped, so callers
// can tell a timeout from an auth failure.
func (s *Service) Translate(ctx context.Context, text, targetLang string) (string, error) {
	client, err := s.resolveClient()
	if err != nil {
		if s.cfg.MockMode {
			return mockTranslate(text, targetLang), nil
		}
		return "", err
	}

	prompt := fmt.Sprintf(
		"Translate the following text to %s. "+
			"Preserve the original meaning, keep code blocks and lists formatted, "+
			"and only return the translated text without extra commentary.\n\nOriginal:\n%s",
		targetLang, text)

	return s.chat(ctx, client, []chatMessage{{Role: "user", Content: prompt}})
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
}

// chat performs the completion call with up to maxAttempts tries, sleeping
// 1.5^attempt seconds between failures.
func (s *Service) chat(ctx context.Context, client *endpointClient, messages []chatMessage) (string, error) {
	log := logging.ForService("llm")

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		content, err := s.doRequest(ctx, client, messages)
		if err == nil {
			return content, nil
		}
		if attempt < maxAttempts {
			backoff := time.Duration(math.Pow(1.5, float64(attempt)) * float64(time.Second))
			log.Warn("LLM call failed, retrying",
				"attempt", attempt, "max_attempts", maxAttempts, "backoff", backoff, "error", err)
			s.sleep(backoff)
			continue
		}
		return "", err
	}
	// unreachable, the loop always returns
	return "", errors.New("llm: no attempts made")
}

func (s *Service) doRequest(ctx context.Context, client *endpointClient, messages []chatMessage) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       client.model,
		Messages:    messages,
		Temperature: 0,
		TopP:        1,
	})
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}

	url := strings.TrimRight(client.endpoint, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+client.apiKey)

	resp, err := s.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read chat response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat completion returned status %d: %s", resp.StatusCode, truncate(raw, 300))
	}
	return extractContent(raw), nil
}

// extractContent tolerates the known response shapes: the typed
// choices[0].message.content layout, a loosely-typed mapping with the same
// structure, and as a last resort the raw body itself.
func extractContent(raw []byte) string {
	var typed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &typed); err == nil && len(typed.Choices) > 0 {
		return typed.Choices[0].Message.Content
	}

	var loose map[string]any
	if err := json.Unmarshal(raw, &loose); err == nil {
		if choices, ok := loose["choices"].([]any); ok && len(choices) > 0 {
			if first, ok := choices[0].(map[string]any); ok {
				if msg, ok := first["message"].(map[string]any); ok {
					if content, ok := msg["content"].(string); ok {
						return content
					}
				}
			}
		}
	}

	return string(raw)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// greeting phrases for mock mode, keyed by (phrase, target language)
var mockPhrases = []struct {
	phrase string
	lang   string
	out    string
}{
	{"hello", "zh", "你好"},
	{"hi", "zh", "嗨"},
	{"how are you", "zh", "你好吗"},
	{"hello", "en", "Hello"},
}

// mockTranslate produces a deterministic placeholder so the rest of the
// system can be exercised without live credentials. Development only.
func mockTranslate(text, targetLang string) string {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, m := range mockPhrases {
		if m.lang == targetLang && strings.Contains(lower, m.phrase) {
			return fmt.Sprintf("[MOCK TRANSLATION to %s]\n\n%s\n\n(原文)\n%s", targetLang, m.out, text)
		}
	}
	return fmt.Sprintf("[MOCK TRANSLATION to %s]\n\n%s", targetLang, text)
}

// IsTimeout reports whether err looks like a timeout or connection failure
// rather than an application-level upstream error.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "timed out") ||
		strings.Contains(msg, "connect")
}
