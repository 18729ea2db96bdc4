package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/infra"
)

// maxCompletionTokens is the fixed generation-length cap sent on every call.
const maxCompletionTokens = 1024

const defaultClientTimeout = 30 * time.Second

// Options configures the text/multimodal model client.
type Options struct {
	APIKey         string
	Endpoint       string
	Model          string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls against an OpenAI-compatible chat completions
// endpoint. Every failure cause is logged here and collapsed to a single
// ProviderFailure at the boundary; callers never branch on the cause.
type Client struct {
	apiKey     string
	endpoint   string
	model      string
	httpClient *http.Client
	logger     *infra.Logger
}

type chatRequest struct {
	Model               string        `json:"model"`
	Messages            []chatMessage `json:"messages"`
	MaxCompletionTokens int           `json:"max_completion_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string         `json:"type"`
	Text     string         `json:"text,omitempty"`
	ImageURL *imageURLValue `json:"image_url,omitempty"`
}

type imageURLValue struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = defaultClientTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		endpoint:   strings.TrimSpace(opts.Endpoint),
		model:      strings.TrimSpace(opts.Model),
		httpClient: httpClient,
		logger:     logger,
	}
}

// HasCredentials reports whether the client can perform remote calls. A
// negative answer is a capability statement, not a failure.
func (c *Client) HasCredentials() bool {
	return c.apiKey != "" && c.endpoint != ""
}

// Generate issues one chat completion call and returns the first choice's
// message content verbatim. Missing configuration short-circuits without a
// network attempt.
func (c *Client) Generate(ctx context.Context, turns []domain.ChatTurn, modelOverride string) (string, error) {
	if !c.HasCredentials() {
		return "", c.fail(domain.FailureConfigMissing, errors.New("textgen: api key or endpoint not configured"))
	}
	model := strings.TrimSpace(modelOverride)
	if model == "" {
		model = c.model
	}
	payload := chatRequest{
		Model:               model,
		Messages:            encodeTurns(turns),
		MaxCompletionTokens: maxCompletionTokens,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", c.fail(domain.FailureMalformedPayload, fmt.Errorf("textgen: encode request: %w", err))
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", c.fail(domain.FailureTransport, fmt.Errorf("textgen: build request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", c.fail(domain.FailureTransport, fmt.Errorf("textgen: http request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", c.fail(domain.FailureStatus, fmt.Errorf("textgen: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))))
	}
	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", c.fail(domain.FailureMalformedPayload, fmt.Errorf("textgen: decode response: %w", err))
	}
	if len(decoded.Choices) == 0 {
		return "", c.fail(domain.FailureMalformedPayload, errors.New("textgen: no choices"))
	}
	text := decoded.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return "", c.fail(domain.FailureMalformedPayload, errors.New("textgen: empty completion content"))
	}
	return text, nil
}

func (c *Client) fail(kind domain.FailureKind, err error) error {
	c.logger.Warn().Str("kind", string(kind)).Err(err).Msg("textgen: generation unavailable")
	return domain.NewFailure(kind, err)
}

// encodeTurns maps turns to wire messages. A turn with an image reference is
// serialized as two-part multimodal content, image first then text.
func encodeTurns(turns []domain.ChatTurn) []chatMessage {
	messages := make([]chatMessage, 0, len(turns))
	for _, t := range turns {
		if t.ImageRef == "" {
			messages = append(messages, chatMessage{Role: t.Role, Content: t.Content})
			continue
		}
		messages = append(messages, chatMessage{
			Role: t.Role,
			Content: []contentPart{
				{Type: "image_url", ImageURL: &imageURLValue{URL: t.ImageRef}},
				{Type: "text", Text: t.Content},
			},
		})
	}
	return messages
}
