package imagegen

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

const defaultImageEndpoint = "https://ark.cn-beijing.volces.com/api/v3/images/generations"

const defaultComposeTimeout = 60 * time.Second

// Options configures the remote image-composition client.
type Options struct {
	APIKey         string
	Endpoint       string
	TextEndpoint   string
	Model          string
	DefaultSize    string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client asks the remote image model for a prompted hero-image transform.
// Like the text client, it collapses every failure to one ProviderFailure
// and never panics outward.
type Client struct {
	apiKey      string
	endpoint    string
	model       string
	defaultSize string
	httpClient  *http.Client
	logger      *infra.Logger
}

type composeRequest struct {
	Model         string `json:"model"`
	Prompt        string `json:"prompt"`
	Image         string `json:"image"`
	SequentialGen string `json:"sequential_image_generation"`
	Format        string `json:"response_format"`
	Size          string `json:"size"`
	Stream        bool   `json:"stream"`
	Watermark     bool   `json:"watermark"`
}

// composeResponse tolerates the two payload shapes seen in the wild: the
// documented data array and a bare top-level url.
type composeResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
	URL string `json:"url"`
}

// NewClient constructs a client, resolving the effective endpoint: the
// dedicated image endpoint when configured, else one derived from the text
// endpoint, else the hardcoded default.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = defaultComposeTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	size := strings.TrimSpace(opts.DefaultSize)
	if size == "" {
		size = "1024x1024"
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
		apiKey:      strings.TrimSpace(opts.APIKey),
		endpoint:    resolveEndpoint(opts.Endpoint, opts.TextEndpoint),
		model:       strings.TrimSpace(opts.Model),
		defaultSize: size,
		httpClient:  httpClient,
		logger:      logger,
	}
}

func resolveEndpoint(imageEndpoint, textEndpoint string) string {
	if e := strings.TrimSpace(imageEndpoint); e != "" {
		return e
	}
	if t := strings.TrimSpace(textEndpoint); strings.Contains(t, "chat/completions") {
		return strings.Replace(t, "chat/completions", "images/generations", 1)
	}
	return defaultImageEndpoint
}

// HasCredentials reports whether remote composition is enabled.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// Compose issues one generation call and returns the composited image URL.
func (c *Client) Compose(ctx context.Context, req domain.CompositionRequest) (string, error) {
	if !c.HasCredentials() {
		return "", c.fail(domain.FailureConfigMissing, errors.New("imagegen: api key not configured"))
	}
	size := strings.TrimSpace(req.SizeTag)
	if size == "" {
		size = c.defaultSize
	}
	payload := composeRequest{
		Model:         c.model,
		Prompt:        req.InstructionText,
		Image:         req.SourceImageRef,
		SequentialGen: "disabled",
		Format:        "url",
		Size:          size,
		Stream:        false,
		Watermark:     true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", c.fail(domain.FailureMalformedPayload, fmt.Errorf("imagegen: encode request: %w", err))
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", c.fail(domain.FailureTransport, fmt.Errorf("imagegen: build request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", c.fail(domain.FailureTransport, fmt.Errorf("imagegen: http request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", c.fail(domain.FailureStatus, fmt.Errorf("imagegen: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))))
	}
	var decoded composeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", c.fail(domain.FailureMalformedPayload, fmt.Errorf("imagegen: decode response: %w", err))
	}
	url := firstComposedURL(decoded)
	if url == "" {
		return "", c.fail(domain.FailureMalformedPayload, errors.New("imagegen: response carries no image url"))
	}
	c.logger.Debug().Str("model", c.model).Str("url", url).Msg("imagegen: composed hero image")
	return url, nil
}

func (c *Client) fail(kind domain.FailureKind, err error) error {
	c.logger.Warn().Str("kind", string(kind)).Err(err).Msg("imagegen: remote composition unavailable")
	return domain.NewFailure(kind, err)
}

func firstComposedURL(resp composeResponse) string {
	for _, item := range resp.Data {
		if url := strings.TrimSpace(item.URL); url != "" {
			return url
		}
	}
	return strings.TrimSpace(resp.URL)
}
