package textgen

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"server/internal/domain"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestGenerateWithoutCredentialsMakesNoNetworkCall(t *testing.T) {
	t.Parallel()
	client := NewClient(Options{
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			t.Fatal("network call issued despite missing credentials")
			return nil, nil
		})},
	})
	_, err := client.Generate(context.Background(), BuildTurns("i", nil, "d", ""), "")
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable", err)
	}
	var failure *domain.ProviderFailure
	if !errors.As(err, &failure) || failure.Kind != domain.FailureConfigMissing {
		t.Fatalf("failure = %+v, want config_missing", failure)
	}
}

func TestGenerateSuccessReturnsContentVerbatim(t *testing.T) {
	t.Parallel()
	const completion = " 前缀 {\"title\":\"T\"} 后缀 "
	var captured []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		captured, _ = io.ReadAll(r.Body)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"content": completion}}},
		})
	}))
	defer srv.Close()

	client := NewClient(Options{APIKey: "test-key", Endpoint: srv.URL, Model: "test-model"})
	turns := BuildTurns("instr", nil, "描述", "https://example.com/p.png")
	got, err := client.Generate(context.Background(), turns, "")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if got != completion {
		t.Fatalf("content = %q, want verbatim %q", got, completion)
	}

	var req struct {
		Model               string `json:"model"`
		MaxCompletionTokens int    `json:"max_completion_tokens"`
		Messages            []struct {
			Role    string          `json:"role"`
			Content json.RawMessage `json:"content"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(captured, &req); err != nil {
		t.Fatalf("unmarshal captured request: %v", err)
	}
	if req.Model != "test-model" {
		t.Fatalf("model = %q", req.Model)
	}
	if req.MaxCompletionTokens != maxCompletionTokens {
		t.Fatalf("max_completion_tokens = %d, want %d", req.MaxCompletionTokens, maxCompletionTokens)
	}
	if len(req.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(req.Messages))
	}
	// System turn stays a plain string; the image-carrying final turn becomes
	// a two-part array, image first.
	var systemContent string
	if err := json.Unmarshal(req.Messages[0].Content, &systemContent); err != nil {
		t.Fatalf("system content not plain text: %v", err)
	}
	var parts []map[string]any
	if err := json.Unmarshal(req.Messages[1].Content, &parts); err != nil {
		t.Fatalf("final content not multimodal: %v", err)
	}
	if len(parts) != 2 || parts[0]["type"] != "image_url" || parts[1]["type"] != "text" {
		t.Fatalf("multimodal parts = %v", parts)
	}
}

func TestGenerateModelOverride(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "other-model" {
			t.Errorf("model = %q, want override", req.Model)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"content": "ok"}}},
		})
	}))
	defer srv.Close()

	client := NewClient(Options{APIKey: "k", Endpoint: srv.URL, Model: "default-model"})
	if _, err := client.Generate(context.Background(), BuildTurns("i", nil, "d", ""), "other-model"); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
}

func TestGenerateFailureNormalization(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		handler http.HandlerFunc
		wantErr error
		kind    domain.FailureKind
	}{
		{
			name: "non success status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "quota exceeded", http.StatusTooManyRequests)
			},
			kind: domain.FailureStatus,
		},
		{
			name: "empty choices",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
			},
			kind: domain.FailureMalformedPayload,
		},
		{
			name: "blank completion",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]any{
					"choices": []map[string]any{{"message": map[string]any{"content": "  "}}},
				})
			},
			kind: domain.FailureMalformedPayload,
		},
		{
			name: "invalid body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("not json"))
			},
			kind: domain.FailureMalformedPayload,
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()
			client := NewClient(Options{APIKey: "k", Endpoint: srv.URL, Model: "m"})
			_, err := client.Generate(context.Background(), BuildTurns("i", nil, "d", ""), "")
			if !errors.Is(err, domain.ErrUnavailable) {
				t.Fatalf("error = %v, want ErrUnavailable", err)
			}
			var failure *domain.ProviderFailure
			if !errors.As(err, &failure) || failure.Kind != tc.kind {
				t.Fatalf("kind = %v, want %v", failure.Kind, tc.kind)
			}
		})
	}
}

func TestGenerateTransportFailure(t *testing.T) {
	t.Parallel()
	client := NewClient(Options{
		APIKey:   "k",
		Endpoint: "http://example.invalid",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		})},
	})
	_, err := client.Generate(context.Background(), BuildTurns("i", nil, "d", ""), "")
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable", err)
	}
}
