package imagegen

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"server/internal/domain"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestResolveEndpoint(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name          string
		imageEndpoint string
		textEndpoint  string
		want          string
	}{
		{
			name:          "dedicated endpoint wins",
			imageEndpoint: "https://custom.example.com/images",
			textEndpoint:  "https://ark.cn-beijing.volces.com/api/v3/chat/completions",
			want:          "https://custom.example.com/images",
		},
		{
			name:         "derived from text endpoint",
			textEndpoint: "https://ark.cn-beijing.volces.com/api/v3/chat/completions",
			want:         "https://ark.cn-beijing.volces.com/api/v3/images/generations",
		},
		{
			name:         "underivable text endpoint falls back to default",
			textEndpoint: "https://other.example.com/v1/complete",
			want:         defaultImageEndpoint,
		},
		{
			name: "nothing configured",
			want: defaultImageEndpoint,
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := resolveEndpoint(tc.imageEndpoint, tc.textEndpoint); got != tc.want {
				t.Fatalf("resolveEndpoint = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestComposeRequestShape(t *testing.T) {
	t.Parallel()
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"url": "https://cdn.example.com/hero.png"}},
		})
	}))
	defer srv.Close()

	client := NewClient(Options{APIKey: "k", Endpoint: srv.URL, Model: "img-model"})
	url, err := client.Compose(context.Background(), domain.CompositionRequest{
		SourceImageRef:  "https://example.com/src.png",
		InstructionText: "make it shine",
		SizeTag:         "2048x2048",
	})
	if err != nil {
		t.Fatalf("Compose returned error: %v", err)
	}
	if url != "https://cdn.example.com/hero.png" {
		t.Fatalf("url = %q", url)
	}
	for key, want := range map[string]any{
		"model":                       "img-model",
		"prompt":                      "make it shine",
		"image":                       "https://example.com/src.png",
		"sequential_image_generation": "disabled",
		"response_format":             "url",
		"size":                        "2048x2048",
		"stream":                      false,
		"watermark":                   true,
	} {
		if got := captured[key]; got != want {
			t.Fatalf("request[%q] = %v, want %v", key, got, want)
		}
	}
}

func TestComposeToleratesTopLevelURL(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"url": "https://cdn.example.com/flat.png"})
	}))
	defer srv.Close()

	client := NewClient(Options{APIKey: "k", Endpoint: srv.URL, Model: "m"})
	url, err := client.Compose(context.Background(), domain.CompositionRequest{SourceImageRef: "s", InstructionText: "i"})
	if err != nil {
		t.Fatalf("Compose returned error: %v", err)
	}
	if url != "https://cdn.example.com/flat.png" {
		t.Fatalf("url = %q", url)
	}
}

func TestComposeWithoutCredentialsMakesNoNetworkCall(t *testing.T) {
	t.Parallel()
	client := NewClient(Options{
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			t.Fatal("network call issued despite missing credentials")
			return nil, nil
		})},
	})
	_, err := client.Compose(context.Background(), domain.CompositionRequest{SourceImageRef: "s", InstructionText: "i"})
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Fatalf("error = %v, want ErrUnavailable", err)
	}
}

func TestComposeFailureNormalization(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non success status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "moderation rejected", http.StatusBadRequest)
			},
		},
		{
			name: "success without url in either shape",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{{"b64_json": "ignored"}}})
			},
		},
		{
			name: "invalid body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("not json"))
			},
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()
			client := NewClient(Options{APIKey: "k", Endpoint: srv.URL, Model: "m"})
			_, err := client.Compose(context.Background(), domain.CompositionRequest{SourceImageRef: "s", InstructionText: "i"})
			if !errors.Is(err, domain.ErrUnavailable) {
				t.Fatalf("error = %v, want ErrUnavailable", err)
			}
		})
	}
}
