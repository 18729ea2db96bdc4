package middleware

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

type localeContextKey struct{}

// LocaleKey addresses the detected locale in the request context.
var LocaleKey = localeContextKey{}

// supportedLocales drives Accept-Language matching; Chinese is the contract
// language of the generation prompts, so it comes first.
var supportedLocales = []language.Tag{
	language.Chinese,
	language.English,
}

var localeMatcher = language.NewMatcher(supportedLocales)

// I18N detects the request locale from the X-Locale header, then
// Accept-Language, then the configured default. The locale selects the
// system instruction language for asset generation.
func I18N(defaultLocale string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := detectLocale(r, defaultLocale)
			ctx := context.WithValue(r.Context(), LocaleKey, locale)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LocaleFromContext returns the detected locale, or empty when the
// middleware did not run.
func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(LocaleKey).(string); ok {
		return v
	}
	return ""
}

func detectLocale(r *http.Request, fallback string) string {
	if v := strings.TrimSpace(r.Header.Get("X-Locale")); v != "" {
		return normalizeLocale(v, fallback)
	}
	if header := r.Header.Get("Accept-Language"); header != "" {
		if tags, _, err := language.ParseAcceptLanguage(header); err == nil && len(tags) > 0 {
			_, idx, _ := localeMatcher.Match(tags...)
			if idx == 1 {
				return "en"
			}
			return "zh"
		}
	}
	return normalizeLocale(fallback, "zh")
}

func normalizeLocale(v, fallback string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	switch {
	case strings.HasPrefix(v, "zh"):
		return "zh"
	case strings.HasPrefix(v, "en"):
		return "en"
	case fallback != "" && fallback != v:
		return normalizeLocale(fallback, "")
	default:
		return "zh"
	}
}
