package logging

import (
	"log/slog"
	"regexp"
)

// credentialPatterns match things that must never appear in logs: raw
// glow API keys (43 base64url characters) and bearer tokens.
var credentialPatterns = []struct {
	regex       *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`\b[A-Za-z0-9_-]{43}\b`), "***"},
	{regexp.MustCompile(`Bearer\s+[A-Za-z0-9\-._~+/]+=*`), "Bearer ***"},
}

// redactAttr is a slog ReplaceAttr hook that scrubs credential-shaped
// strings from attribute values.
func redactAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Value.Kind() != slog.KindString {
		return a
	}
	a.Value = slog.StringValue(Redact(a.Value.String()))
	return a
}

// Redact scrubs credential-shaped substrings from s.
func Redact(s string) string {
	for _, p := range credentialPatterns {
		s = p.regex.ReplaceAllString(s, p.replacement)
	}
	return s
}
