package helpers

import (
	"strings"
	"testing"
)

func TestCanonicalURL(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "defaults https and cleans path",
			in:   "Coindesk.com/markets/../tech/hyperliquid",
			want: "https://coindesk.com/tech/hyperliquid",
		},
		{
			name: "removes default port and tracking params",
			in:   "http://news.example.com:80/article?id=123&utm_source=rss#section",
			want: "http://news.example.com/article?id=123",
		},
		{
			name: "sorts query parameters",
			in:   "https://example.com/post?b=2&a=1&fbclid=xyz",
			want: "https://example.com/post?a=1&b=2",
		},
		{
			name: "handles schemeless url with double slash",
			in:   "//blog.example.com/post/42?utm_medium=email",
			want: "https://blog.example.com/post/42",
		},
		{
			name: "strips twitter share suffix",
			in:   "https://x.com/hyperliquid/status/1?s=46&t=abc",
			want: "https://x.com/hyperliquid/status/1?t=abc",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := CanonicalURL(tt.in)
			if err != nil {
				t.Fatalf("CanonicalURL() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("CanonicalURL() got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCanonicalURLErrors(t *testing.T) {
	t.Parallel()
	if _, err := CanonicalURL(""); err == nil {
		t.Fatalf("expected error for empty input")
	}
	if _, err := CanonicalURL("   "); err == nil {
		t.Fatalf("expected error for blank input")
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	t.Parallel()
	a := Fingerprint("vault strategies", "10")
	b := Fingerprint("vault strategies", "10")
	if a != b {
		t.Fatalf("fingerprint not deterministic: %s != %s", a, b)
	}
	if Fingerprint("ab", "c") == Fingerprint("a", "bc") {
		t.Fatalf("fingerprint must separate parts")
	}
	if !strings.EqualFold(a, strings.ToLower(a)) {
		t.Fatalf("expected lowercase hex digest")
	}
}
