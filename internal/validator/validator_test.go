package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"example.com", "http://example.com"},
		{"www.example.com", "http://www.example.com"},
		{"https://example.com", "https://example.com"},
		{"http://example.com", "http://example.com"},
		{"  example.com  ", "http://example.com"},
		{"HTTPS://Example.com", "HTTPS://Example.com"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestIsValidURL(t *testing.T) {
	valid := []string{
		"http://example.com",
		"https://example.com",
		"https://www.example.com/path",
		"http://example.com:8080/path?query=value",
		"https://sub.domain.example.com/path#fragment",
		"example.com",
		"  example.com/a/b  ",
		"http://localhost:3000/dashboard",
		"http://192.168.1.10/admin",
		"HTTPS://EXAMPLE.COM",
		"https://my-site.example.org",
		"http://example.com/pa%20th",
		"http://example.com:65535",
	}
	for _, u := range valid {
		assert.True(t, IsValidURL(u), "IsValidURL(%q) devrait être vrai", u)
	}

	invalid := []string{
		"",
		"   ",
		"not-a-url",
		"ftp://example.com",
		"javascript:alert('xss')",
		"JavaScript:alert(1)",
		"data:text/html,<script>alert('xss')</script>",
		"file:///etc/passwd",
		"http://-bad-.example.com",
		"http://exa mple.com",
		"http://",
		"https://.example.com",
		"http://999.1.1.1",
		"http://10.0.0",
		"http://example.com/pa th",
		"http://example.com/a?q=x\ty",
		"http://example.com:99999",
		"http://example.com:0",
		"http://example.com:65536/path",
		"http://example.com:port",
		"http://" + strings.Repeat("a", MaxURLLength) + ".com",
	}
	for _, u := range invalid {
		assert.False(t, IsValidURL(u), "IsValidURL(%q) devrait être faux", u)
	}
}

func TestIsValidAlias(t *testing.T) {
	valid := []string{"abc", "abc123", "my-link", "my_link", "ABC123def", strings.Repeat("a", 50), "  my-link  "}
	for _, a := range valid {
		assert.True(t, IsValidAlias(a), "IsValidAlias(%q) devrait être vrai", a)
	}

	invalid := []string{"", "  ", "ab", strings.Repeat("a", 51), "abc def", "abc@def", "abc.def", "café"}
	for _, a := range invalid {
		assert.False(t, IsValidAlias(a), "IsValidAlias(%q) devrait être faux", a)
	}
}
