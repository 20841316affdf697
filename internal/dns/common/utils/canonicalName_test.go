package utils

import (
	"strings"
	"testing"
)

func TestCanonicalDNSName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "simple domain without trailing dot", input: "example.com", expected: "example.com"},
		{name: "simple domain with trailing dot", input: "example.com.", expected: "example.com"},
		{name: "uppercase domain", input: "EXAMPLE.COM", expected: "example.com"},
		{name: "mixed case domain", input: "ExAmPlE.CoM", expected: "example.com"},
		{name: "domain with surrounding whitespace", input: "  example.com  ", expected: "example.com"},
		{name: "domain with tabs and spaces", input: "\t example.com \t", expected: "example.com"},
		{name: "deep subdomain with mixed case", input: "API.Service.EXAMPLE.com.", expected: "api.service.example.com"},
		{name: "multiple trailing dots", input: "example.com..", expected: "example.com"},
		{name: "wildcard owner", input: "*.Example.COM.", expected: "*.example.com"},
		{name: "root domain", input: ".", expected: ""},
		{name: "root domain with whitespace", input: " . ", expected: ""},
		{name: "empty string", input: "", expected: ""},
		{name: "whitespace only", input: " \n \t ", expected: ""},
		{name: "single label domain", input: " LOCALHOST ", expected: "localhost"},
		{name: "IDN domain (ASCII form)", input: "xn--nxasmq6b.xn--j6w193g", expected: "xn--nxasmq6b.xn--j6w193g"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanonicalDNSName(tt.input)
			if got != tt.expected {
				t.Errorf("CanonicalDNSName(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCanonicalDNSName_Properties(t *testing.T) {
	t.Run("idempotent behavior", func(t *testing.T) {
		for _, input := range []string{"example.com", "EXAMPLE.COM.", "  www.example.com  ", "localhost", "."} {
			first := CanonicalDNSName(input)
			second := CanonicalDNSName(first)
			if first != second {
				t.Errorf("CanonicalDNSName is not idempotent for input %q: first=%q, second=%q", input, first, second)
			}
		}
	})

	t.Run("always lowercase output", func(t *testing.T) {
		for _, input := range []string{"EXAMPLE.COM", "WwW.ExAmPlE.CoM", "LOCALHOST"} {
			got := CanonicalDNSName(input)
			if got != strings.ToLower(got) {
				t.Errorf("CanonicalDNSName(%q) = %q, expected lowercase output", input, got)
			}
		}
	})

	t.Run("never ends with a dot", func(t *testing.T) {
		for _, input := range []string{"example.com.", "www.example.com..", "."} {
			if got := CanonicalDNSName(input); strings.HasSuffix(got, ".") {
				t.Errorf("CanonicalDNSName(%q) = %q, expected no trailing dot", input, got)
			}
		}
	})
}

func TestPresentationDNSName(t *testing.T) {
	tests := map[string]string{
		"example.com":   "example.com.",
		"Example.COM.":  "example.com.",
		"":              ".",
		".":             ".",
		"*.example.com": "*.example.com.",
	}
	for input, want := range tests {
		if got := PresentationDNSName(input); got != want {
			t.Errorf("PresentationDNSName(%q) = %q, want %q", input, got, want)
		}
	}
}
