package middleware

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"unicode/utf8"
)

// Input validation and sanitization utilities

const (
	MaxFocusLen        = 500
	MaxDocumentTypeLen = 32
	maxURLLen          = 2048
)

// ValidateURL validates and sanitizes URLs
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("URL cannot be empty")
	}
	if len(rawURL) > maxURLLen {
		return fmt.Errorf("URL is too long (max %d characters)", maxURLLen)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: %s (allowed: http, https)", u.Scheme)
	}
	if u.User != nil {
		return fmt.Errorf("credentials in URL are not allowed")
	}

	// SSRF protection
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return fmt.Errorf("URL must have a host")
	}
	if host == "localhost" || strings.HasSuffix(host, ".localhost") || strings.HasSuffix(host, ".internal") {
		return fmt.Errorf("localhost/internal hosts are not allowed")
	}
	if ip := net.ParseIP(host); ip != nil {
		if ip.IsLoopback() || ip.IsUnspecified() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
			return fmt.Errorf("localhost/internal IPs are not allowed")
		}
		if ip.IsPrivate() {
			return fmt.Errorf("private IP ranges are not allowed")
		}
	}

	return nil
}

// ValidateFocus bounds the free-text focus hint of image requests.
func ValidateFocus(focus string) error {
	if utf8.RuneCountInString(focus) > MaxFocusLen {
		return fmt.Errorf("focus is too long (max %d characters)", MaxFocusLen)
	}
	return nil
}

// ValidateDocumentType accepts short identifiers such as pdf, txt or markdown.
func ValidateDocumentType(t string) error {
	if t == "" {
		return nil // Optional field
	}
	if len(t) > MaxDocumentTypeLen {
		return fmt.Errorf("documentType is too long (max %d characters)", MaxDocumentTypeLen)
	}
	for _, r := range t {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_' || r == '.' || r == '/') {
			return fmt.Errorf("invalid documentType: %q", t)
		}
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}
