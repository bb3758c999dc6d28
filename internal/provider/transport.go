package provider

import (
	"bytes"
	"io"
	"net/http"
	"regexp"
	"strings"

	"lexi-backend/pkg/logger"

	"github.com/sirupsen/logrus"
)

var sensitiveHeaders = []string{"authorization", "x-api-key", "x-auth-token", "cookie"}

var sensitiveJSONField = regexp.MustCompile(`"(api_key|apiKey|password|secret|token)"\s*:\s*"[^"]*"`)

// DebugTransport logs outgoing model requests with credentials redacted.
// When disabled it only forwards.
type DebugTransport struct {
	base    http.RoundTripper
	name    string
	enabled bool
}

func NewDebugTransport(base http.RoundTripper, name string, enabled bool) *DebugTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &DebugTransport{base: base, name: name, enabled: enabled}
}

func (t *DebugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.enabled && req.Method == http.MethodPost {
		t.logRequest(req)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil && t.enabled {
		logger.WithFields(logrus.Fields{"provider": t.name}).Errorf("request failed: %v", err)
	}
	return resp, err
}

func (t *DebugTransport) logRequest(req *http.Request) {
	entry := logger.WithFields(logrus.Fields{
		"provider": t.name,
		"method":   req.Method,
		"url":      req.URL.String(),
		"headers":  redactHeaders(req.Header),
	})

	if req.Body == nil {
		entry.Debug("model request")
		return
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		entry.Errorf("read request body: %v", err)
		return
	}
	req.Body = io.NopCloser(bytes.NewReader(body))

	entry.WithField("body", RedactJSON(string(body))).Debug("model request")
}

func redactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		if isSensitiveHeader(name) {
			out[name] = "[REDACTED]"
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

func isSensitiveHeader(name string) bool {
	for _, s := range sensitiveHeaders {
		if strings.EqualFold(name, s) {
			return true
		}
	}
	return false
}

// RedactJSON blanks the values of credential-like fields in a JSON body.
func RedactJSON(body string) string {
	return sensitiveJSONField.ReplaceAllString(body, `"$1": "[REDACTED]"`)
}
