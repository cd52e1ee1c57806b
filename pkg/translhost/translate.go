package translhost

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/go-resty/resty/v2"
)

// Translator sends translation requests to an Ollama or OpenAI-compatible
// backend and normalizes whatever shape of reply comes back. One round trip
// is fully synchronous and bounded by RequestTimeoutSec.
type Translator struct {
	logger Logger
	http   *resty.Client
}

// NewTranslator creates a translator logging through the given logger.
func NewTranslator(logger Logger) *Translator {
	return &Translator{
		logger: logger,
		http:   resty.New().SetTimeout(RequestTimeoutSec * time.Second),
	}
}

// generateRequest is the POST body understood by Ollama's /api/generate and
// accepted well enough by OpenAI-style completion endpoints.
type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options samplingOptions `json:"options"`
}

type samplingOptions struct {
	Temperature   float64 `json:"temperature"`
	TopP          float64 `json:"top_p"`
	TopK          int     `json:"top_k"`
	RepeatPenalty float64 `json:"repeat_penalty"`
}

// Translate performs one translation round trip. It never panics and never
// returns a raw transport failure to the caller: every exit path yields a
// Result carrying either the translated text or a distinct error message.
func (t *Translator) Translate(text string, ctx *Context, settings *Settings) Result {
	prompt := renderPrompt(settings.promptTemplate(), text, ctx)

	endpoint, err := resolveEndpoint(settings.apiURL(), settings.APIType)
	if err != nil {
		t.logger.Errorf("translate: bad API URL %q: %v", settings.apiURL(), err)
		return Result{Err: fmt.Sprintf("Invalid API URL %q: %v", settings.apiURL(), err)}
	}

	body := generateRequest{
		Model:  settings.model(),
		Prompt: prompt,
		Stream: false,
		Options: samplingOptions{
			Temperature:   settings.temperature(),
			TopP:          settings.topP(),
			TopK:          settings.topK(),
			RepeatPenalty: settings.repeatPenalty(),
		},
	}

	t.logger.Debugf("translate: POST %s model=%s", endpoint, body.Model)
	resp, err := t.http.R().
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(endpoint)
	if err != nil {
		t.logger.Errorf("translate: request to %s failed: %v", endpoint, err)
		return Result{Err: transportError(endpoint, err)}
	}

	if resp.StatusCode() != http.StatusOK {
		apiErr := fmt.Sprintf("Ollama API error: %s: %s", resp.Status(), strings.TrimSpace(resp.String()))
		t.logger.Errorf("translate: %s", apiErr)
		return Result{Err: apiErr}
	}

	translated, shape := extractTranslation(resp.Body())
	if shape == shapeRaw {
		t.logger.Warnf("translate: unrecognized response shape from %s, falling back to raw body", endpoint)
	}
	final := finalSegment(translated)
	t.logger.Infof("translate: %d chars in, %d chars out", len(text), len(final))
	return Result{Text: final}
}

// renderPrompt substitutes the {text}, {context_before} and {context_after}
// placeholders into the prompt template.
func renderPrompt(template, text string, ctx *Context) string {
	before, after := "", ""
	if ctx != nil {
		before, after = ctx.Before, ctx.After
	}
	return strings.NewReplacer(
		"{text}", text,
		"{context_before}", before,
		"{context_after}", after,
	).Replace(template)
}

// resolveEndpoint parses the configured API URL into scheme, host, port and
// base path, and rebuilds the full request URL with the resolved path.
func resolveEndpoint(rawURL, apiType string) (string, error) {
	raw := rawURL
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("no host in URL")
	}

	scheme := u.Scheme
	port := u.Port()
	if port == "" {
		if scheme == "https" {
			port = "443"
		} else {
			port = "80"
		}
	}

	path := resolveRequestPath(u.EscapedPath(), apiType, rawURL)
	return fmt.Sprintf("%s://%s:%s%s", scheme, u.Hostname(), port, path), nil
}

// resolveRequestPath picks the request path for a configured base path. This
// is a best-effort heuristic, not a guarantee: a bare host gets the native
// /api/generate, an explicit generate/completions path is trusted as-is, and
// anything else gets a suffix appended based on the declared apiType. URLs
// that merely look OpenAI-compatible (they mention "openai" or "/v1") still
// get the native suffix unless apiType says "openai".
func resolveRequestPath(basePath, apiType, rawURL string) string {
	switch {
	case basePath == "" || basePath == "/":
		return "/api/generate"
	case strings.HasSuffix(basePath, "/generate") || strings.HasSuffix(basePath, "/completions"):
		return basePath
	case apiType == APITypeOpenAI:
		return joinPath(basePath, "chat/completions")
	case strings.Contains(rawURL, "openai") || strings.Contains(rawURL, "/v1"):
		return joinPath(basePath, "generate")
	default:
		return joinPath(basePath, "generate")
	}
}

func joinPath(basePath, suffix string) string {
	return strings.TrimSuffix(basePath, "/") + "/" + suffix
}

// responseShape tags which candidate shape a backend reply matched.
type responseShape int

const (
	shapeNative responseShape = iota // top-level "response" field
	shapeChat                        // choices[0].message.content
	shapeLegacy                      // choices[0].text
	shapeRaw                         // nothing matched, raw body passthrough
)

// backendReply covers the response shapes of native Ollama and
// OpenAI-compatible backends. Pointer fields keep field presence
// distinguishable from an empty value.
type backendReply struct {
	Response *string `json:"response"`
	Choices  []struct {
		Message *struct {
			Content string `json:"content"`
		} `json:"message"`
		Text *string `json:"text"`
	} `json:"choices"`
}

// extractTranslation pulls the translated text out of a 200 response body,
// matching candidate shapes in a fixed precedence order: native, then
// chat-completion, then legacy completion, then the raw body as a last
// resort.
func extractTranslation(body []byte) (string, responseShape) {
	var reply backendReply
	if err := json.Unmarshal(body, &reply); err == nil {
		switch {
		case reply.Response != nil:
			return *reply.Response, shapeNative
		case len(reply.Choices) > 0 && reply.Choices[0].Message != nil:
			return reply.Choices[0].Message.Content, shapeChat
		case len(reply.Choices) > 0 && reply.Choices[0].Text != nil:
			return *reply.Choices[0].Text, shapeLegacy
		}
	}
	return string(body), shapeRaw
}

// finalSegment trims the extracted text and, when the backend emitted a
// double-newline-delimited structure, keeps only the final segment. This
// drops any reasoning preamble some models produce ahead of the answer.
func finalSegment(text string) string {
	trimmed := strings.TrimSpace(text)
	if idx := strings.LastIndex(trimmed, "\n\n"); idx >= 0 {
		return strings.TrimSpace(trimmed[idx+2:])
	}
	return trimmed
}

// transportError maps a failed round trip to a distinct, user-facing error
// message. The full error is logged separately by the caller.
func transportError(endpoint string, err error) string {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return fmt.Sprintf("Could not resolve backend host %q", dnsErr.Name)
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return fmt.Sprintf("Connection refused by %s, is the backend running?", endpoint)
	}
	return fmt.Sprintf("Translation request failed: %v", err)
}
