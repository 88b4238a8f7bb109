package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// DefaultTranslateURL is the public Google Translate endpoint used by browser widgets.
const DefaultTranslateURL = "https://translate.googleapis.com/translate_a/single"

// TranslateOptions configures a TranslateClient. Zero values pick the defaults.
type TranslateOptions struct {
	BaseURL    string
	SourceLang string // "auto" lets the service detect it
	Timeout    time.Duration
	UserAgent  string
}

func (o *TranslateOptions) defaults() {
	if o.BaseURL == "" {
		o.BaseURL = DefaultTranslateURL
	}
	if o.SourceLang == "" {
		o.SourceLang = "auto"
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.UserAgent == "" {
		o.UserAgent = "meld/1.0"
	}
}

// StatusError is returned when the service answers with a non-2xx status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("translate: upstream status %d: %s", e.Code, e.Body)
}

// TranslateClient calls the Google Translate web API over HTTP.
type TranslateClient struct {
	baseURL   string
	source    string
	userAgent string
	do        func(*http.Request) (*http.Response, error)
}

// NewTranslateClient creates a client with its own http.Client bounded by opts.Timeout.
func NewTranslateClient(opts TranslateOptions) *TranslateClient {
	opts.defaults()
	hc := &http.Client{Timeout: opts.Timeout}
	return &TranslateClient{
		baseURL:   opts.BaseURL,
		source:    opts.SourceLang,
		userAgent: opts.UserAgent,
		do:        hc.Do,
	}
}

// Translate returns text translated into target. Blank input is returned as is.
func (c *TranslateClient) Translate(ctx context.Context, text, target string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", c.source)
	q.Set("tl", target)
	q.Set("dt", "t")
	q.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("translate: build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("translate: read response: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		return "", &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return decodeTranslation(body)
}

// decodeTranslation extracts the translated segments from a response shaped like
// [[["Bonjour le monde","Hello world",null,null,1], ...], null, "en", ...].
func decodeTranslation(body []byte) (string, error) {
	var top []json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return "", fmt.Errorf("translate: decode response: %w", err)
	}
	if len(top) == 0 {
		return "", fmt.Errorf("translate: empty response")
	}
	var segments [][]any
	if err := json.Unmarshal(top[0], &segments); err != nil {
		return "", fmt.Errorf("translate: decode segments: %w", err)
	}

	var b strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		if s, ok := seg[0].(string); ok {
			b.WriteString(s)
		}
	}
	return b.String(), nil
}
