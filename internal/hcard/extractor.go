package hcard

import (
	"context"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding/htmlindex"
)

// Extractor fetches an identity document and resolves requested profile
// fields against its first vcard element. It never reports errors upward:
// fetch failures, parse failures, and missing vcards all yield empty
// results, logged and absorbed here.
type Extractor struct {
	fetcher Fetcher
	logger  *slog.Logger
}

func NewExtractor(fetcher Fetcher, logger *slog.Logger) *Extractor {
	return &Extractor{fetcher: fetcher, logger: logger}
}

// Profile returns displayable (label, value) pairs for the confirmation
// page, or nil when no profile data could be extracted.
func (e *Extractor) Profile(ctx context.Context, documentURL string, required, optional []string) []ProfileField {
	card, ok := e.locate(ctx, documentURL)
	if !ok {
		return nil
	}
	return card.Profile(required, optional)
}

// Values returns the raw canonical field map for the response extension, or
// nil when nothing resolved.
func (e *Extractor) Values(ctx context.Context, documentURL string, fields []string) map[string]string {
	card, ok := e.locate(ctx, documentURL)
	if !ok {
		return nil
	}
	return card.Values(fields)
}

func (e *Extractor) locate(ctx context.Context, documentURL string) (*Card, bool) {
	header, body, err := e.fetcher.Fetch(ctx, documentURL)
	if err != nil {
		e.logger.Debug("profile document fetch failed", "url", documentURL, "error", err)
		return nil, false
	}

	root, err := html.Parse(strings.NewReader(decodeBody(body, header)))
	if err != nil {
		e.logger.Debug("profile document parse failed", "url", documentURL, "error", err)
		return nil, false
	}

	card, ok := FindCard(root)
	if !ok {
		e.logger.Debug("no vcard element in profile document", "url", documentURL)
	}
	return card, ok
}

// decodeBody converts the document to UTF-8 using the charset hint from the
// Content-Type header, defaulting to UTF-8 and passing bytes through
// unchanged when the charset is unknown or decoding fails. The follow-up
// HTML parse tolerates stray invalid sequences.
func decodeBody(body []byte, header http.Header) string {
	charset := "utf-8"
	if _, params, err := mime.ParseMediaType(header.Get("Content-Type")); err == nil {
		if v := params["charset"]; v != "" {
			charset = v
		}
	}

	enc, err := htmlindex.Get(strings.Trim(charset, `'" `))
	if err != nil {
		return string(body)
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return string(body)
	}
	return string(decoded)
}
