// Package extraction sends transcripts to the structured-extraction service
// (an n8n webhook in production) and validates what comes back against the
// document schema.
package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"vocal-assistant/internal/app/document"
	"vocal-assistant/internal/app/errors"
	"vocal-assistant/internal/app/model"
	"vocal-assistant/internal/config"
)

// maxResponseBody bounds how much of a response is read.
const maxResponseBody = 4 << 20

// Request is one extraction call. Source is the name of the text the
// transcript came from and is only echoed for traceability.
type Request struct {
	DocumentType model.DocumentType
	Text         string
	Source       string
}

// Extractor turns free text into a validated StructuredRecord.
type Extractor interface {
	Extract(ctx context.Context, req Request) (*model.StructuredRecord, error)
}

// Client is the HTTP Extractor. It never retries; see RetryingExtractor.
type Client struct {
	settings config.ExtractionSettings
	catalog  *document.Catalog
	http     *http.Client
	logger   *zap.Logger
}

type payload struct {
	DocumentType string `json:"document_type"`
	Text         string `json:"text"`
	Source       string `json:"source,omitempty"`
}

// NewClient creates a Client. httpClient may be nil.
func NewClient(settings config.ExtractionSettings, catalog *document.Catalog, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		settings: settings,
		catalog:  catalog,
		http:     httpClient,
		logger:   logger.Named("extraction"),
	}
}

// Extract posts the text to the endpoint of its document type and returns
// the validated record. Failures are *errors.ExtractionError of kind
// ServiceUnavailable (transport, status, unreadable body) or SchemaMismatch.
func (c *Client) Extract(ctx context.Context, req Request) (*model.StructuredRecord, error) {
	def, err := c.catalog.Lookup(req.DocumentType.String())
	if err != nil {
		return nil, err
	}
	docType := def.Type
	if strings.TrimSpace(req.Text) == "" {
		return nil, errors.RequiredField("extraction text")
	}
	endpoint, err := c.settings.Endpoint(docType.String())
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfig, err.Error())
	}

	body, err := json.Marshal(payload{DocumentType: docType.String(), Text: req.Text, Source: req.Source})
	if err != nil {
		return nil, err
	}

	if c.settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.settings.Timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, unavailable(docType, 0, errors.Wrap(err, "build request"))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if name, value := c.authHeader(); name != "" {
		httpReq.Header.Set(name, value)
	}

	start := time.Now()
	c.logger.Debug("posting text to extraction service", zap.String("endpoint", endpoint), zap.String("document_type", docType.String()), zap.Int("chars", len(req.Text)))

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, unavailable(docType, 0, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, unavailable(docType, resp.StatusCode, errors.Wrap(err, "read response"))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, unavailable(docType, resp.StatusCode, errors.Newf("unexpected status %s: %s", resp.Status, snippet(raw)))
	}

	obj, err := decodeObject(raw, def.Schema)
	if err != nil {
		return nil, unavailable(docType, resp.StatusCode, err)
	}

	fields, err := Validate(def, obj)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("extraction service answered", zap.Int("status", resp.StatusCode), zap.Duration("took", time.Since(start)))

	return &model.StructuredRecord{
		DocumentType: docType,
		Source:       req.Source,
		Fields:       fields,
		Raw:          json.RawMessage(raw),
	}, nil
}

// authHeader returns the configured auth header; a bare token sent as
// Authorization gets the Bearer scheme.
func (c *Client) authHeader() (string, string) {
	token := c.settings.AuthToken
	if token == "" {
		return "", ""
	}
	name := c.settings.AuthHeader
	if name == "" {
		name = "Authorization"
	}
	if strings.EqualFold(name, "Authorization") && !strings.Contains(token, " ") {
		token = "Bearer " + token
	}
	return name, token
}

// decodeObject accepts a JSON object, a one-element array of objects (n8n
// "all items" mode), a {"data": {...}} envelope, or any of these encoded as
// a JSON string.
func decodeObject(raw []byte, schema document.Schema) (map[string]any, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, errors.Wrapf(err, "malformed response %s", snippet(raw))
	}
	for depth := 0; depth < 4; depth++ {
		switch x := v.(type) {
		case []any:
			if len(x) != 1 {
				return nil, errors.Newf("malformed response: expected one item, got %d", len(x))
			}
			v = x[0]
			continue
		case string:
			var inner any
			if err := json.Unmarshal([]byte(x), &inner); err != nil {
				return nil, errors.Newf("malformed response: got a string, not an object")
			}
			v = inner
			continue
		case map[string]any:
			if data, ok := x["data"].(map[string]any); ok && !hasAnyField(x, schema) {
				v = data
				continue
			}
			return x, nil
		}
		break
	}
	return nil, errors.Newf("malformed response: expected a JSON object, got %s", snippet(raw))
}

func hasAnyField(obj map[string]any, schema document.Schema) bool {
	for _, f := range schema.Fields {
		if _, ok := obj[f.Name]; ok {
			return true
		}
	}
	return false
}

func unavailable(docType model.DocumentType, status int, err error) *errors.ExtractionError {
	return &errors.ExtractionError{
		Kind:         errors.ServiceUnavailable,
		DocumentType: docType.String(),
		StatusCode:   status,
		Err:          err,
	}
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	if s == "" {
		return "(empty body)"
	}
	return fmt.Sprintf("%q", s)
}
