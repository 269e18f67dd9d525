// Package submit sends a validated draft to the sheet generator.
package submit

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/omrsheet/internal/model"
)

// DefaultTimeout bounds one generator round trip.
const DefaultTimeout = 60 * time.Second

// ErrNotPDF is returned when the generator answers 2xx with something other
// than a PDF document.
var ErrNotPDF = errors.New("generator did not return a PDF")

// StatusError reports a non-2xx generator response. The generator rejects
// drafts with a redirect back to its form, so 3xx responses land here too.
type StatusError struct {
	StatusCode int
	Status     string
	Location   string
}

func (e *StatusError) Error() string {
	if e.Location != "" {
		return "generator returned " + e.Status + " (redirect to " + e.Location + ")"
	}
	return "generator returned " + e.Status
}

// Result is the generated document.
type Result struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Client posts drafts to a generator endpoint.
type Client struct {
	endpoint string
	http     *http.Client
	timeout  time.Duration
	log      *zap.Logger
}

// NewClient returns a Client for endpoint. A nil http client uses a zero
// http.Client. Redirects are never followed.
func NewClient(endpoint string, httpClient *http.Client, timeout time.Duration, logger *zap.Logger) *Client {
	hc := http.Client{}
	if httpClient != nil {
		hc = *httpClient
	}
	hc.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{endpoint: endpoint, http: &hc, timeout: timeout, log: logger}
}

// Submit sends cfg as a multipart form and returns the generated document.
func (c *Client) Submit(ctx context.Context, cfg model.DraftConfig) (Result, error) {
	if strings.TrimSpace(c.endpoint) == "" {
		return Result{}, errors.New("submit: endpoint is not configured")
	}
	body, contentType, err := Encode(cfg)
	if err != nil {
		return Result{}, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return Result{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("failed to reach generator: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	c.log.Info("generator responded",
		zap.String("endpoint", c.endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Location:   resp.Header.Get("Location"),
		}
	}
	contentType = resp.Header.Get("Content-Type")
	if mediaType, _, err := mime.ParseMediaType(contentType); err != nil || mediaType != "application/pdf" {
		return Result{}, fmt.Errorf("%w: content type %q", ErrNotPDF, contentType)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read generator response: %w", err)
	}
	return Result{
		Filename:    responseFilename(resp.Header.Get("Content-Disposition"), cfg.Institution),
		ContentType: contentType,
		Body:        data,
	}, nil
}

// Encode builds the multipart body for cfg.
func Encode(cfg model.DraftConfig) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fields := []struct {
		name  model.Field
		value string
	}{
		{model.FieldInstitution, strings.TrimSpace(cfg.Institution)},
		{model.FieldExamName, strings.TrimSpace(cfg.ExamName)},
		{model.FieldSubjects, strings.Join(cfg.Subjects, ",")},
		{model.FieldQuestions, strconv.Itoa(cfg.QuestionsPerSubject)},
		{model.FieldOptions, strconv.Itoa(cfg.NumOptions)},
	}
	for _, f := range fields {
		if err := w.WriteField(string(f.name), f.value); err != nil {
			return nil, "", fmt.Errorf("failed to encode %s: %w", f.name, err)
		}
	}
	if cfg.Logo != nil && cfg.Logo.Path != "" {
		if err := writeLogo(w, cfg.Logo); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func writeLogo(w *multipart.Writer, logo *model.Logo) error {
	f, err := os.Open(logo.Path)
	if err != nil {
		return fmt.Errorf("failed to open logo: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	part, err := w.CreateFormFile("logo", filepath.Base(logo.Path))
	if err != nil {
		return fmt.Errorf("failed to encode logo: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("failed to encode logo: %w", err)
	}
	return nil
}

// DefaultFilename is the download name used when the generator sends none.
func DefaultFilename(institution string) string {
	name := strings.ReplaceAll(strings.TrimSpace(institution), " ", "_")
	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r < 0x20 {
			return -1
		}
		return r
	}, name)
	if name == "" {
		name = "OMR"
	}
	return name + "_OMR_Sheet.pdf"
}

func responseFilename(disposition, institution string) string {
	if disposition != "" {
		if _, params, err := mime.ParseMediaType(disposition); err == nil {
			if name := filepath.Base(params["filename"]); name != "" && name != "." && name != "/" {
				return name
			}
		}
	}
	return DefaultFilename(institution)
}

// Save writes the result into dir and returns the file path.
func Save(dir string, res Result) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}
	path := filepath.Join(dir, res.Filename)
	if err := os.WriteFile(path, res.Body, 0o644); err != nil {
		return "", fmt.Errorf("failed to write sheet: %w", err)
	}
	return path, nil
}
