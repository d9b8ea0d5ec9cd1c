package grobid

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/papersum/papersum/internal/doctree"
)

// Client talks to a GROBID instance, the external service that turns a raw
// PDF into structured TEI markup (sections, headings, paragraph text with
// page coordinates).
type Client struct {
	endpoint   string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient creates a GROBID client. endpoint is the full URL of the
// processFulltextDocument route.
func NewClient(endpoint string, timeout time.Duration, log *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Endpoint returns the configured service URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// StructureDocument uploads raw document bytes and parses the returned TEI
// markup into a document tree. Any transport or service failure is returned
// as an error; callers decide whether to fall back to local extraction.
func (c *Client) StructureDocument(ctx context.Context, filename string, data []byte) (*doctree.Tree, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("input", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}
	// Coordinates let the highlighter map matches back to PDF regions.
	if err := mw.WriteField("generateIDs", "1"); err != nil {
		return nil, fmt.Errorf("write field: %w", err)
	}
	if err := mw.WriteField("teiCoordinates", "p"); err != nil {
		return nil, fmt.Errorf("write field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/xml")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("grobid request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, fmt.Errorf("read grobid response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("grobid status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	tree, err := ParseTEI(respBody)
	if err != nil {
		return nil, fmt.Errorf("parse tei: %w", err)
	}

	c.log.Info("structured document via grobid",
		"filename", filename,
		"sections", len(tree.Children),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return tree, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
