package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// DirectTransport asks the relay for a presigned PUT URL and uploads straight
// to the bucket, bypassing the relay's bandwidth. Because it feeds the PUT
// body itself it can observe genuine byte-level progress, and a cancelled
// context aborts the transfer mid-flight.
type DirectTransport struct {
	BaseURL    string
	HTTPClient *http.Client
}

func (t *DirectTransport) ReportsProgress() bool { return true }

type presignResponse struct {
	Success      bool   `json:"success"`
	PresignedURL string `json:"presignedUrl"`
	PublicURL    string `json:"publicUrl"`
	Error        string `json:"error"`
}

func (t *DirectTransport) Send(ctx context.Context, file File, report func(int64)) (*Result, error) {
	presigned, public, err := t.mintURL(ctx, file)
	if err != nil {
		return nil, err
	}

	body := &countingReader{r: file.Body, report: report}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, presigned, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", file.ContentType)
	// Declare the length up front so the PUT is not chunked; S3-compatible
	// stores reject chunked presigned PUTs.
	req.ContentLength = file.Size

	resp, err := httpClient(t.HTTPClient).Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrAborted, ctx.Err())
		}
		return nil, fmt.Errorf("direct upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("direct upload failed: %s; body: %s", resp.Status, string(b))
	}

	return &Result{URL: public}, nil
}

func (t *DirectTransport) mintURL(ctx context.Context, file File) (presigned, public string, err error) {
	payload, err := json.Marshal(map[string]string{
		"filename":    file.Name,
		"contentType": file.ContentType,
	})
	if err != nil {
		return "", "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		t.BaseURL+"/generate-upload-url", bytes.NewReader(payload))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient(t.HTTPClient).Do(req)
	if err != nil {
		return "", "", fmt.Errorf("mint upload url: %w", err)
	}
	defer resp.Body.Close()

	var body presignResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", "", fmt.Errorf("decode presign response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !body.Success {
		msg := body.Error
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return "", "", fmt.Errorf("mint upload url failed: %s", msg)
	}

	return body.PresignedURL, body.PublicURL, nil
}

// countingReader reports the cumulative number of bytes read, which is
// monotonically non-decreasing by construction.
type countingReader struct {
	r      io.Reader
	n      int64
	report func(int64)
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.n += int64(n)
		if c.report != nil {
			c.report(c.n)
		}
	}
	return n, err
}
