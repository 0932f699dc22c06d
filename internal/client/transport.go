package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

// Result is the completion payload handed to the embedding form. Thumbnail
// and duration are empty unless a future relay starts inspecting media.
type Result struct {
	URL          string
	ThumbnailURL string
	Duration     string
}

// Transport moves one file to storage. The two implementations mirror the two
// relay designs: RelayTransport buffers through the relay, DirectTransport
// mints a presigned URL and PUTs straight to the bucket.
type Transport interface {
	// Send transfers file and returns the completion payload. When
	// ReportsProgress is true, Send invokes report with the cumulative byte
	// count as the body is consumed; otherwise report is never called and the
	// uploader synthesizes progress.
	Send(ctx context.Context, file File, report func(bytesLoaded int64)) (*Result, error)
	ReportsProgress() bool
}

// RelayTransport uploads via POST {BaseURL}/upload as a multipart form. The
// transfer is a single buffered request, opaque to the caller, so it offers
// no genuine progress signal.
type RelayTransport struct {
	BaseURL    string
	HTTPClient *http.Client
}

func (t *RelayTransport) ReportsProgress() bool { return false }

// relayResponse is the relay's JSON body for both outcomes.
type relayResponse struct {
	Success      bool   `json:"success"`
	VideoURL     string `json:"video_url"`
	ThumbnailURL string `json:"thumbnail_url"`
	Duration     string `json:"duration"`
	Error        string `json:"error"`
}

func (t *RelayTransport) Send(ctx context.Context, file File, _ func(int64)) (*Result, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(file.Name)))
	hdr.Set("Content-Type", file.ContentType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := io.Copy(part, file.Body); err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.BaseURL+"/upload", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := httpClient(t.HTTPClient).Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload request: %w", err)
	}
	defer resp.Body.Close()

	var body relayResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("upload failed with status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("decode upload response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || !body.Success {
		msg := body.Error
		if msg == "" {
			msg = fmt.Sprintf("upload failed with status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("upload failed: %s", msg)
	}

	return &Result{
		URL:          body.VideoURL,
		ThumbnailURL: body.ThumbnailURL,
		Duration:     body.Duration,
	}, nil
}

func httpClient(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return http.DefaultClient
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
