// Package upload implements the one-shot media upload exchange used
// before a media message send or a profile photo change.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Error reports a failed upload. The triggering send or save must be
// aborted by the caller; no store state is committed.
type Error struct {
	Cause error
}

func (e *Error) Error() string { return fmt.Sprintf("upload failed: %v", e.Cause) }

func (e *Error) Unwrap() error { return e.Cause }

// Uploader posts files to the backend's upload endpoint.
type Uploader struct {
	endpoint string
	client   *http.Client
}

// New creates an uploader for the given endpoint URL.
func New(endpoint string) *Uploader {
	return &Uploader{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type uploadResponse struct {
	FileURL string `json:"fileUrl"`
}

// Upload sends the file as the multipart field "file" and returns the
// URL the server stored it under.
func (u *Uploader) Upload(ctx context.Context, filename string, file io.Reader) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", &Error{Cause: err}
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", &Error{Cause: err}
	}
	if err := writer.Close(); err != nil {
		return "", &Error{Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, &body)
	if err != nil {
		return "", &Error{Cause: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := u.client.Do(req)
	if err != nil {
		return "", &Error{Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &Error{Cause: fmt.Errorf("server returned status %d", resp.StatusCode)}
	}

	var result uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &Error{Cause: fmt.Errorf("failed to decode response: %w", err)}
	}
	if result.FileURL == "" {
		return "", &Error{Cause: fmt.Errorf("server returned empty fileUrl")}
	}

	log.Debug().Str("filename", filename).Str("url", result.FileURL).Msg("File uploaded")
	return result.FileURL, nil
}
