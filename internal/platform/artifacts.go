package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/hay-kot/reviewdesk/internal/core/review"
)

// Diff returns the unified diff the session reviews.
func (c *Client) Diff(ctx context.Context, ref review.Ref) (string, error) {
	if ref.IsToken() {
		return c.getText(ctx, candidatePath(ref.Token)+"/diff")
	}
	return c.getText(ctx, fmt.Sprintf("/artifacts/%d_diff.patch", ref.ID))
}

// Report returns the plain text evaluation report.
func (c *Client) Report(ctx context.Context, id int64) (string, error) {
	return c.getText(ctx, fmt.Sprintf("/artifacts/%d_report.txt", id))
}

// ReportPDFURL is the direct download link of the PDF report. The client
// never fetches it.
func (c *Client) ReportPDFURL(id int64) string {
	return c.url(sessionPath(id)+"/report/pdf", nil)
}

// UploadMR uploads a zipped merge request and creates a session for it.
func (c *Client) UploadMR(ctx context.Context, filename string, r io.Reader) (review.Created, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".zip") {
		return review.Created{}, fmt.Errorf("upload mr: %s is not a .zip archive", filepath.Base(filename))
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return review.Created{}, fmt.Errorf("upload mr: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return review.Created{}, fmt.Errorf("upload mr: read archive: %w", err)
	}
	if err := mw.Close(); err != nil {
		return review.Created{}, fmt.Errorf("upload mr: %w", err)
	}

	data, err := c.send(ctx, request{
		method: http.MethodPost,
		path:   "/upload-mr",
		body:   &buf,
		ctype:  mw.FormDataContentType(),
	})
	if err != nil {
		return review.Created{}, err
	}

	var resp struct {
		SessionID   flexInt `json:"session_id"`
		AccessToken string  `json:"access_token"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return review.Created{}, fmt.Errorf("decode upload mr: %w", err)
	}
	if !resp.SessionID.Set {
		return review.Created{}, &MissingFieldError{Op: "upload mr", Field: "session_id"}
	}
	return review.Created{SessionID: resp.SessionID.Value, AccessToken: resp.AccessToken}, nil
}
