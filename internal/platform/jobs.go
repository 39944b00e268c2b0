package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/hay-kot/reviewdesk/internal/core/review"
)

// Evaluate queues an evaluation of the session and returns the job id.
func (c *Client) Evaluate(ctx context.Context, id int64) (string, error) {
	var resp struct {
		JobID flexString `json:"job_id"`
	}
	path := fmt.Sprintf("/sessions/%d/evaluate", id)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return "", err
	}
	if resp.JobID == "" {
		return "", &MissingFieldError{Op: "evaluate", Field: "job_id"}
	}
	return string(resp.JobID), nil
}

// Job returns the current state of an evaluation job.
func (c *Client) Job(ctx context.Context, jobID string) (review.Job, error) {
	var resp struct {
		Status string          `json:"status"`
		Result json.RawMessage `json:"result"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/jobs/"+url.PathEscape(jobID), nil, nil, &resp); err != nil {
		return review.Job{}, err
	}
	if resp.Status == "" {
		return review.Job{}, &MissingFieldError{Op: "job status", Field: "status"}
	}

	status, err := review.ParseJobStatus(resp.Status)
	if err != nil {
		return review.Job{}, fmt.Errorf("job %s: %w", jobID, err)
	}

	return review.Job{ID: jobID, Status: status, Result: resultText(resp.Result)}, nil
}

// resultText flattens a job result, which may be a string or any JSON value.
func resultText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
