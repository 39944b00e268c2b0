package platform

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/hay-kot/reviewdesk/internal/core/review"
)

// ListMRs returns catalog merge requests matching filter and the total
// number of matches on the server.
func (c *Client) ListMRs(ctx context.Context, filter review.MRFilter) ([]review.MergeRequest, int, error) {
	q := url.Values{}
	if filter.Type != "" {
		q.Set("mr_type", filter.Type)
	}
	if filter.MinComplexity > 0 {
		q.Set("min_complexity_points", strconv.Itoa(filter.MinComplexity))
	}
	if filter.MaxComplexity > 0 {
		q.Set("max_complexity_points", strconv.Itoa(filter.MaxComplexity))
	}
	if filter.StackTag != "" {
		q.Set("stack_tag", filter.StackTag)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	q.Set("limit", strconv.Itoa(limit))

	var resp struct {
		MergeRequests []mergeRequestDTO `json:"merge_requests"`
		Total         int               `json:"total"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/mr/list", q, nil, &resp); err != nil {
		return nil, 0, err
	}

	return convertMRs(resp.MergeRequests), resp.Total, nil
}

// RecommendMRs asks for a set of merge requests suited to a grade.
func (c *Client) RecommendMRs(ctx context.Context, grade review.Grade, stackTags []string) ([]review.MergeRequest, error) {
	q := url.Values{}
	q.Set("target_grade", string(grade))
	if len(stackTags) > 0 {
		q.Set("stack_tags", strings.Join(stackTags, ","))
	}

	var resp struct {
		Recommended []mergeRequestDTO `json:"recommended_mrs"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/mr/recommend", q, nil, &resp); err != nil {
		return nil, err
	}
	return convertMRs(resp.Recommended), nil
}

func convertMRs(in []mergeRequestDTO) []review.MergeRequest {
	out := make([]review.MergeRequest, 0, len(in))
	for _, d := range in {
		out = append(out, d.toMergeRequest())
	}
	return out
}
