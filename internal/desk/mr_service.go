package desk

import (
	"context"
	"fmt"
	"strings"

	"github.com/hay-kot/reviewdesk/internal/core/review"
	"github.com/hay-kot/reviewdesk/internal/core/validate"
)

// MRService browses the merge request catalog and assigns entries to
// sessions.
type MRService struct {
	api API
}

// NewMRService creates a new MRService.
func NewMRService(api API) *MRService {
	return &MRService{api: api}
}

// List returns catalog entries matching filter and the total match count.
func (m *MRService) List(ctx context.Context, filter review.MRFilter) ([]review.MergeRequest, int, error) {
	if filter.MinComplexity > 0 && filter.MaxComplexity > 0 && filter.MinComplexity > filter.MaxComplexity {
		return nil, 0, fmt.Errorf("%w: min complexity %d is above max %d", validate.ErrInvalid, filter.MinComplexity, filter.MaxComplexity)
	}

	mrs, total, err := m.api.ListMRs(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list merge requests: %w", err)
	}
	return mrs, total, nil
}

// Recommend returns the entries suggested for a candidate grade.
func (m *MRService) Recommend(ctx context.Context, grade string, stackTags []string) ([]review.MergeRequest, error) {
	g, err := review.ParseGrade(strings.ToLower(strings.TrimSpace(grade)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", validate.ErrInvalid, err)
	}

	mrs, err := m.api.RecommendMRs(ctx, g, stackTags)
	if err != nil {
		return nil, fmt.Errorf("recommend merge requests: %w", err)
	}
	return mrs, nil
}

// Assign replaces the merge requests of a session.
func (m *MRService) Assign(ctx context.Context, id int64, mrIDs []string) error {
	ids := make([]string, 0, len(mrIDs))
	for _, mr := range mrIDs {
		if mr = strings.TrimSpace(mr); mr != "" {
			ids = append(ids, mr)
		}
	}
	if len(ids) == 0 {
		return fmt.Errorf("%w: at least one merge request id is required", validate.ErrInvalid)
	}

	if err := m.api.AssignMRs(ctx, id, ids); err != nil {
		return fmt.Errorf("assign merge requests to session %d: %w", id, err)
	}
	return nil
}
