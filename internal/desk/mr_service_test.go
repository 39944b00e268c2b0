package desk

import (
	"context"
	"net/http"
	"testing"

	"github.com/hay-kot/reviewdesk/internal/core/review"
	"github.com/hay-kot/reviewdesk/internal/core/validate"
	"github.com/hay-kot/reviewdesk/internal/platform/platformtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMRService_List(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		filter  review.MRFilter
		wantIDs []string
		wantErr bool
	}{
		{name: "all", wantIDs: []string{"1", "mr-2", "3"}},
		{name: "by type", filter: review.MRFilter{Type: "feature"}, wantIDs: []string{"mr-2"}},
		{name: "by tag and complexity", filter: review.MRFilter{StackTag: "python", MaxComplexity: 5}, wantIDs: []string{"1"}},
		{name: "inverted complexity", filter: review.MRFilter{MinComplexity: 8, MaxComplexity: 2}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			mrs, total, err := env.app.MRs.List(ctx, tt.filter)
			if tt.wantErr {
				require.ErrorIs(t, err, validate.ErrInvalid)
				assert.Empty(t, env.srv.Requests())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.wantIDs), total)

			ids := make([]string, 0, len(mrs))
			for _, mr := range mrs {
				ids = append(ids, mr.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestMRService_Recommend(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	mrs, err := env.app.MRs.Recommend(ctx, " Junior ", nil)
	require.NoError(t, err)
	require.Len(t, mrs, 1)
	assert.Equal(t, "1", mrs[0].ID)

	_, err = env.app.MRs.Recommend(ctx, "principal", nil)
	require.ErrorIs(t, err, validate.ErrInvalid)
}

func TestMRService_Assign(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seeded := env.srv.Seed(platformtest.Session{CandidateName: "Ada"})

	require.ErrorIs(t, env.app.MRs.Assign(ctx, seeded.ID, []string{" ", ""}), validate.ErrInvalid)
	assert.Zero(t, env.srv.Count(http.MethodPut, "/api/reviewer/sessions/1/mrs"))

	require.NoError(t, env.app.MRs.Assign(ctx, seeded.ID, []string{"1", " mr-2 "}))
	stored, _ := env.srv.Session(seeded.ID)
	assert.Equal(t, []string{"1", "mr-2"}, stored.MRIDs)
}
