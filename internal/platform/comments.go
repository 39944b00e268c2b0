package platform

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hay-kot/reviewdesk/internal/core/review"
)

// AddComment posts a comment as the reviewer (id reference) or the
// candidate (token reference).
func (c *Client) AddComment(ctx context.Context, ref review.Ref, comment review.Comment) error {
	path := fmt.Sprintf("/sessions/%d/comments", ref.ID)
	if ref.IsToken() {
		path = candidatePath(ref.Token) + "/comments"
	}
	return c.doJSON(ctx, http.MethodPost, path, nil, commentToDTO(comment), nil)
}
