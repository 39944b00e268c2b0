package validate

import (
	"testing"

	"github.com/hay-kot/reviewdesk/internal/core/review"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid name", "Ada Lovelace", false},
		{"single word", "ada", false},
		{"empty string", "", true},
		{"only spaces", "   ", true},
		{"only tabs", "\t\t", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CandidateName(tt.input)
			assert.Equal(t, tt.wantErr, err != nil, "CandidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalid)
				assert.Contains(t, err.Error(), "candidate_name")
			}
		})
	}
}

func TestCommentInput(t *testing.T) {
	valid := review.Comment{
		File:     "main.py",
		Lines:    review.LineRange{Start: 3, End: 5},
		Type:     review.TypeBug,
		Severity: review.SeverityMedium,
		Text:     "off by one",
	}

	tests := []struct {
		name      string
		mutate    func(c *review.Comment)
		wantField string
	}{
		{"valid", func(c *review.Comment) {}, ""},
		{"blank file is allowed", func(c *review.Comment) { c.File = "" }, ""},
		{"blank text", func(c *review.Comment) { c.Text = "  " }, "text"},
		{"unset range", func(c *review.Comment) { c.Lines = review.LineRange{} }, "line_range"},
		{"reversed range", func(c *review.Comment) { c.Lines = review.LineRange{Start: 9, End: 2} }, "line_range"},
		{"unknown type", func(c *review.Comment) { c.Type = "nit" }, "type"},
		{"unknown severity", func(c *review.Comment) { c.Severity = "blocker" }, "severity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)

			err := CommentInput(c)
			if tt.wantField == "" {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, IsInvalid(err))
			assert.Contains(t, err.Error(), tt.wantField)
		})
	}
}
