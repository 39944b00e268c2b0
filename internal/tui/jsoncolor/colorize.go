// Package jsoncolor renders JSON documents with the active theme for
// terminal output of --json commands.
package jsoncolor

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/hay-kot/reviewdesk/internal/core/styles"
)

// Colorize indents data and colors keys, strings, numbers and literals.
// Invalid JSON is returned unchanged.
func Colorize(data []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return string(data)
	}
	src := buf.String()

	var out strings.Builder
	out.Grow(len(src) * 2)

	for i := 0; i < len(src); {
		ch := src[i]
		switch {
		case ch == '"':
			end := stringEnd(src, i)
			tok := src[i : end+1]
			if isKey(src[end+1:]) {
				out.WriteString(styles.CommandHeaderStyle.Render(tok))
			} else {
				out.WriteString(styles.SuccessStyle.Render(tok))
			}
			i = end + 1
		case ch == '-' || (ch >= '0' && ch <= '9'):
			end := numberEnd(src, i)
			out.WriteString(styles.WarningStyle.Render(src[i:end]))
			i = end
		case strings.HasPrefix(src[i:], "true"):
			out.WriteString(styles.TitleStyle.Render("true"))
			i += len("true")
		case strings.HasPrefix(src[i:], "false"):
			out.WriteString(styles.TitleStyle.Render("false"))
			i += len("false")
		case strings.HasPrefix(src[i:], "null"):
			out.WriteString(styles.ErrorStyle.Render("null"))
			i += len("null")
		case strings.IndexByte("{}[]:,", ch) >= 0:
			out.WriteString(styles.MutedStyle.Render(string(ch)))
			i++
		default:
			out.WriteByte(ch)
			i++
		}
	}

	return out.String()
}

// isKey reports whether the text following a string token starts with a
// colon, ignoring spaces.
func isKey(rest string) bool {
	rest = strings.TrimLeft(rest, " \t")
	return rest != "" && rest[0] == ':'
}

// stringEnd returns the index of the quote closing the string opened at pos.
func stringEnd(s string, pos int) int {
	for i := pos + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return len(s) - 1
}

func numberEnd(s string, pos int) int {
	end := pos + 1
	for end < len(s) && strings.IndexByte("0123456789.eE+-", s[end]) >= 0 {
		end++
	}
	return end
}
