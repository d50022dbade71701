package chat

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/abbiehooper/PolicyChatbot/internal/storage/models"
)

// citationPattern matches [CITE:page:"quoted text"]. The quoted text may not
// contain a double quote, so malformed or unterminated markers never match
// and are passed through untouched.
var citationPattern = regexp.MustCompile(`\[CITE:(\d+):"([^"]+)"\]`)

// ExtractCitations scans a raw generated answer for citation markers,
// replaces each with a stable placeholder carrying its 1-based index, and
// returns the rewritten text with the citations in appearance order.
// Running it on already-extracted text is a no-op.
func ExtractCitations(raw string) (models.ChatAnswer, error) {
	matches := citationPattern.FindAllStringSubmatchIndex(raw, -1)
	if len(matches) == 0 {
		return models.ChatAnswer{
			Answer:    raw,
			Citations: []models.Citation{},
		}, nil
	}

	var out strings.Builder
	citations := make([]models.Citation, 0, len(matches))
	last := 0
	for i, m := range matches {
		pageNumber, err := strconv.Atoi(raw[m[2]:m[3]])
		if err != nil {
			return models.ChatAnswer{}, fmt.Errorf("failed to parse citation page number %q: %w", raw[m[2]:m[3]], err)
		}

		index := i + 1
		citations = append(citations, models.Citation{
			CitationIndex: index,
			PageNumber:    pageNumber,
			QuotedText:    raw[m[4]:m[5]],
		})

		out.WriteString(raw[last:m[0]])
		fmt.Fprintf(&out, "<citation-marker idx=%d>", index)
		last = m[1]
	}
	out.WriteString(raw[last:])

	return models.ChatAnswer{
		Answer:    out.String(),
		Citations: citations,
	}, nil
}
