package search

import (
	"strings"

	"github.com/UceeCode/waec-ai/internal/adapters/driving/tui/components/input"
	"github.com/UceeCode/waec-ai/internal/core/domain"
)

// ParseQuery splits typed input into a retrieval request. The tokens
// subject:<name>, year:<yyyy> and k:<n> become filters; everything else is
// the free-text query. A token whose value does not parse stays in the query.
func ParseQuery(query string) domain.RetrieveRequest {
	var req domain.RetrieveRequest
	var words []string

	for _, tok := range input.Tokenize(query) {
		if tok.Kind != input.Filter {
			words = append(words, tok.Text)
			continue
		}
		switch tok.Name {
		case "subject":
			subject := tok.Value
			req.Filter.Subject = &subject
		case "year":
			year := tok.Int
			req.Filter.Year = &year
		case "k":
			req.K = tok.Int
		}
	}

	req.Query = strings.Join(words, " ")
	return req
}

// IsEmpty reports whether a request carries neither text nor filters.
func IsEmpty(req domain.RetrieveRequest) bool {
	return req.Query == "" && req.Filter.IsEmpty()
}
