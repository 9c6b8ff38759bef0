package orchestrator

import (
	"regexp"
	"strings"
)

// Searcher is the contract to the optional local knowledge base. The
// orchestrator works with a nil Searcher (feature off).
type Searcher interface {
	// ShouldSearch reports whether the query is worth a lookup.
	ShouldSearch(query string) bool
	// Search returns matching text, or "" when nothing relevant exists.
	Search(query string) string
	// Stats describes the index for diagnostics.
	Stats() map[string]any
	// Refresh re-reads the underlying documents.
	Refresh()
}

var knowledgeRe = regexp.MustCompile(`(?i)\b(according to|in the docs|documentation|wiki|knowledge base|our notes)\b`)

// wantsKnowledge is the orchestrator-side heuristic gating lookups: the
// collaborator still gets the final say via ShouldSearch.
func wantsKnowledge(content string) bool {
	if knowledgeRe.MatchString(content) {
		return true
	}
	lower := strings.ToLower(content)
	return strings.HasPrefix(lower, "what is ") || strings.HasPrefix(lower, "what are ") ||
		strings.HasPrefix(lower, "who is ") || strings.HasPrefix(lower, "where is ")
}
