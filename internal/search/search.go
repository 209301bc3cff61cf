package search

import (
	"sort"
	"strings"

	"github.com/Zuo-Peng/ai-session-log/internal/model"
	"github.com/Zuo-Peng/ai-session-log/internal/sanitize"
)

type Result struct {
	Entry     model.Entry
	Position  int // index in the searched list
	UUID      string
	SessionID string
	Role      string
	Timestamp string
	Snippet   string
	Hits      int
}

type Options struct {
	Query      string
	Role       string // "" = all, or an entry type
	SessionID  string // "" = all
	Limit      int
	PerSession bool // keep only the best hit of each session
}

// Search returns entries whose text contains every query term, most hits
// first and newest first among equals.
func Search(entries []model.Entry, opts Options) []Result {
	if opts.Limit <= 0 {
		opts.Limit = 100
	}
	terms := strings.Fields(strings.ToLower(opts.Query))

	var results []Result
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if opts.Role != "" && string(e.EntryType()) != opts.Role {
			continue
		}
		b := model.BaseOf(e)
		if opts.SessionID != "" && (b == nil || b.SessionID != opts.SessionID) {
			continue
		}
		text := sanitize.String(model.EntryText(e))
		hits := countHits(strings.ToLower(text), terms)
		if hits < 0 {
			continue
		}
		r := Result{
			Entry:    e,
			Position: i,
			UUID:     model.UUID(e),
			Role:     string(e.EntryType()),
			Hits:     hits,
		}
		if b != nil {
			r.SessionID = b.SessionID
			r.Timestamp = b.Timestamp
		}
		first := ""
		if len(terms) > 0 {
			first = terms[0]
		}
		r.Snippet = strings.ReplaceAll(makeSnippet(text, first, 60), "\n", " ")
		results = append(results, r)
	}

	// equal hit counts keep newest-first order
	sort.SliceStable(results, func(i, j int) bool { return results[i].Hits > results[j].Hits })

	if !opts.PerSession {
		if len(results) > opts.Limit {
			results = results[:opts.Limit]
		}
		return results
	}
	seen := make(map[string]bool)
	var deduped []Result
	for _, r := range results {
		if seen[r.SessionID] {
			continue
		}
		seen[r.SessionID] = true
		deduped = append(deduped, r)
		if len(deduped) >= opts.Limit {
			break
		}
	}
	return deduped
}

// countHits returns the total occurrences of all terms, or -1 if any term
// is missing. No terms matches everything once.
func countHits(text string, terms []string) int {
	if len(terms) == 0 {
		return 1
	}
	total := 0
	for _, t := range terms {
		n := strings.Count(text, t)
		if n == 0 {
			return -1
		}
		total += n
	}
	return total
}

// makeSnippet extracts a snippet around the first occurrence of query in text.
func makeSnippet(text, query string, contextChars int) string {
	lower := strings.ToLower(text)
	qLower := strings.ToLower(query)
	idx := strings.Index(lower, qLower)
	if query == "" || idx < 0 || len(lower) != len(text) {
		// no match, return head
		if len([]rune(text)) > contextChars*2 {
			return string([]rune(text)[:contextChars*2]) + "..."
		}
		return text
	}
	runes := []rune(text)
	qRunes := []rune(query)
	// find rune position of idx
	runePos := len([]rune(text[:idx]))
	start := runePos - contextChars
	if start < 0 {
		start = 0
	}
	end := runePos + len(qRunes) + contextChars
	if end > len(runes) {
		end = len(runes)
	}
	prefix := ""
	suffix := ""
	if start > 0 {
		prefix = "..."
	}
	if end < len(runes) {
		suffix = "..."
	}
	// wrap the matched part with markers
	snippet := string(runes[start:runePos]) +
		">>>" + string(runes[runePos:runePos+len(qRunes)]) + "<<<" +
		string(runes[runePos+len(qRunes):end])
	return prefix + snippet + suffix
}
