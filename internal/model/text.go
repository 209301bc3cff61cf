package model

import "strings"

// ExtractText joins the text blocks of c with newlines. Thinking and
// tool blocks are skipped; string content is returned as-is.
func ExtractText(c MessageContent) string {
	if !c.IsList() {
		return c.Text
	}
	return ExtractBlocksText(c.Blocks)
}

func ExtractBlocksText(blocks []ContentBlock) string {
	var parts []string
	for _, b := range blocks {
		if t, ok := b.(TextBlock); ok {
			parts = append(parts, t.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// EntryText returns the primary human-readable text of any entry.
func EntryText(e Entry) string {
	switch v := e.(type) {
	case *UserEntry:
		return ExtractText(v.Message.Content)
	case *AssistantEntry:
		return ExtractBlocksText(v.Message.Content)
	case *SystemEntry:
		return v.Content
	case *SummaryEntry:
		return v.Summary
	}
	return ""
}
