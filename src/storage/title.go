package storage

import "strings"

const maxTitleLength = 50

// DeriveTitle builds a conversation title from the first user message:
// whitespace collapsed, truncated to 50 characters at a word boundary with an
// ellipsis when anything was cut.
func DeriveTitle(content string) string {
	title := strings.Join(strings.Fields(content), " ")
	if title == "" {
		return "New conversation"
	}

	runes := []rune(title)
	if len(runes) <= maxTitleLength {
		return title
	}

	cut := string(runes[:maxTitleLength])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " ") + "…"
}
