package telegram

import "strings"

// allowedTags is the HTML subset Telegram accepts that we permit in
// outbound text. Anything else is escaped.
var allowedTags = []string{"b", "i", "u", "s", "code", "pre", "tg-spoiler"}

// Escape neutralizes HTML metacharacters in user-supplied text.
func Escape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// SanitizeHTML escapes everything, then restores the allowed tag
// subset so templated bold/italic markup survives while injected tags
// do not.
func SanitizeHTML(s string) string {
	s = Escape(s)
	for _, tag := range allowedTags {
		s = strings.ReplaceAll(s, "&lt;"+tag+"&gt;", "<"+tag+">")
		s = strings.ReplaceAll(s, "&lt;/"+tag+"&gt;", "</"+tag+">")
	}
	return s
}
