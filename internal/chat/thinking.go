package chat

import (
	"regexp"
	"strings"
)

var thinkPattern = regexp.MustCompile(`(?s)<think>(.*?)</think>`)

// FormatThinking rewrites <think>...</think> spans in assistant text as an
// emphasized "model's thoughts" annotation. Presentation only; the recorded
// response keeps the raw markers.
func FormatThinking(text string) string {
	return thinkPattern.ReplaceAllStringFunc(text, func(m string) string {
		inner := thinkPattern.FindStringSubmatch(m)[1]
		return "<em>" + strings.TrimSpace(inner) + "</em> <em>(Model's thoughts)</em>"
	})
}
