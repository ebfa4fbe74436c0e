package platform

import "strings"

// TextPart is a structured content part carrying spoken text.
type TextPart struct {
	Text string
}

// FlattenContent extracts the textual content of a conversation item.
// Content may be a plain string or an ordered list of parts; text parts are
// concatenated in order and anything else is ignored.
func FlattenContent(content any) string {
	switch c := content.(type) {
	case string:
		return c
	case []any:
		var b strings.Builder
		for _, part := range c {
			switch p := part.(type) {
			case string:
				b.WriteString(p)
			case TextPart:
				b.WriteString(p.Text)
			case map[string]any:
				if text, ok := p["text"].(string); ok {
					b.WriteString(text)
				}
			}
		}
		return b.String()
	case TextPart:
		return c.Text
	default:
		return ""
	}
}
