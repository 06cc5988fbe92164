package entry

import "fmt"

// DefaultLabelLength is the number of content runes kept in a display label.
const DefaultLabelLength = 15

// Label returns the display label for the entry at index: "Entry #<n>: "
// followed by content truncated to max runes, with "..." appended when
// truncated. A max <= 0 uses DefaultLabelLength.
func Label(index int, content string, max int) string {
	if max <= 0 {
		max = DefaultLabelLength
	}
	runes := []rune(content)
	if len(runes) > max {
		content = string(runes[:max]) + "..."
	}
	return fmt.Sprintf("Entry #%d: %s", index+1, content)
}
