// Package entry encodes and decodes the optional weight prefix embedded in a
// raw entry string.
//
// The wire form is "::<weightExpr>::<content>". Entries without the prefix
// have the default weight and their whole text as content.
package entry

import "strings"

const marker = "::"

// Entry is the decoded form of a raw entry string.
type Entry struct {
	// WeightExpr is the text between the markers; meaningful only if Weighted.
	WeightExpr string
	// Weighted reports whether the raw string carried a weight prefix.
	Weighted bool
	// Content is the display text, possibly containing reference tokens.
	Content string
}

// Decode splits raw into its weight expression and content. A raw string that
// opens with "::" but has no closing "::" is treated as unweighted content.
// Decode never fails.
func Decode(raw string) Entry {
	if !strings.HasPrefix(raw, marker) {
		return Entry{Content: raw}
	}
	end := strings.Index(raw[len(marker):], marker)
	if end < 0 {
		return Entry{Content: raw}
	}
	end += len(marker)
	return Entry{
		WeightExpr: raw[len(marker):end],
		Weighted:   true,
		Content:    raw[end+len(marker):],
	}
}

// Encode returns the raw form of content with weightExpr. An empty or "1"
// expression leaves content unchanged.
func Encode(content, weightExpr string) string {
	if weightExpr == "" || weightExpr == "1" {
		return content
	}
	return marker + weightExpr + marker + content
}

// String re-encodes e into its raw form.
func (e Entry) String() string {
	if !e.Weighted {
		return e.Content
	}
	return Encode(e.Content, e.WeightExpr)
}

// Expr returns the weight expression to evaluate, or "1" when unweighted.
func (e Entry) Expr() string {
	if !e.Weighted {
		return "1"
	}
	return e.WeightExpr
}
