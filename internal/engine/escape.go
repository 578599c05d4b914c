package engine

import "strings"

// ObfuscatedMarker is the comment placed in front of rewritten script text.
const ObfuscatedMarker = "/* obfuscated */"

// EscapeClosingTags turns every "</script>" (ASCII case-insensitive) into
// "<\/script>" so the HTML tokenizer cannot end the element early. The tag
// name keeps its original case.
func EscapeClosingTags(s string) string {
	i := indexFold(s, scriptClose, 0)
	if i < 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	last := 0
	for i >= 0 {
		b.WriteString(s[last : i+1])
		b.WriteByte('\\')
		last = i + 1
		i = indexFold(s, scriptClose, i+len(scriptClose))
	}
	b.WriteString(s[last:])
	return b.String()
}

// Reinsert rebuilds blk around obfuscated code, reusing its tags verbatim.
func Reinsert(blk Block, code string) string {
	return blk.Open + "\n" + ObfuscatedMarker + "\n" + EscapeClosingTags(code) + "\n" + blk.Close
}
