package engine

import (
	"strings"
	"unicode"
)

const (
	scriptOpen  = "<script"
	scriptClose = "</script>"
)

// Block is one inline script region located in a document.
type Block struct {
	Open  string // opening tag, attributes included
	Body  string // raw script text between the tags
	Close string // closing tag as written
	Start int    // byte offset of Open
	End   int    // byte offset just past Close
}

// Empty reports whether the body has nothing but whitespace.
func (b Block) Empty() bool {
	return strings.TrimFunc(b.Body, isScriptSpace) == ""
}

// Locate returns the inline script blocks of doc in document order.
//
// An opening tag is "<script" (ASCII case-insensitive) followed by a
// non-word character and runs to the first '>'. Tags carrying the word
// "src" are skipped. The body ends at the first "</script>"; nesting and
// broken markup are not modelled.
func Locate(doc string) []Block {
	var blocks []Block
	pos := 0
	for {
		start := indexFold(doc, scriptOpen, pos)
		if start < 0 {
			return blocks
		}
		nameEnd := start + len(scriptOpen)
		if nameEnd < len(doc) && isWordByte(doc[nameEnd]) {
			pos = start + 1
			continue
		}
		gt := strings.IndexByte(doc[nameEnd:], '>')
		if gt < 0 {
			return blocks
		}
		openEnd := nameEnd + gt + 1
		if hasSrcWord(doc, nameEnd, openEnd-1) {
			pos = start + 1
			continue
		}
		closeAt := indexFold(doc, scriptClose, openEnd)
		if closeAt < 0 {
			return blocks
		}
		end := closeAt + len(scriptClose)
		blocks = append(blocks, Block{
			Open:  doc[start:openEnd],
			Body:  doc[openEnd:closeAt],
			Close: doc[closeAt:end],
			Start: start,
			End:   end,
		})
		pos = end
	}
}

// hasSrcWord reports whether a whole-word "src" starts in doc[from:to].
// Word boundaries look one byte outside the range on both sides.
func hasSrcWord(doc string, from, to int) bool {
	for p := from; p+3 <= to; p++ {
		if !hasPrefixFold(doc[p:], "src") {
			continue
		}
		if p > 0 && isWordByte(doc[p-1]) {
			continue
		}
		if p+3 < len(doc) && isWordByte(doc[p+3]) {
			continue
		}
		return true
	}
	return false
}

// indexFold finds lower in s at or after from, folding ASCII letters only.
// lower must be ASCII lowercase and start with a non-letter.
func indexFold(s, lower string, from int) int {
	for i := from; i+len(lower) <= len(s); {
		j := strings.IndexByte(s[i:], lower[0])
		if j < 0 {
			return -1
		}
		i += j
		if hasPrefixFold(s[i:], lower) {
			return i
		}
		i++
	}
	return -1
}

func hasPrefixFold(s, lower string) bool {
	if len(s) < len(lower) {
		return false
	}
	for j := 0; j < len(lower); j++ {
		c := s[j]
		if 'A' <= c && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c != lower[j] {
			return false
		}
	}
	return true
}

func isWordByte(c byte) bool {
	return c == '_' || ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// isScriptSpace matches what String.prototype.trim strips.
func isScriptSpace(r rune) bool {
	return r == '\ufeff' || (unicode.IsSpace(r) && r != '\u0085')
}
