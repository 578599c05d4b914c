package engine

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// countScripts parses html and returns the number of <script> elements.
func countScripts(html string) (int, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0, fmt.Errorf("parsing html: %w", err)
	}
	return doc.Find("script").Length(), nil
}

// VerifyResult compares script element counts before and after a pass.
type VerifyResult struct {
	Before int
	After  int
}

// OK reports whether the pass kept every script element intact.
func (v VerifyResult) OK() bool { return v.Before == v.After }

// verifyScripts re-parses both documents. It only observes; the output is
// written as produced either way.
func verifyScripts(before, after string) (VerifyResult, error) {
	var v VerifyResult
	var err error
	if v.Before, err = countScripts(before); err != nil {
		return v, err
	}
	if v.After, err = countScripts(after); err != nil {
		return v, err
	}
	return v, nil
}
