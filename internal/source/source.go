package source

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ProgramSourceID is the id of the <pre> element that holds a submission's
// source code on its detail page.
const ProgramSourceID = "program-source-text"

// Extractor pulls submission source code out of a detail page. ok is false
// when the page does not carry source code (hidden submission, changed layout).
type Extractor interface {
	Extract(page string) (code string, ok bool)
}

// HTMLExtractor finds the first element with the given tag and id and returns
// its text content with entities decoded.
type HTMLExtractor struct {
	Tag atom.Atom
	ID  string
}

// NewHTMLExtractor returns an extractor for <pre id="program-source-text">.
func NewHTMLExtractor() *HTMLExtractor {
	return &HTMLExtractor{Tag: atom.Pre, ID: ProgramSourceID}
}

// Extract walks the page token by token so the element text stays verbatim:
// html.Parse drops the first newline after <pre>.
func (e *HTMLExtractor) Extract(page string) (string, bool) {
	if strings.TrimSpace(page) == "" {
		return "", false
	}

	z := html.NewTokenizer(strings.NewReader(page))
	var b strings.Builder
	depth := 0 // open e.Tag elements once the target was entered
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// EOF inside the element: keep what was collected.
			return b.String(), depth > 0
		case html.TextToken:
			if depth > 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			a := atom.Lookup(name)
			if depth > 0 {
				// <br> is a hard line break inside <pre>.
				if a == atom.Br {
					b.WriteByte('\n')
				}
				if a == e.Tag && tt == html.StartTagToken {
					depth++
				}
				continue
			}
			if a == e.Tag && tt == html.StartTagToken && hasAttr && tagID(z) == e.ID {
				depth = 1
			}
		case html.EndTagToken:
			if depth == 0 {
				continue
			}
			name, _ := z.TagName()
			if atom.Lookup(name) == e.Tag {
				depth--
				if depth == 0 {
					return b.String(), true
				}
			}
		}
	}
}

func tagID(z *html.Tokenizer) string {
	for {
		key, val, more := z.TagAttr()
		if string(key) == "id" {
			return string(val)
		}
		if !more {
			return ""
		}
	}
}
