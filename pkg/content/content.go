// Package content turns chapter HTML from the backend into text for the
// terminal reader and into safe markup for exports.
package content

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

var (
	spaces    = regexp.MustCompile(`[ \t\x{00a0}]+`)
	policy    = newPolicy()
	blockTags = "p, h1, h2, h3, h4, blockquote, li, pre"

	// Containers end the paragraph being collected.
	containerTags = "div, section, article, main, header, footer, ul, ol, table, tbody, tr, td, th, body"
)

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("ruby", "rt", "rp")
	return p
}

// Paragraphs extracts the readable paragraphs of a chapter. Plain text input
// is split on blank lines.
func Paragraphs(html string) []string {
	if !strings.Contains(html, "<") {
		return splitPlain(html)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return splitPlain(html)
	}
	doc.Find("script, style, noscript").Remove()
	doc.Find("br").ReplaceWithHtml("\n")

	if doc.Find(blockTags).Length() == 0 {
		return splitPlain(doc.Text())
	}
	var out []string
	collect(doc.Find("body"), &out)
	return out
}

// collect walks s in document order. A block without nested blocks is one
// paragraph; loose text between blocks forms a paragraph of its own.
func collect(s *goquery.Selection, out *[]string) {
	var run strings.Builder
	flush := func() {
		emitLines(run.String(), out)
		run.Reset()
	}
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		nested := c.Find(blockTags).Length() > 0
		switch {
		case goquery.NodeName(c) == "#text":
			run.WriteString(c.Text())
		case c.Is(blockTags) && !nested:
			flush()
			emitLines(c.Text(), out)
		case nested || c.Is(blockTags) || c.Is(containerTags):
			flush()
			collect(c, out)
		default:
			run.WriteString(c.Text())
		}
	})
	flush()
}

func emitLines(text string, out *[]string) {
	for _, line := range strings.Split(text, "\n") {
		if t := clean(line); t != "" {
			*out = append(*out, t)
		}
	}
}

func splitPlain(text string) []string {
	var out []string
	for _, block := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		if t := clean(strings.ReplaceAll(block, "\n", " ")); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func clean(s string) string {
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}

// Text renders a chapter as plain text, paragraphs separated by blank lines.
func Text(html string) string {
	return strings.Join(Paragraphs(html), "\n\n")
}

// Sanitize strips scripts, handlers and anything outside a user-content
// allowlist.
func Sanitize(html string) string {
	return policy.Sanitize(html)
}

// WordCount counts whitespace-separated words in the readable text.
func WordCount(html string) int {
	n := 0
	for _, p := range Paragraphs(html) {
		n += len(strings.Fields(p))
	}
	return n
}
