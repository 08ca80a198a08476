package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// GetText concatenates every text node under `node`, unlike goquery's Text()
// it does not require a selection.
func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

type Anchor struct {
	Name string
	Href string
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || unicode.IsSpace(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// NormalizeText strips non-printable characters and collapses whitespace.
func NormalizeText(text string) string {
	text = removeNonPrintable(text)
	text = strings.TrimSpace(text)
	return innerWhitespace.ReplaceAllString(text, " ")
}

// GetAnchors returns the normalized text and raw href of every node in `sel` that
// has an href attribute.
func GetAnchors(sel *goquery.Selection) []Anchor {
	anchors := []Anchor{}
	for _, n := range sel.Nodes {
		href := ""
		hasHref := false
		for _, a := range n.Attr {
			if strings.EqualFold(a.Key, "href") {
				href = strings.TrimSpace(a.Val)
				hasHref = true
				break
			}
		}
		if !hasHref || href == "" {
			continue
		}

		anchors = append(anchors, Anchor{
			Name: NormalizeText(GetText(n)),
			Href: href,
		})
	}
	return anchors
}
