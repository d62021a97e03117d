package extract

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/uradori/uradori/internal/model"
)

// ClaimsFromHTML extracts generic claims from an HTML document by
// first stripping it to visible text.
func ClaimsFromHTML(htmlContent string) ([]model.Claim, error) {
	text, err := VisibleText(htmlContent)
	if err != nil {
		return nil, err
	}
	return Claims(text), nil
}

// VisibleText returns the visible text of an HTML document, skipping
// script, style, noscript and iframe content.
func VisibleText(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString("\n")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)
	return buf.String(), nil
}
