package extract

import (
    "html"
    "strings"

    xhtml "golang.org/x/net/html"
    "golang.org/x/text/unicode/norm"
)

// PlainText prepares a raw post body for the extractors. HTML bodies (as
// served by some backends) are reduced to their visible text with line
// structure kept, entities are unescaped, and the result is NFKC-normalized so
// full-width '#', digits and colons match the patterns.
func PlainText(raw string) string {
    trimmed := strings.TrimSpace(raw)
    if trimmed == "" {
        return ""
    }
    var text string
    if strings.HasPrefix(trimmed, "<") {
        text = textFromHTML(trimmed)
    } else {
        text = html.UnescapeString(trimmed)
    }
    return norm.NFKC.String(normalizeWhitespace(text))
}

func textFromHTML(input string) string {
    node, err := xhtml.Parse(strings.NewReader(input))
    if err != nil || node == nil {
        return input
    }
    root := findFirst(node, "body")
    if root == nil {
        root = node
    }
    var b strings.Builder
    collectText(&b, root)
    return b.String()
}

func findFirst(n *xhtml.Node, tag string) *xhtml.Node {
    if n.Type == xhtml.ElementNode && strings.EqualFold(n.Data, tag) {
        return n
    }
    for c := n.FirstChild; c != nil; c = c.NextSibling {
        if found := findFirst(c, tag); found != nil {
            return found
        }
    }
    return nil
}

func collectText(b *strings.Builder, n *xhtml.Node) {
    if n.Type == xhtml.ElementNode {
        switch strings.ToLower(n.Data) {
        case "script", "style", "noscript":
            return
        case "br", "hr", "p", "div", "li", "h1", "h2", "h3", "h4", "h5", "h6":
            // Block starts become line breaks so line-anchored patterns still work
            b.WriteString("\n")
        case "a":
            // Keep link targets; image and discussion URLs often only live in href
            for _, attr := range n.Attr {
                if strings.EqualFold(attr.Key, "href") && attr.Val != "" {
                    b.WriteString(" ")
                    b.WriteString(attr.Val)
                    b.WriteString(" ")
                }
            }
        case "img":
            for _, attr := range n.Attr {
                if strings.EqualFold(attr.Key, "src") && attr.Val != "" {
                    b.WriteString(" ")
                    b.WriteString(attr.Val)
                    b.WriteString(" ")
                }
            }
        }
    }

    if n.Type == xhtml.TextNode {
        data := strings.ReplaceAll(n.Data, "\t", " ")
        data = strings.ReplaceAll(data, "\r", " ")
        b.WriteString(data)
    }

    for c := n.FirstChild; c != nil; c = c.NextSibling {
        collectText(b, c)
    }

    if n.Type == xhtml.ElementNode {
        switch strings.ToLower(n.Data) {
        case "p", "div", "li", "h1", "h2", "h3", "h4", "h5", "h6":
            b.WriteString("\n")
        }
    }
}

func normalizeWhitespace(s string) string {
    lines := strings.Split(s, "\n")
    out := make([]string, 0, len(lines))
    for _, line := range lines {
        trimmed := strings.TrimSpace(line)
        if trimmed == "" {
            continue
        }
        out = append(out, collapseSpaces(trimmed))
    }
    return strings.Join(out, "\n")
}

func collapseSpaces(s string) string {
    var b strings.Builder
    lastSpace := false
    for _, r := range s {
        if r == ' ' || r == '\t' || r == '\r' {
            if !lastSpace {
                b.WriteByte(' ')
                lastSpace = true
            }
            continue
        }
        b.WriteRune(r)
        lastSpace = false
    }
    return b.String()
}
