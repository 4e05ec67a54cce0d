// Package bbcode converts the legacy site's bracket-tag markup into
// sanitized HTML, and renders it back to plain text for heuristic
// analysis.
package bbcode

import (
	"html"
	"regexp"
	"strings"
)

// substitution is one ordered rewrite rule. Order matters: later rules
// may act on the output of earlier ones (e.g. headings after line
// breaks have been normalized).
type substitution struct {
	pattern *regexp.Regexp
	replace string
}

var substitutions = []substitution{
	{regexp.MustCompile(`\r?\n`), "<br>"},
	{regexp.MustCompile(`(?i)\[b\](.*?)\[/b\]`), "<strong>$1</strong>"},
	{regexp.MustCompile(`(?i)\[i\](.*?)\[/i\]`), "<em>$1</em>"},
	{regexp.MustCompile(`(?i)\[u\](.*?)\[/u\]`), "<u>$1</u>"},
	{regexp.MustCompile(`(?i)\[s\](.*?)\[/s\]`), "<s>$1</s>"},
	{regexp.MustCompile(`(?i)\[url=(.*?)\](.*?)\[/url\]`), `<a href="$1">$2</a>`},
	{regexp.MustCompile(`(?i)\[url\](.*?)\[/url\]`), `<a href="$1">$1</a>`},
	{regexp.MustCompile(`(?i)\[img\](.*?)\[/img\]`), `<img src="$1" />`},
	{regexp.MustCompile(`(?i)\[color=(.*?)\](.*?)\[/color\]`), `<span style="color: $1">$2</span>`},
	{regexp.MustCompile(`(?i)\[quote\](.*?)\[/quote\]`), "<blockquote>$1</blockquote>"},
	{regexp.MustCompile(`(?i)\[list\]`), "<ul>"},
	{regexp.MustCompile(`(?i)\[/list\]`), "</ul>"},
	{regexp.MustCompile(`(?i)\[\*\]`), "<li>"},
	{regexp.MustCompile(`(?i)\[size=(.+?)\](.+?)\[/size\]`), `<span style="font-size: ${1}px">$2</span>`},
	{regexp.MustCompile(`(?i)\[br\]`), "<br>"},
	{regexp.MustCompile(`(?i)\[h([1-6])\](.+?)\[/h([1-6])\]`), "<h$1>$2</h$3>"},
}

// ToHTML converts BBCode markup to HTML and auto-links bare URLs.
// The output is not sanitized; callers persisting it must pass it
// through Sanitize.
func ToHTML(text string) string {
	for _, sub := range substitutions {
		text = sub.pattern.ReplaceAllString(text, sub.replace)
	}
	return Autolink(text)
}

var (
	tagRe     = regexp.MustCompile(`<[^>]*>`)
	bareURLRe = regexp.MustCompile(`(?i)\bhttps?://[^\s<>"']+`)
)

// Autolink wraps bare URLs in anchor tags, leaving URLs that already
// appear inside markup (href attributes, anchor bodies) untouched.
func Autolink(text string) string {
	var b strings.Builder
	anchorDepth := 0
	last := 0

	for _, loc := range tagRe.FindAllStringIndex(text, -1) {
		segment := text[last:loc[0]]
		if anchorDepth == 0 {
			segment = bareURLRe.ReplaceAllString(segment, `<a href="$0">$0</a>`)
		}
		b.WriteString(segment)

		tag := text[loc[0]:loc[1]]
		lower := strings.ToLower(tag)
		if strings.HasPrefix(lower, "<a ") || lower == "<a>" {
			anchorDepth++
		} else if strings.HasPrefix(lower, "</a") {
			if anchorDepth > 0 {
				anchorDepth--
			}
		}
		b.WriteString(tag)
		last = loc[1]
	}

	tail := text[last:]
	if anchorDepth == 0 {
		tail = bareURLRe.ReplaceAllString(tail, `<a href="$0">$0</a>`)
	}
	b.WriteString(tail)

	return b.String()
}

// Paragraphize wraps each line of the converted description in a span
// and the whole text in a single paragraph, the shape the frontend
// expects. Stray control characters from the legacy dump are dropped.
func Paragraphize(htmlText string) string {
	htmlText = strings.ReplaceAll(htmlText, "\u0001", "")
	lines := strings.Split(htmlText, "<br>")
	for i, line := range lines {
		lines[i] = "<span>" + line + "</span>"
	}
	return "<p>" + strings.Join(lines, "<br>") + "</p>"
}

// allowedTags maps permitted element names to their permitted
// attributes. Everything else is stripped, keeping inner text.
var allowedTags = map[string][]string{
	"p": nil, "span": {"style"}, "br": nil,
	"strong": nil, "em": nil, "u": nil, "s": nil, "b": nil, "i": nil,
	"a": {"href"}, "img": {"src"},
	"blockquote": nil, "ul": nil, "ol": nil, "li": nil,
	"h1": nil, "h2": nil, "h3": nil, "h4": nil, "h5": nil, "h6": nil,
}

var (
	elementRe = regexp.MustCompile(`<\s*(/?)\s*([a-zA-Z][a-zA-Z0-9]*)([^>]*?)(/?)\s*>`)
	attrRe    = regexp.MustCompile(`([a-zA-Z-]+)\s*=\s*"([^"]*)"`)
	schemeRe  = regexp.MustCompile(`(?i)^(https?:|mailto:|tel:|/)`)
)

// Sanitize strips tags and attributes outside the allowlist. URL-bearing
// attributes are dropped unless they carry a safe scheme.
func Sanitize(htmlText string) string {
	return elementRe.ReplaceAllStringFunc(htmlText, func(tag string) string {
		m := elementRe.FindStringSubmatch(tag)
		closing, name, rawAttrs, selfClose := m[1], strings.ToLower(m[2]), m[3], m[4]

		allowedAttrs, ok := allowedTags[name]
		if !ok {
			return ""
		}
		if closing != "" {
			return "</" + name + ">"
		}

		var b strings.Builder
		b.WriteString("<" + name)
		for _, attr := range attrRe.FindAllStringSubmatch(rawAttrs, -1) {
			attrName, attrValue := strings.ToLower(attr[1]), attr[2]
			if !contains(allowedAttrs, attrName) {
				continue
			}
			if (attrName == "href" || attrName == "src") && !schemeRe.MatchString(attrValue) {
				continue
			}
			b.WriteString(` ` + attrName + `="` + attrValue + `"`)
		}
		if selfClose != "" {
			b.WriteString(" /")
		}
		b.WriteString(">")
		return b.String()
	})
}

var lineBreakRe = regexp.MustCompile(`(?i)<br\s*/?>|</p>|</li>|</h[1-6]>|</blockquote>`)

// ToPlainText renders HTML down to plain text, turning structural
// breaks into newlines and unescaping entities.
func ToPlainText(htmlText string) string {
	text := lineBreakRe.ReplaceAllString(htmlText, "\n")
	text = tagRe.ReplaceAllString(text, "")
	return html.UnescapeString(text)
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
