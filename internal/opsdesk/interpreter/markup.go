package interpreter

// Response rendering. Handlers emit plain lines carrying a small markup
// vocabulary — **bold** emphasis spans and [label](target) link spans — and
// the renderer turns them into the transport's HTML content type with a
// single left-to-right scan per line. Unmatched trailing markers are
// preserved verbatim. Link targets are opaque strings; whether they resolve
// is the emitting handler's responsibility.

import (
	"strings"
)

// RenderText joins reply lines into the plaintext message body.
func RenderText(lines []string) string {
	return strings.Join(lines, "\n")
}

// RenderHTML renders reply lines into HTML: bold and link spans are
// converted, everything else is entity-escaped, lines are joined by <br/>.
func RenderHTML(lines []string) string {
	rendered := make([]string, len(lines))
	for i, line := range lines {
		rendered[i] = renderLine(line)
	}
	return strings.Join(rendered, "<br/>")
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// renderLine scans one line left to right, emitting bold and link spans as
// it encounters their markers. A marker with no closing counterpart is
// copied through as literal text.
func renderLine(line string) string {
	var b strings.Builder
	for line != "" {
		boldIdx := strings.Index(line, "**")
		linkIdx := strings.Index(line, "[")

		switch {
		case boldIdx < 0 && linkIdx < 0:
			b.WriteString(htmlEscaper.Replace(line))
			return b.String()

		case linkIdx < 0 || (boldIdx >= 0 && boldIdx < linkIdx):
			end := strings.Index(line[boldIdx+2:], "**")
			if end < 0 {
				// Unmatched opener: keep the rest verbatim.
				b.WriteString(htmlEscaper.Replace(line))
				return b.String()
			}
			end += boldIdx + 2
			b.WriteString(htmlEscaper.Replace(line[:boldIdx]))
			b.WriteString("<strong>")
			b.WriteString(htmlEscaper.Replace(line[boldIdx+2 : end]))
			b.WriteString("</strong>")
			line = line[end+2:]

		default:
			label, target, rest, ok := parseLink(line[linkIdx:])
			if !ok {
				b.WriteString(htmlEscaper.Replace(line[:linkIdx+1]))
				line = line[linkIdx+1:]
				continue
			}
			b.WriteString(htmlEscaper.Replace(line[:linkIdx]))
			b.WriteString(`<a href="`)
			b.WriteString(htmlEscaper.Replace(target))
			b.WriteString(`">`)
			b.WriteString(htmlEscaper.Replace(label))
			b.WriteString("</a>")
			line = rest
		}
	}
	return b.String()
}

// parseLink reads a "[label](target)" span from the start of s.
func parseLink(s string) (label, target, rest string, ok bool) {
	closeBracket := strings.Index(s, "]")
	if closeBracket < 0 || closeBracket+1 >= len(s) || s[closeBracket+1] != '(' {
		return "", "", "", false
	}
	closeParen := strings.Index(s[closeBracket+2:], ")")
	if closeParen < 0 {
		return "", "", "", false
	}
	closeParen += closeBracket + 2
	return s[1:closeBracket], s[closeBracket+2 : closeParen], s[closeParen+1:], true
}
