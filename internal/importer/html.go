package importer

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLMode selects how Process treats markup.
type HTMLMode string

const (
	HTMLKeep    HTMLMode = "keep"
	HTMLStrip   HTMLMode = "strip"
	HTMLConvert HTMLMode = "convert"
)

var (
	tagPattern   = regexp.MustCompile(`<[^>]+>`)
	soundPattern = regexp.MustCompile(`\[sound:([^\]]+)\]`)
	blankLines   = regexp.MustCompile(`\n\s*\n`)
	spaceRuns    = regexp.MustCompile(`[ \t]+`)
)

// Elements whose closing tag ends a line.
var lineBreakAfter = map[atom.Atom]bool{
	atom.P:          true,
	atom.Div:        true,
	atom.Li:         true,
	atom.Tr:         true,
	atom.H1:         true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.H5:         true,
	atom.H6:         true,
	atom.Blockquote: true,
	atom.Pre:        true,
}

// ContainsHTML reports whether s contains anything tag-shaped.
func ContainsHTML(s string) bool {
	return tagPattern.MatchString(s)
}

// StripHTML removes markup, decodes entities and collapses whitespace.
// Line-level elements become newlines.
func StripHTML(s string) string {
	return renderText(s, false)
}

// ConvertHTML is StripHTML that keeps some structure: links become
// "text (url)", images "[Image: src]" and list items get a bullet.
func ConvertHTML(s string) string {
	return renderText(s, true)
}

// ProcessHTML applies mode to s.
func ProcessHTML(s string, mode HTMLMode) string {
	switch mode {
	case HTMLStrip:
		return StripHTML(s)
	case HTMLConvert:
		return ConvertHTML(s)
	default:
		return s
	}
}

// Preview strips markup and truncates to maxLen runes with an ellipsis.
func Preview(s string, maxLen int) string {
	text := StripHTML(s)
	runes := []rune(text)
	if maxLen > 3 && len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return text
}

// Media lists the files referenced by a card side.
type Media struct {
	Images []string `json:"images"`
	Sounds []string `json:"sounds"`
}

// ExtractMedia finds <img src> and [sound:] references.
func ExtractMedia(s string) Media {
	m := Media{Images: []string{}, Sounds: []string{}}

	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		tok := z.Token()
		if tok.DataAtom != atom.Img {
			continue
		}
		if src := attr(tok, "src"); src != "" {
			m.Images = append(m.Images, src)
		}
	}

	for _, match := range soundPattern.FindAllStringSubmatch(s, -1) {
		m.Sounds = append(m.Sounds, match[1])
	}
	return m
}

func renderText(s string, convert bool) string {
	var sb strings.Builder
	var hrefs []string

	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		tok := z.Token()
		switch tt {
		case html.TextToken:
			sb.WriteString(tok.Data)
		case html.StartTagToken, html.SelfClosingTagToken:
			switch tok.DataAtom {
			case atom.Br, atom.Hr:
				sb.WriteByte('\n')
			case atom.Img:
				if convert {
					if src := attr(tok, "src"); src != "" {
						sb.WriteString("[Image: " + src + "]")
					}
				}
			case atom.Li:
				if convert {
					sb.WriteString("• ")
				}
			case atom.A:
				if convert && tt == html.StartTagToken {
					hrefs = append(hrefs, attr(tok, "href"))
				}
			}
		case html.EndTagToken:
			if tok.DataAtom == atom.A && convert && len(hrefs) > 0 {
				href := hrefs[len(hrefs)-1]
				hrefs = hrefs[:len(hrefs)-1]
				if href != "" {
					sb.WriteString(" (" + href + ")")
				}
			}
			if lineBreakAfter[tok.DataAtom] {
				sb.WriteByte('\n')
			}
		}
	}

	out := strings.ReplaceAll(sb.String(), "\u00a0", " ")
	out = blankLines.ReplaceAllString(out, "\n\n")
	out = spaceRuns.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

func attr(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
