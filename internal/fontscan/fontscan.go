// Package fontscan discovers which KaTeX font files a piece of rendered
// markup actually uses, by walking the class annotations KaTeX places on the
// spans inside its HTML output.
//
// The class table below is derived from the KaTeX 0.16.21 stylesheet and must
// be revisited whenever the vendored bundle is bumped. Unrecognized markup
// contributes nothing: scanning is total and never fails.
package fontscan

import (
	"sort"
	"strings"

	"golang.org/x/net/html"
)

type family int

const (
	famMain family = iota
	famAMS
	famCaligraphic
	famFraktur
	famMath
	famSansSerif
	famScript
	famSize1
	famSize2
	famSize3
	famSize4
	famTypewriter
)

// font is the style state inherited down a span subtree.
type font struct {
	family family
	bold   bool
	italic bool
	// delimMult marks descendants of a span.delimsizing.mult, where the
	// delim-size1/delim-size4 classes select a size font.
	delimMult bool
}

// Scan walks every katex-html subtree in markup and returns the sorted set of
// font base names (no file extension) referenced by visible glyphs.
// Markup without KaTeX output yields an empty slice.
func Scan(markup string) []string {
	used := make(map[string]bool)

	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt != html.StartTagToken {
			continue
		}
		tok := z.Token()
		if tok.Data == "span" && hasClass(classList(tok), "katex-html") {
			walk(z, font{}, used)
		}
	}

	names := make([]string, 0, len(used))
	for name := range used {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// walk consumes tokens from just after a span start tag to just past its
// matching end tag, flagging the current font whenever it sees visible text.
func walk(z *html.Tokenizer, f font, used map[string]bool) {
	for {
		switch z.Next() {
		case html.ErrorToken:
			return

		case html.EndTagToken:
			if name, _ := z.TagName(); string(name) == "span" {
				return
			}

		case html.TextToken:
			if strings.Trim(string(z.Text()), " \t\n\r\f\v") != "" {
				markUsed(f, used)
			}

		case html.StartTagToken:
			tok := z.Token()
			if tok.Data != "span" {
				continue
			}
			classes := classList(tok)

			var delimsizing, mult, opSymbol bool
			for _, c := range classes {
				switch c {
				case "delimsizing":
					delimsizing = true
				case "mult":
					mult = true
				case "op-symbol":
					opSymbol = true
				}
			}

			child := f
			child.delimMult = child.delimMult || (delimsizing && mult)
			for _, c := range classes {
				applyClass(&child, c, delimsizing, opSymbol)
			}
			walk(z, child, used)
		}
	}
}

// applyClass updates the font state for one class on a span, mirroring the
// font selectors of the KaTeX stylesheet.
func applyClass(f *font, class string, delimsizing, opSymbol bool) {
	switch class {
	case "textbf":
		f.bold = true
	case "textit":
		f.italic = true
	case "textrm":
		f.family = famMain
	case "mathsf", "textsf":
		f.family = famSansSerif
	case "texttt":
		f.family = famTypewriter
	case "mathnormal":
		f.family = famMath
		f.italic = true
	case "mathit":
		f.family = famMain
		f.italic = true
	case "mathrm":
		f.italic = false
	case "mathbf":
		f.family = famMain
		f.bold = true
	case "boldsymbol":
		f.family = famMath
		f.bold = true
		f.italic = true
	case "amsrm", "mathbb", "textbb":
		f.family = famAMS
	case "mathcal":
		f.family = famCaligraphic
	case "mathfrak", "textfrak":
		f.family = famFraktur
	case "mathboldfrak", "textboldfrak":
		f.family = famFraktur
		f.bold = true
	case "mathtt":
		f.family = famTypewriter
	case "mathscr":
		f.family = famScript
	case "mathboldsf", "textboldsf":
		f.family = famSansSerif
		f.bold = true
	case "mathsfit", "mathitsf", "textitsf":
		f.family = famSansSerif
		f.italic = true
	case "mainrm":
		f.family = famMain
		f.italic = false
	case "size1":
		if delimsizing {
			f.family = famSize1
		}
	case "size2":
		if delimsizing {
			f.family = famSize2
		}
	case "size3":
		if delimsizing {
			f.family = famSize3
		}
	case "size4":
		if delimsizing {
			f.family = famSize4
		}
	case "delim-size1":
		if f.delimMult {
			f.family = famSize1
		}
	case "delim-size4":
		if f.delimMult {
			f.family = famSize4
		}
	case "small-op":
		if opSymbol {
			f.family = famSize1
		}
	case "large-op":
		if opSymbol {
			f.family = famSize2
		}
	}
}

// markUsed records the font file(s) serving a glyph in the given style state.
func markUsed(f font, used map[string]bool) {
	switch f.family {
	case famAMS:
		used["KaTeX_AMS-Regular"] = true
	case famCaligraphic:
		if f.bold {
			used["KaTeX_Caligraphic-Bold"] = true
		} else {
			used["KaTeX_Caligraphic-Regular"] = true
		}
	case famFraktur:
		if f.bold {
			used["KaTeX_Fraktur-Bold"] = true
		} else {
			used["KaTeX_Fraktur-Regular"] = true
		}
	case famMain:
		switch {
		case f.bold && f.italic:
			used["KaTeX_Main-BoldItalic"] = true
		case f.bold:
			used["KaTeX_Main-Bold"] = true
		case f.italic:
			used["KaTeX_Main-Italic"] = true
		default:
			used["KaTeX_Main-Regular"] = true
		}
	case famMath:
		if f.bold {
			used["KaTeX_Math-BoldItalic"] = true
		} else {
			used["KaTeX_Math-Italic"] = true
		}
	case famSansSerif:
		// There is no SansSerif bold-italic file; both variants are needed.
		switch {
		case f.bold && f.italic:
			used["KaTeX_SansSerif-Bold"] = true
			used["KaTeX_SansSerif-Italic"] = true
		case f.bold:
			used["KaTeX_SansSerif-Bold"] = true
		case f.italic:
			used["KaTeX_SansSerif-Italic"] = true
		default:
			used["KaTeX_SansSerif-Regular"] = true
		}
	case famScript:
		used["KaTeX_Script-Regular"] = true
	case famSize1:
		used["KaTeX_Size1-Regular"] = true
	case famSize2:
		used["KaTeX_Size2-Regular"] = true
	case famSize3:
		used["KaTeX_Size3-Regular"] = true
	case famSize4:
		used["KaTeX_Size4-Regular"] = true
	case famTypewriter:
		used["KaTeX_Typewriter-Regular"] = true
	}
}

func classList(tok html.Token) []string {
	for _, attr := range tok.Attr {
		if attr.Key == "class" {
			return strings.Fields(attr.Val)
		}
	}
	return nil
}

func hasClass(classes []string, want string) bool {
	for _, c := range classes {
		if c == want {
			return true
		}
	}
	return false
}
