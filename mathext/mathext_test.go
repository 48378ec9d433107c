package mathext

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/yuin/goldmark"

	katex "github.com/alnah/go-katex"
)

// fakeRenderer records calls and simulates macro persistence: any input
// containing \gdef adds a macro to the table, and \err fails the call.
type fakeRenderer struct {
	calls []fakeCall
}

type fakeCall struct {
	latex   string
	display bool
}

func (f *fakeRenderer) RenderWithOptions(_ context.Context, latex string, opts *katex.Options, macros *katex.MacroTable) (string, error) {
	f.calls = append(f.calls, fakeCall{latex: latex, display: opts != nil && opts.DisplayMode})
	if strings.Contains(latex, `\err`) {
		return "", errors.New("boom")
	}
	if strings.Contains(latex, `\gdef`) {
		(*macros)[`\a`] = "1"
	}
	if _, ok := (*macros)[`\a`]; ok && strings.Contains(latex, `\a`) {
		return `<span class="katex">expanded</span>`, nil
	}
	return `<span class="katex">` + latex + `</span>`, nil
}

func convert(t *testing.T, md goldmark.Markdown, input string) string {
	t.Helper()
	var buf bytes.Buffer
	if err := md.Convert([]byte(input), &buf); err != nil {
		t.Fatalf("Convert() error = %v", err)
	}
	return buf.String()
}

func newMarkdown(fake *fakeRenderer, opts ...Option) goldmark.Markdown {
	return goldmark.New(goldmark.WithExtensions(New(fake, opts...)))
}

func TestExtension_InlineMath(t *testing.T) {
	t.Parallel()

	fake := &fakeRenderer{}
	out := convert(t, newMarkdown(fake), "The energy is $E = mc^2$ here.")

	if !strings.Contains(out, `<span class="katex">E = mc^2</span>`) {
		t.Errorf("output missing rendered math: %s", out)
	}
	if len(fake.calls) != 1 || fake.calls[0].display {
		t.Errorf("calls = %+v, want one inline call", fake.calls)
	}
}

func TestExtension_DisplayMath(t *testing.T) {
	t.Parallel()

	fake := &fakeRenderer{}
	convert(t, newMarkdown(fake), "$$\\int_0^1 x\\,dx$$")

	if len(fake.calls) != 1 || !fake.calls[0].display {
		t.Errorf("calls = %+v, want one display call", fake.calls)
	}
}

func TestExtension_MacroPersistsAcrossEquations(t *testing.T) {
	t.Parallel()

	fake := &fakeRenderer{}
	macros := katex.MacroTable{}
	md := newMarkdown(fake, WithMacros(&macros))

	out := convert(t, md, "First $\\gdef\\a{1}$ then $\\a$.")

	if !strings.Contains(out, "expanded") {
		t.Errorf("second equation did not see macro from first: %s", out)
	}
	if macros[`\a`] != "1" {
		t.Errorf("macros = %v, want \\a defined", macros)
	}
}

func TestExtension_ErrorFallback(t *testing.T) {
	t.Parallel()

	fake := &fakeRenderer{}
	out := convert(t, newMarkdown(fake), "Broken $\\err{x}$ math.")

	if !strings.Contains(out, `class="katex-error"`) {
		t.Errorf("output missing error fallback: %s", out)
	}
	if !strings.Contains(out, "\\err{x}") {
		t.Errorf("fallback should carry the raw source: %s", out)
	}
	if !strings.Contains(out, `title="boom"`) {
		t.Errorf("fallback should carry the error: %s", out)
	}
}

func TestExtension_LiteralDollarsLeftAlone(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{name: "dollar amounts", input: "It costs $5 and $6 together."},
		{name: "single dollar", input: "Just a $ sign."},
		{name: "unterminated", input: "A lonely $x with no closer."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fake := &fakeRenderer{}
			out := convert(t, newMarkdown(fake), tt.input)

			if len(fake.calls) != 0 {
				t.Errorf("calls = %+v, want none", fake.calls)
			}
			if strings.Contains(out, "katex") {
				t.Errorf("unexpected math rendering: %s", out)
			}
		})
	}
}

func TestExtension_MultipleEquationsOneLine(t *testing.T) {
	t.Parallel()

	fake := &fakeRenderer{}
	convert(t, newMarkdown(fake), "$a$ and $b$")

	if len(fake.calls) != 2 {
		t.Fatalf("calls = %+v, want 2", fake.calls)
	}
	if fake.calls[0].latex != "a" || fake.calls[1].latex != "b" {
		t.Errorf("calls = %+v, want a then b", fake.calls)
	}
}
