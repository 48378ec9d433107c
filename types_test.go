package katex

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()

	if opts.DisplayMode {
		t.Error("default should be inline mode")
	}
	if opts.Output != OutputHTML {
		t.Errorf("Output = %q, want %q", opts.Output, OutputHTML)
	}
	if !opts.ThrowOnError {
		t.Error("default should throw on error")
	}
	if opts.ErrorColor != DefaultErrorColor {
		t.Errorf("ErrorColor = %q, want %q", opts.ErrorColor, DefaultErrorColor)
	}
	if opts.MaxExpand != DefaultMaxExpand {
		t.Errorf("MaxExpand = %d, want %d", opts.MaxExpand, DefaultMaxExpand)
	}
	if opts.MaxSize != 0 {
		t.Errorf("MaxSize = %g, want 0 (unlimited)", opts.MaxSize)
	}
	if opts.Strict != nil || opts.MinRuleThickness != nil {
		t.Error("engine-default fields should start nil")
	}
}

func TestOptions_Validate(t *testing.T) {
	t.Parallel()

	strict := true
	tests := []struct {
		name    string
		opts    *Options
		wantErr error
	}{
		{name: "nil options", opts: nil, wantErr: nil},
		{name: "defaults", opts: DefaultOptions(), wantErr: nil},
		{name: "empty output", opts: &Options{}, wantErr: nil},
		{
			name: "all formats and toggles",
			opts: &Options{
				DisplayMode: true,
				Output:      OutputHTMLAndMathML,
				Leqno:       true,
				Fleqn:       true,
				ErrorColor:  "#f00",
				MaxSize:     500,
				MaxExpand:   10,
				Strict:      &strict,
				Trust:       true,
				GlobalGroup: true,
			},
			wantErr: nil,
		},
		{name: "unknown output", opts: &Options{Output: "svg"}, wantErr: ErrInvalidOutput},
		{name: "named color", opts: &Options{ErrorColor: "red"}, wantErr: ErrInvalidErrorColor},
		{name: "missing hash", opts: &Options{ErrorColor: "cc0000"}, wantErr: ErrInvalidErrorColor},
		{name: "short hex", opts: &Options{ErrorColor: "#cc00"}, wantErr: ErrInvalidErrorColor},
		{name: "negative max expand", opts: &Options{MaxExpand: -5}, wantErr: ErrInvalidMaxExpand},
		{name: "negative max size", opts: &Options{MaxSize: -1}, wantErr: ErrInvalidMaxSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.opts.Validate()
			if tt.wantErr == nil && err != nil {
				t.Errorf("Validate() error = %v, want nil", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestOptions_EngineProjection(t *testing.T) {
	t.Parallel()

	t.Run("nil receiver projects defaults", func(t *testing.T) {
		t.Parallel()

		var opts *Options
		eo := opts.engineOptions()

		if eo.Output != string(OutputHTML) {
			t.Errorf("Output = %q, want %q", eo.Output, OutputHTML)
		}
		if eo.ErrorColor != DefaultErrorColor {
			t.Errorf("ErrorColor = %q", eo.ErrorColor)
		}
		if eo.MaxExpand != DefaultMaxExpand {
			t.Errorf("MaxExpand = %d", eo.MaxExpand)
		}
		if eo.MaxSize != nil {
			t.Error("unlimited MaxSize should be omitted")
		}
	})

	t.Run("zero values fall back to engine defaults", func(t *testing.T) {
		t.Parallel()

		eo := (&Options{}).engineOptions()
		if eo.Output != string(OutputHTML) || eo.ErrorColor != DefaultErrorColor || eo.MaxExpand != DefaultMaxExpand {
			t.Errorf("projection of zero Options = %+v", eo)
		}
	})

	t.Run("max size is forwarded when set", func(t *testing.T) {
		t.Parallel()

		eo := (&Options{MaxSize: 500}).engineOptions()
		if eo.MaxSize == nil || *eo.MaxSize != 500 {
			t.Errorf("MaxSize = %v, want 500", eo.MaxSize)
		}
	})

	t.Run("json uses katex field names", func(t *testing.T) {
		t.Parallel()

		data, err := json.Marshal((&Options{DisplayMode: true, Output: OutputMathML}).engineOptions())
		if err != nil {
			t.Fatalf("Marshal() error = %v", err)
		}
		for _, want := range []string{`"displayMode":true`, `"output":"mathml"`, `"throwOnError":false`, `"errorColor":"#cc0000"`} {
			if !strings.Contains(string(data), want) {
				t.Errorf("projection JSON missing %s: %s", want, data)
			}
		}
	})
}

func TestWithTimeout_PanicsOnNonPositive(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("WithTimeout(0) should panic")
		}
	}()
	WithTimeout(0)
}
