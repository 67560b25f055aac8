package pipeline

import (
	"testing"

	wzerrors "github.com/matzehuels/wzrd/pkg/errors"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"dot", false},
		{"json", false},
		{"yaml", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !wzerrors.Is(err, wzerrors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, wzerrors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "dot"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	var o Options
	if err := o.ValidateForLayout(); err != nil {
		t.Fatal(err)
	}
	if o.HGap != DefaultHGap || o.VGap != DefaultVGap {
		t.Errorf("gaps = %v/%v, want defaults", o.HGap, o.VGap)
	}
	if o.Logger == nil {
		t.Error("logger default not set")
	}

	if err := o.ValidateForRender(); err != nil {
		t.Fatal(err)
	}
	if len(o.Formats) != 1 || o.Formats[0] != FormatSVG || o.Scale != DefaultScale {
		t.Errorf("render defaults = %v %v", o.Formats, o.Scale)
	}

	bad := Options{HGap: -1}
	if err := bad.ValidateForLayout(); !wzerrors.Is(err, wzerrors.ErrCodeInvalidInput) {
		t.Errorf("negative gap error = %v", err)
	}

	empty := Options{}
	if err := empty.ValidateAndSetDefaults(); !wzerrors.Is(err, wzerrors.ErrCodeInvalidScript) {
		t.Errorf("empty script error = %v", err)
	}
}

func TestKeyOpts(t *testing.T) {
	o := Options{HGap: 10, VGap: 5, Detailed: true}
	if k := o.LayoutKeyOpts(); k.HGap != 10 || k.VGap != 5 {
		t.Errorf("LayoutKeyOpts = %+v", k)
	}
	if k := o.ArtifactKeyOpts("svg"); k.Format != "svg" || !k.Detailed || k.Pinned {
		t.Errorf("ArtifactKeyOpts = %+v", k)
	}
}
