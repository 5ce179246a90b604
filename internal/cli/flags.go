package cli

import (
	"github.com/spf13/pflag"

	"github.com/jmylchreest/postersort/internal/compression"
)

// formatValue is a pflag.Value restricted to supported archive formats.
// The empty string means no bundle.
type formatValue struct {
	format compression.Format
}

var _ pflag.Value = (*formatValue)(nil)

func (v *formatValue) String() string {
	return string(v.format)
}

func (v *formatValue) Set(s string) error {
	if s == "" || s == "none" {
		v.format = ""
		return nil
	}
	f, err := compression.ParseFormat(s)
	if err != nil {
		return err
	}
	v.format = f
	return nil
}

func (v *formatValue) Type() string {
	return "format"
}
