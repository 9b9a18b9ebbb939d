package cmd

import (
	"fmt"

	"github.com/spf13/pflag"
)

// outputBase is a custom pflag.Value (cobra's flag layer is pflag itself;
// GetFlag/GetString/GetStringArray cover its built-in types, but a
// closed-enum flag like this one needs its own Value implementation)
// selecting the numeric base `run`/`proof-check` print scalar outputs in.
type outputBase string

// The two bases run's --base flag accepts.
const (
	baseHex outputBase = "hex"
	baseDec outputBase = "dec"
)

var _ pflag.Value = (*outputBase)(nil)

func (b *outputBase) String() string {
	if *b == "" {
		return string(baseHex)
	}

	return string(*b)
}

func (b *outputBase) Set(v string) error {
	switch outputBase(v) {
	case baseHex, baseDec:
		*b = outputBase(v)
		return nil
	default:
		return fmt.Errorf("must be %q or %q", baseHex, baseDec)
	}
}

func (b *outputBase) Type() string {
	return "base"
}
