package app

import (
	"errors"

	"github.com/23skdu/meld/internal/text"
)

// Output formats.
const (
	FormatText  = "text"
	FormatArrow = "arrow"
)

// Options is the whole configuration of one run, fixed at startup.
type Options struct {
	Source     string
	Reference  string
	Hypotheses []string

	Text          text.Config
	TranslateLang string
	Head          int // 0 shows every sentence

	Summary bool
	Format  string
	Dataset string // Flight dataset, used when a sink is configured
}

// Validate checks the options that do not need any file access.
func (o *Options) Validate() error {
	if o.Source == "" {
		return &text.InvalidOptionError{Option: "src", Err: errors.New("source file is required")}
	}
	if o.Reference == "" {
		return &text.InvalidOptionError{Option: "ref", Err: errors.New("reference file is required")}
	}
	if len(o.Hypotheses) == 0 {
		return &text.InvalidOptionError{Option: "hyps", Err: errors.New("at least one hypothesis file is required")}
	}
	if o.Head < 0 {
		return &text.InvalidOptionError{Option: "head", Err: errors.New("must not be negative")}
	}
	switch o.Format {
	case "":
		o.Format = FormatText
	case FormatText, FormatArrow:
	default:
		return &text.InvalidOptionError{Option: "format", Value: o.Format, Err: errors.New("want text or arrow")}
	}
	if o.TranslateLang != "" {
		if _, err := text.ParseLanguage("translate", o.TranslateLang); err != nil {
			return err
		}
	}
	if o.Text.Detokenize != "" {
		if _, err := text.ParseLanguage("detok", o.Text.Detokenize); err != nil {
			return err
		}
	}
	if o.Dataset == "" {
		o.Dataset = "meld"
	}
	return nil
}
