package text

import (
	"golang.org/x/text/language"
)

// ParseLanguage validates a language code such as "en" or "pt-BR" and returns its tag.
// option is only used to label the error.
func ParseLanguage(option, code string) (language.Tag, error) {
	if code == "" {
		return language.Und, &InvalidOptionError{Option: option, Value: code}
	}
	tag, err := language.Parse(code)
	if err != nil {
		return language.Und, &InvalidOptionError{Option: option, Value: code, Err: err}
	}
	return tag, nil
}

// baseLanguage returns the ISO 639 base of tag, e.g. "fr" for "fr-CA".
func baseLanguage(tag language.Tag) string {
	base, _ := tag.Base()
	return base.String()
}
