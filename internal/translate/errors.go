package translate

import (
	"errors"
	"fmt"
)

// ErrTranslationService marks a failed call to the translation service.
var ErrTranslationService = errors.New("translation service error")

// TranslationServiceError reports the 1-based source line whose translation failed.
type TranslationServiceError struct {
	Line int
	Lang string
	Err  error
}

func (e *TranslationServiceError) Error() string {
	return fmt.Sprintf("translate line %d to %s: %v", e.Line, e.Lang, e.Err)
}

func (e *TranslationServiceError) Unwrap() []error { return []error{ErrTranslationService, e.Err} }
