package translate

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/23skdu/meld/internal/corpus"
)

// Augment translates every source line, in order, one call at a time.
// The first failure aborts the whole corpus; no partial result is returned.
func Augment(ctx context.Context, t Translator, source corpus.Corpus, lang string) (corpus.Corpus, error) {
	out := make(corpus.Corpus, len(source))
	for i, line := range source {
		if err := ctx.Err(); err != nil {
			return nil, &TranslationServiceError{Line: i + 1, Lang: lang, Err: err}
		}
		translated, err := t.Translate(ctx, line, lang)
		if err != nil {
			return nil, &TranslationServiceError{Line: i + 1, Lang: lang, Err: err}
		}
		out[i] = translated
	}
	log.Debug().Int("lines", len(out)).Str("lang", lang).Msg("Translated source corpus")
	return out, nil
}
