package app

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/23skdu/meld/internal/corpus"
	"github.com/23skdu/meld/internal/meld"
	"github.com/23skdu/meld/internal/text"
	"github.com/23skdu/meld/internal/translate"
)

var tracer = otel.Tracer("meld")

// Corpora are the raw inputs of one run.
type Corpora struct {
	Source     corpus.Named
	Reference  corpus.Named
	Hypotheses []corpus.Named
}

// Melder turns raw corpora into compared sentences.
type Melder struct {
	pipeline   *text.Pipeline
	translator translate.Translator
	lang       string
	head       int
}

// NewMelder returns a Melder. translator is only used when lang is set.
func NewMelder(p *text.Pipeline, translator translate.Translator, lang string, head int) *Melder {
	return &Melder{pipeline: p, translator: translator, lang: lang, head: head}
}

// Meld checks lengths, cuts every corpus to the display limit, preprocesses, appends
// the translated hypothesis and compares. Nothing is returned on error.
func (m *Melder) Meld(ctx context.Context, c Corpora) ([]meld.Sentence, error) {
	ctx, span := tracer.Start(ctx, "Meld")
	defer span.End()

	all := make([]corpus.Named, 0, 2+len(c.Hypotheses))
	all = append(all, c.Source, c.Reference)
	all = append(all, c.Hypotheses...)
	if err := corpus.CheckLengths(all...); err != nil {
		span.RecordError(err)
		return nil, err
	}

	in := meld.Input{
		Source:    m.prepare(c.Source),
		Reference: m.prepare(c.Reference),
	}
	for _, h := range c.Hypotheses {
		in.Hypotheses = append(in.Hypotheses, m.prepare(h))
	}

	if m.lang != "" {
		if m.translator == nil {
			return nil, &text.InvalidOptionError{Option: "translate", Value: m.lang, Err: errors.New("no translation service configured")}
		}
		translated, err := translate.Augment(ctx, m.translator, in.Source.Lines, m.lang)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		// service output is already cased
		post := m.pipeline.WithTruecaser(nil)
		in.Hypotheses = append(in.Hypotheses, corpus.Named{
			Path:  "translate:" + m.lang,
			Lines: post.ApplyAll(translated),
		})
	}

	sentences, err := meld.Align(in)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	sentencesMelded.Add(float64(len(sentences)))
	for _, s := range sentences {
		for _, h := range s.Hypotheses {
			if h.Match {
				hypothesisMatches.Inc()
			}
		}
	}
	span.SetAttributes(
		attribute.Int("sentences", len(sentences)),
		attribute.Int("hypotheses", len(in.Hypotheses)),
	)
	return sentences, nil
}

// prepare cuts a corpus to the display limit and preprocesses it.
func (m *Melder) prepare(n corpus.Named) corpus.Named {
	lines := n.Lines
	if m.head > 0 && m.head < len(lines) {
		lines = lines[:m.head]
	}
	return corpus.Named{Path: n.Path, Lines: m.pipeline.ApplyAll(lines)}
}
