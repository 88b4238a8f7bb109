package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sentencesMelded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meld_sentences_total",
		Help: "Sentences aligned and compared",
	})

	hypothesisMatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meld_hypothesis_matches_total",
		Help: "Hypothesis lines identical to their reference",
	})
)
