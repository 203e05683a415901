package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "regfaq",
		Name:      "queries_total",
		Help:      "Chat queries handled, by outcome.",
	}, []string{"outcome"})

	ingestionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "regfaq",
		Name:      "ingestions_total",
		Help:      "Document ingestions, by outcome.",
	}, []string{"outcome"})

	knowledgeUnitsAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "regfaq",
		Name:      "knowledge_units_accepted_total",
		Help:      "Knowledge units committed to the store.",
	})

	feedbackTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "regfaq",
		Name:      "feedback_total",
		Help:      "Feedback submissions, by type.",
	}, []string{"type"})
)
