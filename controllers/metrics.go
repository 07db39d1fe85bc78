package controllers

import "github.com/prometheus/client_golang/prometheus"

var (
	articleViewsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "article_views_total",
		Help: "Total number of article detail views served.",
	})
	surveySubmissionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "survey_submissions_total",
		Help: "Total number of survey responses submitted.",
	})
)

func init() {
	prometheus.MustRegister(articleViewsTotal, surveySubmissionsTotal)
}
