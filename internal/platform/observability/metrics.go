package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values shared by callers.
const (
	StatusSuccess = "success"
	StatusError   = "error"

	OutcomeCorrect   = "correct"
	OutcomeIncorrect = "incorrect"

	DimensionOverall  = "overall"
	DimensionEmotion  = "emotion"
	DimensionCategory = "category"
)

var (
	LLMRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "framing_eval_llm_requests_total",
		Help: "The total number of model invocations by provider and status",
	}, []string{"provider", "status"})

	LLMRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "framing_eval_llm_request_duration_seconds",
		Help:    "Duration of model invocations",
		Buckets: prometheus.DefBuckets,
	}, []string{"model"})

	RecordsGraded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "framing_eval_records_graded_total",
		Help: "The total number of graded questions by outcome",
	}, []string{"outcome"})

	InvocationFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "framing_eval_invocation_fallbacks_total",
		Help: "Number of questions graded against the error placeholder after a failed invocation",
	})

	BucketAccuracy = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "framing_eval_bucket_accuracy",
		Help: "Share of correct answers per report bucket",
	}, []string{"dimension", "bucket"})

	BucketTotal = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "framing_eval_bucket_total",
		Help: "Number of records per report bucket",
	}, []string{"dimension", "bucket"})
)

// RecordBucket sets the accuracy and size gauges for one report bucket.
func RecordBucket(dimension, bucket string, correct, total int) {
	BucketTotal.WithLabelValues(dimension, bucket).Set(float64(total))

	accuracy := 0.0
	if total > 0 {
		accuracy = float64(correct) / float64(total)
	}

	BucketAccuracy.WithLabelValues(dimension, bucket).Set(accuracy)
}

// WriteTextfile dumps the default registry in the node_exporter textfile
// collector format.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}

	return nil
}
