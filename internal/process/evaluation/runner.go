// Package evaluation asks the model every question of a battery and grades
// the replies.
//
// Calls are strictly sequential and blocking: one invocation per question,
// no retries and no parallel dispatch. A failed invocation never stops the
// batch; the question is graded against ErrorResponse instead.
package evaluation

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/lueurxax/framing-eval/internal/core/domain"
	"github.com/lueurxax/framing-eval/internal/core/grading"
	"github.com/lueurxax/framing-eval/internal/platform/observability"
)

// ErrorResponse replaces the model's answer when the invocation fails.
const ErrorResponse = "Error generating response"

const (
	logFieldIndex     = "index"
	logFieldStatement = "statement"
	logFieldExpected  = "expected"
	logFieldActual    = "actual"
	logFieldCorrect   = "correct"
	logFieldModel     = "model"
	logFieldGroup     = "emotion_group"
)

// Invoker is the model client. Implementations own their transport, timeout
// and credential handling.
type Invoker interface {
	Complete(ctx context.Context, prompt, model string) (string, error)
}

// Observer is notified after each question is graded. index is zero-based.
type Observer func(index, total int, record domain.GradedRecord)

// Runner grades a question battery against one model.
type Runner struct {
	invoker  Invoker
	observer Observer
	logger   *zerolog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithObserver registers a progress callback.
func WithObserver(o Observer) Option {
	return func(r *Runner) {
		r.observer = o
	}
}

// New creates a Runner around an already configured model client.
func New(invoker Invoker, logger *zerolog.Logger, opts ...Option) *Runner {
	r := &Runner{
		invoker: invoker,
		logger:  logger,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run asks every question in order and returns one record per question, in
// the same order.
func (r *Runner) Run(ctx context.Context, questions []domain.Question, modelID string) []domain.GradedRecord {
	records := make([]domain.GradedRecord, 0, len(questions))

	for i, q := range questions {
		rec := r.grade(ctx, i, q, modelID)
		records = append(records, rec)

		if r.observer != nil {
			r.observer(i, len(questions), rec)
		}
	}

	return records
}

func (r *Runner) grade(ctx context.Context, index int, q domain.Question, modelID string) domain.GradedRecord {
	actual, err := r.invoker.Complete(ctx, q.Statement, modelID)
	if err != nil {
		r.logger.Warn().
			Err(err).
			Int(logFieldIndex, index+1).
			Str(logFieldModel, modelID).
			Msg("model invocation failed, grading placeholder response")

		observability.InvocationFallbacks.Inc()

		actual = ErrorResponse
	}

	rec := domain.GradedRecord{
		Statement:    q.Statement,
		Expected:     q.Expected,
		Actual:       actual,
		Correct:      grading.IsCorrect(actual, q.Expected),
		EmotionGroup: q.EmotionGroup,
	}

	outcome := observability.OutcomeIncorrect
	if rec.Correct {
		outcome = observability.OutcomeCorrect
	}

	observability.RecordsGraded.WithLabelValues(outcome).Inc()

	r.logger.Info().
		Int(logFieldIndex, index+1).
		Str(logFieldGroup, string(q.EmotionGroup)).
		Str(logFieldStatement, q.Statement).
		Str(logFieldActual, actual).
		Str(logFieldExpected, q.Expected).
		Bool(logFieldCorrect, rec.Correct).
		Msg("question graded")

	return rec
}
