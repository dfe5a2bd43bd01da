// Package app wires configuration, the model registry and the optional
// archive and notifier into the three operations the CLI exposes:
//
//   - RunEvaluation: ask a question bank, grade and save the results
//   - Report, ReportRun: aggregate a results file or an archived run into a
//     summary, table and chart
//   - History: list runs archived in Postgres
package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/framing-eval/internal/core/domain"
	coreerrors "github.com/lueurxax/framing-eval/internal/core/errors"
	"github.com/lueurxax/framing-eval/internal/core/llm"
	"github.com/lueurxax/framing-eval/internal/ingest/questionbank"
	"github.com/lueurxax/framing-eval/internal/output/notify"
	"github.com/lueurxax/framing-eval/internal/output/report"
	"github.com/lueurxax/framing-eval/internal/platform/config"
	"github.com/lueurxax/framing-eval/internal/platform/observability"
	"github.com/lueurxax/framing-eval/internal/process/aggregate"
	"github.com/lueurxax/framing-eval/internal/process/evaluation"
	db "github.com/lueurxax/framing-eval/internal/storage"
	"github.com/lueurxax/framing-eval/internal/storage/resultfile"
)

const (
	logFieldModel   = "model"
	logFieldPath    = "path"
	logFieldRunID   = "run_id"
	logFieldRecords = "records"

	dirPerm  = 0o755
	filePerm = 0o644
)

// ModelClient is what the runner needs from the model registry plus the
// fail-fast availability check.
type ModelClient interface {
	evaluation.Invoker
	Check(model string) error
}

// Archive stores and lists finished runs.
type Archive interface {
	SaveRun(ctx context.Context, run db.Run, records []domain.GradedRecord) (string, error)
	ListRuns(ctx context.Context, limit int) ([]db.Run, error)
	LoadRecords(ctx context.Context, runID string) ([]domain.GradedRecord, error)
}

// Notifier posts a finished report.
type Notifier interface {
	Send(r notify.Report) error
}

// App holds the application dependencies and runs the CLI operations.
type App struct {
	cfg      *config.Config
	logger   *zerolog.Logger
	stdout   io.Writer
	progress io.Writer
	now      func() time.Time

	models   ModelClient
	archive  Archive
	notifier Notifier
}

// Option overrides a dependency that would otherwise be built from config.
type Option func(*App)

// WithModelClient replaces the provider registry.
func WithModelClient(m ModelClient) Option {
	return func(a *App) { a.models = m }
}

// WithArchive replaces the Postgres archive.
func WithArchive(ar Archive) Option {
	return func(a *App) { a.archive = ar }
}

// WithNotifier replaces the Telegram notifier.
func WithNotifier(n Notifier) Option {
	return func(a *App) { a.notifier = n }
}

// WithOutput redirects report output and progress lines.
func WithOutput(stdout, progress io.Writer) Option {
	return func(a *App) {
		a.stdout = stdout
		a.progress = progress
	}
}

// WithClock fixes the time used for result file names.
func WithClock(now func() time.Time) Option {
	return func(a *App) { a.now = now }
}

// New creates a new App instance with the given dependencies.
func New(cfg *config.Config, logger *zerolog.Logger, opts ...Option) *App {
	a := &App{
		cfg:      cfg,
		logger:   logger,
		stdout:   os.Stdout,
		progress: os.Stderr,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// RunEvaluation loads the question bank, asks every question and saves the
// graded records. It returns the path of the written results file. Loading
// errors abort before any model call.
func (a *App) RunEvaluation(ctx context.Context, questionsPath, model string) (string, error) {
	questions, err := questionbank.Load(questionsPath)
	if err != nil {
		return "", fmt.Errorf("load questions: %w", err)
	}

	models, cleanup, err := a.modelClient(ctx)
	if err != nil {
		return "", err
	}
	defer cleanup()

	if err := models.Check(model); err != nil {
		return "", err
	}

	a.logger.Info().Str(logFieldModel, model).Int("questions", len(questions)).Msg("starting evaluation")

	runner := evaluation.New(models, a.logger, evaluation.WithObserver(a.printProgress))
	records := runner.Run(ctx, questions, model)

	rep := aggregate.Aggregate(records)
	if err := report.WriteSummary(a.stdout, rep.Overall); err != nil {
		return "", err
	}

	path, err := a.saveResults(model, records)
	if err != nil {
		return "", err
	}

	a.archiveRun(ctx, model, questionsPath, rep.Overall, records)
	a.exportMetrics(rep)

	return path, nil
}

func (a *App) printProgress(index, total int, rec domain.GradedRecord) {
	outcome := observability.OutcomeIncorrect
	if rec.Correct {
		outcome = observability.OutcomeCorrect
	}

	fmt.Fprintf(a.progress, "[%d/%d] %s\n", index+1, total, outcome)
}

func (a *App) modelClient(ctx context.Context) (ModelClient, func(), error) {
	if a.models != nil {
		return a.models, func() {}, nil
	}

	registry, err := llm.NewDefaultRegistry(ctx, a.cfg.LLM, a.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("init model registry: %w", err)
	}

	return registry, func() {
		if err := registry.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("failed to close model registry")
		}
	}, nil
}

func (a *App) saveResults(model string, records []domain.GradedRecord) (string, error) {
	dir := a.cfg.Output.ResultsDir
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return "", fmt.Errorf("create results dir: %w", err)
	}

	path := filepath.Join(dir, resultfile.FileName(a.now(), model))
	if err := resultfile.Save(path, records); err != nil {
		return "", err
	}

	a.logger.Info().Str(logFieldPath, path).Int(logFieldRecords, len(records)).Msg("results saved")

	return path, nil
}

// archiveRun is best effort: the results file is the record of truth.
func (a *App) archiveRun(ctx context.Context, model, source string, overall aggregate.Tally, records []domain.GradedRecord) {
	archive, cleanup, err := a.openArchive(ctx)
	if err != nil {
		a.logger.Warn().Err(err).Msg("run archive unavailable, skipping")
		return
	}

	if archive == nil {
		return
	}
	defer cleanup()

	id, err := archive.SaveRun(ctx, db.Run{
		Model:      model,
		SourceFile: filepath.Base(source),
		Correct:    overall.Correct,
		Total:      overall.Total,
		CreatedAt:  a.now().UTC(),
	}, records)
	if err != nil {
		a.logger.Warn().Err(err).Msg("failed to archive run")
		return
	}

	a.logger.Info().Str(logFieldRunID, id).Msg("run archived")
}

// openArchive returns nil without error when no archive is configured.
func (a *App) openArchive(ctx context.Context) (Archive, func(), error) {
	if a.archive != nil {
		return a.archive, func() {}, nil
	}

	if !a.cfg.Database.Enabled() {
		return nil, func() {}, nil
	}

	database, err := db.NewWithOptions(ctx, a.cfg.Database.PostgresDSN, db.PoolOptionsFromConfig(a.cfg.Database), a.logger)
	if err != nil {
		return nil, nil, err
	}

	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, nil, err
	}

	return database, database.Close, nil
}

func (a *App) exportMetrics(rep aggregate.Report) {
	observability.RecordBucket(observability.DimensionOverall, observability.DimensionOverall, rep.Overall.Correct, rep.Overall.Total)

	for _, e := range rep.ByEmotion {
		observability.RecordBucket(observability.DimensionEmotion, string(e.Emotion), e.Correct, e.Total)
	}

	for _, c := range rep.ByCategory {
		observability.RecordBucket(observability.DimensionCategory, string(c.Category), c.Correct, c.Total)
	}

	if a.cfg.Output.MetricsTextfile == "" {
		return
	}

	if err := observability.WriteTextfile(a.cfg.Output.MetricsTextfile); err != nil {
		a.logger.Warn().Err(err).Str(logFieldPath, a.cfg.Output.MetricsTextfile).Msg("failed to write metrics textfile")
	}
}

// Report aggregates a saved results file, writes the chart next to it and
// prints the summary line and failure table.
func (a *App) Report(_ context.Context, resultsPath string) error {
	records, err := resultfile.Load(resultsPath)
	if err != nil {
		return fmt.Errorf("load results: %w", err)
	}

	return a.emitReport(records, resultfile.ChartPath(resultsPath), reportTitle(resultsPath))
}

// ReportRun does the same for a run stored in the archive. The chart goes to
// the results directory, named after the run ID.
func (a *App) ReportRun(ctx context.Context, runID string) error {
	archive, cleanup, err := a.openArchive(ctx)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}

	if archive == nil {
		return fmt.Errorf("%w: set POSTGRES_DSN to report archived runs", coreerrors.ErrArchiveDisabled)
	}
	defer cleanup()

	records, err := archive.LoadRecords(ctx, runID)
	if err != nil {
		return fmt.Errorf("load run: %w", err)
	}

	if err := os.MkdirAll(a.cfg.Output.ResultsDir, dirPerm); err != nil {
		return fmt.Errorf("create results dir: %w", err)
	}

	chartPath := filepath.Join(a.cfg.Output.ResultsDir, runID+".png")

	return a.emitReport(records, chartPath, "run "+runID)
}

func (a *App) emitReport(records []domain.GradedRecord, chartPath, title string) error {
	rep := aggregate.Aggregate(records)
	if rep.EmotionUnmatched > 0 || rep.EmotionMultiMatched > 0 {
		a.logger.Debug().
			Int("unmatched", rep.EmotionUnmatched).
			Int("multi_matched", rep.EmotionMultiMatched).
			Msg("emotion totals do not reconcile with overall")
	}

	var chart bytes.Buffer
	if err := report.RenderChart(&chart, rep); err != nil {
		return err
	}

	if err := os.WriteFile(chartPath, chart.Bytes(), filePerm); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}

	fmt.Fprintf(a.stdout, "Results visualization saved as '%s'\n", chartPath)

	if err := report.WriteSummary(a.stdout, rep.Overall); err != nil {
		return err
	}

	if err := report.WriteFailureTable(a.stdout, rep.Failures, report.TableOptions{NoColor: a.cfg.Output.NoColor}); err != nil {
		return err
	}

	a.exportMetrics(rep)
	a.notify(title, rep, chart.Bytes())

	return nil
}

func (a *App) notify(title string, rep aggregate.Report, chart []byte) {
	notifier := a.notifier

	if notifier == nil {
		if !a.cfg.Telegram.Enabled() {
			return
		}

		n, err := notify.New(a.cfg.Telegram, a.logger)
		if err != nil {
			a.logger.Warn().Err(err).Msg("telegram notifier unavailable")
			return
		}

		notifier = n
	}

	if err := notifier.Send(notify.Report{Title: title, Report: rep, Chart: chart}); err != nil {
		a.logger.Warn().Err(err).Msg("failed to send report notification")
	}
}

func reportTitle(resultsPath string) string {
	date, model, ok := resultfile.ParseFileName(resultsPath)
	if !ok {
		return filepath.Base(resultsPath)
	}

	return fmt.Sprintf("%s (%s)", model, date.Format(time.DateOnly))
}

// History prints archived runs, newest first.
func (a *App) History(ctx context.Context, limit int) error {
	archive, cleanup, err := a.openArchive(ctx)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}

	if archive == nil {
		return fmt.Errorf("%w: set POSTGRES_DSN to list runs", coreerrors.ErrArchiveDisabled)
	}
	defer cleanup()

	runs, err := archive.ListRuns(ctx, limit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(a.stdout, "No archived runs.")
		return nil
	}

	for _, r := range runs {
		fmt.Fprintf(a.stdout, "%s  %s  %-30s %d/%d\n", r.ID, r.CreatedAt.Format(time.DateTime), r.Model, r.Correct, r.Total)
	}

	return nil
}
