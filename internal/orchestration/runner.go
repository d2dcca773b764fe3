package orchestration

import (
	"fmt"
	"iter"
	"log/slog"

	"github.com/autextification/scorer/internal/dataset"
	"github.com/autextification/scorer/internal/metrics"
	"github.com/autextification/scorer/internal/models"
	"github.com/autextification/scorer/internal/statistics"
)

// Options controls how runs are validated and scored.
type Options struct {
	Bootstrap statistics.Options
	// KeepGoing turns a run that fails to parse into a rejection instead of
	// aborting the whole evaluation.
	KeepGoing bool
}

// Outcome is everything one evaluation pass produced.
type Outcome struct {
	// Results holds accepted runs in discovery order.
	Results    []models.EvaluationResult
	Rejections []models.Rejection
}

// Evaluator validates discovered runs against a ground truth and scores the
// ones that match. Runs are handled one at a time, in order.
type Evaluator struct {
	truth  *dataset.LabelTable
	opts   Options
	logger *slog.Logger
}

// NewEvaluator creates an Evaluator. A nil logger falls back to slog.Default().
func NewEvaluator(truth *dataset.LabelTable, opts Options, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{truth: truth, opts: opts, logger: logger}
}

// Evaluate consumes runs to completion. An error element in runs, or a run
// that fails to parse while KeepGoing is off, stops evaluation and is returned.
func (e *Evaluator) Evaluate(runs iter.Seq2[models.RunRef, error]) (*Outcome, error) {
	out := &Outcome{}
	for ref, err := range runs {
		if err != nil {
			return nil, fmt.Errorf("discovering runs: %w", err)
		}
		e.logger.Debug("Evaluating run", "team", ref.Team, "run", ref.Name, "path", ref.Path)

		run, rej, err := e.Check(ref)
		if err != nil {
			return nil, err
		}
		if rej != nil {
			out.Rejections = append(out.Rejections, *rej)
			continue
		}

		res := Score(e.truth, ref, run, e.opts.Bootstrap)
		e.logger.Debug("Scored run", "team", ref.Team, "run", ref.Name, "mf1", res.MacroF1)
		out.Results = append(out.Results, res)
	}
	return out, nil
}

// Check loads a run and validates it against the ground truth. It returns the
// parsed run when it is accepted, or a Rejection describing why it is not.
// A parse failure is returned as an error unless KeepGoing is set.
func (e *Evaluator) Check(ref models.RunRef) (*dataset.LabelTable, *models.Rejection, error) {
	run, err := dataset.LoadLabels(ref.Path)
	if err != nil {
		if !e.opts.KeepGoing {
			return nil, nil, fmt.Errorf("run %s/%s: %w", ref.Team, ref.Name, err)
		}
		e.logger.Error("Could not parse the predictions of team "+ref.Team, "run", ref.Name, "error", err)
		return nil, e.reject(ref, models.RejectParseError, err.Error()), nil
	}

	if run.Len() != e.truth.Len() {
		e.logger.Warn("The number of predicted examples does not match with the reference: "+ref.Team,
			"run", ref.Name, "predicted", run.Len(), "reference", e.truth.Len())
		return nil, e.reject(ref, models.RejectCountMismatch,
			fmt.Sprintf("predicted %d rows, reference has %d", run.Len(), e.truth.Len())), nil
	}

	// Equal row counts plus full id coverage leave no room for duplicate ids,
	// so a run with duplicates always fails one of these two checks.
	if overlap := e.truth.Overlap(run); overlap != e.truth.Len() {
		e.logger.Warn(fmt.Sprintf("There is a mismatch between the ids of team %s and the ground truth.", ref.Team),
			"run", ref.Name, "matched", overlap, "reference", e.truth.Len(), "duplicates", len(run.Duplicates()))
		detail := fmt.Sprintf("%d of %d reference ids present", overlap, e.truth.Len())
		if d := len(run.Duplicates()); d > 0 {
			detail += fmt.Sprintf(", %d duplicate ids", d)
		}
		return nil, e.reject(ref, models.RejectIDMismatch, detail), nil
	}

	return run, nil, nil
}

func (e *Evaluator) reject(ref models.RunRef, reason models.RejectReason, detail string) *models.Rejection {
	return &models.Rejection{
		Team:   ref.Team,
		Run:    ref.Name,
		Path:   ref.Path,
		Reason: reason,
		Detail: detail,
	}
}

// Align joins run predictions onto the ground truth. The ground truth drives
// the join, so the vectors follow its row order; ids missing from the run get
// an empty prediction.
func Align(truth, run *dataset.LabelTable) (yTrue, yPred []string) {
	yTrue = make([]string, truth.Len())
	yPred = make([]string, truth.Len())
	for i, r := range truth.Records {
		yTrue[i] = r.Label
		yPred[i], _ = run.Label(r.ID)
	}
	return yTrue, yPred
}

// Score computes the classification report, macro-F1 and its bootstrap
// interval for an accepted run.
func Score(truth *dataset.LabelTable, ref models.RunRef, run *dataset.LabelTable, opts statistics.Options) models.EvaluationResult {
	yTrue, yPred := Align(truth, run)
	pairs := metrics.NewPairs(yTrue, yPred)

	return models.EvaluationResult{
		Team:    ref.Team,
		Run:     ref.Name,
		Report:  pairs.Report(),
		MacroF1: pairs.MacroF1(nil),
		CI:      statistics.PairedBootstrap(pairs.Len(), pairs.MacroF1, opts),
	}
}
