package models

// RejectReason explains why a run was left off the leaderboard.
type RejectReason string

const (
	RejectCountMismatch RejectReason = "count_mismatch"
	RejectIDMismatch    RejectReason = "id_mismatch"
	RejectParseError    RejectReason = "parse_error"
)

// ClassScores holds precision, recall and F1 for one label (or an average).
type ClassScores struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1-score"`
	Support   int     `json:"support"`
}

// ClassificationReport is the per-class breakdown of one run.
// All scores are rounded to four decimal digits.
type ClassificationReport struct {
	Labels      []string               `json:"labels"`
	Classes     map[string]ClassScores `json:"classes"`
	Accuracy    float64                `json:"accuracy"`
	MacroAvg    ClassScores            `json:"macro avg"`
	WeightedAvg ClassScores            `json:"weighted avg"`
}

// ConfidenceInterval is a bootstrap interval around a point estimate.
type ConfidenceInterval struct {
	Low           float64 `json:"low"`
	High          float64 `json:"high"`
	StandardError float64 `json:"standard_error"`
	Level         float64 `json:"confidence_level"`
	Resamples     int     `json:"n_resamples"`
	Method        string  `json:"method"`
}

// EvaluationResult is the score of one accepted run.
type EvaluationResult struct {
	Team    string               `json:"team"`
	Run     string               `json:"run"`
	Report  ClassificationReport `json:"all_metrics"`
	MacroF1 float64              `json:"mf1"`
	CI      ConfidenceInterval   `json:"mf1_cinterval"`
}

// Rejection records a run that failed validation.
type Rejection struct {
	Team   string       `json:"team"`
	Run    string       `json:"run"`
	Path   string       `json:"path"`
	Reason RejectReason `json:"reason"`
	Detail string       `json:"detail"`
}
