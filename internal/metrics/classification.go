package metrics

import (
	"sort"

	"github.com/autextification/scorer/internal/models"
)

// Pairs holds aligned (true, predicted) label vectors encoded as indices into
// a sorted label set. Scores can be computed over the whole vector or over a
// resample of it without re-hashing strings.
type Pairs struct {
	labels []string
	truth  []int
	pred   []int
}

// NewPairs encodes yTrue and yPred. The label set is the sorted union of both
// vectors. yTrue and yPred must have the same length.
func NewPairs(yTrue, yPred []string) *Pairs {
	seen := make(map[string]struct{}, 8)
	for _, l := range yTrue {
		seen[l] = struct{}{}
	}
	for _, l := range yPred {
		seen[l] = struct{}{}
	}
	labels := make([]string, 0, len(seen))
	for l := range seen {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	code := make(map[string]int, len(labels))
	for i, l := range labels {
		code[l] = i
	}
	p := &Pairs{
		labels: labels,
		truth:  make([]int, len(yTrue)),
		pred:   make([]int, len(yPred)),
	}
	for i := range yTrue {
		p.truth[i] = code[yTrue[i]]
		p.pred[i] = code[yPred[i]]
	}
	return p
}

// Len returns the number of aligned pairs.
func (p *Pairs) Len() int { return len(p.truth) }

// Labels returns the sorted label set.
func (p *Pairs) Labels() []string { return p.labels }

// counts tallies per-label true positives, predicted totals and support over
// idx, or over every pair when idx is nil.
type counts struct {
	tp, predicted, support []int
	n                      int
}

func (p *Pairs) count(idx []int) counts {
	k := len(p.labels)
	c := counts{
		tp:        make([]int, k),
		predicted: make([]int, k),
		support:   make([]int, k),
	}
	add := func(i int) {
		t, y := p.truth[i], p.pred[i]
		c.support[t]++
		c.predicted[y]++
		if t == y {
			c.tp[t]++
		}
		c.n++
	}
	if idx == nil {
		for i := range p.truth {
			add(i)
		}
	} else {
		for _, i := range idx {
			add(i)
		}
	}
	return c
}

func perClass(c counts, label int) (precision, recall, f1 float64) {
	precision = safeDivide(float64(c.tp[label]), float64(c.predicted[label]))
	recall = safeDivide(float64(c.tp[label]), float64(c.support[label]))
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}
	return precision, recall, f1
}

// MacroF1 returns the unweighted mean of per-class F1 over idx (or all pairs
// when idx is nil). Only labels that occur in the selected pairs, as truth or
// prediction, take part in the average.
func (p *Pairs) MacroF1(idx []int) float64 {
	c := p.count(idx)
	var sum float64
	present := 0
	for l := range p.labels {
		if c.support[l] == 0 && c.predicted[l] == 0 {
			continue
		}
		_, _, f1 := perClass(c, l)
		sum += f1
		present++
	}
	return safeDivide(sum, float64(present))
}

// Report builds the per-class classification report over every pair.
func (p *Pairs) Report() models.ClassificationReport {
	c := p.count(nil)
	k := len(p.labels)

	report := models.ClassificationReport{
		Labels:  append([]string(nil), p.labels...),
		Classes: make(map[string]models.ClassScores, k),
	}

	precisions := make([]float64, k)
	recalls := make([]float64, k)
	f1s := make([]float64, k)
	correct := 0
	for l, name := range p.labels {
		precisions[l], recalls[l], f1s[l] = perClass(c, l)
		correct += c.tp[l]
		report.Classes[name] = models.ClassScores{
			Precision: roundTo4(precisions[l]),
			Recall:    roundTo4(recalls[l]),
			F1:        roundTo4(f1s[l]),
			Support:   c.support[l],
		}
	}

	report.Accuracy = roundTo4(safeDivide(float64(correct), float64(c.n)))
	report.MacroAvg = models.ClassScores{
		Precision: roundTo4(Mean(precisions)),
		Recall:    roundTo4(Mean(recalls)),
		F1:        roundTo4(Mean(f1s)),
		Support:   c.n,
	}
	report.WeightedAvg = models.ClassScores{
		Precision: roundTo4(WeightedMean(precisions, c.support)),
		Recall:    roundTo4(WeightedMean(recalls, c.support)),
		F1:        roundTo4(WeightedMean(f1s, c.support)),
		Support:   c.n,
	}
	return report
}
