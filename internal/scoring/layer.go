package scoring

import (
	"math"
	"strings"

	"github.com/shrimpsizemoose/markbook/internal/models"
)

var DefaultExcusedSentinels = []string{"EXC", "ABS", "INC", "NHI", "COL"}

// Aggregator rolls a layer of sibling nodes up into one weighted fraction.
type Aggregator struct {
	sentinels map[string]struct{}
}

func NewAggregator(excused []string) *Aggregator {
	sentinels := make(map[string]struct{}, len(excused))
	for _, s := range excused {
		sentinels[strings.ToUpper(strings.TrimSpace(s))] = struct{}{}
	}
	return &Aggregator{sentinels: sentinels}
}

// Contribution is how one node of a layer was read, after clamping.
type Contribution struct {
	Node        *models.GradeNode
	Status      models.Status
	Mark        float64
	Weight      float64
	Denominator float64
}

type LayerResult struct {
	Fraction      float64
	Defined       bool
	Contributions []Contribution
}

func (a *Aggregator) Aggregate(layer []*models.GradeNode) LayerResult {
	var sum, totalWeight float64
	res := LayerResult{Contributions: make([]Contribution, 0, len(layer))}

	for _, node := range layer {
		mark, okMark := node.Mark.Float()
		weight, okWeight := node.Weight.Float()
		denom, okDenom := node.Denominator.Float()

		if !okMark || !okWeight || !okDenom {
			res.Contributions = append(res.Contributions, Contribution{
				Node:   node,
				Status: a.classify(node),
			})
			continue
		}

		if mark < 0 {
			mark = 0
		}
		if weight < 0 {
			weight = 0
		}

		c := Contribution{Node: node, Mark: mark, Weight: weight, Denominator: denom}
		if denom <= 0 {
			c.Status = models.StatusNonPositiveDenominator
			res.Contributions = append(res.Contributions, c)
			continue
		}

		contribution := (mark / denom) * weight
		if !finite(mark/denom) || !finite(contribution) {
			c.Status = models.StatusOverflow
			res.Contributions = append(res.Contributions, c)
			continue
		}

		c.Status = models.StatusCounted
		totalWeight += weight
		sum += contribution
		res.Contributions = append(res.Contributions, c)
	}

	// a layer whose running totals left float range has no meaningful grade
	if !finite(sum) || !finite(totalWeight) {
		return res
	}
	if totalWeight > 0 {
		res.Fraction = sum / totalWeight
		res.Defined = true
	}
	return res
}

// classify names the first cell (mark, weight, denominator) that kept a node out.
func (a *Aggregator) classify(node *models.GradeNode) models.Status {
	for _, v := range []models.Value{node.Mark, node.Weight, node.Denominator} {
		switch {
		case v.Numeric:
			continue
		case v.Undefined:
			return models.StatusUndefined
		case v.Blank():
			return models.StatusBlank
		case a.Excused(v.Text):
			return models.StatusExcused
		default:
			return models.StatusInvalid
		}
	}
	return models.StatusInvalid
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func (a *Aggregator) Excused(text string) bool {
	_, ok := a.sentinels[strings.ToUpper(strings.TrimSpace(text))]
	return ok
}

// WriteBacks lists the clamped triples of every node that parsed, for display.
// Nodes without a display source are skipped.
func (r LayerResult) WriteBacks() []models.WriteBack {
	var out []models.WriteBack
	for _, c := range r.Contributions {
		if c.Status != models.StatusCounted && c.Status != models.StatusNonPositiveDenominator {
			continue
		}
		if c.Node.Source == "" {
			continue
		}
		out = append(out, models.WriteBack{
			Source:      c.Node.Source,
			Mark:        c.Mark,
			DisplayMark: Round(c.Mark, displayPrecision),
			Weight:      c.Weight,
			Denominator: c.Denominator,
			Status:      c.Status,
		})
	}
	return out
}

func (r LayerResult) Exclusions() []models.Exclusion {
	var out []models.Exclusion
	for _, c := range r.Contributions {
		switch c.Status {
		case models.StatusCounted, models.StatusNonPositiveDenominator:
			continue
		}
		out = append(out, models.Exclusion{Source: c.Node.Source, Status: c.Status})
	}
	return out
}
