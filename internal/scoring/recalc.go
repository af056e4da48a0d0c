package scoring

import (
	"context"
	"strings"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/markbook/internal/models"
)

// BaselineStore keeps the grade each course showed when a session started.
type BaselineStore interface {
	Capture(ctx context.Context, session, course string, mark float64) (bool, error)
	Lookup(ctx context.Context, session, course string) (float64, bool, error)
}

type Recalculator struct {
	decoder    DepthDecoder
	aggregator *Aggregator
	precision  int
	baselines  BaselineStore
}

func NewRecalculator(decoder DepthDecoder, aggregator *Aggregator, precision int, baselines BaselineStore) *Recalculator {
	return &Recalculator{
		decoder:    decoder,
		aggregator: aggregator,
		precision:  precision,
		baselines:  baselines,
	}
}

func (r *Recalculator) Precision() int {
	return r.precision
}

// pass accumulates the display side effects of one recalculation.
type pass struct {
	writeBacks []models.WriteBack
	exclusions []models.Exclusion
}

func (p *pass) record(res LayerResult) {
	p.writeBacks = append(p.writeBacks, res.WriteBacks()...)
	p.exclusions = append(p.exclusions, res.Exclusions()...)
	for _, c := range res.Contributions {
		if c.Status != models.StatusCounted && c.Status != models.StatusNonPositiveDenominator {
			continue
		}
		c.Node.Mark = models.NumberValue(c.Mark)
		c.Node.Weight = models.NumberValue(c.Weight)
	}
}

// Recalculate rebuilds the tree from rows and rolls marks up items -> sections -> courses.
// A StructureError aborts the pass with nothing written back.
func (r *Recalculator) Recalculate(ctx context.Context, session, course string, rows []models.Row) (*models.FinalResult, error) {
	roots, err := Build(rows, r.decoder)
	if err != nil {
		return nil, err
	}

	var p pass
	for _, top := range roots {
		if locked(top) {
			logger.Debug.Printf("Leaving course row %d (%s) untouched", top.Position, top.Name)
			continue
		}
		if top.Leaf() {
			continue
		}

		for _, section := range top.Children {
			if locked(section) {
				logger.Debug.Printf("Leaving section row %d (%s) untouched", section.Position, section.Name)
				continue
			}
			if section.Leaf() {
				continue
			}
			res := r.aggregator.Aggregate(section.Children)
			p.record(res)
			section.Mark = project(res, section.Denominator)
		}

		res := r.aggregator.Aggregate(top.Children)
		p.record(res)
		top.Mark = project(res, top.Denominator)
	}

	overall := r.aggregator.Aggregate(roots)
	p.record(overall)

	result := &models.FinalResult{
		Course:      course,
		Precision:   r.precision,
		WriteBacks:  p.writeBacks,
		Exclusions:  p.exclusions,
		Percentages: Percentages(roots),
	}

	if overall.Defined && finite(overall.Fraction*100) {
		final := Round(overall.Fraction*100, r.precision)
		result.FinalMark = &final
		result.FinalMarkText = FormatMark(final, r.precision)
	}

	if baseline, ok := r.lookupBaseline(ctx, session, course); ok {
		result.Baseline = &baseline
		if result.FinalMark != nil && *result.FinalMark != baseline {
			delta := Round(*result.FinalMark-baseline, r.precision)
			result.Delta = &delta
		}
	}

	return result, nil
}

func (r *Recalculator) lookupBaseline(ctx context.Context, session, course string) (float64, bool) {
	if r.baselines == nil {
		return 0, false
	}
	baseline, ok, err := r.baselines.Lookup(ctx, session, course)
	if err != nil {
		logger.Error.Printf("Failed to look up baseline for %s/%s: %v", session, course, err)
		return 0, false
	}
	return baseline, ok
}

// CaptureBaseline records the grade as first displayed, e.g. "87.5%".
// Text that is not a number captures nothing, so no delta is ever shown.
func (r *Recalculator) CaptureBaseline(ctx context.Context, session, course, displayed string) (bool, error) {
	if r.baselines == nil {
		return false, nil
	}
	v := models.ParseValue(strings.TrimSuffix(strings.TrimSpace(displayed), "%"))
	mark, ok := v.Float()
	if !ok {
		logger.Debug.Printf("No baseline for %s/%s: %q is not a mark", session, course, displayed)
		return false, nil
	}
	return r.baselines.Capture(ctx, session, course, Round(mark, r.precision))
}

// locked rows hold a non-numeric mark or are hidden by the display layer.
func locked(n *models.GradeNode) bool {
	return n.Mark.Invalid() || n.Hidden
}

func project(res LayerResult, denominator models.Value) models.Value {
	scale, ok := denominator.Float()
	if !res.Defined || !ok || !finite(res.Fraction*scale) {
		return models.UndefinedValue()
	}
	return models.NumberValue(res.Fraction * scale)
}
