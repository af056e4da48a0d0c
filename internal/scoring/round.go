package scoring

import (
	"math"
	"strconv"

	"github.com/shrimpsizemoose/markbook/internal/models"
)

// displayPrecision is used for row cells and row percentages regardless of the
// configured precision of the headline grade.
const displayPrecision = 2

func Round(x float64, precision int) float64 {
	p := math.Pow(10, float64(precision))
	if math.IsInf(x*p, 0) {
		// magnitudes this large carry no fractional digits
		return x
	}
	return math.Round(x*p) / p
}

func FormatMark(x float64, precision int) string {
	return strconv.FormatFloat(x, 'f', precision, 64)
}

// Percentages computes mark/denominator as a percentage for every row that has both.
// Rows with a zero or missing mark or denominator get a nil percentage.
func Percentages(roots []*models.GradeNode) []models.RowPercent {
	var out []models.RowPercent
	for _, root := range roots {
		root.Walk(func(n *models.GradeNode) {
			if n.Source == "" {
				return
			}
			rp := models.RowPercent{Source: n.Source}
			mark, okMark := n.Mark.Float()
			denom, okDenom := n.Denominator.Float()
			if okMark && okDenom && mark != 0 && denom != 0 && finite(mark/denom*100) {
				p := Round(mark/denom*100, displayPrecision)
				rp.Percent = &p
			}
			out = append(out, rp)
		})
	}
	return out
}
