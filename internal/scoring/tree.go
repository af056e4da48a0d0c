package scoring

import (
	"github.com/shrimpsizemoose/markbook/internal/models"
)

// DepthDecoder maps a row's raw depth discriminator onto the three markbook levels.
type DepthDecoder interface {
	Decode(discriminator string) (models.Depth, bool)
}

// Build turns rows into course trees. Items that follow a course row with no
// section header in between attach straight to the course.
func Build(rows []models.Row, decoder DepthDecoder) ([]*models.GradeNode, error) {
	var (
		roots  []*models.GradeNode
		top    *models.GradeNode
		middle *models.GradeNode
	)

	for i, row := range rows {
		depth, ok := decoder.Decode(row.Discriminator)
		if !ok {
			return nil, &StructureError{
				Position:      i,
				Discriminator: row.Discriminator,
				Reason:        "unrecognised depth discriminator",
			}
		}

		node := models.NewGradeNode(i, depth, row)
		switch depth {
		case models.DepthTop:
			roots = append(roots, node)
			top, middle = node, nil
		case models.DepthMiddle:
			if top == nil {
				return nil, &StructureError{Position: i, Discriminator: row.Discriminator, Reason: "section row before any course row"}
			}
			top.Children = append(top.Children, node)
			middle = node
		case models.DepthBottom:
			if top == nil {
				return nil, &StructureError{Position: i, Discriminator: row.Discriminator, Reason: "item row before any course row"}
			}
			if middle != nil {
				middle.Children = append(middle.Children, node)
			} else {
				top.Children = append(top.Children, node)
			}
		}
	}

	return roots, nil
}
