package scoring

import "fmt"

// StructureError means the row source broke the course/section/item nesting.
// It aborts the whole recalculation.
type StructureError struct {
	Position      int
	Discriminator string
	Reason        string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("markbook row %d (depth %q): %s", e.Position, e.Discriminator, e.Reason)
}
