package models

// Depth is the level of a markbook row: course, section or assessment item.
type Depth int

const (
	DepthTop Depth = iota
	DepthMiddle
	DepthBottom
)

func (d Depth) String() string {
	switch d {
	case DepthTop:
		return "top"
	case DepthMiddle:
		return "middle"
	case DepthBottom:
		return "bottom"
	default:
		return "unknown"
	}
}

// Row is one markbook table row as the display layer hands it over.
// All numeric cells stay as text; parsing is done by the scoring package.
type Row struct {
	Name          string `db:"name" json:"name" yaml:"name" validate:"max=256"`
	Discriminator string `db:"depth" json:"depth" yaml:"depth" validate:"max=64"`
	Mark          string `db:"mark" json:"mark" yaml:"mark" validate:"max=32"`
	Denominator   string `db:"denominator" json:"denominator" yaml:"denominator" validate:"max=32"`
	Weight        string `db:"weight" json:"weight" yaml:"weight" validate:"max=32"`
	Hidden        bool   `db:"hidden" json:"hidden" yaml:"hidden"`
	Source        string `db:"source" json:"source" yaml:"source" validate:"max=128"`
}

type Course struct {
	Code          string `db:"course" json:"course" yaml:"course" validate:"required,max=32"`
	Name          string `db:"name" json:"name" yaml:"name"`
	InitialMark   string `db:"initial_mark" json:"initial_mark" yaml:"initial_mark"`
	DepthEncoding string `db:"depth_encoding" json:"depth_encoding" yaml:"depth_encoding" validate:"omitempty,oneof=labelled indented"`
}

// Markbook is a course header plus its rows in display order.
type Markbook struct {
	Course `yaml:",inline"`
	Rows   []Row `json:"rows" yaml:"rows"`
}
