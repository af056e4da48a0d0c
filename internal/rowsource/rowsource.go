// Package rowsource decodes how the markbook page marked a row's depth.
//
// The "labelled" encoding uses the class of the table region a row sits in,
// the "indented" encoding uses the left margin of the row's name cell.
package rowsource

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shrimpsizemoose/markbook/internal/models"
)

const (
	EncodingLabelled = "labelled"
	EncodingIndented = "indented"
)

// indentStep is the margin between two levels of the indented markbook, in px.
const indentStep = 20

type Decoder interface {
	Decode(discriminator string) (models.Depth, bool)
	Encoding() string
}

func ForEncoding(name string) (Decoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case EncodingLabelled, "":
		return Labelled{}, nil
	case EncodingIndented:
		return Indented{}, nil
	default:
		return nil, fmt.Errorf("unknown depth encoding %q, use %q or %q", name, EncodingLabelled, EncodingIndented)
	}
}

// Labelled reads table region classes: course rows sit in "table-primary",
// section rows in "table-active" and item rows in an unclassed region.
type Labelled struct{}

func (Labelled) Encoding() string { return EncodingLabelled }

func (Labelled) Decode(discriminator string) (models.Depth, bool) {
	switch strings.TrimSpace(discriminator) {
	case "table-primary":
		return models.DepthTop, true
	case "table-active":
		return models.DepthMiddle, true
	case "":
		return models.DepthBottom, true
	default:
		return 0, false
	}
}

// Indented reads a left margin such as "margin-left: 20px" or just "20".
type Indented struct{}

func (Indented) Encoding() string { return EncodingIndented }

func (Indented) Decode(discriminator string) (models.Depth, bool) {
	s := strings.ToLower(strings.Join(strings.Fields(discriminator), ""))
	s = strings.TrimPrefix(s, "margin-left:")
	s = strings.TrimSuffix(s, ";")
	s = strings.TrimSuffix(s, "px")

	px, err := strconv.Atoi(s)
	if err != nil || px < 0 || px%indentStep != 0 {
		return 0, false
	}

	switch px / indentStep {
	case 0:
		return models.DepthTop, true
	case 1:
		return models.DepthMiddle, true
	case 2:
		return models.DepthBottom, true
	default:
		return 0, false
	}
}
