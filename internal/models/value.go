package models

import (
	"math"
	"strconv"
	"strings"
)

// Value is a single markbook cell: the text the table showed plus its numeric reading.
// Derived values (roll-ups) carry no text of their own.
type Value struct {
	Text      string
	Number    float64
	Numeric   bool
	Undefined bool
}

func ParseValue(text string) Value {
	v := Value{Text: text}
	if n, ok := parseFloatLoose(text); ok {
		v.Number = n
		v.Numeric = true
	}
	return v
}

func NumberValue(n float64) Value {
	return Value{Text: strconv.FormatFloat(n, 'f', -1, 64), Number: n, Numeric: true}
}

// UndefinedValue is a roll-up with no contributing children: "no grade available".
func UndefinedValue() Value {
	return Value{Undefined: true}
}

func (v Value) Blank() bool {
	return !v.Numeric && !v.Undefined && strings.TrimSpace(v.Text) == ""
}

// Invalid reports a cell holding text that is not a number, e.g. "EXC".
func (v Value) Invalid() bool {
	return !v.Numeric && strings.TrimSpace(v.Text) != ""
}

func (v Value) Float() (float64, bool) {
	return v.Number, v.Numeric
}

// parseFloatLoose accepts a plain number or a cell whose first field is one ("12 late").
// NaN and Inf spellings are never treated as marks.
func parseFloatLoose(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, finite(v)
	}
	if sp := strings.Fields(s); len(sp) > 0 {
		if v, err := strconv.ParseFloat(sp[0], 64); err == nil {
			return v, finite(v)
		}
	}
	return 0, false
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
