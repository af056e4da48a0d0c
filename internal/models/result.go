package models

// Status tells how a node took part in its layer's aggregation.
type Status string

const (
	StatusCounted                Status = "counted"
	StatusExcused                Status = "excused"
	StatusBlank                  Status = "blank"
	StatusInvalid                Status = "invalid"
	StatusUndefined              Status = "undefined"
	StatusNonPositiveDenominator Status = "non_positive_denominator"
	// StatusOverflow marks a node whose ratio or weighted share is not a finite number.
	StatusOverflow Status = "overflow"
)

// WriteBack is the clamped triple the display layer renders back into a row.
type WriteBack struct {
	Source      string  `json:"source"`
	Mark        float64 `json:"mark"`
	DisplayMark float64 `json:"display_mark"`
	Weight      float64 `json:"weight"`
	Denominator float64 `json:"denominator"`
	Status      Status  `json:"status"`
}

// Exclusion is a row left out of its layer because one of its cells is not a number.
type Exclusion struct {
	Source string `json:"source"`
	Status Status `json:"status"`
}

type RowPercent struct {
	Source  string   `json:"source"`
	Percent *float64 `json:"percent"`
}

// FinalResult is the headline grade of one recalculation pass.
// Nil pointers mean "no grade available" / "no delta".
type FinalResult struct {
	Course        string       `json:"course"`
	Precision     int          `json:"precision"`
	FinalMark     *float64     `json:"final_mark_percent"`
	FinalMarkText string       `json:"final_mark_text,omitempty"`
	Baseline      *float64     `json:"baseline_mark_percent"`
	Delta         *float64     `json:"delta,omitempty"`
	WriteBacks    []WriteBack  `json:"write_backs"`
	Exclusions    []Exclusion  `json:"exclusions,omitempty"`
	Percentages   []RowPercent `json:"percentages,omitempty"`
}

// CourseMark is one course's line in a Summary.
type CourseMark struct {
	Course        string   `json:"course"`
	Name          string   `json:"name"`
	FinalMark     *float64 `json:"final_mark_percent"`
	FinalMarkText string   `json:"final_mark_text,omitempty"`
	Delta         *float64 `json:"delta,omitempty"`
}

// Summary averages the final marks of every stored course. Courses without a
// grade are listed but do not count towards the average.
type Summary struct {
	Precision   int          `json:"precision"`
	Courses     []CourseMark `json:"courses"`
	Average     *float64     `json:"average_percent"`
	AverageText string       `json:"average_text,omitempty"`
}
