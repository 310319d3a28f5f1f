// Package criteria compiles validated card search filters into a closed,
// statically typed set of query predicates. Compilation is pure: it never
// touches external state, and a compiled Criteria is immutable.
package criteria

import (
	"time"
)

// Fields that predicates may constrain.
const (
	FieldBoardID     = "board_id"
	FieldListID      = "list_id"
	FieldName        = "name"
	FieldDescription = "description"
	FieldCreatedAt   = "created_at"
)

// Filters are the validated search inputs. Nil means "no constraint".
// StartDate and EndDate are calendar days in strict YYYY-MM-DD form; the HTTP
// boundary rejects anything else before this package sees them.
type Filters struct {
	StartDate   *string
	EndDate     *string
	BoardID     *int64
	ListID      *int64
	Name        *string
	Description *string
}

// Equality constrains a field to an exact identifier value.
type Equality struct {
	Field string
	Value int64
}

// Contains constrains a text field to a case-insensitive substring match,
// matching the backing store's ILIKE semantics.
type Contains struct {
	Field  string
	Phrase string
}

// CreatedRange bounds created_at inclusively. A nil bound is open.
type CreatedRange struct {
	Min *time.Time
	Max *time.Time
}

// Criteria is the compiled query form.
type Criteria struct {
	Equalities []Equality
	Contains   []Contains
	Created    *CreatedRange
}

// DateLayout is the only accepted calendar date format.
const DateLayout = "2006-01-02"

// Compile translates filters into criteria. Dates become inclusive instant
// bounds on created_at: the start date's 00:00:00.000 and the end date's
// 23:59:59.999, both in UTC.
func Compile(f Filters) Criteria {
	var c Criteria

	if f.StartDate != nil || f.EndDate != nil {
		r := &CreatedRange{}
		if f.StartDate != nil {
			if day, err := time.ParseInLocation(DateLayout, *f.StartDate, time.UTC); err == nil {
				min := startOfDay(day)
				r.Min = &min
			}
		}
		if f.EndDate != nil {
			if day, err := time.ParseInLocation(DateLayout, *f.EndDate, time.UTC); err == nil {
				max := endOfDay(day)
				r.Max = &max
			}
		}
		if r.Min != nil || r.Max != nil {
			c.Created = r
		}
	}

	if f.Name != nil && *f.Name != "" {
		c.Contains = append(c.Contains, Contains{Field: FieldName, Phrase: *f.Name})
	}
	if f.Description != nil && *f.Description != "" {
		c.Contains = append(c.Contains, Contains{Field: FieldDescription, Phrase: *f.Description})
	}

	if f.BoardID != nil {
		c.Equalities = append(c.Equalities, Equality{Field: FieldBoardID, Value: *f.BoardID})
	}
	if f.ListID != nil {
		c.Equalities = append(c.Equalities, Equality{Field: FieldListID, Value: *f.ListID})
	}

	return c
}

func startOfDay(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
}

func endOfDay(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 999_000_000, time.UTC)
}
