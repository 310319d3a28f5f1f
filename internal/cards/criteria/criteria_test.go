package criteria

import (
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func TestCompileNoDatesYieldsNoCreatedBounds(t *testing.T) {
	c := Compile(Filters{Name: strPtr("invoice")})

	if c.Created != nil {
		t.Fatalf("expected no created_at constraint, got %+v", c.Created)
	}
}

func TestCompileStartDateIsStartOfDayUTC(t *testing.T) {
	c := Compile(Filters{StartDate: strPtr("2024-01-10")})

	if c.Created == nil || c.Created.Min == nil {
		t.Fatalf("expected created_at lower bound")
	}
	if c.Created.Max != nil {
		t.Fatalf("expected no upper bound, got %v", c.Created.Max)
	}
	want := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	if !c.Created.Min.Equal(want) {
		t.Fatalf("expected lower bound %v, got %v", want, c.Created.Min)
	}
}

func TestCompileEndDateIsEndOfDayUTC(t *testing.T) {
	c := Compile(Filters{EndDate: strPtr("2024-01-10")})

	if c.Created == nil || c.Created.Max == nil {
		t.Fatalf("expected created_at upper bound")
	}
	want := time.Date(2024, 1, 10, 23, 59, 59, 999_000_000, time.UTC)
	if !c.Created.Max.Equal(want) {
		t.Fatalf("expected upper bound %v, got %v", want, c.Created.Max)
	}
}

func TestCompileBothDatesProduceInclusiveDayRange(t *testing.T) {
	c := Compile(Filters{StartDate: strPtr("2024-01-01"), EndDate: strPtr("2024-01-31")})

	if c.Created == nil || c.Created.Min == nil || c.Created.Max == nil {
		t.Fatalf("expected both bounds, got %+v", c.Created)
	}
	if !c.Created.Min.Before(*c.Created.Max) {
		t.Fatalf("expected min before max, got %v / %v", c.Created.Min, c.Created.Max)
	}
}

func TestCompileScopeAndTextPredicates(t *testing.T) {
	c := Compile(Filters{
		BoardID:     int64Ptr(7),
		ListID:      int64Ptr(12),
		Name:        strPtr("deploy"),
		Description: strPtr("rollback plan"),
	})

	if len(c.Equalities) != 2 {
		t.Fatalf("expected 2 equality predicates, got %d", len(c.Equalities))
	}
	if c.Equalities[0].Field != FieldBoardID || c.Equalities[0].Value != 7 {
		t.Fatalf("unexpected board predicate: %+v", c.Equalities[0])
	}
	if c.Equalities[1].Field != FieldListID || c.Equalities[1].Value != 12 {
		t.Fatalf("unexpected list predicate: %+v", c.Equalities[1])
	}
	if len(c.Contains) != 2 {
		t.Fatalf("expected 2 contains predicates, got %d", len(c.Contains))
	}
	if c.Contains[0].Field != FieldName || c.Contains[0].Phrase != "deploy" {
		t.Fatalf("unexpected name predicate: %+v", c.Contains[0])
	}
	if c.Contains[1].Field != FieldDescription || c.Contains[1].Phrase != "rollback plan" {
		t.Fatalf("unexpected description predicate: %+v", c.Contains[1])
	}
}

func TestCompileEmptyTextMeansNoConstraint(t *testing.T) {
	c := Compile(Filters{Name: strPtr("")})

	if len(c.Contains) != 0 {
		t.Fatalf("expected no contains predicates for empty text, got %+v", c.Contains)
	}
}
