package repository

import (
	"strings"
	"testing"
	"time"

	"taskboard_backend/internal/cards/criteria"
)

func TestBuildFindCardsQueryNoFilters(t *testing.T) {
	query, args := buildFindCardsQuery(criteria.Criteria{})

	if strings.Contains(query, "created_at >=") || strings.Contains(query, "created_at <=") {
		t.Fatalf("expected no date bounds in query: %s", query)
	}
	if len(args) != 0 {
		t.Fatalf("expected no args, got %v", args)
	}
	if !strings.HasSuffix(query, "ORDER BY created_at, id") {
		t.Fatalf("expected stable ordering clause, got: %s", query)
	}
}

func TestBuildFindCardsQueryAllPredicateKinds(t *testing.T) {
	min := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	max := time.Date(2024, 1, 10, 23, 59, 59, 999_000_000, time.UTC)
	crit := criteria.Criteria{
		Equalities: []criteria.Equality{
			{Field: criteria.FieldBoardID, Value: 3},
			{Field: criteria.FieldListID, Value: 9},
		},
		Contains: []criteria.Contains{
			{Field: criteria.FieldName, Phrase: "release"},
		},
		Created: &criteria.CreatedRange{Min: &min, Max: &max},
	}

	query, args := buildFindCardsQuery(crit)

	for _, fragment := range []string{
		"board_id = $1",
		"list_id = $2",
		"name ILIKE $3",
		"created_at >= $4",
		"created_at <= $5",
	} {
		if !strings.Contains(query, fragment) {
			t.Fatalf("expected query to contain %q, got: %s", fragment, query)
		}
	}
	if len(args) != 5 {
		t.Fatalf("expected 5 args, got %d", len(args))
	}
	if args[2] != "%release%" {
		t.Fatalf("expected contains arg %%release%%, got %v", args[2])
	}
	if !args[3].(time.Time).Equal(min) || !args[4].(time.Time).Equal(max) {
		t.Fatalf("unexpected date args: %v", args[3:])
	}
}

func TestBuildFindCardsQueryEscapesLikeMetacharacters(t *testing.T) {
	crit := criteria.Criteria{
		Contains: []criteria.Contains{{Field: criteria.FieldDescription, Phrase: "50%_done"}},
	}

	_, args := buildFindCardsQuery(crit)

	if args[0] != `%50\%\_done%` {
		t.Fatalf("expected escaped pattern, got %v", args[0])
	}
}
