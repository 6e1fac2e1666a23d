package store

import (
	"strings"
	"testing"

	"articlevault/types"
)

func TestBuildListQueryNoFilter(t *testing.T) {
	query, args := buildListQuery(ListFilter{})

	if !strings.Contains(query, "ORDER BY created_at DESC") {
		t.Fatalf("missing order clause: %s", query)
	}
	if strings.Contains(query, "WHERE") {
		t.Fatalf("unexpected WHERE clause: %s", query)
	}
	if len(args) != 1 {
		t.Fatalf("expected only the limit arg, got %v", args)
	}
	if args[0] != defaultListLimit {
		t.Fatalf("expected default limit %d, got %v", defaultListLimit, args[0])
	}
}

func TestBuildListQueryAllFilters(t *testing.T) {
	query, args := buildListQuery(ListFilter{
		Category:    "programming",
		SubmitterID: 42,
		Search:      "generics",
		Limit:       5,
		Offset:      10,
	})

	for _, want := range []string{
		"$1 = ANY (categories_auto)",
		"$1 = ANY (categories_user)",
		"submitter_id = $2",
		"title ILIKE $3",
		"text ILIKE $3",
		"LIMIT $4",
		"OFFSET $5",
	} {
		if !strings.Contains(query, want) {
			t.Fatalf("query missing %q: %s", want, query)
		}
	}

	if len(args) != 5 {
		t.Fatalf("expected 5 args, got %v", args)
	}
	if args[0] != "programming" || args[1] != int64(42) || args[2] != "%generics%" || args[3] != 5 || args[4] != 10 {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestBuildListQueryClampsLimit(t *testing.T) {
	_, args := buildListQuery(ListFilter{Limit: 10_000})
	if args[len(args)-1] != maxListLimit {
		t.Fatalf("expected clamped limit %d, got %v", maxListLimit, args[len(args)-1])
	}
}

func TestBuildCounterQueryNoFields(t *testing.T) {
	query, args := buildCounterQuery(1, CounterUpdate{})
	if query != "" || args != nil {
		t.Fatalf("empty update should build no query, got %q %v", query, args)
	}
}

func TestBuildCounterQuerySubsetOfFields(t *testing.T) {
	likes, views := 3, 9
	query, args := buildCounterQuery(7, CounterUpdate{Likes: &likes, Views: &views})

	want := "UPDATE articles SET likes_count = $1, views_count = $2, updated_at = NOW() WHERE id = $3"
	if query != want {
		t.Fatalf("unexpected query: %s", query)
	}
	if len(args) != 3 || args[0] != 3 || args[1] != 9 || args[2] != int64(7) {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestMarshalAdvanced(t *testing.T) {
	data, err := marshalAdvanced(nil)
	if err != nil || data != nil {
		t.Fatalf("nil input should produce nil payload, got %v, %v", data, err)
	}

	data, err = marshalAdvanced(&types.AdvancedCategories{PrimaryCategory: "AI", Confidence: 0.8})
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	if !strings.Contains(string(data), `"primary_category":"AI"`) {
		t.Fatalf("unexpected payload: %s", data)
	}
}

func TestDuplicateErrorMessages(t *testing.T) {
	fp := "f2ca1bb6c7e907d06dafe4687e579fce76b37e4e93b7605022da52e6ccc26fd2"

	err := &DuplicateError{Fingerprint: fp}
	if !strings.Contains(err.Error(), fp[:8]) {
		t.Fatalf("message should carry fingerprint prefix: %s", err)
	}

	err = &DuplicateError{Fingerprint: fp, Existing: &types.Article{ID: 7}}
	if !strings.Contains(err.Error(), "id 7") {
		t.Fatalf("message should name the existing article: %s", err)
	}
}

func TestPersistenceErrorUnwrap(t *testing.T) {
	inner := &DuplicateError{Fingerprint: "abc"}
	err := &PersistenceError{Op: "test", Err: inner}
	if err.Unwrap() != inner {
		t.Fatal("Unwrap should return the wrapped error")
	}
}
