package store

import (
	"context"
	"slices"
	"testing"

	"entgo.io/ent"

	"github.com/abhisek/edulearn/ent/schema"
)

func fieldNames(groups ...[]ent.Field) []string {
	var names []string
	for _, fields := range groups {
		for _, f := range fields {
			names = append(names, f.Descriptor().Name)
		}
	}
	return names
}

func tableColumns(t *testing.T, s *Store, table string) []string {
	t.Helper()
	rows, err := s.DB().QueryContext(context.Background(), "SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		t.Fatalf("table info %s: %v", table, err)
	}
	defer rows.Close()
	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan: %v", err)
		}
		cols = append(cols, name)
	}
	return cols
}

func TestAttemptTableMatchesSchema(t *testing.T) {
	want := fieldNames(schema.SequenceMixin{}.Fields(), schema.QuizAttempt{}.Fields())
	if !slices.Equal(want, attemptColumns) {
		t.Errorf("attemptColumns = %v, schema has %v", attemptColumns, want)
	}

	s := openTestStore(t)
	if got := tableColumns(t, s, attemptTable); !slices.Equal(got, want) {
		t.Errorf("%s columns = %v, want %v", attemptTable, got, want)
	}
}

func TestKVTableMatchesSchema(t *testing.T) {
	want := fieldNames(schema.ProgressEntry{}.Fields())
	s := openTestStore(t)
	if got := tableColumns(t, s, kvTable); !slices.Equal(got, want) {
		t.Errorf("%s columns = %v, want %v", kvTable, got, want)
	}
}

func TestAttemptIndexMatchesSchema(t *testing.T) {
	var indexed []string
	for _, idx := range (schema.QuizAttempt{}).Indexes() {
		indexed = append(indexed, idx.Descriptor().Fields...)
	}

	s := openTestStore(t)
	var cols []string
	rows, err := s.DB().QueryContext(context.Background(),
		"SELECT name FROM pragma_index_info('quiz_attempts_quiz_key')")
	if err != nil {
		t.Fatalf("index info: %v", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan: %v", err)
		}
		cols = append(cols, name)
	}
	if !slices.Equal(cols, indexed) {
		t.Errorf("quiz_attempts_quiz_key covers %v, schema indexes %v", cols, indexed)
	}
}
