package schema

import "testing"

// TestTablesDependencyOrder ensures places precedes people so foreign keys
// resolve during creation and reverse order is safe for drops.
func TestTablesDependencyOrder(t *testing.T) {
	t.Parallel()

	tabs := Tables()
	if len(tabs) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(tabs))
	}
	if tabs[0].FQN != TablePlaces || tabs[1].FQN != TablePeople {
		t.Fatalf("wrong order: %s, %s", tabs[0].FQN, tabs[1].FQN)
	}
	if len(tabs[1].ForeignKeys) != 1 || tabs[1].ForeignKeys[0].RefTable != TablePlaces {
		t.Fatalf("people must reference places: %+v", tabs[1].ForeignKeys)
	}
}

// TestPeopleIndexes verifies the two secondary indexes the export ordering
// depends on are declared.
func TestPeopleIndexes(t *testing.T) {
	t.Parallel()

	idx := map[string]bool{}
	for _, ix := range People().Indexes {
		idx[ix.Name] = ix.Unique
	}
	if _, ok := idx["idx_last_name"]; !ok {
		t.Fatal("missing idx_last_name")
	}
	if _, ok := idx["idx_dob"]; !ok {
		t.Fatal("missing idx_dob")
	}
}

// TestContractColumns checks the canonical column ordering used to address
// CSV cells by name.
func TestContractColumns(t *testing.T) {
	t.Parallel()

	got := PeopleContract().Columns()
	want := []string{CSVGivenName, CSVFamilyName, CSVDateOfBirth, CSVPlaceOfBirth}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("column %d: got %q want %q", i, got[i], want[i])
		}
	}

	var dateField Field
	for _, f := range PeopleContract().Fields {
		if f.Name == CSVDateOfBirth {
			dateField = f
		}
	}
	if dateField.Layout != "2006-01-02" || !dateField.Required || dateField.Type != "date" {
		t.Fatalf("date_of_birth contract wrong: %+v", dateField)
	}
}
