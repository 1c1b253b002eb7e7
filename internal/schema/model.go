// Package schema declares the two target tables and the per-file input
// contracts. The table model is backend-agnostic; each storage backend
// renders it in its own dialect during schema initialization.
package schema

import (
	"peopleetl/internal/ddl"
	"peopleetl/internal/domain"
)

// Table and column names. The export join and the loaders reference these
// instead of repeating string literals.
const (
	TablePlaces = "places"
	TablePeople = "people"

	ColID        = "id"
	ColCity      = "city"
	ColCounty    = "county"
	ColCountry   = "country"
	ColFirstName = "first_name"
	ColLastName  = "last_name"
	ColDOB       = "date_of_birth"
	ColPlaceID   = "place_of_birth_id"
)

// Canonical people CSV header names. They differ from the people table's
// column names on purpose: the source uses given/family naming.
const (
	CSVGivenName    = "given_name"
	CSVFamilyName   = "family_name"
	CSVDateOfBirth  = "date_of_birth"
	CSVPlaceOfBirth = "place_of_birth"
)

// Places returns the places table definition: surrogate key, required unique
// city, optional county/country.
func Places() ddl.TableDef {
	return ddl.TableDef{
		FQN: TablePlaces,
		Columns: []ddl.ColumnDef{
			{Name: ColID, SQLType: "BIGINT", PrimaryKey: true, AutoIncrement: true},
			{Name: ColCity, SQLType: "VARCHAR(255)"},
			{Name: ColCounty, SQLType: "VARCHAR(255)", Nullable: true},
			{Name: ColCountry, SQLType: "VARCHAR(255)", Nullable: true},
		},
		Indexes: []ddl.IndexDef{
			{Name: "unique_city", Columns: []string{ColCity}, Unique: true},
		},
	}
}

// People returns the people table definition: required name and birth-date
// columns, optional place reference, and the secondary indexes backing the
// export's ordering.
func People() ddl.TableDef {
	return ddl.TableDef{
		FQN: TablePeople,
		Columns: []ddl.ColumnDef{
			{Name: ColID, SQLType: "BIGINT", PrimaryKey: true, AutoIncrement: true},
			{Name: ColFirstName, SQLType: "VARCHAR(255)"},
			{Name: ColLastName, SQLType: "VARCHAR(255)"},
			{Name: ColDOB, SQLType: "DATE"},
			{Name: ColPlaceID, SQLType: "BIGINT", Nullable: true},
		},
		Indexes: []ddl.IndexDef{
			{Name: "idx_last_name", Columns: []string{ColLastName}},
			{Name: "idx_dob", Columns: []string{ColDOB}},
		},
		ForeignKeys: []ddl.ForeignKey{
			{Column: ColPlaceID, RefTable: TablePlaces, RefColumn: ColID},
		},
	}
}

// Tables returns both table definitions in dependency order (referenced
// tables first). Schema initialization drops them in reverse.
func Tables() []ddl.TableDef {
	return []ddl.TableDef{Places(), People()}
}

// PlacesContract is the validation contract for the places CSV. Only city is
// required, matching the constraint the store enforces.
func PlacesContract() Contract {
	return Contract{
		Name: TablePlaces,
		Fields: []Field{
			{Name: ColCity, Type: "text", Required: true},
			{Name: ColCounty, Type: "text"},
			{Name: ColCountry, Type: "text"},
		},
	}
}

// PeopleContract is the validation contract for the people CSV: both names
// and a strictly formatted birth date are required; the place name is
// optional free text resolved later.
func PeopleContract() Contract {
	return Contract{
		Name: TablePeople,
		Fields: []Field{
			{Name: CSVGivenName, Type: "text", Required: true},
			{Name: CSVFamilyName, Type: "text", Required: true},
			{Name: CSVDateOfBirth, Type: "date", Required: true, Layout: domain.DateLayout},
			{Name: CSVPlaceOfBirth, Type: "text"},
		},
	}
}
