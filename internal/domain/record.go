// Package domain defines the business records moved through the pipeline.
package domain

import "time"

// DateLayout is the strict calendar-date format used by the people CSV and
// the JSON export.
const DateLayout = "2006-01-02"

// Place is one birthplace row. County and Country are optional in the input
// and stored as NULL when absent.
type Place struct {
	ID      int64
	City    string
	County  *string
	Country *string
}

// Person is one people row bound for the store. PlaceOfBirthID is nil when
// the named place did not resolve.
type Person struct {
	FirstName      string
	LastName       string
	DateOfBirth    time.Time
	PlaceOfBirthID *int64
}

// PlaceExport is the nested place_of_birth object in the JSON export. All
// fields are null for people whose place never resolved.
type PlaceExport struct {
	City    *string `json:"city"`
	County  *string `json:"county"`
	Country *string `json:"country"`
}

// PersonExport is one element of the exported JSON array. Field order here is
// the key order in the output.
type PersonExport struct {
	FirstName    string      `json:"first_name"`
	LastName     string      `json:"last_name"`
	DateOfBirth  string      `json:"date_of_birth"`
	PlaceOfBirth PlaceExport `json:"place_of_birth"`
}
