package core

import "fmt"

const (
	PersonaStudent      Persona = "student"
	PersonaProfessional Persona = "professional"
	PersonaGeneral      Persona = "general"
)

type (
	// Persona is the audience a reply is written for.
	Persona string

	// ExpenseRecord is a single expense as returned by the backend API.
	// Records are read-only once fetched.
	ExpenseRecord struct {
		Name   string  `json:"name"`
		Amount float64 `json:"amount"`
	}

	// Dataset maps a month key ("0".."11") to the expenses recorded in
	// that month. Keys come from the backend verbatim and may be
	// malformed; consumers validate them.
	Dataset map[string][]ExpenseRecord

	// FetchResult is the outcome of an expense fetch: either a dataset
	// or a human-readable error message, never both.
	FetchResult struct {
		Data Dataset
		Err  string
	}

	// MonthTotal is the summed amount for one month, used by the chart.
	MonthTotal struct {
		Month  int     `json:"month"`
		Amount float64 `json:"amount"`
	}

	// CategoryAmount is an amount aggregated under a category name.
	CategoryAmount struct {
		Name   string
		Amount float64
	}
)

// DataResult wraps a dataset in a successful FetchResult.
func DataResult(d Dataset) FetchResult {
	return FetchResult{Data: d}
}

// ErrorResult wraps a failure message in an error-shaped FetchResult.
func ErrorResult(format string, args ...any) FetchResult {
	return FetchResult{Err: fmt.Sprintf(format, args...)}
}

// Failed reports whether the result carries an error instead of data.
func (r FetchResult) Failed() bool {
	return r.Err != ""
}

// Empty reports whether the result carries no expense data at all.
func (r FetchResult) Empty() bool {
	return !r.Failed() && len(r.Data) == 0
}

// ParsePersona maps user-facing persona labels to a Persona.
// The empty string and "auto" mean "let the classifier decide".
func ParsePersona(s string) (Persona, bool) {
	switch Persona(s) {
	case PersonaStudent, PersonaProfessional, PersonaGeneral:
		return Persona(s), true
	}
	return "", false
}
