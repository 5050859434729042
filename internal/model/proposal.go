package model

import (
	"fmt"
	"time"
)

// Field names a single proposable expense field.
type Field string

// Proposable field constants.
const (
	FieldSupplierName     Field = "supplierName"
	FieldDescription      Field = "description"
	FieldExpenseDate      Field = "expenseDate"
	FieldGrossAmountCents Field = "grossAmountCents"
	FieldCategory         Field = "category"
	FieldVatMode          Field = "vatMode"
	FieldBusinessUsePct   Field = "businessUsePct"
)

// Source indicates where a proposed value came from.
type Source string

// Proposal source constants.
const (
	SourceFilename       Source = "filename"
	SourceSupplierMemory Source = "supplier_memory"
	SourceKeyword        Source = "keyword"
	SourceHeuristic      Source = "heuristic"
	SourceDefault        Source = "default"
)

// Suggestion is a rule's raw recommendation for one field, irrespective of
// the expense's current state.
type Suggestion struct {
	Value      any
	Field      Field
	Reason     string
	Source     Source
	Confidence float64
}

// Validate ensures the suggestion carries well-formed metadata.
func (s *Suggestion) Validate() error {
	if s.Field == "" {
		return fmt.Errorf("suggestion field is required")
	}
	if s.Confidence < 0.0 || s.Confidence > 1.0 {
		return fmt.Errorf("confidence must be between 0.0 and 1.0, got %.2f", s.Confidence)
	}
	if s.Reason == "" {
		return fmt.Errorf("suggestion reason is required")
	}
	return nil
}

// Suggestions maps each field to its single resolved suggestion. Conflicts
// across rules are resolved before this map is constructed, so it never
// holds competing candidates for the same field.
type Suggestions map[Field]Suggestion

// ProposedField is a candidate value for one currently-default expense
// field, ready for preview or autofill.
type ProposedField struct {
	Value      any
	Reason     string
	Source     Source
	Confidence float64
}

// ProposedFields maps field names to at most one proposal each.
type ProposedFields map[Field]ProposedField

// ParsedFilename holds whatever could be extracted from a receipt filename.
// Absent fields mean "not extractable", never a forced default.
type ParsedFilename struct {
	ExpenseDate      *time.Time
	GrossAmountCents *int64
	SupplierName     string
	Description      string
	Currency         string
}

// IsEmpty reports whether nothing could be extracted.
func (p ParsedFilename) IsEmpty() bool {
	return p.SupplierName == "" &&
		p.Description == "" &&
		p.ExpenseDate == nil &&
		p.GrossAmountCents == nil &&
		p.Currency == ""
}
