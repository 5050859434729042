// Package model defines the core domain models used throughout the application.
package model

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category classifies what an expense was for.
type Category string

// Expense category constants.
const (
	CategoryMeals     Category = "meals"
	CategoryTravel    Category = "travel"
	CategoryRent      Category = "rent"
	CategoryEquipment Category = "equipment"
	CategorySoftware  Category = "software"
	CategoryOffice    Category = "office"
	CategoryMarketing Category = "marketing"
	CategoryOther     Category = "other"
)

// VatMode indicates how VAT applies to an expense.
type VatMode string

// VAT mode constants.
const (
	VatModeNone    VatMode = "none"
	VatModeGerman  VatMode = "german"
	VatModeForeign VatMode = "foreign"
)

// ExpenseStatus tracks where an expense sits in the review workflow.
type ExpenseStatus string

// Expense status constants. The suggestion engine only ever reads status;
// the transition out of needs_review belongs to the human review action.
const (
	StatusNeedsReview ExpenseStatus = "needs_review"
	StatusApproved    ExpenseStatus = "approved"
	StatusExported    ExpenseStatus = "exported"
)

// PaymentStatus tracks whether an expense has been paid.
type PaymentStatus string

// Payment status constants.
const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

// DefaultBusinessUsePct is the business-use percentage assigned at creation.
const DefaultBusinessUsePct = 100

// Expense represents a single business expense record.
type Expense struct {
	ExpenseDate      time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	PaymentDate      *time.Time
	Description      *string
	Category         *Category
	VatRate          *float64
	UserID           string
	SupplierName     string
	Currency         string
	PaymentMethod    string
	UpdatedByUserID  string
	VatMode          VatMode
	Status           ExpenseStatus
	PaymentStatus    PaymentStatus
	GrossAmountCents int64
	BusinessUsePct   int
	ID               uuid.UUID
}

// ExpenseFile is a receipt attachment belonging to exactly one expense.
type ExpenseFile struct {
	AttachedAt       time.Time
	OriginalFilename string
	ID               uuid.UUID
	ExpenseID        uuid.UUID
}

// ExpenseUpdate is a partial write set for an expense. Only fields the
// suggestion engine is allowed to touch exist here; status and the payment
// fields are structurally unrepresentable, so no engine code path can
// include them in an update.
type ExpenseUpdate struct {
	SupplierName     *string
	Description      *string
	ExpenseDate      *time.Time
	GrossAmountCents *int64
	Currency         *string
	Category         *Category
	VatMode          *VatMode
	VatRate          *float64
	BusinessUsePct   *int
}

// IsEmpty reports whether the update carries no field changes.
func (u ExpenseUpdate) IsEmpty() bool {
	return u.SupplierName == nil &&
		u.Description == nil &&
		u.ExpenseDate == nil &&
		u.GrossAmountCents == nil &&
		u.Currency == nil &&
		u.Category == nil &&
		u.VatMode == nil &&
		u.VatRate == nil &&
		u.BusinessUsePct == nil
}

// Changes returns the update as a column→value map for the storage layer.
// The audit stamp is added by the store, not here.
func (u ExpenseUpdate) Changes() map[string]any {
	changes := make(map[string]any)
	if u.SupplierName != nil {
		changes["supplier_name"] = *u.SupplierName
	}
	if u.Description != nil {
		changes["description"] = *u.Description
	}
	if u.ExpenseDate != nil {
		changes["expense_date"] = u.ExpenseDate.UTC()
	}
	if u.GrossAmountCents != nil {
		changes["gross_amount_cents"] = *u.GrossAmountCents
	}
	if u.Currency != nil {
		changes["currency"] = *u.Currency
	}
	if u.Category != nil {
		changes["category"] = string(*u.Category)
	}
	if u.VatMode != nil {
		changes["vat_mode"] = string(*u.VatMode)
	}
	if u.VatRate != nil {
		changes["vat_rate"] = *u.VatRate
	}
	if u.BusinessUsePct != nil {
		changes["business_use_pct"] = *u.BusinessUsePct
	}
	return changes
}

var (
	supplierPunctRe  = regexp.MustCompile(`[^a-z0-9\s]+`)
	supplierSpacesRe = regexp.MustCompile(`\s+`)
	legalSuffixRe    = regexp.MustCompile(`\b(gmbh|ug|kg|ag|ltd|inc|llc|co|corp|corporation|company)\b`)
)

// NormalizeSupplier canonicalizes a supplier name for history matching:
// lowercase, punctuation stripped, legal-entity suffixes removed, whitespace
// collapsed. Both the storage layer (stored column) and the supplier-history
// rule use this single definition.
func NormalizeSupplier(name string) string {
	s := strings.ToLower(name)
	s = supplierPunctRe.ReplaceAllString(s, " ")
	s = legalSuffixRe.ReplaceAllString(s, " ")
	s = supplierSpacesRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
