package propose

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fennelhq/fennel/internal/model"
	"github.com/fennelhq/fennel/internal/parse"
	"github.com/fennelhq/fennel/internal/service"
	"github.com/fennelhq/fennel/internal/suggest"
)

// Filename-sourced confidences are fixed per field: a strict pattern match
// against the filename is treated as near-certain.
const (
	FilenameAmountConfidence      = 0.95
	FilenameSupplierConfidence    = 0.9
	FilenameDateConfidence        = 0.9
	FilenameDescriptionConfidence = 0.85
)

// Builder composes filename extraction and engine suggestions into a
// preview-only set of proposed fields, emitting only fields that represent
// genuinely new information given the expense's current state.
type Builder struct {
	store  service.Store
	engine *suggest.Engine
	logger *slog.Logger
	now    func() time.Time
}

// NewBuilder creates a builder.
func NewBuilder(store service.Store, engine *suggest.Engine, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		store:  store,
		engine: engine,
		logger: logger,
		now:    time.Now,
	}
}

// Build returns proposals for every still-default field a candidate value
// exists for. Batch callers scoring many expenses should pass preloaded
// files to avoid one store round trip per expense; nil means "fetch here".
func (b *Builder) Build(ctx context.Context, expense *model.Expense, userID string, preloadedFiles []model.ExpenseFile) (model.ProposedFields, error) {
	files := preloadedFiles
	if files == nil {
		var err error
		files, err = b.store.GetExpenseFilesByExpenseID(ctx, expense.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load expense files: %w", err)
		}
	}

	proposed := make(model.ProposedFields)

	if len(files) > 0 {
		// Files arrive most-recent first; only the newest receipt drives
		// filename extraction.
		filename := files[0].OriginalFilename
		b.addFilenameProposals(proposed, expense, parse.Filename(filename), filename)
	}

	suggestions, err := b.engine.SuggestFor(ctx, expense, userID, files)
	if err != nil {
		return nil, err
	}
	b.addEngineProposals(proposed, expense, suggestions)

	return proposed, nil
}

func (b *Builder) addFilenameProposals(proposed model.ProposedFields, expense *model.Expense, parsed model.ParsedFilename, filename string) {
	if parsed.SupplierName != "" && parsed.SupplierName != parse.SupplierFallback && SupplierNameIsDefault(expense) {
		proposed[model.FieldSupplierName] = model.ProposedField{
			Value:      parsed.SupplierName,
			Confidence: FilenameSupplierConfidence,
			Reason:     fmt.Sprintf("Supplier read from receipt filename %q", filename),
			Source:     model.SourceFilename,
		}
	}
	if parsed.Description != "" && DescriptionIsDefault(expense) {
		proposed[model.FieldDescription] = model.ProposedField{
			Value:      parsed.Description,
			Confidence: FilenameDescriptionConfidence,
			Reason:     fmt.Sprintf("Description read from receipt filename %q", filename),
			Source:     model.SourceFilename,
		}
	}
	if parsed.ExpenseDate != nil && ExpenseDateIsDefault(expense, b.now()) {
		proposed[model.FieldExpenseDate] = model.ProposedField{
			Value:      *parsed.ExpenseDate,
			Confidence: FilenameDateConfidence,
			Reason:     fmt.Sprintf("Date read from receipt filename %q", filename),
			Source:     model.SourceFilename,
		}
	}
	if parsed.GrossAmountCents != nil && GrossAmountIsDefault(expense) && CurrencyIsDefault(expense) {
		proposed[model.FieldGrossAmountCents] = model.ProposedField{
			Value:      *parsed.GrossAmountCents,
			Confidence: FilenameAmountConfidence,
			Reason:     fmt.Sprintf("Amount read from receipt filename %q", filename),
			Source:     model.SourceFilename,
		}
	}
}

func (b *Builder) addEngineProposals(proposed model.ProposedFields, expense *model.Expense, suggestions model.Suggestions) {
	gates := map[model.Field]func(*model.Expense) bool{
		model.FieldCategory:       CategoryIsDefault,
		model.FieldVatMode:        VatModeIsDefault,
		model.FieldBusinessUsePct: BusinessUseIsDefault,
	}

	for field, gate := range gates {
		suggestion, ok := suggestions[field]
		if !ok || !gate(expense) {
			continue
		}
		proposed[field] = model.ProposedField{
			Value:      suggestion.Value,
			Confidence: suggestion.Confidence,
			Reason:     suggestion.Reason,
			Source:     suggestion.Source,
		}
	}
}
