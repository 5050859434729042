package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/fennelhq/fennel/internal/autofill"
	"github.com/fennelhq/fennel/internal/common"
	"github.com/fennelhq/fennel/internal/config"
	"github.com/fennelhq/fennel/internal/model"
	"github.com/fennelhq/fennel/internal/propose"
	"github.com/fennelhq/fennel/internal/service"
	"github.com/fennelhq/fennel/internal/storage"
	"github.com/fennelhq/fennel/internal/suggest"
)

// initStorage initializes the storage service with proper path expansion
// and runs migrations.
func initStorage(ctx context.Context) (service.Store, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDBPath()
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// loadKeywords builds the keyword dictionary, honoring configuration
// overrides of the form "keyword:category".
func loadKeywords() (suggest.KeywordDictionary, error) {
	entries := viper.GetStringSlice("suggestions.keywords")
	if len(entries) == 0 {
		return suggest.DefaultKeywords(), nil
	}
	return suggest.ParseKeywords(entries)
}

// buildEngine wires the suggestion engine and its collaborators.
func buildEngine(store service.Store) (*suggest.Engine, error) {
	keywords, err := loadKeywords()
	if err != nil {
		return nil, err
	}
	return suggest.NewEngine(store, keywords, nil), nil
}

// buildBuilder wires a proposed-fields builder.
func buildBuilder(store service.Store) (*propose.Builder, error) {
	engine, err := buildEngine(store)
	if err != nil {
		return nil, err
	}
	return propose.NewBuilder(store, engine, nil), nil
}

// buildApplier wires an autofill applier.
func buildApplier(store service.Store) (*autofill.Applier, error) {
	engine, err := buildEngine(store)
	if err != nil {
		return nil, err
	}
	return autofill.NewApplier(store, engine, nil), nil
}

// requireUser returns the acting user id or a user-facing error.
func requireUser() (string, error) {
	user := viper.GetString("user")
	if user == "" {
		return "", common.NewUserError("no acting user configured; pass --user or set FENNEL_USER", common.ErrMissingConfig)
	}
	return user, nil
}

// parseExpenseID parses the expense id argument.
func parseExpenseID(arg string) (uuid.UUID, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, common.NewUserError(fmt.Sprintf("%q is not a valid expense id", arg), err)
	}
	return id, nil
}

// formatAmount renders cents as a currency string.
func formatAmount(cents int64, currency string) string {
	if currency == "" {
		currency = "EUR"
	}
	return fmt.Sprintf("%d.%02d %s", cents/100, cents%100, currency)
}

// formatProposedValue renders a proposed value for display.
func formatProposedValue(field model.Field, value any) string {
	switch v := value.(type) {
	case time.Time:
		return v.Format("2006-01-02")
	case int64:
		if field == model.FieldGrossAmountCents {
			return formatAmount(v, "EUR")
		}
		return fmt.Sprintf("%d", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
