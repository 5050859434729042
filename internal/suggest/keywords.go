package suggest

import (
	"fmt"
	"strings"

	"github.com/fennelhq/fennel/internal/common"
	"github.com/fennelhq/fennel/internal/model"
)

// KeywordEntry maps one lowercase keyword to a category.
type KeywordEntry struct {
	Keyword  string
	Category model.Category
}

// KeywordDictionary is an ordered keyword→category table. Order matters:
// when several keywords hit, the first entry in declaration order decides
// the suggested category. The dictionary is injected into the engine rather
// than read from a package-level table, so tests and deployments can swap
// it out.
type KeywordDictionary []KeywordEntry

// DefaultKeywords returns the stock dictionary.
func DefaultKeywords() KeywordDictionary {
	return KeywordDictionary{
		{Keyword: "amazon", Category: model.CategoryEquipment},
		{Keyword: "hotel", Category: model.CategoryTravel},
		{Keyword: "adobe", Category: model.CategorySoftware},
		{Keyword: "restaurant", Category: model.CategoryMeals},
		{Keyword: "cafe", Category: model.CategoryMeals},
		{Keyword: "bahn", Category: model.CategoryTravel},
		{Keyword: "flug", Category: model.CategoryTravel},
		{Keyword: "airline", Category: model.CategoryTravel},
		{Keyword: "miete", Category: model.CategoryRent},
		{Keyword: "hosting", Category: model.CategorySoftware},
		{Keyword: "ikea", Category: model.CategoryEquipment},
		{Keyword: "obi", Category: model.CategoryEquipment},
		{Keyword: "druckerei", Category: model.CategoryMarketing},
	}
}

// validCategories is the set accepted from configuration overrides.
var validCategories = map[model.Category]bool{
	model.CategoryMeals:     true,
	model.CategoryTravel:    true,
	model.CategoryRent:      true,
	model.CategoryEquipment: true,
	model.CategorySoftware:  true,
	model.CategoryOffice:    true,
	model.CategoryMarketing: true,
	model.CategoryOther:     true,
}

// CategoryOrDefault maps a category name onto a known category, falling
// back to "other" for unknown names.
func CategoryOrDefault(name string) model.Category {
	category := model.Category(strings.ToLower(strings.TrimSpace(name)))
	if validCategories[category] {
		return category
	}
	return model.CategoryOther
}

// ParseKeywords builds a dictionary from "keyword:category" pairs, as read
// from configuration. Order is preserved. Unknown categories and malformed
// entries are rejected rather than silently dropped.
func ParseKeywords(entries []string) (KeywordDictionary, error) {
	dict := make(KeywordDictionary, 0, len(entries))
	for _, entry := range entries {
		keyword, category, found := strings.Cut(entry, ":")
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if !found || keyword == "" {
			return nil, fmt.Errorf("%w: keyword entry %q must be keyword:category", common.ErrInvalidConfig, entry)
		}
		cat := model.Category(strings.ToLower(strings.TrimSpace(category)))
		if !validCategories[cat] {
			return nil, fmt.Errorf("%w: unknown category %q in keyword entry %q", common.ErrInvalidConfig, category, entry)
		}
		dict = append(dict, KeywordEntry{Keyword: keyword, Category: cat})
	}
	return dict, nil
}
