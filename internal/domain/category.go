package domain

import "strings"

// Category is the canonical article category.
type Category string

const (
	CategoryMilitary     Category = "Military"
	CategoryPolitical    Category = "Political"
	CategoryEconomic     Category = "Economic"
	CategoryIntelligence Category = "Intelligence"
	CategoryDiplomatic   Category = "Diplomatic"
	CategoryBreaking     Category = "Breaking"
	CategoryAnalysis     Category = "Analysis"
	CategoryGeopolitics  Category = "Geopolitics"
)

var categoryLabels = map[string]Category{
	"military":     CategoryMilitary,
	"political":    CategoryPolitical,
	"economic":     CategoryEconomic,
	"intelligence": CategoryIntelligence,
	"diplomatic":   CategoryDiplomatic,
	"breaking":     CategoryBreaking,
	"analysis":     CategoryAnalysis,
	"geopolitics":  CategoryGeopolitics,

	"عسكري":     CategoryMilitary,
	"سياسي":     CategoryPolitical,
	"اقتصادي":   CategoryEconomic,
	"استخباراتي": CategoryIntelligence,
	"دبلوماسي":  CategoryDiplomatic,
	"عاجل":      CategoryBreaking,
	"تحليل":     CategoryAnalysis,
	"جيوسياسي":  CategoryGeopolitics,
}

// ParseCategory maps an English or Arabic label to its canonical category.
// Only the segment before a pipe is considered.
func ParseCategory(label string) (Category, bool) {
	value := strings.ToLower(label)
	if idx := strings.Index(value, "|"); idx >= 0 {
		value = value[:idx]
	}
	cat, ok := categoryLabels[strings.TrimSpace(value)]
	return cat, ok
}

// Valid reports whether c is one of the canonical categories.
func (c Category) Valid() bool {
	_, ok := categoryLabels[strings.ToLower(string(c))]
	return ok
}
