// Package classify maps extracted keywords onto the fixed notice categories.
package classify

import (
	"fmt"

	"github.com/campus-notice-collector/internal/config"
	"github.com/campus-notice-collector/internal/models"
)

// Rule binds one trigger term to a category
type Rule struct {
	Term     string
	Category models.Category
}

// DefaultRules is the built-in keyword table
var DefaultRules = []Rule{
	{"竞赛", models.CategoryCompetitions},
	{"创新", models.CategoryCompetitions},
	{"设计", models.CategoryCompetitions},
	{"通知", models.CategoryCompetitions},
	{"考试", models.CategoryNotices},
	{"选课", models.CategoryNotices},
	{"教学", models.CategoryNotices},
	{"毕业", models.CategoryNotices},
	{"成绩", models.CategoryNotices},
	{"期末", models.CategoryExams},
	{"期中", models.CategoryExams},
	{"补考", models.CategoryExams},
	{"重修", models.CategoryExams},
	{"考场", models.CategoryExams},
	{"时间", models.CategoryExams},
	{"实习", models.CategoryInternships},
	{"实训", models.CategoryInternships},
	{"基地", models.CategoryInternships},
	{"报到", models.CategoryInternships},
	{"鉴定", models.CategoryInternships},
	{"总结", models.CategoryInternships},
	{"指导", models.CategoryInternships},
}

// Taxonomy is the immutable keyword to category table. It is built once at
// startup and shared read-only.
type Taxonomy struct {
	terms []string
	table map[string]models.Category
}

// NewTaxonomy validates rules and builds a taxonomy from them
func NewTaxonomy(rules []Rule) (*Taxonomy, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("taxonomy has no rules")
	}

	t := &Taxonomy{
		terms: make([]string, 0, len(rules)),
		table: make(map[string]models.Category, len(rules)),
	}
	for _, r := range rules {
		if r.Term == "" {
			return nil, fmt.Errorf("taxonomy rule for %s has an empty term", r.Category)
		}
		if !r.Category.Valid() {
			return nil, fmt.Errorf("term %q maps to unknown category %q", r.Term, r.Category)
		}
		if _, dup := t.table[r.Term]; dup {
			return nil, fmt.Errorf("term %q is listed twice", r.Term)
		}
		t.terms = append(t.terms, r.Term)
		t.table[r.Term] = r.Category
	}

	return t, nil
}

// DefaultTaxonomy returns the built-in taxonomy
func DefaultTaxonomy() *Taxonomy {
	t, err := NewTaxonomy(DefaultRules)
	if err != nil {
		panic(err)
	}
	return t
}

// FromCatalog builds the taxonomy described by a catalog file, or the
// default taxonomy when the catalog lists no keywords.
func FromCatalog(catalog *config.Catalog) (*Taxonomy, error) {
	if catalog == nil || len(catalog.Keywords) == 0 {
		return DefaultTaxonomy(), nil
	}

	rules := make([]Rule, 0, len(catalog.Keywords))
	for _, k := range catalog.Keywords {
		rules = append(rules, Rule{Term: k.Term, Category: models.Category(k.Category)})
	}
	return NewTaxonomy(rules)
}

// Terms returns the trigger terms in table order
func (t *Taxonomy) Terms() []string {
	return append([]string(nil), t.terms...)
}

// CategoryOf looks up the category of a single term
func (t *Taxonomy) CategoryOf(term string) (models.Category, bool) {
	c, ok := t.table[term]
	return c, ok
}
