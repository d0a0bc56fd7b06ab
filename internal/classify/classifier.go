package classify

import (
	"github.com/campus-notice-collector/internal/models"
)

// Classifier assigns categories to keyword sets
type Classifier struct {
	taxonomy *Taxonomy
}

// NewClassifier creates a classifier over taxonomy
func NewClassifier(taxonomy *Taxonomy) *Classifier {
	return &Classifier{taxonomy: taxonomy}
}

// Classify returns the distinct categories any keyword maps to, in
// canonical category order. An empty result means the keywords are not
// classifiable.
func (c *Classifier) Classify(keywords []string) []models.Category {
	hit := make(map[models.Category]bool)
	for _, kw := range keywords {
		if cat, ok := c.taxonomy.CategoryOf(kw); ok {
			hit[cat] = true
		}
	}

	var out []models.Category
	for _, cat := range models.Categories {
		if hit[cat] {
			out = append(out, cat)
		}
	}
	return out
}

// Terms exposes the taxonomy terms for literal keyword matching
func (c *Classifier) Terms() []string {
	return c.taxonomy.Terms()
}
