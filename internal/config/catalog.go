package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Catalog is the YAML file describing the keyword taxonomy, the chat
// groups being watched and the portal listing pages.
type Catalog struct {
	Keywords []KeywordEntry    `yaml:"keywords"`
	Groups   map[string]string `yaml:"groups"`
	Portal   PortalCatalog     `yaml:"portal"`
}

// KeywordEntry maps one trigger term onto a category
type KeywordEntry struct {
	Term     string `yaml:"term"`
	Category string `yaml:"category"`
}

// PortalCatalog overrides the built-in portal settings
type PortalCatalog struct {
	BaseURL  string      `yaml:"base_url"`
	LinkBase string      `yaml:"link_base"`
	Pages    []PageEntry `yaml:"pages"`
}

// PageEntry describes one listing page
type PageEntry struct {
	Category      string      `yaml:"category"`
	Path          string      `yaml:"path"`
	TableClass    string      `yaml:"table_class"`
	RequireSuffix string      `yaml:"require_suffix"`
	ExcludeTitles []string    `yaml:"exclude_titles"`
	Rules         []RuleEntry `yaml:"rules"`
}

// RuleEntry emits keywords when its trigger appears in a title or body
type RuleEntry struct {
	Trigger string   `yaml:"trigger"`
	Emit    []string `yaml:"emit"`
}

// LoadCatalog reads the catalog at path. An empty path yields an empty
// catalog so callers fall back to built-in tables.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return &Catalog{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}

	return &catalog, nil
}

// GroupName returns the configured display name for a group id
func (c *Catalog) GroupName(groupID string) string {
	if name, ok := c.Groups[groupID]; ok {
		return name
	}
	return groupID
}
