package config

import (
	_ "embed"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Industry is a selectable manufacturing industry.
type Industry struct {
	Name string `yaml:"name" json:"name"`
	Icon string `yaml:"icon" json:"icon,omitempty"`
}

// Catalog holds the seed lists every session starts from.
type Catalog struct {
	Industries  []Industry `yaml:"industries" json:"industries"`
	GenericTags []string   `yaml:"generic_tags" json:"generic_tags"`
	UOMs        []string   `yaml:"uoms" json:"uoms"`
}

// LoadCatalog reads the catalog named by CATALOG_FILE, or the embedded
// default when the key is unset.
func LoadCatalog(c map[string]string) (Catalog, error) {
	path := GetString(c, "CATALOG_FILE", "")
	if path == "" {
		return ParseCatalog(defaultCatalog)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() Catalog {
	cat, err := ParseCatalog(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return cat
}

func ParseCatalog(data []byte) (Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	if len(cat.Industries) == 0 {
		return Catalog{}, fmt.Errorf("parse catalog: no industries defined")
	}
	for i, ind := range cat.Industries {
		if ind.Name == "" {
			return Catalog{}, fmt.Errorf("parse catalog: industry %d has no name", i)
		}
	}
	return cat, nil
}

// IndustryNames returns the industry names in catalog order.
func (c Catalog) IndustryNames() []string {
	names := make([]string, 0, len(c.Industries))
	for _, ind := range c.Industries {
		names = append(names, ind.Name)
	}
	return names
}

func (c Catalog) HasIndustry(name string) bool {
	return slices.Contains(c.IndustryNames(), name)
}
