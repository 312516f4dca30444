package file

import (
	"context"
	"fmt"
	"os"

	"classical-music-quiz/internal/domain"
	"gopkg.in/yaml.v3"
)

// CatalogLoader reads the sample catalog from a YAML file.
type CatalogLoader struct {
	path string
}

func NewCatalogLoader(path string) *CatalogLoader {
	return &CatalogLoader{path: path}
}

func (l *CatalogLoader) LoadCatalog(_ context.Context) (domain.Catalog, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a YAML catalog and rejects duplicate or negative ids.
func ParseCatalog(data []byte) (domain.Catalog, error) {
	var catalog domain.Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return domain.Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	if len(catalog.Samples) == 0 {
		return domain.Catalog{}, domain.ErrCatalogEmpty
	}

	seen := make(map[int]struct{}, len(catalog.Samples))
	for _, s := range catalog.Samples {
		if s.ID < 0 {
			return domain.Catalog{}, fmt.Errorf("sample %d: id must be non-negative", s.ID)
		}
		if _, dup := seen[s.ID]; dup {
			return domain.Catalog{}, fmt.Errorf("sample %d: duplicate id", s.ID)
		}
		if s.URI == "" {
			return domain.Catalog{}, fmt.Errorf("sample %d: missing uri", s.ID)
		}
		seen[s.ID] = struct{}{}
	}
	return catalog, nil
}
