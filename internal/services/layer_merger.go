package services

import domain "github.com/tailor-field/configurator/internal/domain"

// MergeLayers concatenates show/hide directives from selections in order. Duplicates are kept and
// identifiers present in both lists are passed through; the renderer owns tie-breaking.
func MergeLayers(selections []domain.Selection) domain.LayerDirectives {
	merged := domain.LayerDirectives{Show: []string{}, Hide: []string{}}
	for _, sel := range selections {
		if sel.Layers == nil {
			continue
		}
		merged.Show = append(merged.Show, sel.Layers.Show...)
		merged.Hide = append(merged.Hide, sel.Layers.Hide...)
	}
	return merged
}
