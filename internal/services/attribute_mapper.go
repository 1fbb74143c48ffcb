package services

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	domain "github.com/tailor-field/configurator/internal/domain"
)

var nameFolder = cases.Lower(language.Und)

// namePredicate tests a normalized option name.
type namePredicate func(name string) bool

func containsAny(keywords ...string) namePredicate {
	return func(name string) bool {
		for _, kw := range keywords {
			if strings.Contains(name, kw) {
				return true
			}
		}
		return false
	}
}

func containsAll(keywords ...string) namePredicate {
	return func(name string) bool {
		for _, kw := range keywords {
			if !strings.Contains(name, kw) {
				return false
			}
		}
		return true
	}
}

type attributeRule struct {
	match namePredicate
	keys  []domain.AttributeKey
}

// colorRules are evaluated in order and the first match wins.
var colorRules = []attributeRule{
	{match: containsAny("fabric", "main"), keys: []domain.AttributeKey{domain.AttrFabricColor, domain.AttrMainColor}},
	{match: containsAny("collar"), keys: []domain.AttributeKey{domain.AttrCollarColor}},
	{match: containsAny("cuff"), keys: []domain.AttributeKey{domain.AttrCuffColor}},
	{match: containsAny("button"), keys: []domain.AttributeKey{domain.AttrButtonColor}},
	{match: containsAny("pocket"), keys: []domain.AttributeKey{domain.AttrPocketColor}},
	{match: containsAny("sleeve"), keys: []domain.AttributeKey{domain.AttrSleeveColor}},
	{match: containsAny("lining"), keys: []domain.AttributeKey{domain.AttrLiningColor}},
	{match: containsAny("trim"), keys: []domain.AttributeKey{domain.AttrTrimColor}},
	{match: containsAny("accent"), keys: []domain.AttributeKey{domain.AttrAccentColor}},
}

// styleRules are evaluated in order and the first match wins. Compound predicates precede the
// single keywords they contain.
var styleRules = []attributeRule{
	{match: containsAll("sleeve", "button"), keys: []domain.AttributeKey{domain.AttrSleeveButtonStyle}},
	{match: containsAny("collar"), keys: []domain.AttributeKey{domain.AttrCollarStyle}},
	{match: containsAny("cuff"), keys: []domain.AttributeKey{domain.AttrCuffStyle}},
	{match: containsAny("pocket"), keys: []domain.AttributeKey{domain.AttrPocketStyle}},
	{match: containsAll("button", "style"), keys: []domain.AttributeKey{domain.AttrButtonStyle}},
	{match: containsAll("button", "configuration"), keys: []domain.AttributeKey{domain.AttrButtonCount}},
	{match: containsAny("fit"), keys: []domain.AttributeKey{domain.AttrFitStyle}},
	{match: containsAny("monogram"), keys: []domain.AttributeKey{domain.AttrMonogram}},
	{match: containsAny("waistband"), keys: []domain.AttributeKey{domain.AttrWaistbandStyle}},
	{match: containsAny("hem"), keys: []domain.AttributeKey{domain.AttrHemStyle}},
	{match: containsAny("belt"), keys: []domain.AttributeKey{domain.AttrBeltLoops}},
	{match: containsAny("lapel"), keys: []domain.AttributeKey{domain.AttrLapelStyle}},
	{match: containsAny("vent"), keys: []domain.AttributeKey{domain.AttrVentStyle}},
	{match: containsAny("lining"), keys: []domain.AttributeKey{domain.AttrLiningStyle}},
}

// NormalizeOptionName lower-cases name and removes all whitespace.
func NormalizeOptionName(name string) string {
	folded := nameFolder.String(name)
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, folded)
}

func firstMatch(rules []attributeRule, name string) (attributeRule, bool) {
	for _, rule := range rules {
		if rule.match(name) {
			return rule, true
		}
	}
	return attributeRule{}, false
}

// MapAttributes classifies each selection's option name into semantic visual attributes.
// Selections are applied in the order given; later selections overwrite earlier values for the same key.
// Selections whose step or option cannot be resolved against steps are skipped.
func MapAttributes(steps []domain.CustomizationStep, selections []domain.Selection) domain.VisualAttributes {
	index := make(map[string]domain.CustomizationStep, len(steps))
	for _, step := range steps {
		index[step.ID] = step
	}

	var attrs domain.VisualAttributes
	for _, sel := range selections {
		step, ok := index[sel.StepID]
		if !ok {
			continue
		}
		option, ok := step.Option(sel.OptionID)
		if !ok {
			continue
		}
		name := NormalizeOptionName(option.Name)

		color := sel.Color
		if color == "" {
			color = option.Color
		}
		if color != "" {
			attrs.Set(domain.AttrColor, color)
			attrs.Set(domain.AttrFabricColor, color)
			if rule, ok := firstMatch(colorRules, name); ok {
				for _, key := range rule.keys {
					attrs.Set(key, color)
				}
			}
		}

		if step.Kind == domain.StepKindTexture {
			attrs.Set(domain.AttrFabricType, option.Value)
		}

		if rule, ok := firstMatch(styleRules, name); ok {
			for _, key := range rule.keys {
				attrs.Set(key, option.Value)
			}
		}
	}
	return attrs
}
