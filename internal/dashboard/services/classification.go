package services

import (
	"strings"

	"github.com/c14220110/klinik-dashboard/internal/dashboard/models"
	"github.com/c14220110/klinik-dashboard/pkg/docstore"
)

// Rule assigns Label to a document when Match holds.
type Rule struct {
	Name  string
	Label models.Label
	Match func(doc docstore.Document) bool
}

// DefaultLabel applies when no rule matches.
const DefaultLabel = models.LabelTest

// DefaultRules are evaluated top to bottom; the first match wins.
var DefaultRules = []Rule{
	{Name: "type-mentions-package", Label: models.LabelPackage, Match: typeContains("package")},
	{Name: "type-mentions-test", Label: models.LabelTest, Match: typeContains("test")},
	{Name: "package-reference", Label: models.LabelPackage, Match: hasPackageReference},
	{Name: "package-item", Label: models.LabelPackage, Match: hasPackageItem},
}

// Classify returns the label of the first matching rule, or DefaultLabel.
func Classify(doc docstore.Document, rules []Rule) models.Label {
	for _, r := range rules {
		if r.Match(doc) {
			return r.Label
		}
	}
	return DefaultLabel
}

// TypeOf returns the lower-cased appointment type, taken from the first
// non-empty of type, appointmentType and serviceType.
func TypeOf(doc docstore.Document) string {
	for _, f := range []string{"type", "appointmentType", "serviceType"} {
		if s, ok := doc.String(f); ok && s != "" {
			return strings.ToLower(s)
		}
	}
	return ""
}

func typeContains(sub string) func(docstore.Document) bool {
	return func(doc docstore.Document) bool {
		return strings.Contains(TypeOf(doc), sub)
	}
}

func hasPackageReference(doc docstore.Document) bool {
	for _, f := range []string{"packageId", "package"} {
		if v, ok := doc.Get(f); ok && truthy(v) {
			return true
		}
	}
	return false
}

func hasPackageItem(doc docstore.Document) bool {
	v, _ := doc.Get("items")
	switch items := v.(type) {
	case []any:
		for _, it := range items {
			if m, ok := it.(map[string]any); ok && isPackageItem(m) {
				return true
			}
		}
	case []map[string]any:
		for _, m := range items {
			if isPackageItem(m) {
				return true
			}
		}
	}
	return false
}

func isPackageItem(m map[string]any) bool {
	t, ok := m["type"].(string)
	return ok && strings.ToLower(t) == "package"
}

// truthy treats nil, empty strings, false and zero numbers as absent.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case bool:
		return x
	case float64:
		return x != 0
	}
	if n, ok := toInt64(v); ok {
		return n != 0
	}
	return true
}
