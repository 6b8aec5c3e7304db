// Package suggest provides rule-suggestion collaborators for the schema editor.
//
// Suggestions are advisory: the editor shows them as candidates and the user
// decides which to append. Two implementations exist:
//   - Heuristic: offline, derives rules from the field kind and label keywords
//   - Client: forwards the request to a remote suggestion service over HTTP
package suggest

import (
	"context"
	"strings"

	"github.com/JonMunkholm/schemaform/internal/core"
)

// keywordRule adds rules when a label contains one of its keywords.
type keywordRule struct {
	kinds    []core.FieldKind
	keywords []string
	rules    []string
}

var keywordRules = []keywordRule{
	{
		kinds:    []core.FieldKind{core.KindText},
		keywords: []string{"email", "e-mail"},
		rules:    []string{"email"},
	},
	{
		kinds:    []core.FieldKind{core.KindText},
		keywords: []string{"name"},
		rules:    []string{"minLength:2", "maxLength:50"},
	},
	{
		kinds:    []core.FieldKind{core.KindText},
		keywords: []string{"zip", "postal"},
		rules:    []string{`pattern:^\d{5}(-\d{4})?$`},
	},
	{
		kinds:    []core.FieldKind{core.KindText},
		keywords: []string{"phone", "mobile", "tel"},
		rules:    []string{`pattern:^[0-9+()\- ]{7,20}$`},
	},
	{
		kinds:    []core.FieldKind{core.KindText},
		keywords: []string{"code", "sku"},
		rules:    []string{`pattern:^[A-Za-z0-9-]+$`},
	},
	{
		kinds:    []core.FieldKind{core.KindNumber},
		keywords: []string{"age"},
		rules:    []string{"min:0", "max:130"},
	},
	{
		kinds:    []core.FieldKind{core.KindNumber},
		keywords: []string{"percent", "%", "rate"},
		rules:    []string{"min:0", "max:100"},
	},
	{
		kinds:    []core.FieldKind{core.KindNumber},
		keywords: []string{"price", "amount", "cost", "quantity", "qty", "count", "total"},
		rules:    []string{"min:0"},
	},
}

// kindDefaults are suggested for every field of a kind.
var kindDefaults = map[core.FieldKind][]string{
	core.KindText:   {"required", "maxLength:255"},
	core.KindNumber: {"required"},
	core.KindEmail:  {"required", "maxLength:254"},
	core.KindDate:   {"required"},
	core.KindSelect: {"required"},
}

// Heuristic suggests rules without any network access.
type Heuristic struct{}

// NewHeuristic returns the offline suggester.
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

// Suggest implements core.Suggester.
func (h *Heuristic) Suggest(ctx context.Context, label string, kind core.FieldKind) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lower := strings.ToLower(label)
	var out []string
	seen := map[string]bool{}
	add := func(rules ...string) {
		for _, r := range rules {
			if !seen[r] {
				seen[r] = true
				out = append(out, r)
			}
		}
	}

	add(kindDefaults[kind]...)
	for _, kr := range keywordRules {
		if !containsKind(kr.kinds, kind) {
			continue
		}
		for _, kw := range kr.keywords {
			if strings.Contains(lower, kw) {
				add(kr.rules...)
				break
			}
		}
	}

	return out, nil
}

func containsKind(kinds []core.FieldKind, k core.FieldKind) bool {
	for _, kind := range kinds {
		if kind == k {
			return true
		}
	}
	return false
}
