package templates

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/schemaform/internal/core"
)

// SchemaEditorParams is everything the editor page shows.
type SchemaEditorParams struct {
	Drafts      []core.Draft
	Kinds       []core.KindSpec
	Result      *core.Result
	SuggestFor  int // Draft index the suggestion panel belongs to, or -1
	Suggestions []string
}

// SchemaEditorPage renders the schema editor. Every button posts the whole
// draft list together with an action value.
func SchemaEditorPage(p SchemaEditorParams) templ.Component {
	body := component(func(ctx context.Context, h *html) {
		h.raw("<p>Define the fields every record must have.</p>")
		h.render(ctx, Notice(p.Result))

		h.raw(`<form method="post" action="/schema" data-gate>`)
		// Enter in a text input submits the first button in the form
		h.raw(`<button type="submit" name="action" value="save" style="display:none" tabindex="-1" aria-hidden="true"></button>`)

		if len(p.Drafts) == 0 {
			h.raw(`<p class="empty">No fields yet. Add one to get started.</p>`)
		}
		for i, d := range p.Drafts {
			draftFieldset(ctx, h, p, i, d)
		}

		h.raw(`<button type="submit" name="action" value="add">Add Field</button>`)
		h.raw(`<button type="submit" name="action" value="save" data-busy-label="Saving...">Save Schema</button>`)
		h.raw("</form>")
	})
	return Layout("Schema Definition", "/schema", body)
}

func draftFieldset(ctx context.Context, h *html, p SchemaEditorParams, i int, d core.Draft) {
	idx := strconv.Itoa(i)
	prefix := "field-" + idx + "-"

	h.raw("<fieldset><legend>Field ")
	h.text(strconv.Itoa(i + 1))
	h.raw("</legend>")
	h.raw(`<input type="hidden" name="id"`)
	h.attr("value", d.ID)
	h.raw(">")

	h.raw("<label")
	h.attr("for", prefix+"label")
	h.raw(">Label</label><input type=\"text\" name=\"label\" placeholder=\"e.g., First Name\"")
	h.attr("id", prefix+"label")
	h.attr("value", d.Label)
	h.raw(">")

	h.raw("<label")
	h.attr("for", prefix+"type")
	h.raw(">Data Type</label><select name=\"type\"")
	h.attr("id", prefix+"type")
	h.raw(">")
	for _, k := range p.Kinds {
		h.raw("<option")
		h.attr("value", string(k.Kind))
		h.flag("selected", k.Kind == d.Type)
		h.raw(">")
		h.text(k.Label)
		h.raw("</option>")
	}
	h.raw("</select>")

	h.raw("<label")
	h.attr("for", prefix+"validations")
	h.raw(">Validation Rules</label><input type=\"text\" name=\"validations\" placeholder=\"e.g., required, minLength:2\"")
	h.attr("id", prefix+"validations")
	h.attr("value", d.Validations)
	h.raw(">")
	h.raw(`<button type="submit" name="action" aria-label="Suggest validation rules" data-busy-label="Suggesting..."`)
	h.attr("value", "suggest:"+idx)
	h.raw(">Suggest</button>")

	h.raw("<label")
	h.attr("for", prefix+"options")
	h.raw(">Options <small>(select fields only)</small></label><input type=\"text\" name=\"options\" placeholder=\"e.g., Option 1, Option 2\"")
	h.attr("id", prefix+"options")
	h.attr("value", d.Options)
	h.raw(">")

	if p.SuggestFor == i && p.Result != nil && p.Result.Success {
		suggestionPanel(h, idx, d.Label, p.Suggestions)
	}

	h.raw(`<div><button type="submit" name="action"`)
	h.attr("value", "remove:"+idx)
	h.attr("aria-label", "Remove field "+strconv.Itoa(i+1))
	h.raw(">Remove</button></div></fieldset>")
}

func suggestionPanel(h *html, idx, label string, suggestions []string) {
	h.raw(`<div class="suggestions"><p>Suggested rules for <strong>`)
	h.text(label)
	h.raw("</strong>. Click a rule to add it.</p>")
	if len(suggestions) == 0 {
		h.raw("<p>No suggestions available.</p>")
	}
	for _, rule := range suggestions {
		h.raw(`<input type="hidden" name="suggestion"`)
		h.attr("value", rule)
		h.raw(">")
		h.raw(`<button type="submit" name="action"`)
		h.attr("value", "apply:"+idx+":"+rule)
		h.raw(">")
		h.text(rule)
		h.raw("</button>")
	}
	h.raw("</div>")
}
