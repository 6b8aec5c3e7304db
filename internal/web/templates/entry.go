package templates

import (
	"context"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/schemaform/internal/core"
)

// DataEntryParams is everything the data entry page shows.
type DataEntryParams struct {
	Controls []core.FormControl
	Result   *core.Result
}

// DataEntryPage renders one input per schema field.
func DataEntryPage(p DataEntryParams) templ.Component {
	body := component(func(ctx context.Context, h *html) {
		h.raw("<p>Add a new record using the current schema.</p>")
		h.render(ctx, Notice(p.Result))

		if len(p.Controls) == 0 {
			h.raw(`<p class="empty">No schema defined. Add fields on the <a href="/schema">Schema Definition</a> page first.</p>`)
			return
		}

		h.raw(`<form method="post" action="/entry" data-gate novalidate>`)
		for _, c := range p.Controls {
			formControl(h, c)
		}
		h.raw(`<button type="submit" data-busy-label="Submitting...">Submit</button></form>`)
	})
	return Layout("Data Entry", "/entry", body)
}

func formControl(h *html, c core.FormControl) {
	inputID := "input-" + c.Name
	errID := inputID + "-error"

	h.raw("<div><label")
	h.attr("for", inputID)
	h.raw(">")
	h.text(c.Label)
	if c.Required {
		h.raw(` <span aria-hidden="true">*</span>`)
	}
	h.raw("</label>")

	if c.InputType == "select" {
		h.raw("<select")
		controlAttrs(h, c, inputID, errID)
		h.raw(`><option value="">`)
		h.text(c.Placeholder)
		h.raw("</option>")
		for _, opt := range c.Options {
			h.raw("<option")
			h.attr("value", opt)
			h.flag("selected", opt == c.Value)
			h.raw(">")
			h.text(opt)
			h.raw("</option>")
		}
		h.raw("</select>")
	} else {
		h.raw("<input")
		h.attr("type", c.InputType)
		controlAttrs(h, c, inputID, errID)
		h.attr("value", c.Value)
		h.attr("placeholder", c.Placeholder)
		if c.InputType == "number" {
			h.attr("step", "any")
		}
		h.raw(">")
	}

	if c.Error != "" {
		h.raw(`<p class="field-error"`)
		h.attr("id", errID)
		h.raw(">")
		h.text(c.Error)
		h.raw("</p>")
	}
	h.raw("</div>")
}

func controlAttrs(h *html, c core.FormControl, inputID, errID string) {
	h.attr("id", inputID)
	h.attr("name", c.Name)
	if c.Error != "" {
		h.attr("aria-invalid", "true")
		h.attr("aria-describedby", errID)
	}
}
