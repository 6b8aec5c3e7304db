// Package templates holds the HTML components of the web UI.
//
// Components are templ.Component values. All dynamic text goes through
// templ.EscapeString; only the fixed markup in this package is written raw.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/schemaform/internal/core"
)

// AppName is shown in the sidebar and the document title.
const AppName = "Tabular Data"

// NavItem is one sidebar link.
type NavItem struct {
	Href  string
	Label string
}

// Nav lists the three pages in sidebar order.
var Nav = []NavItem{
	{Href: "/schema", Label: "Schema Definition"},
	{Href: "/entry", Label: "Data Entry"},
	{Href: "/data", Label: "Data Viewer"},
}

// html accumulates the first write error so components can write without
// checking every call.
type html struct {
	w   io.Writer
	err error
}

func (h *html) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *html) text(s string) {
	h.raw(templ.EscapeString(s))
}

// attr writes ` name="value"` with the value escaped.
func (h *html) attr(name, value string) {
	h.raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

func (h *html) flag(name string, on bool) {
	if on {
		h.raw(" " + name)
	}
}

func (h *html) render(ctx context.Context, c templ.Component) {
	if h.err == nil && c != nil {
		h.err = c.Render(ctx, h.w)
	}
}

func component(fn func(ctx context.Context, h *html)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		fn(ctx, h)
		return h.err
	})
}

const styles = `
body{margin:0;font-family:system-ui,sans-serif;display:flex;min-height:100vh;color:#111}
nav{width:14rem;background:#f4f4f5;padding:1rem;border-right:1px solid #ddd}
nav a{display:block;padding:.4rem .6rem;border-radius:.3rem;color:#111;text-decoration:none}
nav a.active{background:#e4e4e7;font-weight:600}
main{flex:1;padding:1.5rem 2rem}
fieldset{border:1px solid #ddd;border-radius:.4rem;margin:0 0 1rem;padding:1rem}
label{display:block;font-size:.85rem;font-weight:600;margin:.5rem 0 .2rem}
input,select{padding:.35rem;min-width:16rem}
button,.button{padding:.35rem .8rem;margin:.3rem .3rem 0 0;cursor:pointer}
button[disabled],.disabled{opacity:.5;cursor:not-allowed}
.alert{padding:.6rem 1rem;border-radius:.3rem;margin-bottom:1rem}
.alert.ok{background:#dcfce7;border:1px solid #86efac}
.alert.error{background:#fee2e2;border:1px solid #fca5a5}
.field-error{color:#b91c1c;font-size:.85rem;margin:.2rem 0 0}
table{border-collapse:collapse;width:100%;margin:1rem 0}
th,td{border-bottom:1px solid #e5e5e5;padding:.4rem;text-align:left}
.empty{text-align:center;color:#666;padding:2rem}
`

// gateScript stops a form from being submitted twice. The clicked button's
// name and value are copied into a hidden input before every button in the
// form is disabled, since disabled buttons are not submitted.
const gateScript = `
document.addEventListener('submit',function(e){
var f=e.target;if(!f.hasAttribute('data-gate'))return;
if(f.dataset.busy){e.preventDefault();return}
f.dataset.busy='1';var s=e.submitter;
if(s&&s.name){var i=document.createElement('input');i.type='hidden';i.name=s.name;i.value=s.value;f.appendChild(i)}
f.querySelectorAll('button').forEach(function(b){b.disabled=true;if(b===s&&b.dataset.busyLabel){b.textContent=b.dataset.busyLabel}})
});
window.addEventListener('pageshow',function(){document.querySelectorAll('form[data-gate]').forEach(function(f){delete f.dataset.busy;f.querySelectorAll('button').forEach(function(b){b.disabled=false})})});
`

// Layout wraps body in the page shell with the sidebar. active is the Href
// of the current page.
func Layout(title, active string, body templ.Component) templ.Component {
	return component(func(ctx context.Context, h *html) {
		h.raw("<!DOCTYPE html>\n<html lang=\"en\"><head><meta charset=\"utf-8\">")
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw("<title>")
		h.text(title + " | " + AppName)
		h.raw("</title><style>" + styles + "</style></head><body><nav><strong>")
		h.text(AppName)
		h.raw("</strong>")
		for _, item := range Nav {
			h.raw("<a")
			h.attr("href", item.Href)
			if item.Href == active {
				h.attr("class", "active")
				h.attr("aria-current", "page")
			}
			h.raw(">")
			h.text(item.Label)
			h.raw("</a>")
		}
		h.raw("</nav><main><h1>")
		h.text(title)
		h.raw("</h1>")
		h.render(ctx, body)
		h.raw("</main><script>" + gateScript + "</script></body></html>")
	})
}

// ErrorAlert renders a user-facing error with its recovery hint and code.
func ErrorAlert(message, action, code string) templ.Component {
	return component(func(_ context.Context, h *html) {
		h.raw(`<div class="alert error" role="alert"><strong>`)
		h.text(message)
		h.raw("</strong>")
		if action != "" {
			h.raw("<div>")
			h.text(action)
			h.raw("</div>")
		}
		if code != "" {
			h.raw("<small>Code: ")
			h.text(code)
			h.raw("</small>")
		}
		h.raw("</div>")
	})
}

// Notice renders the outcome of the last action, if any.
func Notice(res *core.Result) templ.Component {
	return component(func(ctx context.Context, h *html) {
		switch {
		case res == nil:
		case res.Success:
			if res.Message != "" {
				h.raw(`<div class="alert ok" role="status">`)
				h.text(res.Message)
				h.raw("</div>")
			}
		default:
			h.render(ctx, ErrorAlert(res.Error, "", res.Code))
		}
	})
}
