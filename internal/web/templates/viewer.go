package templates

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/schemaform/internal/core"
)

// Paths the viewer links to.
const (
	DataPath   = "/data"
	ExportPath = "/data/export.csv"
)

// TableURL encodes a table state as a link. Page 1 is left implicit.
func TableURL(base string, s core.TableState) string {
	v := url.Values{}
	if s.Query != "" {
		v.Set("q", s.Query)
	}
	if s.Sort != "" {
		v.Set("sort", s.Sort)
		if s.Dir != "" {
			v.Set("dir", string(s.Dir))
		}
	}
	if s.Page > 1 {
		v.Set("page", strconv.Itoa(s.Page))
	}
	if len(v) == 0 {
		return base
	}
	return base + "?" + v.Encode()
}

// DataViewerPage renders the search box, the table and its pager.
func DataViewerPage(view core.TableView) templ.Component {
	body := component(func(ctx context.Context, h *html) {
		h.raw("<p>View, sort, and search your captured data.</p>")

		if view.NoSchema {
			h.raw(`<p class="empty">`)
			h.text(view.EmptyMessage)
			h.raw("</p>")
			return
		}

		s := view.State
		searchForm(h, s)

		if view.Total > 0 {
			exportState := s
			exportState.Page = 0
			h.raw(`<a class="button" download`)
			h.attr("href", TableURL(ExportPath, exportState))
			h.raw(">Export CSV</a>")
		} else {
			h.raw(`<span class="button disabled" aria-disabled="true">Export CSV</span>`)
		}

		h.raw("<table><thead><tr>")
		for _, col := range view.Columns {
			h.raw("<th")
			switch col.Sorted {
			case core.SortAsc:
				h.attr("aria-sort", "ascending")
			case core.SortDesc:
				h.attr("aria-sort", "descending")
			}
			h.raw("><a")
			h.attr("href", TableURL(DataPath, s.ToggleSort(col.Name)))
			h.raw(">")
			h.text(col.Label)
			switch col.Sorted {
			case core.SortAsc:
				h.raw(" &#9650;")
			case core.SortDesc:
				h.raw(" &#9660;")
			}
			h.raw("</a></th>")
		}
		h.raw("</tr></thead><tbody>")

		if len(view.Rows) == 0 {
			h.raw(`<tr><td class="empty"`)
			h.attr("colspan", strconv.Itoa(len(view.Columns)))
			h.raw(">")
			h.text(view.EmptyMessage)
			h.raw("</td></tr>")
		}
		for _, row := range view.Rows {
			h.raw("<tr>")
			for _, cell := range row {
				h.raw("<td>")
				h.text(cell)
				h.raw("</td>")
			}
			h.raw("</tr>")
		}
		h.raw("</tbody></table>")

		pager(h, view)
	})
	return Layout("Data Viewer", DataPath, body)
}

// searchForm keeps the active sort but drops the page, so a new search
// starts on page 1.
func searchForm(h *html, s core.TableState) {
	h.raw(`<form method="get" role="search"`)
	h.attr("action", DataPath)
	h.raw(`><input type="search" name="q" placeholder="Search all fields..." aria-label="Search all fields"`)
	h.attr("value", s.Query)
	h.raw(">")
	if s.Sort != "" {
		h.raw(`<input type="hidden" name="sort"`)
		h.attr("value", s.Sort)
		h.raw(`><input type="hidden" name="dir"`)
		h.attr("value", string(s.Dir))
		h.raw(">")
	}
	h.raw(`<button type="submit">Search</button></form>`)
}

func pager(h *html, view core.TableView) {
	s := view.State
	h.raw("<div><span>")
	if view.Total > 0 {
		h.text(fmt.Sprintf("Showing %d-%d of %d records.", view.Start, view.End, view.Total))
	}
	h.raw(" ")
	h.text(fmt.Sprintf("Page %d of %d", s.Page, max(view.TotalPages, 1)))
	h.raw("</span> ")
	pageLink(h, "Previous", view.HasPrev, s.WithPage(s.Page-1))
	pageLink(h, "Next", view.HasNext, s.WithPage(s.Page+1))
	h.raw("</div>")
}

func pageLink(h *html, label string, enabled bool, target core.TableState) {
	if !enabled {
		h.raw(`<span class="button disabled" aria-disabled="true">`)
		h.text(label)
		h.raw("</span>")
		return
	}
	h.raw(`<a class="button"`)
	h.attr("href", TableURL(DataPath, target))
	h.raw(">")
	h.text(label)
	h.raw("</a>")
}
