package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/schemaform/internal/core"
	"github.com/JonMunkholm/schemaform/internal/logging"
	"github.com/JonMunkholm/schemaform/internal/web/templates"
)

// render writes an HTML page with the given status.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := page.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Warn("render page failed", "path", r.URL.Path, "error", err)
	}
}

// pageStatus is the status of a page re-rendered with an outcome notice.
// Server-side failures still produce a usable page, so they answer 200.
func pageStatus(res core.Result) int {
	if status := resultStatus(res); status < http.StatusInternalServerError {
		return status
	}
	return http.StatusOK
}

// handleSchemaEditor renders the editor for the stored schema.
func (s *Server) handleSchemaEditor(w http.ResponseWriter, r *http.Request) {
	schema, err := s.service.Schema(r.Context())
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	s.render(w, r, http.StatusOK, templates.SchemaEditorPage(templates.SchemaEditorParams{
		Drafts:     core.NewEditor(schema).Drafts,
		Kinds:      core.Kinds(),
		SuggestFor: -1,
	}))
}

// handleSchemaEditorAction applies one editor action to the posted drafts.
// Only save touches the store; the other actions re-render the edited drafts.
func (s *Server) handleSchemaEditorAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := parseForm(w, r); err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %w", core.ErrInvalidSchema, err), http.StatusBadRequest)
		return
	}
	action, err := parseEditorAction(r.PostForm.Get("action"))
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	drafts := parseDrafts(r.PostForm)
	editor := &core.Editor{Drafts: drafts}
	params := templates.SchemaEditorParams{Kinds: core.Kinds(), SuggestFor: -1}

	switch action.Name {
	case "save":
		res := s.service.SaveSchema(ctx, drafts)
		if res.Success {
			// Show the stored form, with derived names and cleaned lists
			if schema, err := s.service.Schema(ctx); err == nil {
				editor = core.NewEditor(schema)
			}
		}
		params.Result = &res

	case "add":
		if _, err := editor.AddField(); err != nil {
			s.respondError(w, r, err, http.StatusInternalServerError)
			return
		}

	case "remove":
		if err := editor.RemoveField(action.Index); err != nil {
			res := core.Fail(err)
			params.Result = &res
		}

	case "suggest":
		res := s.service.SuggestForDraft(ctx, drafts, action.Index)
		if res.Success {
			params.SuggestFor = action.Index
			params.Suggestions = res.Suggestions
		}
		params.Result = &res

	case "apply":
		if err := editor.ApplySuggestion(action.Index, action.Rule); err != nil {
			res := core.Fail(err)
			params.Result = &res
			break
		}
		// Keep the panel open so several rules can be added in a row
		params.SuggestFor = action.Index
		params.Suggestions = remaining(r.PostForm["suggestion"], action.Rule)
		params.Result = &core.Result{Success: true}
	}

	params.Drafts = editor.Drafts
	status := http.StatusOK
	if params.Result != nil {
		status = pageStatus(*params.Result)
		logging.WithFields(ctx, "action", action.Name, "index", action.Index).
			Debug("schema editor action", "success", params.Result.Success, "code", params.Result.Code)
	}

	s.render(w, r, status, templates.SchemaEditorPage(params))
}

// handleEntryForm renders an empty data-entry form for the current schema.
func (s *Server) handleEntryForm(w http.ResponseWriter, r *http.Request) {
	schema, err := s.service.Schema(r.Context())
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	form := core.NewForm(schema)
	s.render(w, r, http.StatusOK, templates.DataEntryPage(templates.DataEntryParams{
		Controls: form.Controls(form.EmptyValues(), nil),
	}))
}

// handleEntrySubmit validates and stores one record. Invalid values are
// shown again with a message next to each failing field.
func (s *Server) handleEntrySubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := parseForm(w, r); err != nil {
		s.respondError(w, r, fmt.Errorf("%w: %w", core.ErrAddData, err), http.StatusBadRequest)
		return
	}

	outcome := s.service.SubmitRecord(ctx, formValues(r.PostForm))

	schema, err := s.service.Schema(ctx)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	s.render(w, r, pageStatus(outcome.Result), templates.DataEntryPage(templates.DataEntryParams{
		Controls: core.NewForm(schema).Controls(outcome.Values, outcome.Errors),
		Result:   &outcome.Result,
	}))
}

// handleDataViewer renders one page of the filtered, sorted table.
func (s *Server) handleDataViewer(w http.ResponseWriter, r *http.Request) {
	view, err := s.service.Table(r.Context(), parseTableState(r))
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	s.render(w, r, http.StatusOK, templates.DataViewerPage(view))
}

// handleExport downloads the full filtered and sorted row set as CSV.
// An empty row set produces no file.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.service.Export(r.Context(), parseTableState(r))
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	name := s.cfg.Table.ExportFileName
	if name == "" {
		name = core.ExportFileName
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		logging.FromContext(r.Context()).Warn("export write failed", "error", err)
	}
}

// remaining drops the applied rule from the offered suggestions.
func remaining(suggestions []string, applied string) []string {
	out := make([]string, 0, len(suggestions))
	for _, sug := range suggestions {
		if sug != applied {
			out = append(out, sug)
		}
	}
	return out
}
