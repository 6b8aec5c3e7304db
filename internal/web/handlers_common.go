package web

// handlers_common.go contains request parsing helpers shared across handlers.

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/JonMunkholm/schemaform/internal/core"
)

// maxFormBytes bounds posted forms and JSON bodies.
const maxFormBytes = 1 << 20

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// parseTableState reads q, sort, dir and page from the query string.
// Unknown sort columns are dropped later by the table engine.
func parseTableState(r *http.Request) core.TableState {
	q := r.URL.Query()
	state := core.TableState{
		Query: q.Get("q"),
		Sort:  strings.TrimSpace(q.Get("sort")),
		Page:  parseIntParam(r, "page", 1),
	}
	if state.Sort != "" {
		state.Dir = core.SortAsc
		if strings.EqualFold(q.Get("dir"), string(core.SortDesc)) {
			state.Dir = core.SortDesc
		}
	}
	return state
}

// parseForm reads a url-encoded body of at most maxFormBytes.
func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	return r.ParseForm()
}

// formValues flattens posted values to the first value per key.
func formValues(form url.Values) map[string]string {
	raw := make(map[string]string, len(form))
	for k, v := range form {
		if len(v) > 0 {
			raw[k] = v[0]
		}
	}
	return raw
}

// parseDrafts rebuilds the editor drafts from the parallel id, label, type,
// validations and options inputs, which the editor renders once per field.
func parseDrafts(form url.Values) []core.Draft {
	ids := form["id"]
	at := func(key string, i int) string {
		if vals := form[key]; i < len(vals) {
			return vals[i]
		}
		return ""
	}

	drafts := make([]core.Draft, len(ids))
	for i, id := range ids {
		drafts[i] = core.Draft{
			ID:          id,
			Label:       strings.TrimSpace(at("label", i)),
			Type:        core.FieldKind(strings.ToLower(at("type", i))),
			Validations: at("validations", i),
			Options:     at("options", i),
		}
	}
	return drafts
}

// editorAction is a parsed value of the editor's action button.
type editorAction struct {
	Name  string // save, add, remove, suggest or apply
	Index int
	Rule  string
}

// parseEditorAction splits "name[:index[:rule]]". The rule may itself
// contain colons.
func parseEditorAction(s string) (editorAction, error) {
	parts := strings.SplitN(s, ":", 3)
	a := editorAction{Name: parts[0], Index: -1}

	switch a.Name {
	case "save", "add":
		if len(parts) != 1 {
			return a, errBadAction(s)
		}
		return a, nil
	case "remove", "suggest":
		if len(parts) != 2 {
			return a, errBadAction(s)
		}
	case "apply":
		if len(parts) != 3 {
			return a, errBadAction(s)
		}
		a.Rule = parts[2]
	default:
		return a, errBadAction(s)
	}

	i, err := strconv.Atoi(parts[1])
	if err != nil {
		return a, errBadAction(s)
	}
	a.Index = i
	return a, nil
}

func errBadAction(s string) error {
	return fmt.Errorf("%w: unknown editor action %q", core.ErrInvalidSchema, s)
}
