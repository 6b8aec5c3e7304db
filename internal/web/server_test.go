package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/JonMunkholm/schemaform/internal/config"
	"github.com/JonMunkholm/schemaform/internal/core"
	"github.com/JonMunkholm/schemaform/internal/store"
	"github.com/JonMunkholm/schemaform/internal/suggest"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Host: "127.0.0.1", Port: 8080},
		Table:    config.TableConfig{PageSize: 10, ExportFileName: "data-export.csv"},
		Security: config.SecurityConfig{EnableCSP: true},
	}
}

type testServer struct {
	*Server
	store *store.MemoryStore
}

func newTestServer(t *testing.T, cfg *config.Config, schema core.Schema, records ...core.DataRecord) *testServer {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}

	st := store.New()
	if err := st.Init(context.Background(), schema, records); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	svc := core.NewService(st, suggest.NewHeuristic(), core.ServiceConfig{
		PageSize:   cfg.Table.PageSize,
		AllowReset: cfg.Store.AllowReset,
	})

	srv := NewServer(svc, cfg)
	t.Cleanup(func() { srv.Shutdown(context.Background()) })
	return &testServer{Server: srv, store: st}
}

func (ts *testServer) do(t *testing.T, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	ts.Router().ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) postForm(t *testing.T, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	return ts.do(t, http.MethodPost, target, "application/x-www-form-urlencoded", form.Encode())
}

func peopleSchema() core.Schema {
	return core.Schema{
		{ID: "f1", Name: "fullName", Label: "Full Name", Type: core.KindText, Validations: []string{"required", "minLength:2"}},
		{ID: "f2", Name: "age", Label: "Age", Type: core.KindNumber, Validations: []string{"min:0"}},
		{ID: "f3", Name: "joined", Label: "Joined", Type: core.KindDate, Validations: []string{}},
	}
}

func draftForm(action string, drafts ...core.Draft) url.Values {
	form := url.Values{"action": {action}}
	for _, d := range drafts {
		form.Add("id", d.ID)
		form.Add("label", d.Label)
		form.Add("type", string(d.Type))
		form.Add("validations", d.Validations)
		form.Add("options", d.Options)
	}
	return form
}

func TestRootRedirects(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	rec := ts.do(t, http.MethodGet, "/", "", "")

	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/data" {
		t.Errorf("GET / = %d %q, want 302 /data", rec.Code, rec.Header().Get("Location"))
	}
}

func TestSecurityAndRequestHeaders(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	rec := ts.do(t, http.MethodGet, "/data", "", "")

	if rec.Header().Get("Content-Security-Policy") == "" {
		t.Error("CSP header missing")
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html") {
		t.Errorf("Content-Type = %q", rec.Header().Get("Content-Type"))
	}
}

func TestSchemaEditor_SaveReplacesSchema(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	rec := ts.postForm(t, "/schema", draftForm("save",
		core.Draft{ID: "a", Label: "First Name", Type: core.KindText, Validations: "required, minLength:2"},
		core.Draft{ID: "b", Label: "Plan", Type: core.KindSelect, Options: "Free, Pro"},
	))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Schema updated successfully!") {
		t.Error("success notice missing")
	}

	schema, _ := ts.store.GetSchema(context.Background())
	if len(schema) != 2 {
		t.Fatalf("stored %d fields, want 2", len(schema))
	}
	if schema[0].Name != "firstName" {
		t.Errorf("Name = %q, want firstName", schema[0].Name)
	}
	if got := strings.Join(schema[1].Options, "|"); got != "Free|Pro" {
		t.Errorf("Options = %q, want Free|Pro", got)
	}
}

func TestSchemaEditor_InvalidSaveKeepsDrafts(t *testing.T) {
	ts := newTestServer(t, nil, peopleSchema())

	rec := ts.postForm(t, "/schema", draftForm("save",
		core.Draft{ID: "a", Label: "Kept Label", Type: core.KindText},
		core.Draft{ID: "b", Label: "", Type: core.KindText},
	))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Label cannot be empty.") || !strings.Contains(body, `value="Kept Label"`) {
		t.Errorf("body should show the error and keep drafts: %s", body)
	}

	schema, _ := ts.store.GetSchema(context.Background())
	if len(schema) != len(peopleSchema()) {
		t.Error("invalid save must not change the stored schema")
	}
}

func TestSchemaEditor_AddRemove(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	rec := ts.postForm(t, "/schema", draftForm("add", core.Draft{ID: "a", Label: "One", Type: core.KindText}))
	if got := strings.Count(rec.Body.String(), `name="id"`); got != 2 {
		t.Errorf("after add: %d drafts, want 2", got)
	}

	rec = ts.postForm(t, "/schema", draftForm("remove:0",
		core.Draft{ID: "a", Label: "One", Type: core.KindText},
		core.Draft{ID: "b", Label: "Two", Type: core.KindText},
	))
	body := rec.Body.String()
	if strings.Contains(body, `value="One"`) || !strings.Contains(body, `value="Two"`) {
		t.Errorf("remove:0 should drop the first draft: %s", body)
	}

	rec = ts.postForm(t, "/schema", draftForm("remove:5", core.Draft{ID: "a", Label: "One", Type: core.KindText}))
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "SCH007") {
		t.Errorf("remove out of range = %d", rec.Code)
	}
}

func TestSchemaEditor_SuggestAndApply(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	draft := core.Draft{ID: "a", Label: "Age", Type: core.KindNumber}

	rec := ts.postForm(t, "/schema", draftForm("suggest:0", draft))
	if rec.Code != http.StatusOK {
		t.Fatalf("suggest status = %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `value="apply:0:max:130"`) {
		t.Errorf("suggestion buttons missing: %s", rec.Body.String())
	}

	form := draftForm("apply:0:max:130", draft)
	form.Add("suggestion", "required")
	form.Add("suggestion", "max:130")
	rec = ts.postForm(t, "/schema", form)

	body := rec.Body.String()
	if !strings.Contains(body, `value="max:130"`) {
		t.Errorf("rule not applied: %s", body)
	}
	if !strings.Contains(body, `value="apply:0:required"`) || strings.Contains(body, `value="apply:0:max:130"`) {
		t.Error("panel should stay open without the applied rule")
	}
}

func TestSchemaEditor_SuggestNeedsLabel(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	rec := ts.postForm(t, "/schema", draftForm("suggest:0", core.Draft{ID: "a", Type: core.KindText}))

	if !strings.Contains(rec.Body.String(), "Please provide a field label first.") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestSchemaEditor_BadAction(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	for _, action := range []string{"", "explode", "remove", "remove:x", "apply:0", "save:1"} {
		rec := ts.postForm(t, "/schema", url.Values{"action": {action}})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("action %q status = %d, want 400", action, rec.Code)
		}
	}
}

func TestEntry_SubmitValidAndInvalid(t *testing.T) {
	ts := newTestServer(t, nil, peopleSchema())

	rec := ts.do(t, http.MethodGet, "/entry", "", "")
	if !strings.Contains(rec.Body.String(), `placeholder="Enter Full Name"`) {
		t.Errorf("entry form missing control: %s", rec.Body.String())
	}

	rec = ts.postForm(t, "/entry", url.Values{"fullName": {"A"}, "age": {"abc"}})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid status = %d, want 422", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Must be at least 2 characters", "Must be a number", `value="abc"`} {
		if !strings.Contains(body, want) {
			t.Errorf("invalid submit body missing %q", want)
		}
	}

	rec = ts.postForm(t, "/entry", url.Values{"fullName": {"Ada"}, "age": {"36"}, "joined": {"12/10/1815"}})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Data added successfully!") {
		t.Fatalf("valid submit = %d: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), `value="Ada"`) {
		t.Error("form should be cleared after a successful submit")
	}

	records, _ := ts.store.GetData(context.Background())
	if len(records) != 1 {
		t.Fatalf("stored %d records, want 1", len(records))
	}
	if records[0]["age"] != 36.0 || records[0]["joined"] != "1815-12-10" {
		t.Errorf("record = %v", records[0])
	}
}

func TestDataViewer(t *testing.T) {
	ts := newTestServer(t, nil, peopleSchema(),
		core.DataRecord{"fullName": "Grace", "age": 85.0, "joined": "1906-12-09"},
		core.DataRecord{"fullName": "Ada", "age": 36.0, "joined": "1815-12-10"},
	)

	rec := ts.do(t, http.MethodGet, "/data?sort=fullName", "", "")
	body := rec.Body.String()
	if strings.Index(body, "Ada") > strings.Index(body, "Grace") {
		t.Error("rows should be sorted by name ascending")
	}
	if !strings.Contains(body, "12/10/1815") {
		t.Error("date should be display formatted")
	}
	if !strings.Contains(body, "Showing 1-2 of 2 records.") {
		t.Error("summary missing")
	}

	rec = ts.do(t, http.MethodGet, "/data?q=zzz&page=4", "", "")
	if !strings.Contains(rec.Body.String(), core.MsgNoMatches) || !strings.Contains(rec.Body.String(), "Page 1 of 1") {
		t.Errorf("filtered body = %s", rec.Body.String())
	}
}

func TestExport(t *testing.T) {
	ts := newTestServer(t, nil, peopleSchema())

	rec := ts.do(t, http.MethodGet, "/data/export.csv", "", "")
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "EXP001") {
		t.Errorf("empty export = %d: %s", rec.Code, rec.Body.String())
	}

	ts.store.AddData(context.Background(), core.DataRecord{"fullName": "Smith, J", "age": 40.0, "joined": "2024-01-02"})
	ts.store.AddData(context.Background(), core.DataRecord{"fullName": "Ada"})

	rec = ts.do(t, http.MethodGet, "/data/export.csv?sort=fullName", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="data-export.csv"` {
		t.Errorf("Content-Disposition = %q", got)
	}
	want := "Full Name,Age,Joined\nAda,,\n\"Smith, J\",40,2024-01-02"
	if rec.Body.String() != want {
		t.Errorf("body = %q, want %q", rec.Body.String(), want)
	}
}

func TestAPI_Schema(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	body := `[{"id":"x1","name":"email","label":"Email","type":"email","validations":["required"]}]`
	rec := ts.do(t, http.MethodPut, "/api/schema", "application/json", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = ts.do(t, http.MethodGet, "/api/schema", "", "")
	var schema core.Schema
	if err := json.Unmarshal(rec.Body.Bytes(), &schema); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(schema) != 1 || schema[0].Type != core.KindEmail {
		t.Errorf("schema = %+v", schema)
	}

	tests := []struct {
		name string
		body string
		code string
	}{
		{"not json", `{`, "SCH001"},
		{"not an array", `{"id":"x"}`, "SCH001"},
		{"missing label", `[{"id":"x","name":"a","type":"text","validations":[]}]`, "SCH001"},
		{"missing validations", `[{"id":"f1","name":"title","label":"Title","type":"text"}]`, "SCH001"},
		{"null validations", `[{"id":"f1","name":"title","label":"Title","type":"text","validations":null}]`, "SCH001"},
		{"unknown type", `[{"id":"x","name":"a","label":"A","type":"color","validations":[]}]`, "SCH001"},
		{"extra key", `[{"id":"x","name":"a","label":"A","type":"text","validations":[],"color":"red"}]`, "SCH001"},
		{"duplicate names", `[{"id":"x","name":"a","label":"A","type":"text","validations":[]},{"id":"y","name":"a","label":"B","type":"text","validations":[]}]`, "SCH004"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPut, "/api/schema", "application/json", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			var resp ErrorResponse
			json.Unmarshal(rec.Body.Bytes(), &resp)
			if resp.Code != tt.code {
				t.Errorf("code = %q, want %q (%s)", resp.Code, tt.code, rec.Body.String())
			}
		})
	}
}

func TestAPI_Data(t *testing.T) {
	ts := newTestServer(t, nil, peopleSchema())

	rec := ts.do(t, http.MethodGet, "/api/data", "", "")
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("empty data = %q, want []", rec.Body.String())
	}

	rec = ts.do(t, http.MethodPost, "/api/data", "application/json", `{"fullName":"Ada","age":36}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("POST status = %d: %s", rec.Code, rec.Body.String())
	}
	var ok RecordResponse
	json.Unmarshal(rec.Body.Bytes(), &ok)
	if !ok.Success || ok.Record["age"] != 36.0 {
		t.Errorf("response = %+v", ok)
	}

	rec = ts.do(t, http.MethodPost, "/api/data", "application/json", `{"age":-1}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid POST status = %d, want 422", rec.Code)
	}
	var bad RecordResponse
	json.Unmarshal(rec.Body.Bytes(), &bad)
	if bad.Errors["fullName"] != "This field is required" || bad.Errors["age"] == "" {
		t.Errorf("errors = %v", bad.Errors)
	}

	rec = ts.do(t, http.MethodPost, "/api/data", "application/json", `{"fullName":["a"]}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("non-scalar POST status = %d, want 400", rec.Code)
	}
}

func TestAPI_Data_OptionTextIsNotAnErrorPattern(t *testing.T) {
	schema := core.Schema{
		{ID: "f1", Name: "plan", Label: "Plan", Type: core.KindSelect, Validations: []string{"required"},
			Options: []string{"Invalid field type", "pro"}},
	}
	ts := newTestServer(t, nil, schema)

	rec := ts.do(t, http.MethodPost, "/api/data", "application/json", `{"plan":"free"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422: %s", rec.Code, rec.Body.String())
	}
	var resp RecordResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Code != "VAL001" {
		t.Errorf("code = %q, want VAL001", resp.Code)
	}
	if resp.Errors["plan"] == "" {
		t.Errorf("errors = %v, want a message for plan", resp.Errors)
	}
}

func TestAPI_Suggest(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	rec := ts.do(t, http.MethodPost, "/api/suggest", "application/json", `{"fieldName":"Age","dataType":"number"}`)
	var res core.Result
	json.Unmarshal(rec.Body.Bytes(), &res)
	if rec.Code != http.StatusOK || !res.Success || len(res.Suggestions) == 0 {
		t.Errorf("suggest = %d %+v", rec.Code, res)
	}

	rec = ts.do(t, http.MethodPost, "/api/suggest", "application/json", `{"fieldName":""}`)
	json.Unmarshal(rec.Body.Bytes(), &res)
	if rec.Code != http.StatusBadRequest || res.Code != "SUG001" {
		t.Errorf("missing input = %d %+v", rec.Code, res)
	}
}

func TestAPI_Reset(t *testing.T) {
	ts := newTestServer(t, nil, peopleSchema())
	rec := ts.do(t, http.MethodPost, "/api/reset", "", "")
	if rec.Code != http.StatusForbidden || !strings.Contains(rec.Body.String(), "STO004") {
		t.Errorf("disabled reset = %d: %s", rec.Code, rec.Body.String())
	}

	cfg := testConfig()
	cfg.Store.AllowReset = true
	ts = newTestServer(t, cfg, peopleSchema(), core.DataRecord{"fullName": "Ada"})
	rec = ts.do(t, http.MethodPost, "/api/reset", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("reset = %d: %s", rec.Code, rec.Body.String())
	}
	schema, _ := ts.store.GetSchema(context.Background())
	records, _ := ts.store.GetData(context.Background())
	if len(schema) != 0 || len(records) != 0 {
		t.Error("reset should clear schema and records")
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	rec := ts.do(t, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("healthz = %d %s", rec.Code, rec.Body.String())
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1}
	ts := newTestServer(t, cfg, nil)

	if rec := ts.do(t, http.MethodGet, "/api/schema", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("first request = %d", rec.Code)
	}
	rec := ts.do(t, http.MethodGet, "/api/schema", "", "")
	if rec.Code != http.StatusTooManyRequests || !strings.Contains(rec.Body.String(), "RATE001") {
		t.Errorf("second request = %d %s", rec.Code, rec.Body.String())
	}
}

func TestShutdown_WaitsForInFlightRequests(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	started := make(chan struct{})
	var finished atomic.Bool
	ts.Router().Get("/slow", func(w http.ResponseWriter, r *http.Request) {
		close(started)
		time.Sleep(300 * time.Millisecond)
		finished.Store(true)
		w.WriteHeader(http.StatusOK)
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	serveErr := make(chan error, 1)
	go func() { serveErr <- ts.Serve(ln) }()

	respCode := make(chan int, 1)
	go func() {
		resp, err := http.Get("http://" + ln.Addr().String() + "/slow")
		if err != nil {
			respCode <- 0
			return
		}
		resp.Body.Close()
		respCode <- resp.StatusCode
	}()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("slow handler never started")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ts.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	if !finished.Load() {
		t.Error("Shutdown() returned before the in-flight handler finished")
	}
	if err := <-serveErr; !errors.Is(err, http.ErrServerClosed) {
		t.Errorf("Serve() error = %v, want %v", err, http.ErrServerClosed)
	}
	if code := <-respCode; code != http.StatusOK {
		t.Errorf("in-flight response = %d, want %d", code, http.StatusOK)
	}

	if _, err := net.DialTimeout("tcp", ln.Addr().String(), time.Second); err == nil {
		t.Error("listener still accepting connections after Shutdown()")
	}
}

func TestParseEditorAction(t *testing.T) {
	tests := []struct {
		in      string
		want    editorAction
		wantErr bool
	}{
		{in: "save", want: editorAction{Name: "save", Index: -1}},
		{in: "add", want: editorAction{Name: "add", Index: -1}},
		{in: "remove:2", want: editorAction{Name: "remove", Index: 2}},
		{in: "suggest:0", want: editorAction{Name: "suggest", Index: 0}},
		{in: "apply:1:pattern:^a$", want: editorAction{Name: "apply", Index: 1, Rule: "pattern:^a$"}},
		{in: "apply:1", wantErr: true},
		{in: "remove:-", wantErr: true},
		{in: "drop:1", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parseEditorAction(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseEditorAction(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("parseEditorAction(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestParseTableState(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/data?q=ada&sort=age&dir=DESC&page=0", nil)
	got := parseTableState(req)
	want := core.TableState{Query: "ada", Sort: "age", Dir: core.SortDesc, Page: 1}
	if got != want {
		t.Errorf("parseTableState() = %+v, want %+v", got, want)
	}
}
