package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

// DefaultSuggestTimeout bounds a single call to the suggestion collaborator.
const DefaultSuggestTimeout = 10 * time.Second

// DefaultMaxSuggestions caps how many suggestions are returned.
const DefaultMaxSuggestions = 8

// ServiceConfig tunes the Service.
type ServiceConfig struct {
	PageSize       int
	SuggestTimeout time.Duration
	MaxSuggestions int
	AllowReset     bool
}

// Service provides the core operations behind every page and API route.
// Collaborator failures are converted to Result values here and never escape.
type Service struct {
	store     Store
	suggester Suggester
	gate      *BusyGate
	cfg       ServiceConfig
}

// NewService creates a new Service instance. suggester may be nil, in which
// case suggestions always come back empty.
func NewService(store Store, suggester Suggester, cfg ServiceConfig) *Service {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.SuggestTimeout <= 0 {
		cfg.SuggestTimeout = DefaultSuggestTimeout
	}
	if cfg.MaxSuggestions <= 0 {
		cfg.MaxSuggestions = DefaultMaxSuggestions
	}
	return &Service{
		store:     store,
		suggester: suggester,
		gate:      NewBusyGate(),
		cfg:       cfg,
	}
}

// Gate exposes the busy gate, mainly so the server can drain it on shutdown.
func (s *Service) Gate() *BusyGate {
	return s.gate
}

// Schema returns the current schema snapshot.
func (s *Service) Schema(ctx context.Context) (Schema, error) {
	return s.store.GetSchema(ctx)
}

// Records returns every record in insertion order.
func (s *Service) Records(ctx context.Context) ([]DataRecord, error) {
	return s.store.GetData(ctx)
}

// SaveSchema normalizes editor drafts and replaces the stored schema.
// Nothing is persisted unless every draft is valid.
func (s *Service) SaveSchema(ctx context.Context, drafts []Draft) Result {
	key := gateKey(ctx, ControlSchemaSave)
	if !s.gate.TryAcquire(key) {
		return Fail(ErrBusy)
	}
	defer s.gate.Release(key)

	editor := &Editor{Drafts: drafts}
	schema, err := editor.Build()
	if err != nil {
		slog.Info("schema save rejected", "error", err, "fields", len(drafts))
		return Fail(err)
	}

	return s.replaceSchema(ctx, schema)
}

// UpdateSchema replaces the schema with an already-normalized definition list,
// as received from the JSON API.
func (s *Service) UpdateSchema(ctx context.Context, schema Schema) Result {
	key := gateKey(ctx, ControlSchemaSave)
	if !s.gate.TryAcquire(key) {
		return Fail(ErrBusy)
	}
	defer s.gate.Release(key)

	schema = schema.Normalize()
	if err := ValidateSchema(schema); err != nil {
		slog.Info("schema update rejected", "error", err)
		return Fail(err)
	}

	return s.replaceSchema(ctx, schema)
}

func (s *Service) replaceSchema(ctx context.Context, schema Schema) Result {
	// Runs to completion even if the client goes away.
	if err := s.store.UpdateSchema(context.WithoutCancel(ctx), schema); err != nil {
		if !isShapeError(err) {
			err = fmt.Errorf("%w: %w", ErrSaveSchema, err)
		}
		slog.Error("schema save failed", "error", err)
		return Fail(err)
	}

	slog.Info("schema updated",
		"fields", len(schema),
		"client", GetClientFromContext(ctx),
		"user_agent", GetUserAgentFromContext(ctx),
	)
	return OK("Schema updated successfully!")
}

func isShapeError(err error) bool {
	for _, target := range []error{
		ErrInvalidSchema, ErrEmptyLabel, ErrEmptyName,
		ErrDuplicateName, ErrMissingOptions, ErrUnknownKind,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// FormOutcome is the result of submitting the data-entry form.
type FormOutcome struct {
	Result
	Record DataRecord        // The stored record on success
	Errors FieldErrors       // Per-field messages on validation failure
	Values map[string]string // What the form should show next
}

// SubmitRecord validates raw form values against the current schema and
// appends the record. On success the returned values are the cleared form;
// on failure they are the submitted values, left intact for correction.
func (s *Service) SubmitRecord(ctx context.Context, raw map[string]string) FormOutcome {
	key := gateKey(ctx, ControlRecordSubmit)
	if !s.gate.TryAcquire(key) {
		return FormOutcome{Result: Fail(ErrBusy), Values: raw}
	}
	defer s.gate.Release(key)

	schema, err := s.store.GetSchema(ctx)
	if err != nil {
		slog.Error("load schema for submit failed", "error", err)
		return FormOutcome{Result: Fail(fmt.Errorf("%w: %w", ErrAddData, err)), Values: raw}
	}

	form := NewForm(schema)
	record, errs := form.Validate(raw)
	if errs != nil {
		return FormOutcome{Result: Fail(errs), Errors: errs, Values: raw}
	}

	if err := s.store.AddData(context.WithoutCancel(ctx), record); err != nil {
		slog.Error("add record failed", "error", err)
		return FormOutcome{Result: Fail(fmt.Errorf("%w: %w", ErrAddData, err)), Values: raw}
	}

	slog.Info("record added", "fields", len(record), "client", GetClientFromContext(ctx))
	return FormOutcome{
		Result: OK("Data added successfully!"),
		Record: record,
		Values: form.EmptyValues(),
	}
}

// SuggestForDraft asks for rule suggestions for the draft at index i.
func (s *Service) SuggestForDraft(ctx context.Context, drafts []Draft, i int) Result {
	if i < 0 || i >= len(drafts) {
		return Fail(fmt.Errorf("suggest %d: %w", i, ErrFieldIndex))
	}
	d := drafts[i]
	if d.Label == "" {
		return Fail(ErrSuggestNeedLabel)
	}
	control := d.ID
	if control == "" {
		control = strconv.Itoa(i)
	}
	return s.suggest(ctx, control, d.Label, string(d.Type))
}

// SuggestRules asks the suggestion collaborator for rule strings for a field.
// Failures never block manual entry; they come back as a failed Result.
func (s *Service) SuggestRules(ctx context.Context, label, kind string) Result {
	return s.suggest(ctx, label, label, kind)
}

func (s *Service) suggest(ctx context.Context, control, label, kind string) Result {
	if label == "" || kind == "" {
		return Fail(ErrSuggestInput)
	}
	k, err := ParseKind(kind)
	if err != nil {
		return Fail(err)
	}

	key := gateKey(ctx, ControlSuggest+":"+control)
	if !s.gate.TryAcquire(key) {
		return Fail(ErrBusy)
	}
	defer s.gate.Release(key)

	if s.suggester == nil {
		return Result{Success: true}
	}

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.SuggestTimeout)
	defer cancel()

	suggestions, err := s.callSuggester(callCtx, label, k)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrSuggestFailed, err)
		slog.Warn("rule suggestion failed", "label", label, "type", k, "error", err)
		return Fail(err)
	}

	return Result{Success: true, Suggestions: s.filterSuggestions(label, suggestions)}
}

// callSuggester converts a panicking collaborator into an error.
func (s *Service) callSuggester(ctx context.Context, label string, kind FieldKind) (out []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("suggester panic: %v", r)
		}
	}()
	return s.suggester.Suggest(ctx, label, kind)
}

// filterSuggestions drops duplicates and strings that would not parse as rules.
func (s *Service) filterSuggestions(label string, in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, sug := range in {
		if seen[sug] {
			continue
		}
		seen[sug] = true
		if _, err := ParseRule(sug); err != nil {
			slog.Debug("dropping unparseable suggestion", "label", label, "suggestion", sug, "error", err)
			continue
		}
		out = append(out, sug)
		if len(out) == s.cfg.MaxSuggestions {
			break
		}
	}
	return out
}

// Table computes one page of the data table.
func (s *Service) Table(ctx context.Context, state TableState) (TableView, error) {
	schema, records, err := s.snapshot(ctx)
	if err != nil {
		return TableView{}, err
	}
	return NewTable(schema, s.cfg.PageSize).View(records, state), nil
}

// Export renders the filtered and sorted records as CSV.
// Returns ErrNothingToExport when there are no rows.
func (s *Service) Export(ctx context.Context, state TableState) ([]byte, error) {
	schema, records, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return NewTable(schema, s.cfg.PageSize).Export(records, state)
}

func (s *Service) snapshot(ctx context.Context) (Schema, []DataRecord, error) {
	schema, err := s.store.GetSchema(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load schema: %w", err)
	}
	records, err := s.store.GetData(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load records: %w", err)
	}
	return schema, records, nil
}

// Reset clears the schema and every record, if the store supports it and
// resetting is enabled.
func (s *Service) Reset(ctx context.Context) Result {
	if !s.cfg.AllowReset {
		return Fail(ErrResetDisabled)
	}
	r, ok := s.store.(Resetter)
	if !ok {
		return Fail(fmt.Errorf("%w: store does not support reset", ErrResetDisabled))
	}
	if err := r.Reset(context.WithoutCancel(ctx)); err != nil {
		slog.Error("store reset failed", "error", err)
		return Fail(err)
	}
	slog.Warn("store reset", "client", GetClientFromContext(ctx))
	return OK("Store reset.")
}
