package core

import (
	"errors"
	"testing"
)

func TestKinds_RegistrationOrder(t *testing.T) {
	want := []FieldKind{KindText, KindNumber, KindEmail, KindDate, KindSelect}
	got := Kinds()
	if len(got) < len(want) {
		t.Fatalf("Kinds() returned %d kinds, want at least %d", len(got), len(want))
	}
	for i, k := range want {
		if got[i].Kind != k {
			t.Errorf("Kinds()[%d] = %s, want %s", i, got[i].Kind, k)
		}
		if got[i].Coerce == nil || got[i].Display == nil {
			t.Errorf("kind %s is missing Coerce or Display", k)
		}
	}
}

func TestRegisterKind_DuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("RegisterKind() with a duplicate kind should panic")
		}
	}()
	RegisterKind(KindSpec{Kind: KindText})
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		input   string
		want    FieldKind
		wantErr bool
	}{
		{"text", KindText, false},
		{" Number ", KindNumber, false},
		{"SELECT", KindSelect, false},
		{"color", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseKind(tt.input)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownKind) {
				t.Errorf("ParseKind(%q) error = %v, want ErrUnknownKind", tt.input, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseKind(%q) = %q, %v; want %q", tt.input, got, err, tt.want)
		}
	}
}
