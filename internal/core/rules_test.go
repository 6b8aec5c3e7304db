package core

import (
	"errors"
	"testing"
)

func TestParseRule(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantKind RuleKind
		wantN    float64
		wantErr  error
	}{
		// Valid
		{name: "required", input: "required", wantKind: RuleRequired},
		{name: "email", input: "email", wantKind: RuleEmail},
		{name: "minLength", input: "minLength:3", wantKind: RuleMinLength, wantN: 3},
		{name: "maxLength zero", input: "maxLength:0", wantKind: RuleMaxLength, wantN: 0},
		{name: "min negative decimal", input: "min:-2.5", wantKind: RuleMin, wantN: -2.5},
		{name: "max", input: "max:100", wantKind: RuleMax, wantN: 100},
		{name: "surrounding whitespace", input: "  max:5  ", wantKind: RuleMax, wantN: 5},
		{name: "pattern", input: "pattern:^[A-Z]+$", wantKind: RulePattern},
		{name: "pattern literal with flags", input: "pattern:/^abc$/i", wantKind: RulePattern},

		// Malformed
		{name: "unknown name", input: "unique", wantErr: errUnknownRule},
		{name: "name is case sensitive", input: "Required", wantErr: errUnknownRule},
		{name: "required with argument", input: "required:true", wantErr: errMalformedRule},
		{name: "minLength without argument", input: "minLength", wantErr: errMalformedRule},
		{name: "minLength not a number", input: "minLength:abc", wantErr: errMalformedRule},
		{name: "minLength negative", input: "minLength:-1", wantErr: errMalformedRule},
		{name: "minLength fractional", input: "minLength:2.5", wantErr: errMalformedRule},
		{name: "min not a number", input: "min:ten", wantErr: errMalformedRule},
		{name: "max infinite", input: "max:Inf", wantErr: errMalformedRule},
		{name: "extra colon", input: "min:1:2", wantErr: errMalformedRule},
		{name: "pattern empty", input: "pattern:", wantErr: errMalformedRule},
		{name: "pattern does not compile", input: "pattern:([a-z", wantErr: errMalformedRule},
		{name: "pattern unsupported flag", input: "pattern:/abc/x", wantErr: errMalformedRule},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, err := ParseRule(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseRule(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRule(%q) unexpected error: %v", tt.input, err)
			}
			if rule.Kind != tt.wantKind {
				t.Errorf("ParseRule(%q).Kind = %v, want %v", tt.input, rule.Kind, tt.wantKind)
			}
			if rule.N != tt.wantN {
				t.Errorf("ParseRule(%q).N = %v, want %v", tt.input, rule.N, tt.wantN)
			}
			if tt.wantKind == RulePattern && rule.Pattern == nil {
				t.Errorf("ParseRule(%q) did not compile the pattern", tt.input)
			}
		})
	}
}

func TestParseRule_PatternFlags(t *testing.T) {
	rule, err := ParseRule("pattern:/^abc$/gi")
	if err != nil {
		t.Fatalf("ParseRule() error: %v", err)
	}
	if !rule.Pattern.MatchString("ABC") {
		t.Error("case-insensitive flag should match ABC")
	}
	if rule.Pattern.MatchString("abcd") {
		t.Error("anchored pattern should not match abcd")
	}

	bare, err := ParseRule("pattern:^abc$")
	if err != nil {
		t.Fatalf("ParseRule() error: %v", err)
	}
	if bare.Pattern.MatchString("ABC") {
		t.Error("bare pattern should be case sensitive")
	}
}

func TestParseRules_SkipsMalformed(t *testing.T) {
	rules := ParseRules("age", []string{"required", "", "bogus", "min:0", "max:x", "max:120"})

	want := []RuleKind{RuleRequired, RuleMin, RuleMax}
	if len(rules) != len(want) {
		t.Fatalf("ParseRules() returned %d rules, want %d", len(rules), len(want))
	}
	for i, k := range want {
		if rules[i].Kind != k {
			t.Errorf("rules[%d].Kind = %v, want %v", i, rules[i].Kind, k)
		}
	}
}

func TestRuleKind_String(t *testing.T) {
	if got := RuleMinLength.String(); got != "minLength" {
		t.Errorf("RuleMinLength.String() = %q", got)
	}
	if got := RuleKind(99).String(); got != "unknown" {
		t.Errorf("RuleKind(99).String() = %q, want unknown", got)
	}
}
