package core

// rules.go parses rule strings into typed Rule values.
//
// A rule string is either "name" or "name:arg". Parsing happens once per
// validator build; malformed and unknown rules are dropped with a warning and
// never surface to the caller.

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// RuleKind identifies one of the supported validation rules.
type RuleKind int

const (
	RuleRequired RuleKind = iota + 1
	RuleMinLength
	RuleMaxLength
	RuleMin
	RuleMax
	RuleEmail
	RulePattern
)

var ruleNames = map[string]RuleKind{
	"required":  RuleRequired,
	"minLength": RuleMinLength,
	"maxLength": RuleMaxLength,
	"min":       RuleMin,
	"max":       RuleMax,
	"email":     RuleEmail,
	"pattern":   RulePattern,
}

// String returns the rule name as written in rule strings.
func (k RuleKind) String() string {
	for name, kind := range ruleNames {
		if kind == k {
			return name
		}
	}
	return "unknown"
}

var (
	errUnknownRule   = errors.New("unknown rule")
	errMalformedRule = errors.New("malformed rule")
)

// Rule is one parsed validation constraint.
type Rule struct {
	Kind    RuleKind
	N       float64        // Bound for minLength, maxLength, min and max
	Pattern *regexp.Regexp // Compiled expression for pattern
	Source  string         // Original rule string
}

// appliesTo reports whether the rule constrains values of the given kind.
func (r Rule) appliesTo(spec KindSpec) bool {
	switch r.Kind {
	case RuleRequired:
		return true
	case RuleMin, RuleMax:
		return spec.Kind == KindNumber
	case RuleMinLength, RuleMaxLength, RuleEmail, RulePattern:
		return spec.TextLike
	}
	return false
}

// ParseRule parses a single rule string.
func ParseRule(s string) (Rule, error) {
	s = strings.TrimSpace(s)
	name, arg, hasArg := strings.Cut(s, ":")
	if strings.Contains(arg, ":") {
		return Rule{}, fmt.Errorf("%w: %q has more than one argument", errMalformedRule, s)
	}

	kind, ok := ruleNames[name]
	if !ok {
		return Rule{}, fmt.Errorf("%w: %q", errUnknownRule, name)
	}

	rule := Rule{Kind: kind, Source: s}
	switch kind {
	case RuleRequired, RuleEmail:
		if hasArg {
			return Rule{}, fmt.Errorf("%w: %q takes no argument", errMalformedRule, s)
		}

	case RuleMinLength, RuleMaxLength:
		n, err := strconv.Atoi(strings.TrimSpace(arg))
		if !hasArg || err != nil || n < 0 {
			return Rule{}, fmt.Errorf("%w: %q needs a non-negative integer", errMalformedRule, s)
		}
		rule.N = float64(n)

	case RuleMin, RuleMax:
		n, err := strconv.ParseFloat(strings.TrimSpace(arg), 64)
		if !hasArg || err != nil || math.IsInf(n, 0) || math.IsNaN(n) {
			return Rule{}, fmt.Errorf("%w: %q needs a number", errMalformedRule, s)
		}
		rule.N = n

	case RulePattern:
		if !hasArg || arg == "" {
			return Rule{}, fmt.Errorf("%w: %q needs an expression", errMalformedRule, s)
		}
		re, err := compilePattern(arg)
		if err != nil {
			return Rule{}, fmt.Errorf("%w: %q: %v", errMalformedRule, s, err)
		}
		rule.Pattern = re
	}

	return rule, nil
}

// ParseRules parses every rule string for a field, skipping the ones that
// cannot be parsed. Empty entries are ignored silently.
func ParseRules(field string, rules []string) []Rule {
	parsed := make([]Rule, 0, len(rules))
	for _, s := range rules {
		if strings.TrimSpace(s) == "" {
			continue
		}
		rule, err := ParseRule(s)
		if err != nil {
			slog.Warn("skipping validation rule", "field", field, "rule", s, "error", err)
			continue
		}
		parsed = append(parsed, rule)
	}
	return parsed
}

// compilePattern compiles either a bare expression or a /expr/flags literal.
func compilePattern(arg string) (*regexp.Regexp, error) {
	expr := arg
	if len(arg) > 1 && arg[0] == '/' {
		if end := strings.LastIndex(arg, "/"); end > 0 {
			expr = arg[1:end]
			flags := ""
			for _, f := range arg[end+1:] {
				switch f {
				case 'i', 'm', 's':
					if !strings.ContainsRune(flags, f) {
						flags += string(f)
					}
				case 'g', 'u':
					// no effect on a single match
				default:
					return nil, fmt.Errorf("unsupported flag %q", f)
				}
			}
			if flags != "" {
				expr = "(?" + flags + ")" + expr
			}
		}
	}
	return regexp.Compile(expr)
}
