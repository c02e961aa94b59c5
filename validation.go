package forme

import (
	"fmt"
	"regexp"
	"strings"
)

// Issue names a failing validation rule and carries a display message
// (§3).
type Issue struct {
	Rule    string
	Message string
}

// Visibility controls whether an issue is rendered (§3).
type Visibility uint8

const (
	Inline Visibility = iota
	Hidden
)

// FieldState is the per-node entry in ValidationState.
type FieldState struct {
	Issues     []Issue
	Visibility Visibility
}

// ValidationState is a mapping from NodeId to FieldState plus a per-step
// error sequence (§3).
type ValidationState struct {
	fields     map[NodeId]FieldState
	stepErrors []Issue
}

// NewValidationState creates an empty validation state.
func NewValidationState() *ValidationState {
	return &ValidationState{fields: make(map[NodeId]FieldState)}
}

// Set records issues for a node with the given visibility. An empty
// issue slice clears the entry.
func (vs *ValidationState) Set(id NodeId, issues []Issue, vis Visibility) {
	if len(issues) == 0 {
		delete(vs.fields, id)
		return
	}
	vs.fields[id] = FieldState{Issues: issues, Visibility: vis}
}

// Clear removes any recorded issues for id.
func (vs *ValidationState) Clear(id NodeId) { delete(vs.fields, id) }

// Get returns the recorded state for id.
func (vs *ValidationState) Get(id NodeId) (FieldState, bool) {
	fs, ok := vs.fields[id]
	return fs, ok
}

// SetStepErrors replaces the step-level error sequence.
func (vs *ValidationState) SetStepErrors(issues []Issue) { vs.stepErrors = issues }

// StepErrors returns the current step-level error sequence.
func (vs *ValidationState) StepErrors() []Issue { return vs.stepErrors }

// runChain runs every validator in the chain against v and ctx,
// collecting all produced issues in order.
func runChain(chain []Validator, v Value, ctx ValidateCtx) []Issue {
	var issues []Issue
	for _, validate := range chain {
		issues = append(issues, validate(v, ctx)...)
	}
	return issues
}

// ----------------------------------------------------------------------
// Built-in validators, re-expressed against Value (grounded on the
// teacher's validators.go, which operates on raw string/bool instead).
// ----------------------------------------------------------------------

// VRequired rejects an empty or whitespace-only Text value.
func VRequired(v Value, _ ValidateCtx) []Issue {
	if strings.TrimSpace(v.AsText()) == "" {
		return []Issue{{Rule: "non-empty", Message: "required"}}
	}
	return nil
}

// VTrue rejects a false Bool value.
func VTrue(v Value, _ ValidateCtx) []Issue {
	if !v.AsBool() {
		return []Issue{{Rule: "true", Message: "required"}}
	}
	return nil
}

// VMinLen rejects Text values shorter than n runes.
func VMinLen(n int) Validator {
	return func(v Value, _ ValidateCtx) []Issue {
		if len([]rune(v.AsText())) < n {
			return []Issue{{Rule: "min-len", Message: fmt.Sprintf("min %d characters", n)}}
		}
		return nil
	}
}

// VMaxLen rejects Text values longer than n runes.
func VMaxLen(n int) Validator {
	return func(v Value, _ ValidateCtx) []Issue {
		if len([]rune(v.AsText())) > n {
			return []Issue{{Rule: "max-len", Message: fmt.Sprintf("max %d characters", n)}}
		}
		return nil
	}
}

// VMatch rejects non-empty Text values that don't match pattern.
func VMatch(pattern string) Validator {
	re := regexp.MustCompile(pattern)
	return func(v Value, _ ValidateCtx) []Issue {
		s := v.AsText()
		if s == "" {
			return nil
		}
		if !re.MatchString(s) {
			return []Issue{{Rule: "format", Message: "invalid format"}}
		}
		return nil
	}
}

// VEmail rejects Text values that don't look like an email address.
func VEmail(v Value, _ ValidateCtx) []Issue {
	s := v.AsText()
	at := strings.LastIndex(s, "@")
	if at <= 0 || at == len(s)-1 {
		return []Issue{{Rule: "email", Message: "invalid email"}}
	}
	domain := s[at+1:]
	if !strings.Contains(domain, ".") || strings.HasSuffix(domain, ".") {
		return []Issue{{Rule: "email", Message: "invalid email"}}
	}
	return nil
}
