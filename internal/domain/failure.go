package domain

import (
	"errors"
	"strings"
)

// SentinelPrefix starts every diagnostic string stored in a text field.
const SentinelPrefix = "["

// ErrModelUnavailable is returned when neither the preferred nor the backup model could be loaded.
var ErrModelUnavailable = errors.New("nlp model unavailable")

// ErrInvalidRange rejects a date range whose start is after its end.
var ErrInvalidRange = errors.New("invalid date range")

// IsSentinel reports whether s is a diagnostic placeholder rather than real text.
func IsSentinel(s string) bool {
	return strings.HasPrefix(s, SentinelPrefix)
}

// FailureKind classifies why a stage produced no usable text.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureUnresolved
	FailureFetch
	FailureDisallowed
	FailureExtraction
	FailureSummarize
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureUnresolved:
		return "unresolved"
	case FailureFetch:
		return "fetch failed"
	case FailureDisallowed:
		return "disallowed by robots.txt"
	case FailureExtraction:
		return "extraction failed"
	case FailureSummarize:
		return "summarize failed"
	default:
		return "unknown failure"
	}
}

// Failure is the typed form of a diagnostic placeholder.
type Failure struct {
	Kind   FailureKind
	Detail string
}

// Placeholder renders the failure in the bracketed text convention.
func (f Failure) Placeholder() string {
	detail := strings.Join(strings.Fields(f.Detail), " ")
	if detail == "" {
		return SentinelPrefix + f.Kind.String() + "]"
	}
	return SentinelPrefix + f.Kind.String() + ": " + detail + "]"
}

// Extraction is the outcome of pulling the body out of one page.
type Extraction struct {
	Text       string
	Journalist string
	Failure    *Failure
}

// Failed builds an extraction that carries only a failure.
func Failed(kind FailureKind, detail string) Extraction {
	return Extraction{Failure: &Failure{Kind: kind, Detail: detail}}
}

// Content returns the body text, or the bracketed diagnostic on failure.
func (e Extraction) Content() string {
	if e.Failure != nil {
		return e.Failure.Placeholder()
	}
	return e.Text
}
