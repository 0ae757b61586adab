// Package engine implements C11, the Engine Façade: the small set of
// pure-ish operations (spec.md §4.11) that wire together every other
// component (C1-C10) behind one API, with the cache (C9) as the only
// shared mutable state (spec.md §5 "Shared-resource policy").
package engine

import (
	"github.com/odvcencio/antlrlens/internal/analysis"
	"github.com/odvcencio/antlrlens/internal/errs"
	"github.com/odvcencio/antlrlens/internal/interp"
	"github.com/odvcencio/antlrlens/internal/predict"
	"github.com/odvcencio/antlrlens/internal/profile"
)

// RuleCounts breaks a grammar's rule set down by kind.
type RuleCounts struct {
	Parser   int `json:"parser"`
	Lexer    int `json:"lexer"`
	Fragment int `json:"fragment"`
}

// ValidationResult is the `validate` operation's output.
type ValidationResult struct {
	Name       string    `json:"name"`
	Kind       string    `json:"kind"`
	RuleCounts RuleCounts `json:"ruleCounts"`
	Errors     errs.List `json:"errors,omitempty"`
	Warnings   errs.List `json:"warnings,omitempty"`
}

// TokenView is a JSON-friendly projection of interp.Token.
type TokenView struct {
	Type   int    `json:"type"`
	Text   string `json:"text"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Hidden bool   `json:"hidden"`
}

// Timings records per-phase wall-clock duration, in milliseconds.
type Timings struct {
	LexMs   float64 `json:"lexMs"`
	ParseMs float64 `json:"parseMs"`
	TotalMs float64 `json:"totalMs"`
}

// ParseResult is the `parseSample` operation's output.
type ParseResult struct {
	TreeLISP  string      `json:"treeLisp"`
	TreeASCII string      `json:"treeAscii"`
	Tokens    []TokenView `json:"tokens"`
	Errors    errs.List   `json:"errors,omitempty"`
	Warnings  errs.List   `json:"warnings,omitempty"`
	Timings   Timings     `json:"timings"`
}

// SampleAmbiguity is one sample's contribution to an AmbiguityReport.
type SampleAmbiguity struct {
	SampleIndex int             `json:"sampleIndex"`
	Events      []predict.Event `json:"events"`
	Error       *errs.Error     `json:"error,omitempty"`
}

// AmbiguityReport is the `detectAmbiguity` operation's output.
type AmbiguityReport struct {
	Samples        []SampleAmbiguity `json:"samples"`
	PerRuleCounts   map[string]int    `json:"perRuleCounts"`
	SamplesCovered  int               `json:"samplesCovered"`
	SamplesAttempted int              `json:"samplesAttempted"`
}

// AtnVisualization is the `visualizeATN` operation's output. SVG is
// left empty unless an external renderer subprocess is wired in
// (spec.md §5 "optional external SVG renderer subprocess" — not
// exercised by this engine, which has no such subprocess configured).
type AtnVisualization struct {
	Rule    string `json:"rule"`
	DOT     string `json:"dot"`
	Mermaid string `json:"mermaid"`
	SVG     string `json:"svg,omitempty"`
}

// DecisionVisualization is the `visualizeDecision` operation's output.
type DecisionVisualization struct {
	Rule      string                  `json:"rule"`
	Decisions []analysis.DecisionViz  `json:"decisions"`
}

// ProfileResult is the `profile` operation's output.
type ProfileResult struct {
	Report   *profile.Report `json:"report"`
	Events   []predict.Event `json:"events"`
	Errors   errs.List       `json:"errors,omitempty"`
}

// GeneratedTestInputs is the `generateTestInputs` operation's output.
type GeneratedTestInputs struct {
	Rule                string   `json:"rule"`
	Inputs              []string `json:"inputs"`
	AlternativesCovered int      `json:"alternativesCovered"`
	TotalAlternatives   int      `json:"totalAlternatives"`
}

// ParseTree returns the raw tree for callers that want more than the
// rendered LISP/ASCII forms (e.g. the debug server).
type ParseTree = interp.ParseTree
