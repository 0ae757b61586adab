// Package errs implements the error taxonomy described in spec.md §4.10
// and §7: every fallible core operation returns a typed error value
// (never a panic across a request boundary) carrying a kind, category,
// message, and optional fix-it metadata.
package errs

import "fmt"

// Kind is the closed set of error kinds spec.md §4.10 names.
type Kind string

const (
	KindLeftRecursion    Kind = "left-recursion"
	KindSyntaxError      Kind = "syntax-error"
	KindUndefinedRule    Kind = "undefined-rule"
	KindTokenConflict    Kind = "token-conflict"
	KindAmbiguity        Kind = "ambiguity"
	KindSemanticError    Kind = "semantic-error"
	KindParseTimeout     Kind = "parse-timeout"
	KindParseError       Kind = "parse-error"
	KindGrammarLoadError Kind = "grammar-load-error"
	KindImportError      Kind = "import-error"
	KindInvalidInput     Kind = "invalid-input"
	KindInternalError    Kind = "internal-error"
)

// Category groups kinds for routing/telemetry (spec.md §4.10).
type Category string

const (
	CategoryGrammar  Category = "grammar"
	CategoryParsing  Category = "parsing"
	CategoryInput    Category = "input"
	CategoryInternal Category = "internal"
)

// Severity is how seriously a diagnostic should be treated.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Location is an optional source position attached to an error.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
	Offset int `json:"offset"`
}

// Error is the canonical error shape returned by every core operation.
// It implements the standard `error` interface so it composes with
// `errors.As`/`fmt.Errorf("%w", ...)` at call sites, while still
// carrying the structured fields the JSON-RPC layer serializes.
type Error struct {
	Code        string    `json:"code"`
	Kind        Kind      `json:"kind"`
	Category    Category  `json:"category"`
	Message     string    `json:"message"`
	Location    *Location `json:"location,omitempty"`
	Suggestion  string    `json:"suggestion,omitempty"`
	Example     string    `json:"example,omitempty"`
	DocRef      string    `json:"docRef,omitempty"`
	Severity    Severity  `json:"severity"`
}

func (e *Error) Error() string {
	if e.Location != nil {
		return fmt.Sprintf("%s: %s (line %d, col %d)", e.Kind, e.Message, e.Location.Line, e.Location.Column)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// categoryFor maps a Kind to its fixed Category.
func categoryFor(k Kind) Category {
	switch k {
	case KindUndefinedRule, KindLeftRecursion, KindTokenConflict, KindSemanticError, KindGrammarLoadError, KindImportError, KindSyntaxError:
		return CategoryGrammar
	case KindAmbiguity, KindParseError, KindParseTimeout:
		return CategoryParsing
	case KindInvalidInput:
		return CategoryInput
	default:
		return CategoryInternal
	}
}

// fixit is static per-kind guidance (spec.md §7: "static per kind").
var fixit = map[Kind]struct {
	suggestion, example, docRef string
}{
	KindLeftRecursion: {
		suggestion: "Rewrite using precedence climbing: separate primary alternatives from binary-operator alternatives and let the ATN builder apply the standard left-recursion transform.",
		example:    "expr : expr '*' expr | expr '+' expr | INT ;",
		docRef:     "https://github.com/antlr/antlr4/blob/master/doc/left-recursion.md",
	},
	KindUndefinedRule: {
		suggestion: "Define the referenced rule, fix the spelling, or add an `import` that provides it.",
		docRef:     "https://github.com/antlr/antlr4/blob/master/doc/grammars.md",
	},
	KindImportError: {
		suggestion: "Break the import cycle, or reduce the import chain depth to at most maxImportDepth.",
		docRef:     "https://github.com/antlr/antlr4/blob/master/doc/grammars.md#importing-grammars",
	},
	KindAmbiguity: {
		suggestion: "Reorder alternatives so the intended one comes first, or add a semantic predicate to disambiguate.",
		docRef:     "https://github.com/antlr/antlr4/blob/master/doc/resolving-ambiguities.md",
	},
	KindTokenConflict: {
		suggestion: "Reorder lexer rules so the more specific rule appears first; ANTLR4 lexer rules match longest, ties broken by source order.",
	},
	KindParseTimeout: {
		suggestion: "Increase parseTimeoutSeconds, or check for catastrophic ambiguity in a nearby decision.",
	},
}

// New constructs a taxonomy Error, filling in category and any static
// fix-it metadata registered for kind.
func New(kind Kind, message string, loc *Location) *Error {
	e := &Error{
		Code:     string(kind),
		Kind:     kind,
		Category: categoryFor(kind),
		Message:  message,
		Location: loc,
		Severity: SeverityError,
	}
	if fi, ok := fixit[kind]; ok {
		e.Suggestion = fi.suggestion
		e.Example = fi.example
		e.DocRef = fi.docRef
	}
	return e
}

// Warning constructs a taxonomy Error with warning severity.
func Warning(kind Kind, message string, loc *Location) *Error {
	e := New(kind, message, loc)
	e.Severity = SeverityWarning
	return e
}

// List is a collection of taxonomy errors, used as the accumulator
// described in spec.md §7 ("local recovery... accumulated in the
// result; they do not fail the call").
type List []*Error

func (l List) Error() string {
	if len(l) == 0 {
		return "no errors"
	}
	if len(l) == 1 {
		return l[0].Error()
	}
	return fmt.Sprintf("%d errors, first: %s", len(l), l[0].Error())
}

// HasErrors reports whether any entry in l has error (not warning)
// severity.
func (l List) HasErrors() bool {
	for _, e := range l {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}
