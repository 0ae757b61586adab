package errs

import "testing"

func TestNewAssignsCategory(t *testing.T) {
	cases := map[Kind]Category{
		KindUndefinedRule: CategoryGrammar,
		KindAmbiguity:     CategoryParsing,
		KindInvalidInput:  CategoryInput,
		KindInternalError: CategoryInternal,
	}
	for kind, want := range cases {
		e := New(kind, "boom", nil)
		if e.Category != want {
			t.Errorf("New(%s).Category = %s, want %s", kind, e.Category, want)
		}
		if e.Severity != SeverityError {
			t.Errorf("New(%s).Severity = %s, want error", kind, e.Severity)
		}
	}
}

func TestNewFillsFixitForKnownKind(t *testing.T) {
	e := New(KindLeftRecursion, "rule is left-recursive", nil)
	if e.Suggestion == "" {
		t.Error("expected a fix-it suggestion for KindLeftRecursion")
	}
	if e.DocRef == "" {
		t.Error("expected a doc reference for KindLeftRecursion")
	}
}

func TestNewLeavesFixitEmptyForUnknownKind(t *testing.T) {
	e := New(KindInternalError, "boom", nil)
	if e.Suggestion != "" || e.Example != "" || e.DocRef != "" {
		t.Errorf("expected no fix-it metadata for KindInternalError, got %+v", e)
	}
}

func TestWarningSetsSeverity(t *testing.T) {
	e := Warning(KindTokenConflict, "rules overlap", nil)
	if e.Severity != SeverityWarning {
		t.Errorf("Severity = %s, want warning", e.Severity)
	}
}

func TestErrorStringIncludesLocation(t *testing.T) {
	e := New(KindSyntaxError, "unexpected token", &Location{Line: 3, Column: 7})
	got := e.Error()
	want := "syntax-error: unexpected token (line 3, col 7)"
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestErrorStringWithoutLocation(t *testing.T) {
	e := New(KindSyntaxError, "unexpected token", nil)
	want := "syntax-error: unexpected token"
	if e.Error() != want {
		t.Errorf("Error() = %q, want %q", e.Error(), want)
	}
}

func TestListHasErrorsIgnoresWarnings(t *testing.T) {
	l := List{Warning(KindTokenConflict, "overlap", nil)}
	if l.HasErrors() {
		t.Error("HasErrors() = true for a warnings-only list, want false")
	}
	l = append(l, New(KindSyntaxError, "bad token", nil))
	if !l.HasErrors() {
		t.Error("HasErrors() = false after appending an error-severity entry, want true")
	}
}

func TestListErrorMessageSummarizesCount(t *testing.T) {
	l := List{}
	if l.Error() != "no errors" {
		t.Errorf("empty List.Error() = %q, want %q", l.Error(), "no errors")
	}
	l = List{New(KindSyntaxError, "first", nil), New(KindSyntaxError, "second", nil)}
	got := l.Error()
	if got != "2 errors, first: syntax-error: first" {
		t.Errorf("List.Error() = %q", got)
	}
}
