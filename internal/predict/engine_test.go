package predict

import (
	"testing"

	"github.com/odvcencio/antlrlens/internal/atn"
	"github.com/odvcencio/antlrlens/internal/gsource"
)

// fixedCursor is a TokenCursor over a fixed token-type slice, EOF
// (atn.EOFType) returned once the slice is exhausted.
type fixedCursor struct {
	toks []int
	pos  int
}

func (c *fixedCursor) Peek(offset int) int {
	i := c.pos + offset
	if i >= len(c.toks) {
		return atn.EOFType
	}
	return c.toks[i]
}
func (c *fixedCursor) Pos() int { return c.pos }

func buildList(t *testing.T) *atn.ATN {
	t.Helper()
	g, problems := gsource.Parse("grammar D;\nlist : INT (',' INT)* ;\nINT : [0-9]+ ;\n")
	if problems.HasErrors() {
		t.Fatalf("parse errors: %v", problems)
	}
	a, buildProblems := atn.Build(g)
	if buildProblems.HasErrors() {
		t.Fatalf("build errors: %v", buildProblems)
	}
	return a
}

func TestPredictStarLoopChoosesReentryOnComma(t *testing.T) {
	a := buildList(t)
	if len(a.Decisions) == 0 {
		t.Fatal("expected at least one decision")
	}
	e := New(a)
	commaType := a.TokenTypes[","]
	cur := &fixedCursor{toks: []int{commaType}}
	alt, events := e.Predict(0, cur, nil)
	if alt != 1 {
		t.Fatalf("alt = %d, want 1 (reenter the loop on ',')", alt)
	}
	if len(events) != 0 {
		t.Errorf("unexpected events for an unambiguous decision: %v", events)
	}
}

func TestPredictStarLoopChoosesExitAtEOF(t *testing.T) {
	a := buildList(t)
	e := New(a)
	cur := &fixedCursor{toks: nil}
	alt, events := e.Predict(0, cur, nil)
	if alt != 2 {
		t.Fatalf("alt = %d, want 2 (exit the loop at EOF)", alt)
	}
	if len(events) != 0 {
		t.Errorf("unexpected events for an unambiguous decision: %v", events)
	}
}

func TestPredictIsDeterministicAcrossRuns(t *testing.T) {
	a := buildList(t)
	commaType := a.TokenTypes[","]
	e1 := New(a)
	alt1, _ := e1.Predict(0, &fixedCursor{toks: []int{commaType}}, nil)
	e2 := New(a)
	alt2, _ := e2.Predict(0, &fixedCursor{toks: []int{commaType}}, nil)
	if alt1 != alt2 {
		t.Errorf("prediction not deterministic: %d vs %d", alt1, alt2)
	}
}
