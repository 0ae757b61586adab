// Package predict implements C4, the adaptive prediction engine:
// `predict(decision, input_cursor, context) → (alternative_number,
// [AmbiguityEvent])` (spec.md §4.4). It simulates ATN configuration
// sets the way the teacher's gotreesitter GLR runtime expands parallel
// parse stacks, but keyed by decision id with a cached per-decision
// DFA instead of a general GLR fork/merge.
package predict

// TokenCursor is the minimal lookahead surface C5's lexer output must
// provide; it lets predict stay independent of the interpreter's
// concrete token/stream types.
type TokenCursor interface {
	// Peek returns the token type offset tokens ahead of the current
	// position (0 = the next unconsumed token).
	Peek(offset int) int
	Pos() int
}

// Config is one ATN configuration: an in-flight position during
// prediction, tagged with the alternative it originated from and
// (LL mode only) the call-return stack needed to resolve rule-stop
// transitions exactly.
type Config struct {
	State int
	Alt   int
	Stack []int // follow-state call-return addresses; nil/empty = SLL wildcard
}

// DFAState is one node of a per-decision lookahead automaton.
type DFAState struct {
	ID       int
	Configs  []Config
	Edges    map[int]int // token type -> next DFAState id
	Accept   bool
	AcceptAlt int
}

// DFA is the engine's per-decision cache, built incrementally as new
// input sequences are seen (spec.md §4.4 "on-demand DFA construction
// per decision").
type DFA struct {
	DecisionID int
	States     []*DFAState
	Start      int
}

func newDFA(decisionID, startStateID int, configs []Config) *DFA {
	d := &DFA{DecisionID: decisionID}
	d.Start = d.addState(configs)
	return d
}

func (d *DFA) addState(configs []Config) int {
	id := len(d.States)
	d.States = append(d.States, &DFAState{ID: id, Configs: configs, Edges: map[int]int{}})
	return id
}

// EventKind distinguishes the two C4 event types spec.md §4.4 names.
type EventKind int

const (
	EventAmbiguity EventKind = iota
	EventContextSensitivity
)

// Event is the engine's reported conflict, recorded with enough
// detail for C7 to aggregate and C11 to surface (spec.md §4.4, §4.7).
type Event struct {
	Kind          EventKind
	DecisionID    int
	RuleIndex     int
	Alternatives  []int
	InputStart    int
	InputEnd      int
}
