// Package atn implements C3, the ATN builder: it converts a resolved
// grammar's rule ASTs into an Augmented Transition Network (spec.md
// §3, §4.3). State and transition kinds are modeled as small closed
// enums with exhaustive switches at every consumption site, per the
// "tagged variants over dynamic dispatch" design note (spec.md §9),
// and all state data lives in a single arena slice indexed by int id
// (spec.md §9 "arenas + indices"), mirroring the slab-backed
// allocator idiom of the teacher's gotreesitter/arena.go.
package atn

// StateKind is the closed set of ATN state kinds (spec.md §3).
type StateKind int

const (
	StateBasic StateKind = iota
	StateRuleStart
	StateRuleStop
	StateBlockStart
	StateBlockEnd
	StatePlusBlockStart
	StatePlusLoopBack
	StateStarBlockStart
	StateStarLoopback
	StateLoopEnd
	StateStarLoopEntry
	StateTokenStart
)

func (k StateKind) String() string {
	switch k {
	case StateBasic:
		return "basic"
	case StateRuleStart:
		return "rule-start"
	case StateRuleStop:
		return "rule-stop"
	case StateBlockStart:
		return "block-start"
	case StateBlockEnd:
		return "block-end"
	case StatePlusBlockStart:
		return "plus-block-start"
	case StatePlusLoopBack:
		return "plus-loopback"
	case StateStarBlockStart:
		return "star-block-start"
	case StateStarLoopback:
		return "star-loopback"
	case StateLoopEnd:
		return "loop-end"
	case StateStarLoopEntry:
		return "star-loop-entry"
	case StateTokenStart:
		return "token-start"
	default:
		return "unknown"
	}
}

// TransitionKind is the closed, exhaustive set of transition kinds
// (spec.md §3).
type TransitionKind int

const (
	TransEpsilon TransitionKind = iota
	TransAtom
	TransRange
	TransSet
	TransNotSet
	TransWildcard
	TransRule
	TransPredicate
	TransAction
	TransPrecedence
)

func (k TransitionKind) String() string {
	switch k {
	case TransEpsilon:
		return "epsilon"
	case TransAtom:
		return "atom"
	case TransRange:
		return "range"
	case TransSet:
		return "set"
	case TransNotSet:
		return "not-set"
	case TransWildcard:
		return "wildcard"
	case TransRule:
		return "rule"
	case TransPredicate:
		return "predicate"
	case TransAction:
		return "action"
	case TransPrecedence:
		return "precedence"
	default:
		return "unknown"
	}
}

// Transition is an edge leaving a State. Only the fields relevant to
// Kind are meaningful; see spec.md §3 "Transition kinds (exhaustive)".
type Transition struct {
	Kind   TransitionKind
	Target int // target state id; always valid per invariant I1.

	Label int // atom token type (TransAtom)

	From, To rune // inclusive char/token range (TransRange)

	Set *IntervalSet // TransSet / TransNotSet

	RuleTarget  int // target rule's start state id (TransRule)
	FollowState int // state to continue at after the rule call returns (TransRule)
	RuleIndex   int // owning rule index, for TransRule/TransPredicate/TransAction

	PredicateIndex int  // TransPredicate
	ActionIndex    int  // TransAction
	IsCtxDependent bool // TransPredicate / TransAction

	Precedence int // minimum precedence required to take this edge (TransRule, TransPrecedence)
}

// State is one ATN node, owning its outgoing Transitions.
type State struct {
	ID          int
	Kind        StateKind
	RuleIndex   int
	Transitions []Transition
}

// DecisionState describes one decision point: a state whose outgoing
// epsilon transitions enumerate its alternatives, in source order
// (spec.md §3, invariant I4).
type DecisionState struct {
	DecisionID int
	StateID    int
	RuleIndex  int
	NumAlts    int
}

// RuleInfo is per-rule bookkeeping the builder records alongside the
// raw state graph.
type RuleInfo struct {
	Name          string
	Index         int
	StartState    int
	StopState     int
	Kind          string // "parser" | "lexer" | "fragment", mirrors model.RuleKind
	LeftRecursion *LeftRecursionInfo

	// LexerCommand is the first non-empty `-> skip | channel(N) |
	// type(T) | mode(M) | pushMode(M) | popMode` directive found among
	// this rule's alternatives, "" if none (lexer/fragment rules only).
	LexerCommand string
}

// LeftRecursionInfo is produced by the precedence-climbing transform
// (spec.md §4.3) and reused verbatim by C6's left-recursion report
// (spec.md §4.6) so the two components never disagree.
type LeftRecursionInfo struct {
	DirectlyRecursive bool
	Transformed       bool
	PrecedenceLevels  []int // one per recursive alternative, descending
	PrimaryAltIndices []int // original (pre-transform) alternative indices
	RecursiveAltIndices []int

	// Loop*/TailEntryStates expose the transformed loop's state ids so
	// the interpreter's dedicated precedence-climbing routine (C5) can
	// walk the primary part and each operator tail directly, instead of
	// rediscovering them from the generic decision/transition graph.
	LoopEntryState  int
	LoopBackState   int
	LoopEndState    int
	TailEntryStates []int // parallel to RecursiveAltIndices/PrecedenceLevels
}

// ATN is the arena: every state lives in States, indexed by its ID.
// Transitions reference other states only by ID (spec.md §9 "arenas +
// indices" design note) so the graph can contain cycles (loopbacks,
// recursive rule calls) without reference-counted pointers.
type ATN struct {
	IsLexer bool

	States []*State

	Rules     []*RuleInfo
	ruleIndex map[string]int

	Decisions []*DecisionState

	// TokenTypes maps a lexer rule name or literal text to its assigned
	// token type id; TokenNames is the reverse mapping by id (index 0
	// holds "EOF", type 0, which has no TokenTypes entry).
	TokenTypes map[string]int
	TokenNames []string
}

const EOFType = 0

func newATN(isLexer bool) *ATN {
	return &ATN{
		IsLexer:    isLexer,
		ruleIndex:  map[string]int{},
		TokenTypes: map[string]int{},
		TokenNames: []string{"EOF"},
	}
}

// newState allocates the next state id in the arena.
func (a *ATN) newState(kind StateKind, ruleIndex int) int {
	id := len(a.States)
	a.States = append(a.States, &State{ID: id, Kind: kind, RuleIndex: ruleIndex})
	return id
}

func (a *ATN) addTransition(from int, t Transition) {
	a.States[from].Transitions = append(a.States[from].Transitions, t)
}

// RuleByName looks up rule bookkeeping by name.
func (a *ATN) RuleByName(name string) *RuleInfo {
	if idx, ok := a.ruleIndex[name]; ok {
		return a.Rules[idx]
	}
	return nil
}

// RuleIndexOf returns the rule index for name, or -1.
func (a *ATN) RuleIndexOf(name string) int {
	if idx, ok := a.ruleIndex[name]; ok {
		return idx
	}
	return -1
}

// addDecision registers a new decision point and returns its id.
func (a *ATN) addDecision(stateID, ruleIndex, numAlts int) int {
	id := len(a.Decisions)
	a.Decisions = append(a.Decisions, &DecisionState{DecisionID: id, StateID: stateID, RuleIndex: ruleIndex, NumAlts: numAlts})
	return id
}

// Validate checks invariants I1 and I4 (spec.md §3, §8). It is cheap
// enough to run on every build and exists mainly so a violated
// invariant surfaces as a typed internal-error instead of a panic,
// per the error-handling design (spec.md §7 "Fatal").
func (a *ATN) Validate() error {
	for _, s := range a.States {
		for _, t := range s.Transitions {
			if t.Target < 0 || t.Target >= len(a.States) {
				return &invariantViolation{"I1", "transition target out of range"}
			}
		}
	}
	for _, d := range a.Decisions {
		eps := 0
		for _, t := range a.States[d.StateID].Transitions {
			if t.Kind == TransEpsilon {
				eps++
			}
		}
		if eps != d.NumAlts {
			return &invariantViolation{"I4", "decision alternative count does not match outgoing epsilons"}
		}
	}
	return nil
}

type invariantViolation struct {
	code, msg string
}

func (e *invariantViolation) Error() string { return e.code + ": " + e.msg }
