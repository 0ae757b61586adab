// Package interp implements C5: the ATN-driven lexer and parser
// interpreters that walk a built ATN against sample input text
// (spec.md §4.5).
package interp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/odvcencio/antlrlens/internal/atn"
	"github.com/odvcencio/antlrlens/internal/errs"
)

// Token is one lexical unit produced by Lex, or an ErrorToken when no
// lexer rule matched at a position (spec.md §4.5).
type Token struct {
	Type    int
	Text    string
	Channel int
	Line    int
	Column  int
	Offset  int
	Error   bool
}

const defaultChannel = 0
const hiddenChannel = 1

// Lexer walks the lexer sub-ATN of a built grammar against raw input
// text, producing a token stream.
type Lexer struct {
	a    *atn.ATN
	src  []rune
	pos  int
	line int
	col  int

	// rules lists lexer-rule indices in source order; longest-match
	// ties are broken by earlier index (spec.md §4.5).
	rules []int
}

// NewLexer builds a Lexer over text using a's lexer rules.
func NewLexer(a *atn.ATN, text string) *Lexer {
	lx := &Lexer{a: a, src: []rune(text), line: 1, col: 0}
	for _, r := range a.Rules {
		if r.Kind == "lexer" {
			lx.rules = append(lx.rules, r.Index)
		}
	}
	return lx
}

// Lex implements the C5 lexer contract: `lex(chars) → [Token] |
// LexError`. An unmatchable character produces an ErrorToken and the
// lexer advances one character (spec.md §4.5).
func (lx *Lexer) Lex() ([]Token, errs.List) {
	var out []Token
	var problems errs.List

	for lx.pos < len(lx.src) {
		startLine, startCol, startOffset := lx.line, lx.col, lx.pos
		bestLen, bestRule := -1, -1
		for _, ruleIdx := range lx.rules {
			n := lx.matchRule(ruleIdx, lx.pos)
			if n > bestLen {
				bestLen, bestRule = n, ruleIdx
			}
		}
		// Token names with no lexer rule behind them (parser-rule literals,
		// `tokens { }` names) match by their text and win ties with rules.
		litType := -1
		for typ, name := range lx.a.TokenNames {
			n := len([]rune(name))
			if typ != atn.EOFType && n > 0 && n >= bestLen && lx.pos+n <= len(lx.src) &&
				lx.a.RuleByName(name) == nil && string(lx.src[lx.pos:lx.pos+n]) == name {
				bestLen, litType = n, typ
			}
		}

		if bestLen <= 0 {
			bad := lx.src[lx.pos]
			problems = append(problems, errs.New(errs.KindParseError,
				fmt.Sprintf("unrecognized character %q", bad),
				&errs.Location{Line: startLine, Column: startCol, Offset: startOffset}))
			out = append(out, Token{Type: -1, Text: string(bad), Error: true,
				Line: startLine, Column: startCol, Offset: startOffset})
			lx.advance(1)
			continue
		}
		if litType >= 0 {
			out = append(out, Token{Type: litType, Text: string(lx.src[lx.pos : lx.pos+bestLen]),
				Line: startLine, Column: startCol, Offset: startOffset})
			lx.advance(bestLen)
			continue
		}

		text := string(lx.src[lx.pos : lx.pos+bestLen])
		ruleInfo := lx.a.Rules[bestRule]
		lx.advance(bestLen)

		tok := Token{
			Type:    lx.a.TokenTypes[ruleInfo.Name],
			Text:    text,
			Channel: defaultChannel,
			Line:    startLine,
			Column:  startCol,
			Offset:  startOffset,
		}
		skip, hide, newType, ok := applyLexerCommand(ruleInfo.LexerCommand, lx.a)
		if ok {
			if newType >= 0 {
				tok.Type = newType
			}
			if hide {
				tok.Channel = hiddenChannel
			}
		}
		if skip {
			continue
		}
		out = append(out, tok)
	}

	out = append(out, Token{Type: atn.EOFType, Text: "", Line: lx.line, Column: lx.col, Offset: lx.pos})
	return out, problems
}

func (lx *Lexer) advance(n int) {
	for i := 0; i < n; i++ {
		if lx.src[lx.pos] == '\n' {
			lx.line++
			lx.col = 0
		} else {
			lx.col++
		}
		lx.pos++
	}
}

// matchRule runs a closure/move NFA simulation over ruleIdx's
// sub-ATN starting at start,
// returning the length of the longest match found, or -1 if none.
func (lx *Lexer) matchRule(ruleIdx, start int) int {
	info := lx.a.Rules[ruleIdx]
	configs := lexClosure(lx.a, []lexConfig{{state: info.StartState}})
	bestLen := -1
	if anyAtStop(configs) {
		bestLen = 0
	}
	pos := start
	length := 0
	for pos < len(lx.src) && len(configs) > 0 {
		moved := lexMove(lx.a, configs, lx.src[pos])
		if len(moved) == 0 {
			break
		}
		moved = lexClosure(lx.a, moved)
		length++
		pos++
		if anyAtStop(moved) {
			bestLen = length
		}
		configs = moved
	}
	return bestLen
}

// lexConfig is one in-flight NFA position during lexer simulation; the
// stack resolves fragment-rule returns the same way predict.Config
// resolves parser rule-call returns.
type lexConfig struct {
	state int
	stack []int
	atStop bool
}

func anyAtStop(configs []lexConfig) bool {
	for _, c := range configs {
		if c.atStop {
			return true
		}
	}
	return false
}

// lexClosure expands epsilon-equivalent transitions (epsilon,
// predicate, action, fragment call, rule-stop/return) to the set of
// states where a character must be consumed next.
func lexClosure(a *atn.ATN, seed []lexConfig) []lexConfig {
	visited := map[int]bool{}
	var stack []lexConfig
	stack = append(stack, seed...)
	var out []lexConfig

	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[c.state] {
			continue
		}
		visited[c.state] = true

		st := a.States[c.state]
		if st.Kind == atn.StateRuleStop {
			if len(c.stack) > 0 {
				follow := c.stack[len(c.stack)-1]
				rest := c.stack[:len(c.stack)-1]
				stack = append(stack, lexConfig{state: follow, stack: rest})
			} else {
				out = append(out, lexConfig{state: c.state, atStop: true})
			}
			continue
		}

		hasConsuming := false
		for _, t := range st.Transitions {
			switch t.Kind {
			case atn.TransEpsilon, atn.TransPredicate, atn.TransAction, atn.TransPrecedence:
				stack = append(stack, lexConfig{state: t.Target, stack: c.stack})
			case atn.TransRule:
				newStack := append(append([]int{}, c.stack...), t.FollowState)
				stack = append(stack, lexConfig{state: t.RuleTarget, stack: newStack})
			default:
				hasConsuming = true
			}
		}
		if hasConsuming {
			out = append(out, c)
		}
	}
	return out
}

func lexMove(a *atn.ATN, configs []lexConfig, r rune) []lexConfig {
	var out []lexConfig
	for _, c := range configs {
		st := a.States[c.state]
		for _, t := range st.Transitions {
			switch t.Kind {
			case atn.TransAtom:
				if rune(t.Label) == r {
					out = append(out, lexConfig{state: t.Target, stack: c.stack})
				}
			case atn.TransSet:
				if t.Set != nil && t.Set.Contains(r) {
					out = append(out, lexConfig{state: t.Target, stack: c.stack})
				}
			case atn.TransNotSet:
				if t.Set == nil || !t.Set.Contains(r) {
					out = append(out, lexConfig{state: t.Target, stack: c.stack})
				}
			case atn.TransWildcard:
				out = append(out, lexConfig{state: t.Target, stack: c.stack})
			}
		}
	}
	return out
}

// applyLexerCommand interprets a `-> skip | channel(N) | type(T) |
// mode(M) | pushMode(M) | popMode` directive (spec.md §2). mode/
// pushMode/popMode are accepted syntactically but have no effect in
// this single-mode interpreter (spec.md Non-goals: lexer modes are
// out of scope).
func applyLexerCommand(cmd string, a *atn.ATN) (skip, hide bool, newType int, ok bool) {
	newType = -1
	cmd = strings.TrimSpace(cmd)
	if cmd == "" {
		return false, false, -1, false
	}
	switch {
	case cmd == "skip":
		return true, false, -1, true
	case cmd == "channel(HIDDEN)":
		return false, true, -1, true
	case strings.HasPrefix(cmd, "channel("):
		n := strings.TrimSuffix(strings.TrimPrefix(cmd, "channel("), ")")
		if v, err := strconv.Atoi(n); err == nil && v != defaultChannel {
			return false, v == hiddenChannel, -1, true
		}
		return false, true, -1, true
	case strings.HasPrefix(cmd, "type("):
		name := strings.TrimSuffix(strings.TrimPrefix(cmd, "type("), ")")
		if id, ok := a.TokenTypes[name]; ok {
			return false, false, id, true
		}
	}
	return false, false, -1, false
}
