// Package gsource implements C1, the grammar source model builder:
// Parse tokenizes and parses ANTLR4 `.g4` text into a *model.GrammarSource
// (spec.md §4.1). It runs in two passes: Pass 1 locates the grammar
// header and indexes each rule's name/kind/byte span; Pass 2 parses
// each rule body into its Alternative/Element tree.
package gsource

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/odvcencio/antlrlens/internal/errs"
	"github.com/odvcencio/antlrlens/internal/model"
	"golang.org/x/text/unicode/norm"
)

// reservedEOF is the one rule name ANTLR4 reserves (spec.md §4.1).
const reservedEOF = "EOF"

// ruleIndexEntry is what pass 1 records for one rule before its body
// is parsed.
type ruleIndexEntry struct {
	name string
	kind model.RuleKind
	span model.Span // body span, from just after ':' to just before trailing ';'
}

// Parse implements the C1 public contract: `parse(text) → GrammarSource
// | [SourceError]`.
func Parse(text string) (*model.GrammarSource, errs.List) {
	if len(strings.TrimSpace(text)) == 0 {
		return nil, errs.List{errs.New(errs.KindGrammarLoadError, "grammar text is empty", nil)}
	}
	normalized := norm.NFC.String(text)

	var problems errs.List
	src := []byte(normalized)

	g := &model.GrammarSource{
		Text:    normalized,
		Options: map[string]string{},
	}

	s := newScanner(src)
	s.skipTrivia()

	// Header: (lexer|parser)? grammar NAME ;
	declaredKind := model.KindCombined
	if id := peekIdent(s); id == "lexer" || id == "parser" {
		s.readIdent()
		s.skipTrivia()
		if id == "lexer" {
			declaredKind = model.KindLexer
		} else {
			declaredKind = model.KindParser
		}
	}
	s.skipTrivia()
	if kw := peekIdent(s); kw != "grammar" {
		problems = append(problems, errs.New(errs.KindSyntaxError,
			fmt.Sprintf("expected 'grammar' header keyword, found %q", kw), locAt(src, s.pos)))
		return nil, problems
	}
	s.readIdent()
	s.skipTrivia()
	name := s.readIdent()
	if name == "" {
		problems = append(problems, errs.New(errs.KindSyntaxError, "missing grammar name after 'grammar'", locAt(src, s.pos)))
		return nil, problems
	}
	g.Name = name
	s.skipTrivia()
	if !expectByte(s, ';') {
		problems = append(problems, errs.New(errs.KindSyntaxError, "missing ';' after grammar header", locAt(src, s.pos)))
	}

	var ruleIndex []ruleIndexEntry

	// Top-level items.
	for {
		s.skipTrivia()
		if s.eof() {
			break
		}
		switch {
		case s.peekByte() == '@':
			parseTopLevelAction(s, g)
		case peekIdent(s) == "import":
			s.readIdent()
			parseImportList(s, g)
		case peekIdent(s) == "tokens":
			s.readIdent()
			parseBracedIdentList(s, &g.Tokens)
		case peekIdent(s) == "channels":
			s.readIdent()
			parseBracedIdentList(s, &g.Channels)
		case peekIdent(s) == "options":
			s.readIdent()
			parseOptions(s, g.Options)
		default:
			entry, ok := scanRule(s, src)
			if !ok {
				// Can't make forward progress; bail to avoid an infinite loop.
				problems = append(problems, errs.New(errs.KindSyntaxError,
					"unrecognized top-level construct", locAt(src, s.pos)))
				s.pos++
				continue
			}
			if entry.name == reservedEOF {
				problems = append(problems, errs.New(errs.KindSemanticError, "'EOF' is reserved and cannot be user-defined", locAt(src, entry.span.Start)))
				continue
			}
			ruleIndex = append(ruleIndex, entry)
		}
	}

	// Duplicate rule name check (invariant: name uniqueness).
	seen := map[string]bool{}
	for _, e := range ruleIndex {
		if seen[e.name] {
			problems = append(problems, errs.New(errs.KindSemanticError, fmt.Sprintf("duplicate rule name %q", e.name), locAt(src, e.span.Start)))
			continue
		}
		seen[e.name] = true
	}

	// Pass 2: parse each rule body.
	for _, e := range ruleIndex {
		rule, ruleErrs := parseRuleBody(src, e)
		problems = append(problems, ruleErrs...)
		g.Rules = append(g.Rules, rule)
		if rule.Kind == model.RuleParser && g.StartRuleName == "" {
			g.StartRuleName = rule.Name
		}
	}

	g.Kind = classifyGrammarKind(declaredKind, g.Rules)

	if problems.HasErrors() {
		return nil, problems
	}
	return g, problems
}

func classifyGrammarKind(declared model.Kind, rules []*model.Rule) model.Kind {
	if declared != model.KindCombined {
		return declared
	}
	hasParser, hasLexer := false, false
	for _, r := range rules {
		if r.Kind == model.RuleParser {
			hasParser = true
		}
		if r.Kind == model.RuleLexer || r.Kind == model.RuleFragment {
			hasLexer = true
		}
	}
	switch {
	case hasParser && !hasLexer:
		return model.KindParser
	case hasLexer && !hasParser:
		return model.KindLexer
	default:
		return model.KindCombined
	}
}

func peekIdent(s *scanner) string {
	save := s.pos
	id := s.readIdent()
	s.pos = save
	return id
}

func expectByte(s *scanner, b byte) bool {
	if s.peekByte() == b {
		s.pos++
		return true
	}
	return false
}

func locAt(src []byte, offset int) *errs.Location {
	line, col := 1, 0
	for i := 0; i < offset && i < len(src); i++ {
		if src[i] == '\n' {
			line++
			col = 0
		} else {
			col++
		}
	}
	return &errs.Location{Line: line, Column: col, Offset: offset}
}

func parseTopLevelAction(s *scanner, g *model.GrammarSource) {
	start := s.pos
	s.pos++ // '@'
	s.skipTrivia()
	name := s.readIdent()
	s.skipTrivia()
	if s.peekByte() == ':' && s.pos+1 < len(s.src) && s.src[s.pos+1] == ':' {
		s.pos += 2
		s.skipTrivia()
		sub := s.readIdent()
		name = name + "::" + sub
		s.skipTrivia()
	}
	if s.peekByte() != '{' {
		return
	}
	code := s.scanBalancedAction()
	kind := name
	switch {
	case strings.Contains(name, "header"):
		kind = "header"
	case strings.Contains(name, "members"):
		kind = "members"
	case strings.Contains(name, "init"):
		kind = "init"
	case strings.Contains(name, "after"):
		kind = "after"
	}
	g.Actions = append(g.Actions, model.ActionBlock{
		Code: code,
		Span: model.Span{Start: start, End: s.pos},
		Kind: kind,
	})
}

func parseImportList(s *scanner, g *model.GrammarSource) {
	for {
		s.skipTrivia()
		name := s.readIdent()
		s.skipTrivia()
		// `import X = Y;` aliasing: skip the `= Y` part but keep the
		// imported grammar's real name (Y).
		if s.peekByte() == '=' {
			s.pos++
			s.skipTrivia()
			name = s.readIdent()
			s.skipTrivia()
		}
		if name != "" {
			g.Imports = append(g.Imports, name)
		}
		s.skipTrivia()
		if s.peekByte() == ',' {
			s.pos++
			continue
		}
		break
	}
	s.skipTrivia()
	expectByte(s, ';')
}

func parseBracedIdentList(s *scanner, out *[]string) {
	s.skipTrivia()
	if !expectByte(s, '{') {
		return
	}
	for {
		s.skipTrivia()
		if s.peekByte() == '}' || s.eof() {
			break
		}
		id := s.readIdent()
		if id == "" {
			s.pos++
			continue
		}
		*out = append(*out, id)
		s.skipTrivia()
		if s.peekByte() == ',' {
			s.pos++
		}
	}
	expectByte(s, '}')
}

func parseOptions(s *scanner, out map[string]string) {
	s.skipTrivia()
	if !expectByte(s, '{') {
		return
	}
	for {
		s.skipTrivia()
		if s.peekByte() == '}' || s.eof() {
			break
		}
		key := s.readIdent()
		s.skipTrivia()
		if s.peekByte() == '=' {
			s.pos++
		}
		s.skipTrivia()
		var val string
		switch s.peekByte() {
		case '\'', '"':
			val = s.skipQuoted()
		default:
			val = s.readIdent()
		}
		if key != "" {
			out[key] = val
		}
		s.skipTrivia()
		if s.peekByte() == ';' {
			s.pos++
		}
	}
	expectByte(s, '}')
}

// scanRule implements pass 1 for a single rule: classify by first
// letter/`fragment` keyword, then scan to the terminating top-level ';'.
func scanRule(s *scanner, src []byte) (ruleIndexEntry, bool) {
	start := s.pos
	isFragment := false
	if peekIdent(s) == "fragment" {
		save := s.pos
		s.readIdent()
		s.skipTrivia()
		if isRuleNameStart(s) {
			isFragment = true
		} else {
			s.pos = save
		}
	}
	nameStart := s.pos
	name := s.readIdent()
	if name == "" {
		s.pos = start
		return ruleIndexEntry{}, false
	}
	var kind model.RuleKind
	r := []rune(name)[0]
	switch {
	case isFragment:
		kind = model.RuleFragment
	case unicode.IsUpper(r):
		kind = model.RuleLexer
	default:
		kind = model.RuleParser
	}
	s.skipTrivia()
	// Rule may carry `[args]` or `returns [...]` etc; skip past to ':'.
	for !s.eof() && s.peekByte() != ':' && s.peekByte() != ';' {
		if s.peekByte() == '\'' || s.peekByte() == '"' {
			s.skipQuoted()
			continue
		}
		s.pos++
	}
	if s.eof() || s.peekByte() == ';' {
		s.pos = start
		return ruleIndexEntry{}, false
	}
	s.pos++ // ':'
	bodyStart := s.pos
	s.scanToTopLevelSemicolon()
	bodyEndInclusive := s.pos // just past ';'
	bodyEnd := bodyEndInclusive - 1
	_ = nameStart
	return ruleIndexEntry{
		name: name,
		kind: kind,
		span: model.Span{Start: bodyStart, End: bodyEnd},
	}, true
}

func isRuleNameStart(s *scanner) bool {
	r, _ := s.peekRune()
	return isIdentStart(r)
}
