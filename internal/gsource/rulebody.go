package gsource

import (
	"strings"
	"unicode"

	"github.com/odvcencio/antlrlens/internal/errs"
	"github.com/odvcencio/antlrlens/internal/model"
)

// parseRuleBody implements pass 2: parse one rule's body (already
// isolated to a byte span by pass 1) into its Alternative tree.
func parseRuleBody(src []byte, e ruleIndexEntry) (*model.Rule, errs.List) {
	body := src[e.span.Start:e.span.End]
	s := newScanner(body)
	rule := &model.Rule{Name: e.name, Kind: e.kind, Span: e.span}

	var problems errs.List
	alts, cmds, altProblems := parseTopAltList(s, e.kind == model.RuleLexer || e.kind == model.RuleFragment, e.span.Start)
	problems = append(problems, altProblems...)
	rule.Alternatives = alts
	rule.LexerCommands = cmds

	s.skipTrivia()
	if !s.eof() {
		problems = append(problems, errs.New(errs.KindSyntaxError,
			"unexpected trailing content in rule body for "+e.name, locAt(src, e.span.Start)))
	}
	return rule, problems
}

// parseTopAltList parses the rule-level `alt (| alt)*` list, additionally
// collecting each alternative's trailing `-> command` text (lexer rules
// only) in a slice parallel to the returned alternatives.
func parseTopAltList(s *scanner, lexerRule bool, baseOffset int) ([]*model.Alternative, []string, errs.List) {
	var alts []*model.Alternative
	var cmds []string
	var problems errs.List
	for {
		s.skipTrivia()
		altStart := s.pos
		alt := &model.Alternative{Span: model.Span{Start: baseOffset + altStart}}
		parseElements(s, alt, &problems, baseOffset)
		s.skipTrivia()
		// Optional `# Label` alternative label.
		if s.peekByte() == '#' {
			s.pos++
			s.skipTrivia()
			alt.Label = s.readIdent()
			s.skipTrivia()
		}
		cmd := ""
		if lexerRule && s.peekByte() == '-' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '>' {
			s.pos += 2
			cmd = parseLexerCommand(s)
			s.skipTrivia()
		}
		alt.Span.End = baseOffset + s.pos
		alts = append(alts, alt)
		cmds = append(cmds, cmd)
		if s.peekByte() == '|' {
			s.pos++
			continue
		}
		break
	}
	return alts, cmds, problems
}

func parseLexerCommand(s *scanner) string {
	start := s.pos
	depth := 0
	for !s.eof() {
		b := s.peekByte()
		if b == '(' {
			depth++
		} else if b == ')' {
			depth--
		} else if b == ',' && depth == 0 {
			break
		} else if (b == '|' || b == '#') && depth == 0 {
			break
		}
		s.pos++
	}
	return strings.TrimSpace(string(s.src[start:s.pos]))
}

// parseElements fills alt.Elements by reading elements until a
// top-level `|`, `#`, `->`, or end of input.
func parseElements(s *scanner, alt *model.Alternative, problems *errs.List, baseOffset int) {
	for {
		s.skipTrivia()
		if s.eof() {
			return
		}
		b := s.peekByte()
		if b == '|' {
			return
		}
		if b == '#' {
			return
		}
		if b == '-' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '>' {
			return
		}
		el := parseElement(s, problems, baseOffset)
		if el == nil {
			return
		}
		alt.Elements = append(alt.Elements, el)
	}
}

// parseElement parses one labeled, suffixed element.
func parseElement(s *scanner, problems *errs.List, baseOffset int) *model.Element {
	s.skipTrivia()
	start := s.pos

	// `name=element` / `name+=element` label, distinguished from a bare
	// rule reference by lookahead past the identifier.
	label := ""
	listLabel := false
	if save := s.pos; true {
		id := s.readIdent()
		s.skipTrivia()
		if id != "" && s.peekByte() == '=' && !(s.pos+1 < len(s.src) && s.src[s.pos+1] == '=') {
			label = id
			s.pos++
			s.skipTrivia()
		} else if id != "" && s.peekByte() == '+' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '=' {
			label = id
			listLabel = true
			s.pos += 2
			s.skipTrivia()
		} else {
			s.pos = save
		}
	}

	base := parseBaseElement(s, problems, baseOffset)
	if base == nil {
		return nil
	}
	base.Label = label
	base.ListLabel = listLabel
	base.Span.Start = baseOffset + start

	// Repetition suffix.
	s2 := s.pos
	_ = s2
	switch s.peekByte() {
	case '?':
		s.pos++
		base = wrap(base, model.ElemOptional, baseOffset)
	case '*':
		s.pos++
		base = wrap(base, model.ElemStar, baseOffset)
	case '+':
		// `+` is ambiguous with the list-label operator only when
		// immediately followed by `=`; already handled above, so here
		// a bare `+` is always the one-or-more suffix.
		s.pos++
		base = wrap(base, model.ElemPlus, baseOffset)
	}
	base.Span.End = baseOffset + s.pos
	return base
}

func wrap(inner *model.Element, kind model.ElementKind, baseOffset int) *model.Element {
	return &model.Element{
		Kind: kind,
		Span: inner.Span,
		Sub:  []*model.Alternative{{Elements: []*model.Element{inner}}},
	}
}

func parseBaseElement(s *scanner, problems *errs.List, baseOffset int) *model.Element {
	s.skipTrivia()
	if s.eof() {
		return nil
	}
	start := s.pos
	negated := false
	if s.peekByte() == '~' {
		negated = true
		s.pos++
		s.skipTrivia()
	}

	switch {
	case s.peekByte() == '\'':
		lit := s.skipQuoted()
		return &model.Element{Kind: model.ElemLiteral, Text: lit, Negated: negated, Span: model.Span{Start: baseOffset + start}}

	case s.peekByte() == '.':
		s.pos++
		return &model.Element{Kind: model.ElemWildcard, Negated: negated, Span: model.Span{Start: baseOffset + start}}

	case s.peekByte() == '[':
		ranges := parseCharClass(s)
		return &model.Element{Kind: model.ElemSet, Ranges: ranges, Negated: negated, Span: model.Span{Start: baseOffset + start}}

	case s.peekByte() == '(':
		s.pos++
		sub, cmds, subProblems := parseTopAltList(s, false, baseOffset)
		_ = cmds
		*problems = append(*problems, subProblems...)
		s.skipTrivia()
		if s.peekByte() == ')' {
			s.pos++
		} else {
			*problems = append(*problems, errs.New(errs.KindSyntaxError, "missing closing ')'", locAt(s.src, s.pos)))
		}
		kind := model.ElemBlock
		if len(sub) >= 2 && isSimpleSetCandidate(sub) {
			// A parenthesized set of single-literal alternatives, e.g.
			// ('+'|'-'), is still represented as a block (preserves
			// operand order for rendering); ElemSet stays reserved for
			// `[...]` char classes per spec.md §3.
			kind = model.ElemBlock
		}
		return &model.Element{Kind: kind, Sub: sub, Negated: negated, Span: model.Span{Start: baseOffset + start}}

	case s.peekByte() == '{':
		code := s.scanBalancedAction()
		isPred := false
		if s.peekByte() == '?' {
			s.pos++
			isPred = true
		}
		kind := model.ElemAction
		if isPred {
			kind = model.ElemPredicate
		}
		return &model.Element{Kind: kind, Text: code, Span: model.Span{Start: baseOffset + start}}

	default:
		id := s.readIdent()
		if id == "" {
			// Can't make progress; report and bail for this element.
			*problems = append(*problems, errs.New(errs.KindSyntaxError, "unexpected character in rule body", locAt(s.src, s.pos)))
			s.pos++
			return nil
		}
		r := []rune(id)[0]
		if unicode.IsUpper(r) {
			return &model.Element{Kind: model.ElemToken, Text: id, Negated: negated, Span: model.Span{Start: baseOffset + start}}
		}
		return &model.Element{Kind: model.ElemRuleRef, Text: id, Negated: negated, Span: model.Span{Start: baseOffset + start}}
	}
}

func isSimpleSetCandidate(alts []*model.Alternative) bool {
	for _, a := range alts {
		if len(a.Elements) != 1 || a.Elements[0].Kind != model.ElemLiteral {
			return false
		}
	}
	return true
}

// parseCharClass parses a `[...]` char class into inclusive rune ranges,
// handling `a-z` ranges and backslash escapes.
func parseCharClass(s *scanner) [][2]rune {
	var ranges [][2]rune
	s.pos++ // '['
	for !s.eof() && s.peekByte() != ']' {
		lo := readClassChar(s)
		if s.peekByte() == '-' && s.pos+1 < len(s.src) && s.src[s.pos+1] != ']' {
			s.pos++
			hi := readClassChar(s)
			ranges = append(ranges, [2]rune{lo, hi})
		} else {
			ranges = append(ranges, [2]rune{lo, lo})
		}
	}
	if s.peekByte() == ']' {
		s.pos++
	}
	return ranges
}

func readClassChar(s *scanner) rune {
	if s.peekByte() == '\\' && s.pos+1 < len(s.src) {
		esc := s.src[s.pos+1]
		s.pos += 2
		switch esc {
		case 'n':
			return '\n'
		case 't':
			return '\t'
		case 'r':
			return '\r'
		case ']':
			return ']'
		case '\\':
			return '\\'
		case '-':
			return '-'
		default:
			return rune(esc)
		}
	}
	r, size := s.peekRune()
	s.pos += size
	return r
}
