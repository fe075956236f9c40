package conditionals

import (
	"strconv"
	"strings"
)

const negationPrefix = "not:"

var compareResources = []string{"ap", "money", "hp"}

// identityBrackets maps the exact-match bracket prefix to its identity field.
// gender_identity must be tried before gender.
var identityBrackets = []struct {
	prefix string
	field  string
}{
	{"gender_identity[", FieldGenderIdentity},
	{"gender[", FieldGender},
	{"clothing[", FieldClothing},
	{"race[", FieldRace},
	{"job[", FieldJob},
	{"background[", FieldBackground},
}

var identityContains = []struct {
	prefix string
	field  string
}{
	{"gender_identity_contains:", FieldGenderIdentity},
	{"gender_contains:", FieldGender},
	{"clothing_contains:", FieldClothing},
	{"race_contains:", FieldRace},
	{"job_contains:", FieldJob},
	{"background_contains:", FieldBackground},
}

// parser is a small recursive-descent parser over the condition grammar:
//
//	expr   = orTerm ('|' orTerm)*
//	orTerm = atom ('&' atom)*
type parser struct {
	src string
	pos int
}

// Parse builds the AST for a condition expression. It never fails:
// atoms it cannot recognise become UnknownPred.
// A blank expression parses to an Expr with no terms.
func Parse(expr string) Expr {
	if strings.TrimSpace(expr) == "" {
		return Expr{}
	}
	p := &parser{src: expr}
	return p.parseExpr()
}

func (p *parser) parseExpr() Expr {
	e := Expr{Terms: []Term{p.parseTerm()}}
	for p.peek() == '|' {
		p.pos++
		e.Terms = append(e.Terms, p.parseTerm())
	}
	return e
}

func (p *parser) parseTerm() Term {
	t := Term{Atoms: []Atom{p.parseAtom()}}
	for p.peek() == '&' {
		p.pos++
		t.Atoms = append(t.Atoms, p.parseAtom())
	}
	return t
}

func (p *parser) parseAtom() Atom {
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] != '|' && p.src[p.pos] != '&' {
		p.pos++
	}
	return parseAtom(p.src[start:p.pos])
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func parseAtom(raw string) Atom {
	text := strings.TrimSpace(raw)
	atom := Atom{Raw: text}
	for strings.HasPrefix(text, negationPrefix) {
		atom.Negated = !atom.Negated
		text = strings.TrimSpace(strings.TrimPrefix(text, negationPrefix))
	}
	atom.Pred = parsePredicate(text)
	return atom
}

func parsePredicate(text string) Predicate {
	switch text {
	case ToggleCruelWorld, ToggleFatedOne:
		return TogglePred{Toggle: text}
	case "":
		return UnknownPred{Text: text}
	}

	if v, ok := strings.CutPrefix(text, "skill:"); ok {
		return SkillPred{ID: v}
	}
	if v, ok := strings.CutPrefix(text, "job:"); ok {
		return JobPred{Name: v}
	}
	if v, ok := strings.CutPrefix(text, "item:"); ok {
		return ItemPred{ID: v}
	}
	if v, ok := strings.CutPrefix(text, "area:"); ok {
		return AreaPred{Name: v}
	}
	if v, ok := strings.CutPrefix(text, "flag:"); ok {
		return FlagPred{Name: v}
	}
	if v, ok := strings.CutPrefix(text, "has_any_item:"); ok {
		return RarityPred{Rarity: v}
	}
	if v, ok := strings.CutPrefix(text, "status_effect["); ok {
		return parseStatus(text, v)
	}
	for _, ic := range identityContains {
		if v, ok := strings.CutPrefix(text, ic.prefix); ok {
			return IdentityPred{Field: ic.field, Value: v, Contains: true}
		}
	}
	for _, ib := range identityBrackets {
		if v, ok := strings.CutPrefix(text, ib.prefix); ok {
			inner, tail, closed := strings.Cut(v, "]")
			if !closed || tail != "" {
				return UnknownPred{Text: text}
			}
			return IdentityPred{Field: ib.field, Value: inner}
		}
	}
	for _, res := range compareResources {
		if rest, ok := strings.CutPrefix(text, res); ok {
			if op, lit, found := cutOp(rest); found {
				n, err := strconv.Atoi(strings.TrimSpace(lit))
				return ComparePred{Resource: res, Op: op, Value: n, Valid: err == nil}
			}
		}
	}
	return UnknownPred{Text: text}
}

// parseStatus handles status_effect[id] and status_effect[id]<op>N.
func parseStatus(text, afterBracket string) Predicate {
	id, tail, closed := strings.Cut(afterBracket, "]")
	if !closed || id == "" {
		return UnknownPred{Text: text}
	}
	tail = strings.TrimSpace(tail)
	if tail == "" {
		return StatusPred{ID: id, Valid: true}
	}
	op, lit, found := cutOp(tail)
	if !found {
		return UnknownPred{Text: text}
	}
	n, err := strconv.Atoi(strings.TrimSpace(lit))
	return StatusPred{ID: id, Compare: true, Op: op, Value: n, Valid: err == nil}
}

// cutOp splits a leading comparison operator from s. Two-character operators win.
func cutOp(s string) (Op, string, bool) {
	for _, op := range []Op{OpGE, OpLE, OpGT, OpLT, OpEQ} {
		if rest, ok := strings.CutPrefix(s, string(op)); ok {
			return op, rest, true
		}
	}
	return "", "", false
}

func (op Op) compare(a, b int) bool {
	switch op {
	case OpGE:
		return a >= b
	case OpLE:
		return a <= b
	case OpGT:
		return a > b
	case OpLT:
		return a < b
	case OpEQ:
		return a == b
	default:
		return false
	}
}
