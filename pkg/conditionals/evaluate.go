package conditionals

import (
	"strings"
)

// Evaluator evaluates condition expressions. It holds only read-only lookups,
// so repeated calls with the same inputs return the same answer.
type Evaluator struct {
	Items ItemCatalog // optional; has_any_item is false without it
}

// NewEvaluator creates an evaluator backed by the given item catalog.
func NewEvaluator(items ItemCatalog) *Evaluator {
	return &Evaluator{Items: items}
}

// Evaluate reports whether expr holds for the actor and session.
// A blank expression is always true.
func (e *Evaluator) Evaluate(expr string, a ActorView, s SessionView) bool {
	if strings.TrimSpace(expr) == "" {
		return true
	}
	return e.EvaluateExpr(Parse(expr), a, s)
}

// EvaluateExpr evaluates an already parsed expression.
// An Expr with no terms is true.
func (e *Evaluator) EvaluateExpr(x Expr, a ActorView, s SessionView) bool {
	if len(x.Terms) == 0 {
		return true
	}
	for _, term := range x.Terms {
		if e.evalTerm(term, a, s) {
			return true
		}
	}
	return false
}

func (e *Evaluator) evalTerm(t Term, a ActorView, s SessionView) bool {
	for _, atom := range t.Atoms {
		if e.evalAtom(atom, a, s) == atom.Negated {
			return false
		}
	}
	return true
}

// evalAtom evaluates the predicate without its negation.
func (e *Evaluator) evalAtom(atom Atom, a ActorView, s SessionView) bool {
	switch p := atom.Pred.(type) {
	case SkillPred:
		return a != nil && a.HasSkill(p.ID)
	case JobPred:
		return a != nil && strings.EqualFold(a.GetIdentity(FieldJob), p.Name)
	case ItemPred:
		return a != nil && a.HasItem(p.ID)
	case AreaPred:
		return s != nil && strings.EqualFold(s.GetArea(), p.Name)
	case FlagPred:
		return s != nil && s.HasFlag(p.Name)
	case ComparePred:
		if !p.Valid || a == nil {
			return false
		}
		v, ok := a.GetResource(p.Resource)
		return ok && p.Op.compare(v, p.Value)
	case StatusPred:
		if !p.Valid || a == nil {
			return false
		}
		v, ok := a.GetStatusEffect(p.ID)
		if !ok {
			return false
		}
		return !p.Compare || p.Op.compare(v, p.Value)
	case IdentityPred:
		if a == nil {
			return false
		}
		actual := a.GetIdentity(p.Field)
		if p.Contains {
			return p.Value != "" && strings.Contains(strings.ToLower(actual), strings.ToLower(p.Value))
		}
		return strings.EqualFold(actual, p.Value)
	case TogglePred:
		if a == nil {
			return false
		}
		if p.Toggle == ToggleCruelWorld {
			return a.CruelWorldEnabled()
		}
		return a.IsFatedOne()
	case RarityPred:
		return e.hasAnyOfRarity(p.Rarity, a)
	default:
		return false
	}
}

func (e *Evaluator) hasAnyOfRarity(rarity string, a ActorView) bool {
	if e.Items == nil || a == nil {
		return false
	}
	for _, id := range a.GetItems() {
		if r, ok := e.Items.Rarity(id); ok && strings.EqualFold(r, rarity) {
			return true
		}
	}
	return false
}
