// Package valueexpr resolves value-change expressions into signed integer deltas.
//
// An expression is either a numeric literal ("5", "-3", "2.9") or a symbolic
// keyword. Range keywords ("small_damage", "medium_heal", ...) roll a value in
// a closed range. Target directives ("hp_set:10", "ap_to_half", "hp_to_one",
// "hp_to_percent:50") are only valid for hp and ap and produce the delta that
// moves the current value onto the target.
package valueexpr

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/KH-Mind/tbrr-sub000/pkg/random"
)

// Kind names the resource a value applies to.
type Kind string

const (
	KindHP    Kind = "hp"
	KindAP    Kind = "ap"
	KindMoney Kind = "money"
)

// ErrUnknownKeyword is returned for expressions outside the vocabulary.
// Callers treat the delta as 0 and surface the error as a content diagnostic.
var ErrUnknownKeyword = errors.New("unknown value keyword")

// ActorView is the part of a character needed for target directives.
type ActorView interface {
	GetResource(name string) (int, bool)
	GetResourceMax(name string) (int, bool)
}

type span struct{ lo, hi int }

// keywords is the closed vocabulary of range keywords.
var keywords = map[string]span{
	"tiny_damage":   {-3, -1},
	"small_damage":  {-6, -3},
	"medium_damage": {-12, -7},
	"large_damage":  {-20, -13},
	"huge_damage":   {-35, -21},
	"tiny_heal":     {1, 3},
	"small_heal":    {3, 6},
	"medium_heal":   {7, 12},
	"large_heal":    {13, 20},
	"small_gain":    {5, 15},
	"medium_gain":   {16, 40},
	"large_gain":    {41, 100},
	"small_loss":    {-15, -5},
	"medium_loss":   {-40, -16},
	"large_loss":    {-100, -41},
}

// Parser resolves expressions using a shared random source.
type Parser struct {
	rng random.Source
}

// NewParser creates a parser drawing from rng.
func NewParser(rng random.Source) *Parser {
	return &Parser{rng: rng}
}

// Resolve returns the delta for v applied to kind on the actor.
// An empty expression resolves to 0.
func (p *Parser) Resolve(v Expr, a ActorView, kind Kind) (int, error) {
	raw := strings.TrimSpace(string(v))
	if raw == "" {
		return 0, nil
	}
	if n, ok := literal(raw); ok {
		return n, nil
	}

	word := Normalize(raw)
	if s, ok := keywords[word]; ok {
		return random.Between(p.rng, s.lo, s.hi), nil
	}

	target, ok := directiveTarget(word, a, kind)
	if !ok {
		return 0, fmt.Errorf("%w: %q for %s", ErrUnknownKeyword, raw, kind)
	}
	current, _ := resource(a, kind)
	return target - current, nil
}

// Check validates v for kind without rolling anything.
func Check(v Expr, kind Kind) error {
	raw := strings.TrimSpace(string(v))
	if raw == "" {
		return nil
	}
	if _, ok := literal(raw); ok {
		return nil
	}
	word := Normalize(raw)
	if _, ok := keywords[word]; ok {
		return nil
	}
	if _, ok := directiveTarget(word, nil, kind); ok {
		return nil
	}
	return fmt.Errorf("%w: %q for %s", ErrUnknownKeyword, raw, kind)
}

// Normalize lowercases s and folds spaces and dashes to underscores.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}

func literal(raw string) (int, bool) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(math.Trunc(f)), true
}

// directiveTarget parses "<kind>_set:N", "<kind>_to_half", "<kind>_to_one" and
// "<kind>_to_percent:P". Only hp and ap accept directives.
func directiveTarget(word string, a ActorView, kind Kind) (int, bool) {
	if kind != KindHP && kind != KindAP {
		return 0, false
	}
	rest, ok := strings.CutPrefix(word, string(kind)+"_")
	if !ok {
		return 0, false
	}
	current, _ := resource(a, kind)
	maximum, _ := resourceMax(a, kind)

	switch {
	case rest == "to_half":
		return current / 2, true
	case rest == "to_one":
		return 1, true
	case strings.HasPrefix(rest, "set:"):
		n, err := strconv.Atoi(strings.TrimPrefix(rest, "set:"))
		return n, err == nil
	case strings.HasPrefix(rest, "to_percent:"):
		pct, err := strconv.Atoi(strings.TrimPrefix(rest, "to_percent:"))
		if err != nil {
			return 0, false
		}
		return maximum * pct / 100, true
	}
	return 0, false
}

func resource(a ActorView, kind Kind) (int, bool) {
	if a == nil {
		return 0, false
	}
	return a.GetResource(string(kind))
}

func resourceMax(a ActorView, kind Kind) (int, bool) {
	if a == nil {
		return 0, false
	}
	return a.GetResourceMax(string(kind))
}
