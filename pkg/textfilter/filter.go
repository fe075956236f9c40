package textfilter

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Censored replaces terms that have no softer wording.
const Censored = "[censored]"

// DefaultTerms softens the harshest wording in event text when extended
// content is turned off.
var DefaultTerms = map[string]string{
	"fuck":        "fudge",
	"shit":        "shoot",
	"damn":        "dang",
	"hell":        "heck",
	"bastard":     "wretch",
	"bitch":       "wretch",
	"bullshit":    "nonsense",
	"goddamn":     "gosh-dang",
	"entrails":    "insides",
	"disembowel":  "wound",
	"disembowels": "wounds",
	"decapitate":  "strike down",
	"decapitated": "struck down",
	"mutilated":   "battered",
	"gore":        "mess",
	"corpse":      "body",
	"corpses":     "bodies",
}

// Filter masks sensitive terms in text.
type Filter struct {
	terms   []string // longest first so phrases win over their parts
	regexes map[string]*regexp.Regexp
	replace map[string]string
}

// New creates a filter for terms mapped to their replacements.
// An empty replacement becomes Censored.
func New(terms map[string]string) *Filter {
	f := &Filter{
		regexes: make(map[string]*regexp.Regexp),
		replace: make(map[string]string),
	}
	for term, repl := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		if repl == "" {
			repl = Censored
		}
		f.terms = append(f.terms, term)
		f.replace[term] = repl
		f.regexes[term] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`)
	}
	sort.Slice(f.terms, func(i, j int) bool {
		if len(f.terms[i]) != len(f.terms[j]) {
			return len(f.terms[i]) > len(f.terms[j])
		}
		return f.terms[i] < f.terms[j]
	})
	return f
}

// NewDefault creates a filter with DefaultTerms.
func NewDefault() *Filter {
	return New(DefaultTerms)
}

// ParseTerms reads "term=replacement" pairs separated by commas.
// A pair without "=" is censored.
func ParseTerms(s string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		term, repl, _ := strings.Cut(pair, "=")
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		out[term] = strings.TrimSpace(repl)
	}
	return out
}

// FilterText replaces every sensitive term in text, keeping the case pattern of the match.
func (f *Filter) FilterText(text string) string {
	if f == nil {
		return text
	}
	result := text
	for _, term := range f.terms {
		repl := f.replace[term]
		result = f.regexes[term].ReplaceAllStringFunc(result, func(match string) string {
			if repl == Censored {
				return repl
			}
			return preserveCase(match, repl)
		})
	}
	return result
}

// Contains reports whether text has any sensitive term.
func (f *Filter) Contains(text string) bool {
	if f == nil {
		return false
	}
	for _, term := range f.terms {
		if f.regexes[term].MatchString(text) {
			return true
		}
	}
	return false
}

// preserveCase applies the case pattern of the original word to the replacement
func preserveCase(original, replacement string) string {
	if original == "" {
		return replacement
	}
	if strings.ToUpper(original) == original {
		return strings.ToUpper(replacement)
	}
	if strings.ToLower(original) == original {
		return strings.ToLower(replacement)
	}
	titleCaser := cases.Title(language.English)
	if titleCaser.String(strings.ToLower(original)) == original {
		return titleCaser.String(replacement)
	}

	// mixed case: copy letter by letter, lowercase past the original's length
	orig := []rune(original)
	out := make([]rune, 0, len(replacement))
	for _, r := range replacement {
		if len(out) < len(orig) && unicode.IsUpper(orig[len(out)]) {
			out = append(out, unicode.ToUpper(r))
		} else {
			out = append(out, unicode.ToLower(r))
		}
	}
	return string(out)
}
