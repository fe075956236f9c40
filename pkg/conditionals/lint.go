package conditionals

import "fmt"

// Diagnostic is a content-authoring problem found in a condition expression.
// Lint never changes how an expression evaluates.
type Diagnostic struct {
	Atom    string
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%q: %s", d.Atom, d.Message)
}

// Lint reports atoms that will silently evaluate false at runtime.
func Lint(expr string) []Diagnostic {
	var diags []Diagnostic
	for _, term := range Parse(expr).Terms {
		for _, atom := range term.Atoms {
			switch p := atom.Pred.(type) {
			case UnknownPred:
				if p.Text == "" {
					diags = append(diags, Diagnostic{Atom: atom.Raw, Message: "empty condition atom"})
				} else {
					diags = append(diags, Diagnostic{Atom: atom.Raw, Message: "unknown condition prefix"})
				}
			case ComparePred:
				if !p.Valid {
					diags = append(diags, Diagnostic{Atom: atom.Raw, Message: "comparison value is not an integer"})
				}
			case StatusPred:
				if !p.Valid {
					diags = append(diags, Diagnostic{Atom: atom.Raw, Message: "status effect value is not an integer"})
				}
			}
		}
	}
	return diags
}
