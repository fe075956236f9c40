package valueexpr

import (
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Expr is a raw value-change expression as authored in content.
// Content may write it as a number or a string; both decode to Expr.
// The empty Expr means "no change".
type Expr string

// UnmarshalJSON accepts a JSON number, string or null.
func (e *Expr) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*e = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*e = Expr(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("value expression must be a number or string: %w", err)
	}
	*e = Expr(n.String())
	return nil
}

// UnmarshalYAML accepts any scalar.
func (e *Expr) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: value expression must be a scalar", node.Line)
	}
	if node.Tag == "!!null" {
		*e = ""
		return nil
	}
	*e = Expr(node.Value)
	return nil
}

// Int returns an Expr for a literal delta.
func Int(n int) Expr {
	return Expr(strconv.Itoa(n))
}
