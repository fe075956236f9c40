package effects

import "fmt"

// LineKind routes a line to the right presentation channel.
type LineKind int

const (
	Text LineKind = iota
	Important      // resource, inventory and status changes; content errors
	Image
	Sound
	Expression
)

// Line is one piece of output produced while applying effects.
type Line struct {
	Kind LineKind
	Text string
}

func (l Line) Important() bool {
	return l.Kind == Important
}

func text(format string, args ...any) Line {
	return Line{Kind: Text, Text: fmt.Sprintf(format, args...)}
}

func important(format string, args ...any) Line {
	return Line{Kind: Important, Text: fmt.Sprintf(format, args...)}
}

// ContentError formats an authoring problem for the important channel.
func ContentError(format string, args ...any) Line {
	return Line{Kind: Important, Text: "[content] " + fmt.Sprintf(format, args...)}
}
