package conditionals

// ActorView provides the minimal interface needed to evaluate conditions against a character.
// It avoids an import cycle with the actor package.
type ActorView interface {
	HasSkill(id string) bool
	HasItem(id string) bool
	GetItems() []string
	// GetResource returns the current value of "hp", "ap" or "money".
	GetResource(name string) (int, bool)
	// GetStatusEffect returns the value of a status effect and whether it is present.
	GetStatusEffect(id string) (int, bool)
	// GetIdentity returns an identity field: gender, gender_identity, clothing, race, job, background.
	GetIdentity(field string) string
	CruelWorldEnabled() bool
	IsFatedOne() bool
}

// SessionView provides the minimal interface needed to evaluate conditions against a session.
type SessionView interface {
	HasFlag(name string) bool
	GetArea() string
}

// ItemCatalog resolves item metadata for rarity checks.
type ItemCatalog interface {
	Rarity(itemID string) (string, bool)
}

// Expr is a parsed condition: true when any Term is true (OR of ANDs).
type Expr struct {
	Terms []Term
}

// Term is a conjunction of atoms.
type Term struct {
	Atoms []Atom
}

// Atom is a single predicate, optionally negated with the "not:" prefix.
type Atom struct {
	Raw     string
	Negated bool
	Pred    Predicate
}

// Predicate is one of the concrete predicate types below.
type Predicate interface {
	predicate()
}

// Op is a numeric comparison operator.
type Op string

const (
	OpGE Op = ">="
	OpLE Op = "<="
	OpGT Op = ">"
	OpLT Op = "<"
	OpEQ Op = "="
)

// Identity fields readable by conditions.
const (
	FieldGender         = "gender"
	FieldGenderIdentity = "gender_identity"
	FieldClothing       = "clothing"
	FieldRace           = "race"
	FieldJob            = "job"
	FieldBackground     = "background"
)

// Toggles readable by conditions.
const (
	ToggleCruelWorld = "cruel_world"
	ToggleFatedOne   = "fated_one"
)

type (
	SkillPred struct{ ID string }
	JobPred   struct{ Name string }
	ItemPred  struct{ ID string }
	AreaPred  struct{ Name string }
	FlagPred  struct{ Name string }

	// ComparePred compares hp, ap or money against a literal.
	// Valid is false when the literal did not parse.
	ComparePred struct {
		Resource string
		Op       Op
		Value    int
		Valid    bool
	}

	// StatusPred checks presence of a status effect, or its value when Compare is set.
	StatusPred struct {
		ID      string
		Compare bool
		Op      Op
		Value   int
		Valid   bool
	}

	// IdentityPred matches an identity field exactly (case-insensitive) or by substring.
	IdentityPred struct {
		Field    string
		Value    string
		Contains bool
	}

	TogglePred struct{ Toggle string }
	RarityPred struct{ Rarity string }

	// UnknownPred is any atom with no recognised prefix. It always evaluates false.
	UnknownPred struct{ Text string }
)

func (SkillPred) predicate()    {}
func (JobPred) predicate()      {}
func (ItemPred) predicate()     {}
func (AreaPred) predicate()     {}
func (FlagPred) predicate()     {}
func (ComparePred) predicate()  {}
func (StatusPred) predicate()   {}
func (IdentityPred) predicate() {}
func (TogglePred) predicate()   {}
func (RarityPred) predicate()   {}
func (UnknownPred) predicate()  {}
