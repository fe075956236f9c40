// Package content holds the immutable, authored game content: events with their
// choices and weighted results, and the registries (status effects, items,
// skills, pools, forced events, death tables) the engine looks things up in.
//
// Content is loaded once, cached by id, and never mutated during a run.
package content

import (
	"github.com/KH-Mind/tbrr-sub000/pkg/valueexpr"
)

// Event is one authored narrative unit.
type Event struct {
	ID             string            `json:"id" yaml:"id"`
	Title          string            `json:"title" yaml:"title"`
	Tags           []string          `json:"tags,omitempty" yaml:"tags,omitempty"`
	Description    []string          `json:"description,omitempty" yaml:"description,omitempty"`
	Requirements   map[string]string `json:"requirements,omitempty" yaml:"requirements,omitempty"`     // label -> condition; all must hold to draw the event
	RequiredItems  []string          `json:"required_items,omitempty" yaml:"required_items,omitempty"` // all must be owned to draw the event
	Choices        []Choice          `json:"choices,omitempty" yaml:"choices,omitempty"`
	InitialEffects *Effects          `json:"initial_effects,omitempty" yaml:"initial_effects,omitempty"` // applied before any choice is offered
	Next           string            `json:"next,omitempty" yaml:"next,omitempty"`                       // chained event when the result names none
	Boss           bool              `json:"boss,omitempty" yaml:"boss,omitempty"`                       // clearing it descends a floor
	Death          bool              `json:"death,omitempty" yaml:"death,omitempty"`                     // the actor dies once it is shown
	Interaction    *Interaction      `json:"interaction,omitempty" yaml:"interaction,omitempty"`         // runs before any choice is offered
	Images         []string          `json:"images,omitempty" yaml:"images,omitempty"`
	Sound          string            `json:"sound,omitempty" yaml:"sound,omitempty"`
}

// Choice is a selectable action within an Event.
type Choice struct {
	Text        string   `json:"text" yaml:"text"`
	Condition   string   `json:"condition,omitempty" yaml:"condition,omitempty"` // display condition
	APCost      int      `json:"ap_cost,omitempty" yaml:"ap_cost,omitempty"`
	SuccessRate int      `json:"success_rate,omitempty" yaml:"success_rate,omitempty"` // 0-100, used with Success/Failure
	Results     []Result `json:"results,omitempty" yaml:"results,omitempty"`
	Success     *Result  `json:"success,omitempty" yaml:"success,omitempty"`
	Failure     *Result  `json:"failure,omitempty" yaml:"failure,omitempty"`
}

// DerivedResults returns the candidate results for the choice.
// An explicit Results list wins; otherwise the success/failure pair is
// synthesized with chance = SuccessRate and 100 - SuccessRate.
func (c Choice) DerivedResults() []Result {
	if len(c.Results) > 0 {
		return c.Results
	}
	rate := min(max(c.SuccessRate, 0), 100)
	var out []Result
	if c.Success != nil {
		r := *c.Success
		r.Chance = rate
		if r.Type == "" {
			r.Type = ResultSuccess
		}
		out = append(out, r)
	}
	if c.Failure != nil {
		r := *c.Failure
		r.Chance = 100 - rate
		if r.Type == "" {
			r.Type = ResultFailure
		}
		out = append(out, r)
	}
	return out
}

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Result is one weighted outcome of a Choice.
type Result struct {
	Type        string   `json:"type,omitempty" yaml:"type,omitempty"` // free-form tag
	Description []string `json:"description,omitempty" yaml:"description,omitempty"`
	Condition   string   `json:"condition,omitempty" yaml:"condition,omitempty"`
	Chance      int      `json:"chance,omitempty" yaml:"chance,omitempty"`
	DeathCause  string   `json:"death_cause,omitempty" yaml:"death_cause,omitempty"`
	Effects     `yaml:",inline"`
}

// Effects is a bundle of mutations. Every category is optional.
type Effects struct {
	HP    valueexpr.Expr `json:"hp,omitempty" yaml:"hp,omitempty"`
	AP    valueexpr.Expr `json:"ap,omitempty" yaml:"ap,omitempty"`
	Money valueexpr.Expr `json:"money,omitempty" yaml:"money,omitempty"`

	ItemGain       string      `json:"item_gain,omitempty" yaml:"item_gain,omitempty"`
	ItemGains      []string    `json:"item_gains,omitempty" yaml:"item_gains,omitempty"`
	RandomItemGain *RandomPick `json:"random_item_gain,omitempty" yaml:"random_item_gain,omitempty"`
	ItemLoss       string      `json:"item_loss,omitempty" yaml:"item_loss,omitempty"`
	ItemLosses     []string    `json:"item_losses,omitempty" yaml:"item_losses,omitempty"`
	RandomItemLoss *RandomPick `json:"random_item_loss,omitempty" yaml:"random_item_loss,omitempty"`

	SkillGain       string   `json:"skill_gain,omitempty" yaml:"skill_gain,omitempty"`
	SkillGains      []string `json:"skill_gains,omitempty" yaml:"skill_gains,omitempty"`
	RandomSkillGain int      `json:"random_skill_gain,omitempty" yaml:"random_skill_gain,omitempty"` // number of unlearned skills to teach
	SkillLoss       string   `json:"skill_loss,omitempty" yaml:"skill_loss,omitempty"`
	SkillLosses     []string `json:"skill_losses,omitempty" yaml:"skill_losses,omitempty"`

	StatusEffects map[string]int `json:"status_effects,omitempty" yaml:"status_effects,omitempty"`

	Clothing       *string  `json:"clothing,omitempty" yaml:"clothing,omitempty"`
	Job            *string  `json:"job,omitempty" yaml:"job,omitempty"`
	Background     *string  `json:"background,omitempty" yaml:"background,omitempty"`
	BodyType       *string  `json:"body_type,omitempty" yaml:"body_type,omitempty"`
	RaceName       *string  `json:"race_name,omitempty" yaml:"race_name,omitempty"`
	RaceType       *string  `json:"race_type,omitempty" yaml:"race_type,omitempty"`
	Gender         *string  `json:"gender,omitempty" yaml:"gender,omitempty"`
	GenderIdentity *string  `json:"gender_identity,omitempty" yaml:"gender_identity,omitempty"`
	Portrait       *string  `json:"portrait,omitempty" yaml:"portrait,omitempty"`
	Images         []string `json:"images,omitempty" yaml:"images,omitempty"`
	Sound          string   `json:"sound,omitempty" yaml:"sound,omitempty"`
	Expression     string   `json:"expression,omitempty" yaml:"expression,omitempty"` // portrait expression cue

	AddFlags    []string `json:"add_flags,omitempty" yaml:"add_flags,omitempty"`
	RemoveFlags []string `json:"remove_flags,omitempty" yaml:"remove_flags,omitempty"`

	Ending      string       `json:"ending,omitempty" yaml:"ending,omitempty"` // alternate ending id
	Next        string       `json:"next,omitempty" yaml:"next,omitempty"`     // chained event id
	Interaction *Interaction `json:"interaction,omitempty" yaml:"interaction,omitempty"`
}

// RandomPick asks for Count random items of a rarity class.
type RandomPick struct {
	Rarity string `json:"rarity" yaml:"rarity"`
	Count  int    `json:"count,omitempty" yaml:"count,omitempty"` // defaults to 1
}

// N returns the number of picks, at least one.
func (r RandomPick) N() int {
	return max(r.Count, 1)
}

// Interaction delegates a step to an external handler registered for Type.
// The handler returns a result key; Results maps that key to the follow-up.
type Interaction struct {
	Type    string                      `json:"type" yaml:"type"`
	Params  map[string]any              `json:"params,omitempty" yaml:"params,omitempty"`
	Results map[string]SecondaryEffects `json:"results,omitempty" yaml:"results,omitempty"`
}

// SecondaryEffects is the reduced bundle applied after an interaction.
type SecondaryEffects struct {
	Description []string       `json:"description,omitempty" yaml:"description,omitempty"`
	Next        string         `json:"next,omitempty" yaml:"next,omitempty"`
	HP          valueexpr.Expr `json:"hp,omitempty" yaml:"hp,omitempty"`
	Money       valueexpr.Expr `json:"money,omitempty" yaml:"money,omitempty"`
	DeathCause  string         `json:"death_cause,omitempty" yaml:"death_cause,omitempty"`
}
