package milestones

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"

	"github.com/soteriahealth/soteria/models"
	"github.com/soteriahealth/soteria/stats"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Kind is the statistic a milestone is measured against.
type Kind string

const (
	KindStreak         Kind = "streak"
	KindCompletion     Kind = "completion"
	KindBalance        Kind = "balance"
	KindSpecialization Kind = "specialization"
	KindPain           Kind = "pain"
	KindJourney        Kind = "journey"
	KindSocial         Kind = "social"
	KindConsistency    Kind = "consistency"
)

// AllKinds lists every kind the evaluator understands.
var AllKinds = []Kind{
	KindStreak,
	KindCompletion,
	KindBalance,
	KindSpecialization,
	KindPain,
	KindJourney,
	KindSocial,
	KindConsistency,
}

func (k Kind) Valid() bool {
	for _, v := range AllKinds {
		if v == k {
			return true
		}
	}
	return false
}

// ThresholdType is the unit of a milestone threshold.
type ThresholdType string

const (
	Days       ThresholdType = "days"
	Count      ThresholdType = "count"
	Percentage ThresholdType = "percentage"
	Boolean    ThresholdType = "boolean"
)

func (t ThresholdType) Valid() bool {
	switch t {
	case Days, Count, Percentage, Boolean:
		return true
	}
	return false
}

type Rarity string

const (
	Common    Rarity = "common"
	Uncommon  Rarity = "uncommon"
	Rare      Rarity = "rare"
	Epic      Rarity = "epic"
	Legendary Rarity = "legendary"
)

func (r Rarity) Valid() bool {
	switch r {
	case Common, Uncommon, Rare, Epic, Legendary:
		return true
	}
	return false
}

// Definition is one immutable catalog entry.
type Definition struct {
	ID            string         `yaml:"id" json:"id"`
	Title         string         `yaml:"title" json:"title"`
	Description   string         `yaml:"description" json:"description"`
	Icon          string         `yaml:"icon" json:"icon"`
	Kind          Kind           `yaml:"category" json:"category"`
	Focus         stats.Category `yaml:"focus,omitempty" json:"focus,omitempty"`
	Threshold     int            `yaml:"threshold" json:"threshold"`
	ThresholdType ThresholdType  `yaml:"threshold_type" json:"threshold_type"`
	Rarity        Rarity         `yaml:"rarity" json:"rarity"`
	Order         int            `yaml:"-" json:"sort_order"`
}

// DefinitionError reports an invalid catalog entry.
type DefinitionError struct {
	ID     string
	Field  string
	Reason string
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("milestone %q: invalid %s: %s", e.ID, e.Field, e.Reason)
}

// Validate checks the entry in isolation, including that its kind supports
// its threshold type.
func (d Definition) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return &DefinitionError{ID: d.ID, Field: "id", Reason: "empty"}
	}
	if !d.Kind.Valid() {
		return &DefinitionError{ID: d.ID, Field: "category", Reason: fmt.Sprintf("unknown %q", d.Kind)}
	}
	if !d.ThresholdType.Valid() {
		return &DefinitionError{ID: d.ID, Field: "threshold_type", Reason: fmt.Sprintf("unknown %q", d.ThresholdType)}
	}
	if !d.Rarity.Valid() {
		return &DefinitionError{ID: d.ID, Field: "rarity", Reason: fmt.Sprintf("unknown %q", d.Rarity)}
	}
	if d.Threshold <= 0 {
		return &DefinitionError{ID: d.ID, Field: "threshold", Reason: "must be positive"}
	}
	if d.ThresholdType == Boolean && d.Threshold != 1 {
		return &DefinitionError{ID: d.ID, Field: "threshold", Reason: "boolean milestones use threshold 1"}
	}
	if d.ThresholdType == Percentage && d.Threshold > 100 {
		return &DefinitionError{ID: d.ID, Field: "threshold", Reason: "percentage above 100"}
	}
	if d.Focus != "" && !d.Focus.Valid() {
		return &DefinitionError{ID: d.ID, Field: "focus", Reason: fmt.Sprintf("unknown %q", d.Focus)}
	}
	if _, err := d.Value(Snapshot{}); err != nil {
		return &DefinitionError{ID: d.ID, Field: "threshold_type", Reason: err.Error()}
	}
	return nil
}

// Model converts the entry to its persisted row.
func (d Definition) Model() models.MilestoneDefinition {
	meta := map[string]any{}
	if d.Focus != "" {
		meta["focus"] = d.Focus
	}
	raw, _ := json.Marshal(meta)
	return models.MilestoneDefinition{
		ID:            d.ID,
		Title:         d.Title,
		Description:   d.Description,
		Icon:          d.Icon,
		Category:      string(d.Kind),
		Threshold:     d.Threshold,
		ThresholdType: string(d.ThresholdType),
		Rarity:        string(d.Rarity),
		SortOrder:     d.Order,
		Metadata:      datatypes.JSON(raw),
	}
}

// Catalog is the process-wide, read-only set of definitions.
type Catalog struct {
	defs []Definition
	byID map[string]int
}

type catalogFile struct {
	Milestones []Definition `yaml:"milestones"`
}

// Parse reads and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse milestone catalog: %w", err)
	}

	c := &Catalog{byID: make(map[string]int, len(f.Milestones))}
	for i, d := range f.Milestones {
		d.Order = i
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byID[d.ID]; dup {
			return nil, &DefinitionError{ID: d.ID, Field: "id", Reason: "duplicate"}
		}
		c.byID[d.ID] = len(c.defs)
		c.defs = append(c.defs, d)
	}
	return c, nil
}

// Default returns the embedded catalog. It panics if the embedded file is
// invalid, which the package tests guard against.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(err)
	}
	return c
}

// All returns the definitions in catalog order. The slice is a copy.
func (c *Catalog) All() []Definition {
	out := make([]Definition, len(c.defs))
	copy(out, c.defs)
	return out
}

func (c *Catalog) Get(id string) (Definition, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Definition{}, false
	}
	return c.defs[i], true
}

func (c *Catalog) Len() int { return len(c.defs) }
