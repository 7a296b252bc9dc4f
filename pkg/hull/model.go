package hull

import (
	"fmt"
	"strings"
)

// OverrideMarker is the reserved prefix for override property keys.
// Overrides are pass-through compiler directives; the exporter emits
// them verbatim.
const OverrideMarker = "$"

// Override is a single pass-through directive attached to a model.
type Override struct {
	Key   string
	Value string
}

// CollisionModel is an ordered sequence of hulls sharing a source
// identity. Hull order is insertion order and is preserved through
// optimization so override metadata stays attached to the correct
// downstream part after splitting.
type CollisionModel struct {
	Name      string
	PartIndex int // -1 until assigned by the partitioner
	Hulls     []*Hull

	overrides []Override
}

// NewModel creates an empty collision model for the named source mesh.
func NewModel(name string) *CollisionModel {
	return &CollisionModel{Name: name, PartIndex: -1}
}

// HullCount returns the number of hulls in the model.
func (m *CollisionModel) HullCount() int {
	return len(m.Hulls)
}

// PartName returns the model name with its zero-padded part suffix, or
// the bare name when no part index has been assigned.
func (m *CollisionModel) PartName() string {
	if m.PartIndex < 0 {
		return m.Name
	}
	return fmt.Sprintf("%s_part_%03d", m.Name, m.PartIndex)
}

// TotalVolume returns the sum of all hull volumes.
func (m *CollisionModel) TotalVolume() float64 {
	var v float64
	for _, h := range m.Hulls {
		v += h.Volume()
	}
	return v
}

// SetOverride attaches an override property. The key must start with
// the reserved marker. Setting an existing key replaces its value in
// place, preserving authoring order.
func (m *CollisionModel) SetOverride(key, value string) error {
	if !strings.HasPrefix(key, OverrideMarker) {
		return fmt.Errorf("override key %q must start with %q", key, OverrideMarker)
	}
	for i, o := range m.overrides {
		if o.Key == key {
			m.overrides[i].Value = value
			return nil
		}
	}
	m.overrides = append(m.overrides, Override{Key: key, Value: value})
	return nil
}

// Overrides returns the override properties in authoring order.
func (m *CollisionModel) Overrides() []Override {
	return append([]Override(nil), m.overrides...)
}

// CopyOverridesFrom replaces m's overrides with a copy of src's.
func (m *CollisionModel) CopyOverridesFrom(src *CollisionModel) {
	m.overrides = append([]Override(nil), src.overrides...)
}

// PropagateOverrides copies the overrides of the representative model
// onto every sibling. This is the explicit propagation step for models
// that were authored once and then split into parts.
func PropagateOverrides(representative *CollisionModel, siblings []*CollisionModel) {
	for _, s := range siblings {
		if s != representative {
			s.CopyOverridesFrom(representative)
		}
	}
}
