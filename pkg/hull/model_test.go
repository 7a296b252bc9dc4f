package hull

import (
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/hullgen/pkg/geom"
)

func testModel(t *testing.T, name string, hullCount int) *CollisionModel {
	t.Helper()
	m := NewModel(name)
	for i := 0; i < hullCount; i++ {
		h, err := Build(cubePoints(v3.Vec{X: float64(i) * 3}, 1), geom.DefaultTolerance)
		require.NoError(t, err)
		m.Hulls = append(m.Hulls, h)
	}
	return m
}

func TestPartName(t *testing.T) {
	m := NewModel("crate_phys")
	assert.Equal(t, "crate_phys", m.PartName())
	m.PartIndex = 0
	assert.Equal(t, "crate_phys_part_000", m.PartName())
	m.PartIndex = 12
	assert.Equal(t, "crate_phys_part_012", m.PartName())
}

func TestSetOverride(t *testing.T) {
	m := NewModel("crate_phys")
	require.NoError(t, m.SetOverride("$concave", ""))
	require.NoError(t, m.SetOverride("$mass", "40"))
	require.NoError(t, m.SetOverride("$mass", "55"), "replacing a key is allowed")

	err := m.SetOverride("mass", "40")
	assert.Error(t, err, "keys without the reserved marker are rejected")

	got := m.Overrides()
	require.Len(t, got, 2)
	assert.Equal(t, Override{Key: "$concave", Value: ""}, got[0])
	assert.Equal(t, Override{Key: "$mass", Value: "55"}, got[1], "replacement preserves authoring order")
}

func TestOverridesReturnsCopy(t *testing.T) {
	m := NewModel("crate_phys")
	require.NoError(t, m.SetOverride("$mass", "40"))
	got := m.Overrides()
	got[0].Value = "tampered"
	assert.Equal(t, "40", m.Overrides()[0].Value)
}

func TestPropagateOverrides(t *testing.T) {
	rep := testModel(t, "crate_phys", 1)
	require.NoError(t, rep.SetOverride("$mass", "40"))
	require.NoError(t, rep.SetOverride("$surfaceprop", "metal"))

	a := testModel(t, "crate_phys", 1)
	b := testModel(t, "crate_phys", 1)
	require.NoError(t, b.SetOverride("$stale", "x"))

	PropagateOverrides(rep, []*CollisionModel{rep, a, b})

	assert.Equal(t, rep.Overrides(), a.Overrides())
	assert.Equal(t, rep.Overrides(), b.Overrides(), "propagation replaces stale overrides")
	assert.Len(t, rep.Overrides(), 2, "representative itself is untouched")
}

func TestTotalVolume(t *testing.T) {
	m := testModel(t, "crate_phys", 3)
	assert.InDelta(t, 3.0, m.TotalVolume(), 1e-9)
	assert.Equal(t, 3, m.HullCount())
}
