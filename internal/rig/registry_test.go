package rig

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestRegistryMembership(t *testing.T) {
	t.Parallel()
	reg := NewRegistry()

	a, err := New(testConfig(), r3.Vec{})
	require.NoError(t, err)
	b, err := New(testConfig(), r3.Vec{X: 1})
	require.NoError(t, err)

	idA := reg.Add(a)
	idB := reg.Add(b)
	assert.True(t, strings.HasPrefix(idA, "rig_"))
	assert.NotEqual(t, idA, idB)
	assert.Equal(t, 2, reg.Len())

	got, ok := reg.Get(idB)
	require.True(t, ok)
	assert.Same(t, b, got)

	ids := reg.IDs()
	assert.ElementsMatch(t, []string{idA, idB}, ids)
	assert.IsIncreasing(t, ids)

	assert.True(t, reg.Remove(idA))
	assert.False(t, reg.Remove(idA))
	_, ok = reg.Get(idA)
	assert.False(t, ok)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistryStepAll(t *testing.T) {
	t.Parallel()
	reg := NewRegistry()
	reg.MaxParallel = 2

	// Each registered rig has an identical twin stepped serially.
	targets := make(map[string]Kinematics)
	twins := make(map[string]*Rig)
	for i := 0; i < 5; i++ {
		spawn := r3.Vec{X: float64(i)}
		r, err := New(testConfig(), spawn)
		require.NoError(t, err)
		twin, err := New(testConfig(), spawn)
		require.NoError(t, err)

		id := reg.Add(r)
		twins[id] = twin
		targets[id] = Kinematics{Position: r3.Vec{X: float64(i), Y: 5}, Velocity: r3.Vec{Y: 1}}
	}

	for step := 0; step < 3; step++ {
		got, err := reg.StepAll(context.Background(), targets, 0.1)
		require.NoError(t, err)
		require.Len(t, got, len(targets))
		for id, pos := range got {
			assert.Equal(t, twins[id].Tick(targets[id], 0.1), pos)
		}
	}
}

func TestRegistryStepAllErrors(t *testing.T) {
	t.Parallel()
	reg := NewRegistry()
	r, err := New(testConfig(), r3.Vec{})
	require.NoError(t, err)
	id := reg.Add(r)

	_, err = reg.StepAll(context.Background(), map[string]Kinematics{"rig_missing": {}}, 0.1)
	require.ErrorIs(t, err, ErrUnknownRig)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = reg.StepAll(ctx, map[string]Kinematics{id: {Position: r3.Vec{X: 1}}}, 0.1)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, r3.Vec{}, r.Position(), "cancelled step leaves rigs untouched")
}
