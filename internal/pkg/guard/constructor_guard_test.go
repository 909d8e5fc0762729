package guard_test

import (
	"errors"
	"testing"

	"github.com/RuslanFatikhov/q-ryer/internal/pkg/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorGuard_Validate(t *testing.T) {
	errNotConstructed := errors.New("zone must be created via NewZone")

	t.Run("constructed guard passes", func(t *testing.T) {
		g := guard.NewConstructorGuard()

		require.NoError(t, g.Validate(errNotConstructed))
		require.NoError(t, g.Validate(nil))
	})

	t.Run("zero guard returns the given error", func(t *testing.T) {
		var g guard.ConstructorGuard

		err := g.Validate(errNotConstructed)

		assert.Equal(t, errNotConstructed, err)
	})

	t.Run("zero guard falls back to the default error", func(t *testing.T) {
		var g guard.ConstructorGuard

		assert.Equal(t, guard.ErrDefaultConstructorGuard, g.Validate(nil))
	})
}

func TestConstructorGuard_EmbeddedInValueObject(t *testing.T) {
	type zone struct {
		radiusM float64
		guard   guard.ConstructorGuard
	}
	errZone := errors.New("zone must be created via newZone")
	newZone := func(radiusM float64) (zone, error) {
		if radiusM <= 0 {
			return zone{}, errors.New("radius must be positive")
		}
		return zone{radiusM: radiusM, guard: guard.NewConstructorGuard()}, nil
	}

	z, err := newZone(30)
	require.NoError(t, err)
	require.NoError(t, z.guard.Validate(errZone))

	bad, err := newZone(-1)
	require.Error(t, err)
	assert.Equal(t, errZone, bad.guard.Validate(errZone))
}
