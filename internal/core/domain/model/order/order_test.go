package order_test

import (
	"testing"
	"time"

	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/economy"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/kernel"
	"github.com/RuslanFatikhov/q-ryer/internal/core/domain/model/order"
	"github.com/RuslanFatikhov/q-ryer/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func point(t *testing.T, lat, lon float64) kernel.GeoPoint {
	t.Helper()
	p, err := kernel.NewGeoPoint(lat, lon)
	require.NoError(t, err)
	return p
}

func draft(t *testing.T, timerSeconds int) order.Draft {
	t.Helper()
	return order.Draft{
		AgentID:        kernel.NewUUID(),
		PickupName:     "Cafe Central",
		Pickup:         point(t, 43.2389, 76.8897),
		DropoffAddress: "Abay Ave 10",
		Dropoff:        point(t, 43.2569, 76.8897),
		DistanceKm:     2.0,
		TimerSeconds:   timerSeconds,
		Amount:         4.10,
	}
}

func newOrder(t *testing.T, timerSeconds int) *order.Order {
	t.Helper()
	o, err := order.NewOrder(kernel.NewUUID(), draft(t, timerSeconds), t0, time.Hour)
	require.NoError(t, err)
	return o
}

func pickedUp(t *testing.T, timerSeconds int) *order.Order {
	t.Helper()
	o := newOrder(t, timerSeconds)
	require.NoError(t, o.Pickup(t0))
	return o
}

func TestNewOrder(t *testing.T) {
	t.Run("creates a pending order with a pickup deadline", func(t *testing.T) {
		id := kernel.NewUUID()
		d := draft(t, 1740)

		o, err := order.NewOrder(id, d, t0, time.Hour)

		require.NoError(t, err)
		require.NoError(t, o.Validate())
		assert.True(t, o.ID().IsEqual(id))
		assert.True(t, o.AgentID().IsEqual(d.AgentID))
		assert.Equal(t, order.Pending, o.Status())
		assert.Equal(t, t0.Add(time.Hour), o.ExpiresAt())
		assert.Equal(t, t0, o.CreatedAt())
		assert.Nil(t, o.PickupAt())
		assert.Nil(t, o.DeliveredAt())
		assert.Equal(t, 1740, o.TimerSeconds())
		assert.InDelta(t, 4.10, o.Amount(), 1e-9)
		assert.Equal(t, "Cafe Central", o.PickupName())
		assert.Equal(t, "Abay Ave 10", o.DropoffAddress())
	})

	t.Run("joins every validation error", func(t *testing.T) {
		d := order.Draft{DistanceKm: -1, TimerSeconds: 0, Amount: -2}

		o, err := order.NewOrder(kernel.UUID{}, d, t0, 0)

		require.Error(t, err)
		assert.Nil(t, o)
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Contains(t, err.Error(), "UUID must be created")
		assert.Contains(t, err.Error(), "agent id")
		assert.Contains(t, err.Error(), "pickup name")
		assert.Contains(t, err.Error(), "dropoff address")
		assert.Contains(t, err.Error(), "timer seconds")
		assert.Contains(t, err.Error(), "pickup timeout")
	})
}

func TestOrder_Validate(t *testing.T) {
	var nilOrder *order.Order
	assert.Equal(t, order.ErrOrderIsNotConstructed, nilOrder.Validate())

	var zero order.Order
	assert.Equal(t, order.ErrOrderIsNotConstructed, zero.Validate())
}

func TestOrder_Pickup(t *testing.T) {
	t.Run("activates a pending order", func(t *testing.T) {
		o := newOrder(t, 600)
		at := t0.Add(10 * time.Minute)

		require.NoError(t, o.Pickup(at))

		assert.Equal(t, order.Active, o.Status())
		require.NotNil(t, o.PickupAt())
		assert.Equal(t, at, *o.PickupAt())
		assert.Equal(t, at, o.UpdatedAt())
	})

	t.Run("fails when already picked up", func(t *testing.T) {
		o := pickedUp(t, 600)

		require.ErrorIs(t, o.Pickup(t0.Add(time.Minute)), order.ErrAlreadyPickedUp)
		assert.Equal(t, t0, *o.PickupAt())
	})

	t.Run("fails when not pending", func(t *testing.T) {
		o := newOrder(t, 600)
		require.NoError(t, o.Cancel("", t0))

		require.ErrorIs(t, o.Pickup(t0), order.ErrNotPending)
		assert.Equal(t, order.Cancelled, o.Status())
		assert.Nil(t, o.PickupAt())
	})

	t.Run("fails at the pickup deadline", func(t *testing.T) {
		o := newOrder(t, 600)

		require.ErrorIs(t, o.Pickup(t0.Add(time.Hour)), order.ErrExpired)
		assert.Equal(t, order.Pending, o.Status())
	})
}

func TestOrder_Deliver(t *testing.T) {
	cfg := economy.DefaultConfig()

	t.Run("on time delivery earns the bonus", func(t *testing.T) {
		o := pickedUp(t, 600)

		s, err := o.Deliver(t0.Add(500*time.Second), cfg)

		require.NoError(t, err)
		assert.True(t, s.Payout.OnTime)
		assert.InDelta(t, cfg.OnTimeBonus, s.Payout.BonusAmount, 1e-9)
		assert.InDelta(t, 5.10, s.Payout.Total, 1e-9)
		assert.True(t, s.AgentID.IsEqual(o.AgentID()))
		assert.True(t, s.OrderID.IsEqual(o.ID()))
		assert.Equal(t, order.Completed, o.Status())
		assert.InDelta(t, 5.10, o.Amount(), 1e-9)
		require.NotNil(t, o.DeliveredAt())
	})

	t.Run("delivery exactly at the timer is on time", func(t *testing.T) {
		o := pickedUp(t, 600)

		s, err := o.Deliver(t0.Add(600*time.Second), cfg)

		require.NoError(t, err)
		assert.True(t, s.Payout.OnTime)
	})

	t.Run("late delivery completes without the bonus", func(t *testing.T) {
		o := pickedUp(t, 600)

		s, err := o.Deliver(t0.Add(1300*time.Second), cfg)

		require.NoError(t, err)
		assert.False(t, s.Payout.OnTime)
		assert.Zero(t, s.Payout.BonusAmount)
		assert.InDelta(t, 4.10, o.Amount(), 1e-9)
	})

	t.Run("fails after expiry fired", func(t *testing.T) {
		o := pickedUp(t, 600)
		expired, err := o.Expire(t0.Add(1300 * time.Second))
		require.NoError(t, err)
		require.True(t, expired)

		_, err = o.Deliver(t0.Add(1300*time.Second), cfg)

		require.ErrorIs(t, err, order.ErrNotActive)
		require.ErrorIs(t, err, order.ErrExpired)
		assert.Equal(t, order.Expired, o.Status())
		assert.Nil(t, o.DeliveredAt())
	})

	t.Run("fails on a pending order", func(t *testing.T) {
		o := newOrder(t, 600)

		_, err := o.Deliver(t0, cfg)

		require.ErrorIs(t, err, order.ErrNotActive)
		assert.Equal(t, order.Pending, o.Status())
	})

	t.Run("second delivery fails and keeps the first payout", func(t *testing.T) {
		o := pickedUp(t, 600)
		_, err := o.Deliver(t0.Add(time.Minute), cfg)
		require.NoError(t, err)
		amount := o.Amount()

		_, err = o.Deliver(t0.Add(time.Hour), cfg)

		require.ErrorIs(t, err, order.ErrAlreadyDelivered)
		assert.InDelta(t, amount, o.Amount(), 1e-9)
	})

	t.Run("restored active order without pickup time cannot be delivered", func(t *testing.T) {
		s := newOrder(t, 600).Snapshot()
		s.Status = order.Active
		o, err := order.RestoreOrder(s)
		require.NoError(t, err)

		_, err = o.Deliver(t0, cfg)

		require.ErrorIs(t, err, order.ErrNotPickedUp)
	})
}

func TestOrder_Cancel(t *testing.T) {
	t.Run("cancels pending and active orders", func(t *testing.T) {
		pending := newOrder(t, 600)
		require.NoError(t, pending.Cancel("shift_ended", t0))
		assert.Equal(t, order.Cancelled, pending.Status())
		assert.Equal(t, "shift_ended", pending.CancelReason())

		active := pickedUp(t, 600)
		require.NoError(t, active.Cancel("  ", t0))
		assert.Equal(t, order.DefaultCancelReason, active.CancelReason())
	})

	t.Run("cancels an expired order and records the reason", func(t *testing.T) {
		o := newOrder(t, 600)
		expired, err := o.Expire(t0.Add(2 * time.Hour))
		require.NoError(t, err)
		require.True(t, expired)

		require.NoError(t, o.Cancel("shift_ended", t0.Add(2*time.Hour+time.Minute)))

		assert.Equal(t, order.Cancelled, o.Status())
		assert.Equal(t, "shift_ended", o.CancelReason())
		assert.Equal(t, t0.Add(2*time.Hour+time.Minute), o.UpdatedAt())
	})

	t.Run("fails on completed and cancelled orders", func(t *testing.T) {
		completed := pickedUp(t, 600)
		_, err := completed.Deliver(t0, economy.DefaultConfig())
		require.NoError(t, err)

		cancelled := newOrder(t, 600)
		require.NoError(t, cancelled.Cancel("", t0))

		for _, o := range []*order.Order{completed, cancelled} {
			before := o.Status()
			require.ErrorIs(t, o.Cancel("again", t0), order.ErrAlreadyTerminal)
			assert.Equal(t, before, o.Status())
		}
	})
}

func TestOrder_Expire(t *testing.T) {
	t.Run("not due while the pickup deadline is ahead", func(t *testing.T) {
		o := newOrder(t, 600)

		expired, err := o.Expire(t0.Add(59 * time.Minute))

		require.ErrorIs(t, err, order.ErrNotDue)
		assert.False(t, expired)
		assert.Equal(t, order.Pending, o.Status())
	})

	t.Run("expires a pending order at the pickup deadline", func(t *testing.T) {
		o := newOrder(t, 600)

		expired, err := o.Expire(t0.Add(time.Hour))

		require.NoError(t, err)
		assert.True(t, expired)
		assert.Equal(t, order.Expired, o.Status())
	})

	t.Run("picked up orders use the doubled delivery deadline", func(t *testing.T) {
		o := pickedUp(t, 600)

		_, err := o.Expire(t0.Add(1199 * time.Second))
		require.ErrorIs(t, err, order.ErrNotDue)

		expired, err := o.Expire(t0.Add(1200 * time.Second))
		require.NoError(t, err)
		assert.True(t, expired)
	})

	t.Run("is a no-op on terminal orders", func(t *testing.T) {
		o := pickedUp(t, 600)
		_, err := o.Deliver(t0.Add(time.Minute), economy.DefaultConfig())
		require.NoError(t, err)

		expired, err := o.Expire(t0.Add(48 * time.Hour))

		require.NoError(t, err)
		assert.False(t, expired)
		assert.Equal(t, order.Completed, o.Status())
	})
}

func TestOrder_TimeRemaining(t *testing.T) {
	t.Run("pending counts down to expiresAt", func(t *testing.T) {
		o := newOrder(t, 600)

		assert.Equal(t, time.Hour, o.TimeRemaining(t0))
		assert.Equal(t, 3599, o.TimeRemainingSeconds(t0.Add(500*time.Millisecond)))
		assert.Zero(t, o.TimeRemaining(t0.Add(2*time.Hour)))
	})

	t.Run("picked up counts down to twice the timer", func(t *testing.T) {
		o := pickedUp(t, 600)

		assert.Equal(t, 1200*time.Second, o.TimeRemaining(t0))
		assert.Equal(t, 700*time.Second, o.TimeRemaining(t0.Add(500*time.Second)))
		assert.Equal(t, t0.Add(1200*time.Second), o.Deadline())
	})

	t.Run("terminal orders have nothing left", func(t *testing.T) {
		o := newOrder(t, 600)
		require.NoError(t, o.Cancel("", t0))

		assert.Zero(t, o.TimeRemaining(t0))
		assert.False(t, o.IsExpired(t0))
	})

	t.Run("never increases as the clock advances", func(t *testing.T) {
		o := pickedUp(t, 600)
		prev := o.TimeRemaining(t0)
		for step := range 60 {
			now := t0.Add(time.Duration(step*30) * time.Second)
			cur := o.TimeRemaining(now)
			assert.LessOrEqual(t, cur, prev)
			assert.GreaterOrEqual(t, cur, time.Duration(0))
			prev = cur
		}
		assert.Zero(t, prev)
	})
}

func TestOrder_IsExpired(t *testing.T) {
	o := newOrder(t, 600)

	assert.False(t, o.IsExpired(t0))
	assert.True(t, o.IsExpired(t0.Add(time.Hour)))

	_, err := o.Expire(t0.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, o.IsExpired(t0.Add(time.Hour)))
}

func TestRestoreOrder(t *testing.T) {
	t.Run("round trips a snapshot", func(t *testing.T) {
		o := pickedUp(t, 600)

		restored, err := order.RestoreOrder(o.Snapshot())

		require.NoError(t, err)
		assert.Equal(t, o.Snapshot(), restored.Snapshot())
	})

	t.Run("rejects delivered at on a non completed order", func(t *testing.T) {
		s := pickedUp(t, 600).Snapshot()
		at := t0
		s.DeliveredAt = &at

		_, err := order.RestoreOrder(s)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Contains(t, err.Error(), "delivered at")
	})

	t.Run("rejects pickup at on a pending order", func(t *testing.T) {
		s := newOrder(t, 600).Snapshot()
		at := t0
		s.PickupAt = &at

		_, err := order.RestoreOrder(s)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		s := newOrder(t, 600).Snapshot()
		s.Status = order.Unknown

		_, err := order.RestoreOrder(s)

		require.Error(t, err)
	})
}
