// Package order implements the delivery order aggregate and its lifecycle.
//
// An order is created Pending with a pickup deadline (expiresAt). Pickup makes
// it Active and starts the delivery clock; the delivery deadline is twice the
// nominal timer. Deliver completes it and returns the Settlement the caller must
// credit to the agent atomically with saving the order. Cancel and Expire end
// it early. Every transition on a terminal order fails without touching state.
//
// Time never comes from the wall clock here: every time-dependent method takes
// now, so callers inject a clock and tests stay deterministic.
package order
