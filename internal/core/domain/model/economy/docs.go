// Package economy turns distances and delivery outcomes into money and time:
// the base payout estimate, the final payout with its on-time bonus, and the
// delivery timer. Config is read through a Holder so it can be hot-reloaded.
package economy
