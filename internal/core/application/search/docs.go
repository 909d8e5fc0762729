// Package search runs the "looking for an order" experience of each agent.
//
// A Registry owns at most one session per agent. A session ticks for a random
// number of intervals, emitting progress events, then asks the Finder for an
// order. Stop cancels it cooperatively: the loop observes cancellation on every
// tick and once more before the Finder runs, so a stopped search never creates
// an order. However a session ends, including by panic, the agent is back to
// Idle and may start again.
package search
