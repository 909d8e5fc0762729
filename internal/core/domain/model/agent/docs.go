// Package agent models the player side of the game: last known position,
// search radius and earnings.
package agent
