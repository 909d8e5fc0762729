// Package services holds the domain logic that spans aggregates and catalog data.
//
//   - OrderMatcher: turns an agent position and search radius into a playable
//     vendor/destination pair with distance, payout estimate and timer.
//   - ZoneTracker: evaluates a live position against an order's pickup and
//     dropoff geofences.
package services
