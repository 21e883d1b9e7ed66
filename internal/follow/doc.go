// Package follow composes the scalar damping solvers into a 3D follower.
//
// A Tracker owns its position, velocity and previous target position and
// advances all three axes together on every step: the target acceleration
// is limited first, the clamp shape is resolved against the current
// follower position, then each axis runs its scalar solver. Callers never
// see a partially updated state.
//
// Trackers are not safe for concurrent use. Use one Tracker per followed
// entity; separate Trackers share nothing and may be stepped in parallel.
package follow
