// Package damping solves one-dimensional second-order tracking in closed
// form.
//
// The follower's offset from the target obeys a damped spring ODE whose
// natural frequency is ω = 2/smoothTime. Over one tick the target is
// assumed to move with constant acceleration, so the offset has an exact
// solution and no numerical integration is needed: critical damping gives
// (C1 + C2·t)·e^(−ωt), under-damping gives e^(αt)·(C1·cos βt + C2·sin βt).
//
// Every solver takes the follower State by value and returns the new State,
// so position and velocity are always observed together.
//
// Variants:
//   - plain: target kinematics describe the start of the tick.
//   - anti-frame-lag: target kinematics were already advanced by dt; the
//     start-of-tick target is reconstructed before solving.
//   - stable clamp: like anti-frame-lag, but a target reported with exactly
//     zero velocity is measured against the caller's previous target
//     position, which keeps clamped followers still at any frame rate.
//
// smoothTime must be positive and the damping ratio of the under-damped
// solvers must lie in [0, 1). Those are configuration preconditions checked
// by callers (see follow.Config.Validate); the solvers do not re-check them.
package damping
