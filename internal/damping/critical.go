package damping

// CriticalDamped advances s by dt toward a target whose kinematics describe
// the same instant as s. maxDistance bounds the follower's offset from the
// target; pass math.Inf(1) for no bound.
func CriticalDamped(s State, target Target, smoothTime, dt, maxDistance float64) State {
	next, _ := advance(s, target, dt, maxDistance, criticalSolver(smoothTime))
	return next
}

// CriticalDampedAntiFrameLag is CriticalDamped for a target that was already
// advanced to the end of the tick. With antiOvershoot set, a tick that
// would carry the follower past the target snaps it onto the target instead.
func CriticalDampedAntiFrameLag(s State, target Target, smoothTime, dt, maxDistance float64, antiOvershoot bool) State {
	return antiFrameLag(s, target.Rewind(dt), target, dt, maxDistance, antiOvershoot, criticalSolver(smoothTime))
}

// CriticalDampedAntiFrameLagStableClamp is CriticalDampedAntiFrameLag except
// that for a target with exactly zero velocity the initial offset is
// measured from previousTarget rather than from a reconstruction. The
// follower still ends the tick relative to target. Callers must pass the
// target position given to the previous call.
//
// For non-zero velocity the reconstruction is used, which leaves a small
// frame-rate dependent difference near the clamp boundary.
func CriticalDampedAntiFrameLagStableClamp(s State, target Target, previousTarget, smoothTime, dt, maxDistance float64, antiOvershoot bool) State {
	if target.Velocity != 0 {
		return CriticalDampedAntiFrameLag(s, target, smoothTime, dt, maxDistance, antiOvershoot)
	}
	start := target.Rewind(dt)
	start.Position = previousTarget
	return antiFrameLag(s, start, target, dt, maxDistance, antiOvershoot, criticalSolver(smoothTime))
}

func antiFrameLag(s State, start, end Target, dt, maxDistance float64, antiOvershoot bool, solve offsetSolver) State {
	next, _ := advanceTo(s, start, end, dt, maxDistance, solve)
	if antiOvershoot {
		next, _ = suppressOvershoot(s, start, next, end)
	}
	return next
}
