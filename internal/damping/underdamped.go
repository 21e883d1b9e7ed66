package damping

// UnderDamped advances s by dt toward a target described at the same
// instant as s. dampingRatio in [0, 1) makes the follower overshoot and ring
// before settling; a ratio of 1 or more falls back to critical damping.
func UnderDamped(s State, target Target, smoothTime, dampingRatio, dt, maxDistance float64) State {
	next, _ := advance(s, target, dt, maxDistance, underDampedSolver(smoothTime, dampingRatio))
	return next
}

// UnderDampedAntiFrameLag is UnderDamped for a target already advanced to
// the end of the tick. There is no anti-overshoot option: ringing is the
// point of an under-damped follower.
func UnderDampedAntiFrameLag(s State, target Target, smoothTime, dampingRatio, dt, maxDistance float64) State {
	next, _ := advanceTo(s, target.Rewind(dt), target, dt, maxDistance, underDampedSolver(smoothTime, dampingRatio))
	return next
}
