// Package world provides simple geometric collaborators for the follow
// pipeline: straight wall segments that answer obstruction casts and a rail
// channel that acts as an effector field. The sandbox command and tests use
// them in place of a host engine's physics and field services.
package world
