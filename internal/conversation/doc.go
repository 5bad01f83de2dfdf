// Package conversation implements the multi-turn request collection state
// machine: locator, then start time, then end time, with validation at each
// step and cancellation from any non-terminal state.
package conversation
