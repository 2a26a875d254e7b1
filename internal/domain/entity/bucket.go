package entity

import (
	"errors"
	"time"
)

var (
	ErrInvalidCapacity = errors.New("bucket capacity must be positive")
	ErrInvalidRate     = errors.New("refill rate must be positive")
)

// Policy holds the token-bucket parameters shared by every bucket.
// The values are fixed at startup; they are never adjusted per request.
type Policy struct {
	Capacity    int64 // Maximum tokens a bucket can hold (also the initial burst)
	RatePerHour int64 // Tokens granted per whole elapsed hour
}

// Validate checks the policy once at startup; non-positive values are
// configuration errors, not conditions the hot path defends against.
func (p Policy) Validate() error {
	if p.Capacity <= 0 {
		return ErrInvalidCapacity
	}
	if p.RatePerHour <= 0 {
		return ErrInvalidRate
	}
	return nil
}

// BucketState is the record persisted per client bucket.
// The JSON field names are the wire format: "tokens" and "last_updated".
type BucketState struct {
	Tokens     int64     `json:"tokens"`       // Available tokens, 0 ≤ Tokens ≤ Capacity
	LastRefill time.Time `json:"last_updated"` // Anchor of the last successful refill
}

// NewBucketState creates the state for a client never seen before.
// A fresh bucket starts full: first contact gets the whole burst allowance
// instead of a cold-start throttle.
func NewBucketState(p Policy, now time.Time) BucketState {
	return BucketState{
		Tokens:     p.Capacity,
		LastRefill: now,
	}
}

// Available calculates how many tokens the bucket holds at `now`, before any
// consumption, using the Token Bucket refill rule at whole-hour granularity.
//
// The refill is deliberately coarse: sub-hour elapsed time yields zero new
// tokens, so the bucket leaks in hourly steps rather than continuously.
//
// Example:
//
//	BucketState{Tokens: 0, LastRefill: now-3h} with Policy{Capacity: 10, RatePerHour: 1}
//	Available(now) returns 3 (0 + 3 whole hours × 1 token/hour, capped at 10)
func (s BucketState) Available(now time.Time, p Policy) int64 {
	// 1. Whole hours elapsed since the last refill anchor.
	// Truncation means a 59-minute gap contributes nothing.
	elapsedHours := int64(now.Sub(s.LastRefill).Hours())

	// 2. Clock skew can place `now` before the anchor; clamp instead of
	// letting a negative elapsed time drain the bucket.
	if elapsedHours < 0 {
		elapsedHours = 0
	}

	// 3. Add the earned tokens without ever exceeding the capacity.
	available := s.Tokens + elapsedHours*p.RatePerHour
	if available > p.Capacity {
		available = p.Capacity
	}

	return available
}

// Consume attempts to spend one token at `now` and returns the successor state.
//
// When at least one token is available the successor holds the refilled count
// minus one, anchored at `now`, and ok is true: that successor is the state to
// persist. When no token is available ok is false and the receiver is returned
// unchanged — the caller must not write it back, because advancing LastRefill
// on a rejection would reset the refill clock and starve the client.
func (s BucketState) Consume(now time.Time, p Policy) (BucketState, bool) {
	available := s.Available(now, p)
	if available < 1 {
		return s, false
	}
	return BucketState{
		Tokens:     available - 1,
		LastRefill: now,
	}, true
}

// RetryAfter estimates how long until the next whole-hour refill grants a
// token. It returns zero when a token is already available.
func (s BucketState) RetryAfter(now time.Time, p Policy) time.Duration {
	available := s.Available(now, p)
	if available >= 1 {
		return 0
	}

	elapsedHours := int64(now.Sub(s.LastRefill).Hours())
	if elapsedHours < 0 {
		elapsedHours = 0
	}

	// Hours still owed before the count reaches one token, rounded up.
	deficit := 1 - available
	hoursNeeded := (deficit + p.RatePerHour - 1) / p.RatePerHour

	readyAt := s.LastRefill.Add(time.Duration(elapsedHours+hoursNeeded) * time.Hour)
	return readyAt.Sub(now)
}
