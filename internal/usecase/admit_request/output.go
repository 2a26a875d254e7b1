package admit_request

import "time"

// Output represents the result of one admission decision
type Output struct {
	// Allowed indicates whether the request should be permitted to proceed.
	// true = forward to the downstream handler, false = reject with 429
	Allowed bool

	// RemainingTokens shows the number of tokens left in the bucket after this
	// decision. Exposed to clients through the X-RateLimit-Remaining header.
	RemainingTokens int64

	// Limit is the configured bucket capacity.
	// Exposed to clients through the X-RateLimit-Limit header.
	Limit int64

	// RetryAfter estimates how long until the next refill grants a token.
	// Zero when the request is allowed; feeds the Retry-After header otherwise.
	RetryAfter time.Duration
}
