package admit_request

import "errors"

// ErrMissingIdentity indicates the request carried no client identity.
// The caller maps this to an unauthenticated outcome before any store access.
var ErrMissingIdentity = errors.New("missing client identity")

// Input represents the input data for an admission decision (DTO - Data Transfer Object)
type Input struct {
	// Identity is the opaque client identity supplied by the authentication
	// collaborator. Only its hash ever reaches the store.
	Identity string
}

// Validate validates the input data following Single Responsibility Principle
func (i Input) Validate() error {
	if i.Identity == "" {
		return ErrMissingIdentity
	}
	return nil
}
