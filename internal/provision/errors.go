package provision

import "errors"

var (
	// ErrNilTaxonomy indicates provisioning was invoked without a taxonomy
	ErrNilTaxonomy = errors.New("taxonomy is required")

	// ErrParentNotProvisioned indicates a child label was processed before
	// its parent had a provider ID. Plans are ordered parent-first, so this
	// is an internal consistency failure.
	ErrParentNotProvisioned = errors.New("parent label has no provider ID")
)
