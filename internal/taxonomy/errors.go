package taxonomy

import "errors"

// Sentinel errors for taxonomy generation.
var (
	// ErrUnknownIndustry indicates no base tree exists for the industry.
	ErrUnknownIndustry = errors.New("unknown industry")
	// ErrEmptyCategoryName indicates a custom category with no name.
	ErrEmptyCategoryName = errors.New("empty category name")
)
