package classify

import "errors"

// Sentinel errors for classification.
var (
	// ErrNilMessage indicates Classify was called without a message.
	ErrNilMessage = errors.New("nil message")
	// ErrNilTaxonomy indicates the classifier was built without a taxonomy.
	ErrNilTaxonomy = errors.New("nil taxonomy")
)
