package workflow

import "errors"

var (
	// ErrUnknownTemplate indicates a template version that is not embedded
	ErrUnknownTemplate = errors.New("unknown workflow template")

	// ErrUnresolvedPlaceholder indicates injection left {{TOKEN}} markers in
	// the document. A workflow with unresolved placeholders deploys cleanly
	// and then fails at runtime, so this is fatal at injection time.
	ErrUnresolvedPlaceholder = errors.New("unresolved template placeholder")

	// ErrNilConfig indicates injection was invoked without a config
	ErrNilConfig = errors.New("workflow config is required")
)
