package routing

import "errors"

// ErrNoDefaultRecipient indicates the engine was built without a default
// recipient; every business must have one before triage can run.
var ErrNoDefaultRecipient = errors.New("no default recipient configured")
