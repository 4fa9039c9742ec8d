package types

// RemoteLabel is a label or folder as it exists in the mail provider.
// Path uses the same "Parent/Child" form as taxonomy paths. Color is empty
// for providers whose folders carry no color.
type RemoteLabel struct {
	ID    string `json:"id"`
	Path  string `json:"path"`
	Color string `json:"color,omitempty"`
}
