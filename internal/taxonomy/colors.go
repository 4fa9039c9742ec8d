package taxonomy

// Gmail only accepts label colors from a fixed palette; arbitrary hex values
// are rejected with a 400. Outlook ignores colors on folders, so the palette
// below is the effective color space for the whole system.
const (
	ColorRed    = "#fb4c2f"
	ColorOrange = "#ffad47"
	ColorYellow = "#fad165"
	ColorGreen  = "#16a766"
	ColorTeal   = "#43d692"
	ColorBlue   = "#4a86e8"
	ColorPurple = "#a479e2"
	ColorPink   = "#f691b3"
	ColorGray   = "#999999"
)

// allowedColors is the accepted subset of the Gmail palette.
var allowedColors = map[string]bool{
	ColorRed:    true,
	ColorOrange: true,
	ColorYellow: true,
	ColorGreen:  true,
	ColorTeal:   true,
	ColorBlue:   true,
	ColorPurple: true,
	ColorPink:   true,
	ColorGray:   true,
}

// IsAllowedColor reports whether the color can be sent to the Gmail API.
func IsAllowedColor(color string) bool {
	return allowedColors[color]
}

// SafeColor returns the color if it is provider-safe, otherwise gray.
func SafeColor(color string) string {
	if IsAllowedColor(color) {
		return color
	}
	return ColorGray
}
