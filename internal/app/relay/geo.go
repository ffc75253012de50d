package relay

// coarseRegion classifies coordinates against a fixed east-Asia bounding box.
// Purely an informational log observation; never user-visible.
func coarseRegion(latitude, longitude float64) string {
	if latitude > 3 && latitude < 53 && longitude > 73 && longitude < 135 {
		return "east-asia"
	}
	return "other"
}
