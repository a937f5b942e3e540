package sanitizer

const (
	MinPriority = 0

	MaxPriority = 100000
)

func NormalizePriority(priority int) int {
	if priority < MinPriority {
		return MinPriority
	}
	if priority > MaxPriority {
		return MaxPriority
	}
	return priority
}

// NormalizePercentage clamps a court share into (0, 100]. Non-positive
// input falls back to full occupancy.
func NormalizePercentage(pct float64) float64 {
	if pct <= 0 {
		return 100
	}
	if pct > 100 {
		return 100
	}
	return pct
}
