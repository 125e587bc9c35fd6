package schedule

// LoadLevel summarizes how booked a doctor's day is. The cut points drive calendar colors
// and must not change.
type LoadLevel string

const (
	LoadFree   LoadLevel = "free"
	LoadLow    LoadLevel = "low"
	LoadMedium LoadLevel = "medium"
	LoadHigh   LoadLevel = "high"
)

func ClassifyLoad(count int) LoadLevel {
	switch {
	case count <= 0:
		return LoadFree
	case count <= 3:
		return LoadLow
	case count <= 6:
		return LoadMedium
	default:
		return LoadHigh
	}
}
