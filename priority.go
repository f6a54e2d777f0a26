package events

import "strconv"

// Priority orders listeners of the same event. Lower values run first.
type Priority int

const (
	PriorityHigh   Priority = 10
	PriorityNormal Priority = 100
	PriorityLow    Priority = 200
)

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityNormal:
		return "normal"
	case PriorityLow:
		return "low"
	default:
		return strconv.Itoa(int(p))
	}
}

// ParsePriority maps the conventional names "high", "normal" and "low" to their
// values. Anything else is rejected.
func ParsePriority(name string) (Priority, bool) {
	switch name {
	case "high":
		return PriorityHigh, true
	case "normal":
		return PriorityNormal, true
	case "low":
		return PriorityLow, true
	default:
		return 0, false
	}
}
