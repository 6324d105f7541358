package domain

// Status is the staleness classification of a maintenance item.
// It is always derived from the item's service date and never stored.
type Status string

const (
	StatusGood    Status = "good"
	StatusWarning Status = "warning"
	StatusReplace Status = "replace"
)

func (s Status) String() string {
	return string(s)
}

// Color is the dashboard color used for the status badge.
func (s Status) Color() string {
	switch s {
	case StatusReplace:
		return "red"
	case StatusWarning:
		return "yellow"
	default:
		return "green"
	}
}

// IsNotifiable reports whether the status can trigger an email.
func (s Status) IsNotifiable() bool {
	return s == StatusWarning || s == StatusReplace
}

// Severity orders statuses from good (0) to replace (2).
func (s Status) Severity() int {
	switch s {
	case StatusReplace:
		return 2
	case StatusWarning:
		return 1
	default:
		return 0
	}
}
