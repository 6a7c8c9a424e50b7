package domain

import "strings"

type Status string

const (
	StatusClear              Status = "clear"
	StatusPartialRestriction Status = "partial_restriction"
	StatusRestricted         Status = "restricted"
	StatusUnknown            Status = "unknown"
)

// PartialRestrictionPercent is the inclusive pass ratio (in percent) at or
// above which a run with failures is still only partially restricted.
const PartialRestrictionPercent = 70

// Title renders the status for people, e.g. "Partial Restriction".
func (s Status) Title() string {
	words := strings.Split(string(s), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func (s Status) Valid() bool {
	switch s {
	case StatusClear, StatusPartialRestriction, StatusRestricted, StatusUnknown:
		return true
	}
	return false
}

// Aggregate reduces outcomes to one verdict. Order does not matter.
func Aggregate(outcomes []Outcome) Status {
	total := len(outcomes)
	if total == 0 {
		return StatusUnknown
	}
	passed := 0
	for _, o := range outcomes {
		if o.Passed {
			passed++
		}
	}
	switch {
	case passed == total:
		return StatusClear
	case passed*100 >= total*PartialRestrictionPercent:
		return StatusPartialRestriction
	default:
		return StatusRestricted
	}
}

// Issues lists the names of failing outcomes in run order.
func Issues(outcomes []Outcome) []string {
	out := []string{}
	for _, o := range outcomes {
		if !o.Passed {
			out = append(out, o.Name)
		}
	}
	return out
}
