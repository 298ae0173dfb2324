package domain

import (
	"fmt"
	"strings"
)

type Employee struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
}

func (e Employee) DisplayName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// EmployeeName renders an optional joined employee, "-" when absent.
func EmployeeName(e *Employee) string {
	if e == nil {
		return "-"
	}
	return e.DisplayName()
}

type Location struct {
	ID       int64  `json:"id"`
	SiteName string `json:"site_name"`
	Activity string `json:"activity,omitempty"`
}

// DisplayNames maps location ids to a label. Site names shared by more than
// one location get the activity appended so entries stay distinguishable.
func DisplayNames(locs []Location) map[int64]string {
	counts := map[string]int{}
	for _, l := range locs {
		counts[l.SiteName]++
	}
	out := make(map[int64]string, len(locs))
	for _, l := range locs {
		name := l.SiteName
		if counts[l.SiteName] > 1 && strings.TrimSpace(l.Activity) != "" {
			name = fmt.Sprintf("%s (%s)", l.SiteName, l.Activity)
		}
		out[l.ID] = name
	}
	return out
}
