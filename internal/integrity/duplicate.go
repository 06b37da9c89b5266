package integrity

import (
	"strings"
	"time"

	"github.com/nhle/noc-desk/internal/model"
)

// SimilarWindow is how far back FindWeeklySimilar looks.
const SimilarWindow = 7 * 24 * time.Hour

// FindWeeklySimilar returns tickets dated within SimilarWindow of now that
// agree with the candidate on sid, destination and content. A field left
// empty on the candidate matches anything, so a candidate with all three
// empty matches every ticket in the window.
//
// The result is advisory: callers warn and carry on.
func FindWeeklySimilar(candidate model.Ticket, tickets []model.Ticket, excludeID string, now time.Time) []model.Ticket {
	sid := norm(candidate.SID)
	dest := norm(candidate.Destination)
	content := norm(candidate.Content)

	since := now.Add(-SimilarWindow)

	var out []model.Ticket
	for _, t := range tickets {
		if excludeID != "" && t.ID == excludeID {
			continue
		}
		if t.Date.Before(since) {
			continue
		}
		if !wildcardEqual(sid, t.SID) ||
			!wildcardEqual(dest, t.Destination) ||
			!wildcardEqual(content, t.Content) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// FindSameDayIdentical returns tickets dated on the same calendar day as now
// (in now's location) for the same customer, whose trunk, destination and
// issue types agree with the candidate. Empty candidate fields match
// anything; issue types agree when the sets share at least one value.
func FindSameDayIdentical(candidate model.Ticket, tickets []model.Ticket, excludeID string, now time.Time) []model.Ticket {
	loc := now.Location()
	today := now.Format(time.DateOnly)

	customer := strings.TrimSpace(candidate.CustomerID)
	trunk := norm(candidate.CustomerTrunk)
	dest := norm(candidate.Destination)
	issues := issueSet(candidate.IssueTypes)

	var out []model.Ticket
	for _, t := range tickets {
		if excludeID != "" && t.ID == excludeID {
			continue
		}
		if t.Date.In(loc).Format(time.DateOnly) != today {
			continue
		}
		if strings.TrimSpace(t.CustomerID) != customer {
			continue
		}
		if !wildcardEqual(trunk, t.CustomerTrunk) || !wildcardEqual(dest, t.Destination) {
			continue
		}
		if len(issues) > 0 && !intersects(issues, t.IssueTypes) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// wildcardEqual compares a normalized candidate value against other. An
// empty candidate value always matches.
func wildcardEqual(want, other string) bool {
	return want == "" || want == norm(other)
}

func issueSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if v = norm(v); v != "" {
			set[v] = struct{}{}
		}
	}
	return set
}

func intersects(set map[string]struct{}, b []string) bool {
	for _, v := range b {
		if _, ok := set[norm(v)]; ok {
			return true
		}
	}
	return false
}
