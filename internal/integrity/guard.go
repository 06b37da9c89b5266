package integrity

import (
	"strings"

	"github.com/nhle/noc-desk/internal/model"
)

// MaxAssigned is how many Assigned tickets one user may hold at once.
const MaxAssigned = 3

// ValidateAssignment checks that moving a ticket to status with assignee
// keeps the assignee within MaxAssigned. excludeID names the ticket being
// edited so it does not count against itself. Only the given snapshot is
// consulted.
func ValidateAssignment(status, assignee, excludeID string, all []model.Ticket) error {
	if status != model.StatusAssigned {
		return nil
	}

	assignee = strings.TrimSpace(assignee)
	if assignee == "" {
		return ErrMissingAssignee
	}

	count := 0
	for _, t := range all {
		if !t.IsAssigned() || t.AssignedTo != assignee {
			continue
		}
		if excludeID != "" && t.ID == excludeID {
			continue
		}
		count++
	}

	if count >= MaxAssigned {
		return &CapacityExceededError{Assignee: assignee, Count: count}
	}
	return nil
}
