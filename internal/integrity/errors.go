package integrity

import (
	"errors"
	"fmt"

	"github.com/nhle/noc-desk/internal/model"
)

// ErrMissingAssignee is returned when a ticket is set to Assigned without
// naming who it is assigned to.
var ErrMissingAssignee = errors.New("assigned tickets need an assignee")

// CapacityExceededError is returned when the assignee already holds the
// maximum number of Assigned tickets.
type CapacityExceededError struct {
	Assignee string
	Count    int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("%s already has %d assigned tickets (limit %d)", e.Assignee, e.Count, MaxAssigned)
}

// MissingRequiredFieldError names the first required field left empty.
type MissingRequiredFieldError struct {
	Field string
}

func (e *MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

// InvalidFieldError is returned when a field holds a value outside its
// allowed set, such as an unknown priority.
type InvalidFieldError struct {
	Field string
	Value string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid value %q for field %q", e.Value, e.Field)
}

// DuplicateSubmissionError blocks a create that matches tickets opened
// earlier the same day. Resubmitting with the duplicate confirmation set
// skips the check.
type DuplicateSubmissionError struct {
	Matches []model.Ticket
}

func (e *DuplicateSubmissionError) Error() string {
	if len(e.Matches) == 1 {
		return fmt.Sprintf("identical ticket %s already opened today", e.Matches[0].TicketNumber)
	}
	return fmt.Sprintf("%d identical tickets already opened today", len(e.Matches))
}

// IsMissingAssignee reports whether err is or wraps ErrMissingAssignee.
func IsMissingAssignee(err error) bool {
	return errors.Is(err, ErrMissingAssignee)
}

// IsCapacityExceeded reports whether err is or wraps a CapacityExceededError.
func IsCapacityExceeded(err error) bool {
	var e *CapacityExceededError
	return errors.As(err, &e)
}

// IsMissingRequiredField reports whether err is or wraps a MissingRequiredFieldError.
func IsMissingRequiredField(err error) bool {
	var e *MissingRequiredFieldError
	return errors.As(err, &e)
}

// IsDuplicate reports whether err is or wraps a DuplicateSubmissionError.
func IsDuplicate(err error) bool {
	var e *DuplicateSubmissionError
	return errors.As(err, &e)
}
