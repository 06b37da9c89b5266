package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/nhle/noc-desk/internal/model"
)

// NewTicket returns a ticket that passes field validation, dated at date.
// Options adjust it further.
func NewTicket(date time.Time, opts ...func(*model.Ticket)) model.Ticket {
	id := uuid.NewString()
	t := model.Ticket{
		ID:            id,
		TicketNumber:  model.TicketNumber(date, id),
		Kind:          model.KindSMS,
		Status:        model.StatusUnassigned,
		Priority:      model.PriorityMedium,
		CustomerID:    "C1",
		CustomerTrunk: "T1",
		Volume:        "100",
		Date:          date,
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// AssignedTo sets the ticket to Assigned for user.
func AssignedTo(user string) func(*model.Ticket) {
	return func(t *model.Ticket) {
		t.Status = model.StatusAssigned
		t.AssignedTo = user
	}
}
