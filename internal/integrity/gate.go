package integrity

import (
	"time"

	"github.com/nhle/noc-desk/internal/model"
)

// Submission is one ticket write waiting to be checked.
type Submission struct {
	Ticket model.Ticket

	// ExcludeID is the id of the ticket being edited. Empty on create.
	ExcludeID string

	// Existing is the caller's snapshot of tickets of the same kind.
	Existing []model.Ticket

	// ConfirmedDuplicate skips the same-day check. Set only when the user
	// has already seen the matches and chose to go ahead.
	ConfirmedDuplicate bool

	// Now is the submission moment. Its location decides what "same day"
	// means.
	Now time.Time
}

// Verdict carries the advisory findings of a submission that passed.
type Verdict struct {
	Similar []model.Ticket
}

// Check runs the submission checks in order: required fields, same-day
// duplicates (creates only, unless confirmed), then the assignment guard.
// Weekly-similar matches never block and come back in the Verdict.
func Check(s Submission) (Verdict, error) {
	if err := ValidateFields(s.Ticket); err != nil {
		return Verdict{}, err
	}

	if s.ExcludeID == "" && !s.ConfirmedDuplicate {
		if dups := FindSameDayIdentical(s.Ticket, s.Existing, "", s.Now); len(dups) > 0 {
			return Verdict{}, &DuplicateSubmissionError{Matches: dups}
		}
	}

	if err := ValidateAssignment(s.Ticket.Status, s.Ticket.AssignedTo, s.ExcludeID, s.Existing); err != nil {
		return Verdict{}, err
	}

	return Verdict{
		Similar: FindWeeklySimilar(s.Ticket, s.Existing, s.ExcludeID, s.Now),
	}, nil
}
