package model

// TicketPatch is a partial edit. Nil fields keep the current value.
type TicketPatch struct {
	Status        *string
	Priority      *string
	AssignedTo    *string
	CustomerTrunk *string
	Destination   *string
	IssueTypes    *[]string
	IssueOther    *string
	SID           *string
	Content       *string
	Volume        *Volume
	OpenedVia     *OpenedVia
}

// Apply returns t with the patch applied. t is not modified.
func (p TicketPatch) Apply(t Ticket) Ticket {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&t.Status, p.Status)
	set(&t.Priority, p.Priority)
	set(&t.AssignedTo, p.AssignedTo)
	set(&t.CustomerTrunk, p.CustomerTrunk)
	set(&t.Destination, p.Destination)
	set(&t.IssueOther, p.IssueOther)
	set(&t.SID, p.SID)
	set(&t.Content, p.Content)

	if p.IssueTypes != nil {
		t.IssueTypes = append([]string(nil), (*p.IssueTypes)...)
	}
	if p.Volume != nil {
		t.Volume = *p.Volume
	}
	if p.OpenedVia != nil {
		t.OpenedVia = NormalizeOpenedVia(*p.OpenedVia...)
	}
	return t
}
