package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TicketKind identifies which desk a ticket belongs to.
type TicketKind string

const (
	KindSMS   TicketKind = "sms"
	KindVoice TicketKind = "voice"
)

// Kinds lists every ticket kind the desk works with.
var Kinds = []TicketKind{KindSMS, KindVoice}

// Ticket status values as stored by the backend.
const (
	StatusUnassigned     = "Unassigned"
	StatusAssigned       = "Assigned"
	StatusAwaitingVendor = "Awaiting Vendor"
	StatusAwaitingClient = "Awaiting Client"
	StatusAwaitingAM     = "Awaiting AM"
	StatusResolved       = "Resolved"
	StatusUnresolved     = "Unresolved"
)

// Statuses lists every known status in display order.
var Statuses = []string{
	StatusUnassigned,
	StatusAssigned,
	StatusAwaitingVendor,
	StatusAwaitingClient,
	StatusAwaitingAM,
	StatusResolved,
	StatusUnresolved,
}

// Priority values as stored by the backend.
const (
	PriorityUrgent = "Urgent"
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// Priorities lists every known priority from most to least pressing.
var Priorities = []string{PriorityUrgent, PriorityHigh, PriorityMedium, PriorityLow}

// Opened-via channel values.
const (
	OpenedViaMonitoring = "Monitoring"
	OpenedViaAM         = "AM"
	OpenedViaTeams      = "Teams"
	OpenedViaEmail      = "Email"
)

// Ticket is the client-side working copy of an SMS or voice ticket.
// The backend is the source of truth for every field.
type Ticket struct {
	ID            string     `json:"id"`
	TicketNumber  string     `json:"ticket_number"`
	Kind          TicketKind `json:"kind,omitempty"`
	Status        string     `json:"status" validate:"required,oneof=Unassigned Assigned 'Awaiting Vendor' 'Awaiting Client' 'Awaiting AM' Resolved Unresolved"`
	Priority      string     `json:"priority" validate:"required,oneof=Urgent High Medium Low"`
	AssignedTo    string     `json:"assigned_to,omitempty"`
	CustomerID    string     `json:"customer_id" validate:"required"`
	Customer      string     `json:"customer,omitempty"`
	CustomerTrunk string     `json:"customer_trunk,omitempty" validate:"required"`
	Destination   string     `json:"destination,omitempty"`
	IssueTypes    []string   `json:"issue_types,omitempty"`
	IssueOther    string     `json:"issue_other,omitempty"`
	SID           string     `json:"sid,omitempty"`
	Content       string     `json:"content,omitempty"`
	Volume        Volume     `json:"volume" validate:"required"`
	OpenedVia     OpenedVia  `json:"opened_via"`
	Date          time.Time  `json:"date"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
	CreatedBy     string     `json:"created_by,omitempty"`
}

// IsAssigned reports whether the ticket counts against its assignee's workload.
func (t Ticket) IsAssigned() bool {
	return t.Status == StatusAssigned && t.AssignedTo != ""
}

// UnmarshalJSON accepts the backend's ISO-8601 timestamps, which may or may
// not carry a zone offset.
func (t *Ticket) UnmarshalJSON(data []byte) error {
	type alias Ticket
	aux := struct {
		*alias
		Date       string  `json:"date"`
		UpdatedAt  *string `json:"updated_at"`
		AssignedTo *string `json:"assigned_to"`
	}{alias: (*alias)(t)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	if aux.Date != "" {
		d, err := ParseTimestamp(aux.Date)
		if err != nil {
			return fmt.Errorf("parsing ticket date: %w", err)
		}
		t.Date = d
	}
	if aux.UpdatedAt != nil && *aux.UpdatedAt != "" {
		u, err := ParseTimestamp(*aux.UpdatedAt)
		if err != nil {
			return fmt.Errorf("parsing ticket updated_at: %w", err)
		}
		t.UpdatedAt = &u
	}
	if aux.AssignedTo != nil {
		t.AssignedTo = *aux.AssignedTo
	}
	return nil
}

// TicketNumber builds the display number the backend assigns to a new
// ticket: "#" + YYYYMMDD + the first 8 characters of the id.
func TicketNumber(date time.Time, id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return "#" + date.UTC().Format("20060102") + id
}

// timestampLayouts are tried in order by ParseTimestamp.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999-07:00",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses an ISO-8601 timestamp. Values without a zone are
// taken as UTC, which is how the backend writes them.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// Volume is the reported traffic volume. The backend sends it as a string
// but older records carry a bare number.
type Volume string

// UnmarshalJSON accepts either a JSON string or a JSON number.
func (v *Volume) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = Volume(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("volume must be a string or number: %w", err)
	}
	*v = Volume(n.String())
	return nil
}

// Int returns the leading integer of the volume. Anything that does not
// start with a digit (after an optional sign) is 0.
func (v Volume) Int() int64 {
	s := strings.TrimSpace(string(v))
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// OpenedVia is the set of channels a ticket was raised through.
type OpenedVia []string

// UnmarshalJSON accepts a list or the legacy comma-separated string.
func (o *OpenedVia) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*o = nil
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*o = NormalizeOpenedVia(list...)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("opened_via must be a list or string: %w", err)
	}
	*o = NormalizeOpenedVia(strings.Split(s, ",")...)
	return nil
}

// NormalizeOpenedVia trims every value and drops empty ones.
func NormalizeOpenedVia(values ...string) OpenedVia {
	out := make(OpenedVia, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
