package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Category is the kind of event a bell item carries. It is derived from
// which fields the item has, never sent explicitly.
type Category string

const (
	CategoryNone    Category = ""
	CategoryAlert   Category = "alert"
	CategoryTicket  Category = "ticket"
	CategoryRequest Category = "request"
)

// TypeRequestUpdate marks a request event whose payload lacks a request id.
const TypeRequestUpdate = "request_update"

// NotificationItem is one entry in the bell feed. Exactly one of the
// event shapes is populated: ticket events carry TicketID/TicketType/
// EventType, alert events carry AlertTicketNumber/NotificationType and
// request events carry RequestID.
type NotificationItem struct {
	// ID is the stable identifier used for read and dismiss tracking.
	ID string `json:"id"`

	// CreatedAt orders the feed, newest first.
	CreatedAt time.Time `json:"created_at"`

	// Priority is informational; it never affects badge precedence.
	Priority string `json:"priority,omitempty"`

	// Type is the raw event type reported by the source, if any.
	Type string `json:"type,omitempty"`

	// Message is the human-readable text shown in the feed.
	Message string `json:"message,omitempty"`

	TicketID     string `json:"ticket_id,omitempty"`
	TicketNumber string `json:"ticket_number,omitempty"`
	TicketType   string `json:"ticket_type,omitempty"`
	EventType    string `json:"event_type,omitempty"`

	AlertTicketNumber string `json:"alert_ticket_number,omitempty"`
	NotificationType  string `json:"notification_type,omitempty"`

	RequestID string `json:"request_id,omitempty"`
}

// Category discriminates the item by shape: an alert ticket number makes it
// an alert, a request id (or a request_update type) makes it a request, and
// anything else is a ticket event.
func (n NotificationItem) Category() Category {
	switch {
	case n.AlertTicketNumber != "":
		return CategoryAlert
	case n.RequestID != "" || n.Type == TypeRequestUpdate:
		return CategoryRequest
	default:
		return CategoryTicket
	}
}

// BannerItem is a transient warning re-fetched on every poll, such as an
// unassigned ticket waiting too long or an assigned ticket gone stale.
type BannerItem struct {
	ID           string     `json:"id"`
	TicketNumber string     `json:"ticket_number,omitempty"`
	TicketType   TicketKind `json:"type,omitempty"`
	Priority     string     `json:"priority"`
	Customer     string     `json:"customer,omitempty"`
	Message      string     `json:"message,omitempty"`
	WaitingSince *time.Time `json:"waiting_since,omitempty"`

	// IntervalMinutes is the wait threshold that raised an unassigned alert.
	IntervalMinutes int `json:"interval_minutes,omitempty"`
}

// UnmarshalJSON accepts created_at with or without a zone offset.
func (n *NotificationItem) UnmarshalJSON(data []byte) error {
	type alias NotificationItem
	aux := struct {
		*alias
		CreatedAt string `json:"created_at"`
	}{alias: (*alias)(n)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.CreatedAt != "" {
		ts, err := ParseTimestamp(aux.CreatedAt)
		if err != nil {
			return fmt.Errorf("parsing notification created_at: %w", err)
		}
		n.CreatedAt = ts
	}
	return nil
}

// UnmarshalJSON accepts waiting_since with or without a zone offset.
func (b *BannerItem) UnmarshalJSON(data []byte) error {
	type alias BannerItem
	aux := struct {
		*alias
		WaitingSince *string `json:"waiting_since"`
	}{alias: (*alias)(b)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.WaitingSince != nil && *aux.WaitingSince != "" {
		ts, err := ParseTimestamp(*aux.WaitingSince)
		if err != nil {
			return fmt.Errorf("parsing banner waiting_since: %w", err)
		}
		b.WaitingSince = &ts
	}
	return nil
}
