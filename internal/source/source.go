// Package source defines the contracts the desk consumes from the ticketing
// backend and the typed errors its clients return.
package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/nhle/noc-desk/internal/model"
)

// AuthError indicates that the backend rejected the credentials.
// It is returned by clients when a 401 response is received.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error: %s", e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// ValidationError carries the backend's explanation for a rejected write.
type ValidationError struct {
	Status int
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("rejected by backend (%d): %s", e.Status, e.Detail)
}

// IsValidationError reports whether err (or any error in its chain) is a
// ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NotFoundError is returned when the addressed ticket or item is gone.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: %s", e.Resource)
}

// IsNotFound reports whether err (or any error in its chain) is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// TicketStore lists and writes tickets.
type TicketStore interface {
	// List returns every ticket of kind visible to the current user.
	List(ctx context.Context, kind model.TicketKind) ([]model.Ticket, error)

	// Create submits a new ticket and returns it as stored.
	Create(ctx context.Context, kind model.TicketKind, t model.Ticket) (model.Ticket, error)

	// Update replaces the editable fields of ticket id.
	Update(ctx context.Context, kind model.TicketKind, id string, t model.Ticket) (model.Ticket, error)
}

// NotificationSource fetches the bell and banner feeds. Every item carries
// a stable id; banner items carry a priority.
type NotificationSource interface {
	FetchTicketModifications(ctx context.Context) ([]model.NotificationItem, error)
	FetchAlerts(ctx context.Context) ([]model.BannerItem, error)
	FetchAssignedReminders(ctx context.Context) ([]model.BannerItem, error)
	FetchAlertNotifications(ctx context.Context) ([]model.NotificationItem, error)
	FetchRequestNotifications(ctx context.Context) ([]model.NotificationItem, error)
}

// RemoteAck tells the backend an item was read. Callers treat it as best
// effort and never undo local state when it fails.
type RemoteAck interface {
	MarkRead(ctx context.Context, kind model.Category, id string) error
}

// Backend is everything the desk needs from the server.
type Backend interface {
	TicketStore
	NotificationSource
	RemoteAck
}
