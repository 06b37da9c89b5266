package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVolumeInt(t *testing.T) {
	tests := []struct {
		in   Volume
		want int64
	}{
		{"1500", 1500},
		{" 42 ", 42},
		{"12abc", 12},
		{"-7", -7},
		{"abc", 0},
		{"", 0},
		{"+", 0},
		{"1.9", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.in.Int(), "volume %q", tt.in)
	}
}

func TestTicketUnmarshalLegacyShapes(t *testing.T) {
	raw := `{
		"id": "a1b2c3d4-0000",
		"ticket_number": "#20240301a1b2c3d4",
		"status": "Assigned",
		"priority": "High",
		"assigned_to": null,
		"customer_id": "C1",
		"customer_trunk": "T1",
		"volume": 2500,
		"opened_via": "Monitoring, Email ,",
		"issue_types": ["Drop"],
		"date": "2024-03-01T10:15:00",
		"updated_at": "2024-03-01T11:00:00+00:00"
	}`

	var tk Ticket
	require.NoError(t, json.Unmarshal([]byte(raw), &tk))

	assert.Equal(t, Volume("2500"), tk.Volume)
	assert.Equal(t, OpenedVia{"Monitoring", "Email"}, tk.OpenedVia)
	assert.Equal(t, "", tk.AssignedTo)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 15, 0, 0, time.UTC), tk.Date)
	require.NotNil(t, tk.UpdatedAt)
	assert.True(t, tk.UpdatedAt.Equal(time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC)))
	assert.False(t, tk.IsAssigned())
}

func TestTicketUnmarshalListOpenedVia(t *testing.T) {
	var tk Ticket
	require.NoError(t, json.Unmarshal(
		[]byte(`{"id":"x","volume":"10","opened_via":["AM"," Teams "],"date":"2024-03-01T10:15:00Z"}`),
		&tk,
	))
	assert.Equal(t, OpenedVia{"AM", "Teams"}, tk.OpenedVia)
	assert.Equal(t, int64(10), tk.Volume.Int())
}

func TestTicketUnmarshalBadDate(t *testing.T) {
	var tk Ticket
	err := json.Unmarshal([]byte(`{"id":"x","date":"yesterday"}`), &tk)
	assert.Error(t, err)
}

func TestTicketNumber(t *testing.T) {
	date := time.Date(2024, 3, 1, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "#20240301a1b2c3d4", TicketNumber(date, "a1b2c3d4-e5f6"))
	assert.Equal(t, "#20240301abc", TicketNumber(date, "abc"))
}

func TestNotificationCategory(t *testing.T) {
	tests := []struct {
		name string
		item NotificationItem
		want Category
	}{
		{"alert", NotificationItem{ID: "1", AlertTicketNumber: "#1"}, CategoryAlert},
		{"alert wins over request", NotificationItem{ID: "2", AlertTicketNumber: "#1", RequestID: "r"}, CategoryAlert},
		{"request id", NotificationItem{ID: "3", RequestID: "r"}, CategoryRequest},
		{"request type", NotificationItem{ID: "4", Type: TypeRequestUpdate}, CategoryRequest},
		{"ticket", NotificationItem{ID: "5", TicketID: "t", EventType: "modified"}, CategoryTicket},
		{"bare", NotificationItem{ID: "6"}, CategoryTicket},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.item.Category())
		})
	}
}

func TestTicketPatchApply(t *testing.T) {
	orig := Ticket{
		ID: "s1", Status: StatusAssigned, AssignedTo: "u1", Priority: PriorityLow,
		IssueTypes: []string{"Drop"}, Volume: "10",
	}

	status := StatusUnassigned
	none := ""
	issues := []string{"Echo"}
	vol := Volume("99")
	via := OpenedVia{" AM ", ""}
	got := TicketPatch{
		Status: &status, AssignedTo: &none, IssueTypes: &issues,
		Volume: &vol, OpenedVia: &via,
	}.Apply(orig)

	assert.Equal(t, StatusUnassigned, got.Status)
	assert.Empty(t, got.AssignedTo)
	assert.Equal(t, PriorityLow, got.Priority, "untouched field kept")
	assert.Equal(t, []string{"Echo"}, got.IssueTypes)
	assert.Equal(t, Volume("99"), got.Volume)
	assert.Equal(t, OpenedVia{"AM"}, got.OpenedVia)

	assert.Equal(t, StatusAssigned, orig.Status, "original untouched")
	assert.Equal(t, []string{"Drop"}, orig.IssueTypes)

	issues[0] = "mutated"
	assert.Equal(t, []string{"Echo"}, got.IssueTypes, "patch slice copied")
}
