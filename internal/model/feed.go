package model

// FeedName identifies one independently polled data stream.
type FeedName string

// Bell feeds.
const (
	FeedTicketModifications  FeedName = "ticket_modifications"
	FeedAlertNotifications   FeedName = "alert_notifications"
	FeedRequestNotifications FeedName = "request_notifications"
)

// Banner feeds.
const (
	FeedUnassignedAlerts  FeedName = "unassigned"
	FeedAssignedReminders FeedName = "reminders"
)

// Ticket list feeds, one per kind.
const (
	FeedSMSTickets   FeedName = "tickets_sms"
	FeedVoiceTickets FeedName = "tickets_voice"
)

// BellFeeds lists the bell feeds in merge order.
var BellFeeds = []FeedName{
	FeedTicketModifications,
	FeedAlertNotifications,
	FeedRequestNotifications,
}

// BannerFeeds lists the banner feeds.
var BannerFeeds = []FeedName{FeedUnassignedAlerts, FeedAssignedReminders}

// TicketFeed returns the list feed for kind.
func TicketFeed(kind TicketKind) FeedName {
	if kind == KindVoice {
		return FeedVoiceTickets
	}
	return FeedSMSTickets
}
