package entity

// Notification is the message accepted by a notification gateway and read
// back by the email consumer.
type Notification struct {
	Type       string   `json:"type"`
	Recipients []string `json:"recipients"`
	Subject    string   `json:"subject"`
	Body       string   `json:"body"`
}

const (
	NotificationOfferCreated       = "offer_created"
	NotificationOfferStatusChanged = "offer_status_changed"
)
