package model

// DeliveryMessage is a rendered reset email handed to the mail transport.
type DeliveryMessage struct {
	To      string
	Subject string
	Body    string
	URL     string
	TokenID string
}
