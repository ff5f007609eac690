package domain

import "time"

// Subscription is the account tier.
type Subscription string

const (
	SubscriptionStarter  Subscription = "starter"
	SubscriptionPro      Subscription = "pro"
	SubscriptionBusiness Subscription = "business"
)

// Subscriptions lists every accepted tier in display order.
var Subscriptions = []Subscription{SubscriptionStarter, SubscriptionPro, SubscriptionBusiness}

// Valid reports whether s is one of the known tiers.
func (s Subscription) Valid() bool {
	for _, known := range Subscriptions {
		if s == known {
			return true
		}
	}
	return false
}

// User is the account aggregate persisted in the users collection.
type User struct {
	ID                string       `json:"id"`
	Email             string       `json:"email"`
	Password          string       `json:"-"`
	Phone             string       `json:"phone,omitempty"`
	Subscription      Subscription `json:"subscription"`
	AvatarURL         string       `json:"avatarURL"`
	VerificationToken string       `json:"-"`
	Verify            bool         `json:"verify"`
	Token             string       `json:"-"`
	CreatedAt         time.Time    `json:"createdAt"`
	UpdatedAt         time.Time    `json:"updatedAt"`
}
