package apiclient

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// DefaultPayMethod is used when StartPayment is called without a method.
const DefaultPayMethod = "kakaopay"

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 -]*$`)

// User is the account profile returned by the upstream.
type User struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Phone         string  `json:"phone"`
	CreatedAt     string  `json:"created_at,omitempty"`
	ServiceActive int     `json:"service_active,omitempty"`
	CheckActive   int     `json:"check_active,omitempty"`
	CheckDay      *string `json:"check_day,omitempty"`
	CheckTime     *string `json:"check_time,omitempty"`
}

// RegisterResponse is returned by POST /api/register.
type RegisterResponse struct {
	OK          bool   `json:"ok"`
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

// MeResponse is returned by GET /api/me.
type MeResponse struct {
	OK     bool `json:"ok"`
	User   User `json:"user"`
	Counts struct {
		Recipients int `json:"recipients"`
	} `json:"counts"`
}

// Recipient is a person who receives the message.
type Recipient struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Relation  string `json:"relation"`
	CreatedAt string `json:"created_at"`
}

type recipientsResponse struct {
	OK         bool        `json:"ok"`
	Recipients []Recipient `json:"recipients"`
}

// MessageResponse is returned by GET /api/message.
type MessageResponse struct {
	OK         bool   `json:"ok"`
	HasMessage bool   `json:"has_message"`
	Content    string `json:"content"`
}

// Payment is the latest payment attempt.
type Payment struct {
	ID        int64  `json:"id"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
	CreatedAt string `json:"created_at"`
}

type paymentLatestResponse struct {
	OK      bool     `json:"ok"`
	Payment *Payment `json:"payment"`
}

// RegisterInput is the body of POST /api/register.
type RegisterInput struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func (in *RegisterInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
}

// Validate checks that name and phone are present.
func (in RegisterInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required),
		validation.Field(&in.Phone, validation.Required, validation.Match(phonePattern)),
	)
}

// RecipientInput is the body of POST /api/recipients.
type RecipientInput struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Relation string `json:"relation"`
}

func (in *RecipientInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Relation = strings.TrimSpace(in.Relation)
}

// Validate checks that name and phone are present; relation is optional.
func (in RecipientInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required),
		validation.Field(&in.Phone, validation.Required, validation.Match(phonePattern)),
	)
}

type messageInput struct {
	Content string `json:"content"`
}

type paymentStartInput struct {
	PayMethod string `json:"pay_method"`
}
