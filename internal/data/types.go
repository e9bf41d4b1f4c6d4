package data

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Service names a collaborator API.
type Service string

const (
	ServiceAuth      Service = "auth"
	ServiceMessaging Service = "messaging"
	ServiceDashboard Service = "dashboard"
	ServicePhonebook Service = "phonebook"
	ServiceChat      Service = "chat"
)

// RecordID is a server-assigned identifier. Services send it either as a
// JSON number or a string.
type RecordID string

func (id *RecordID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = RecordID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("record id: %w", err)
	}
	*id = RecordID(n.String())
	return nil
}

// Timestamp accepts RFC 3339 as well as zone-less ISO local date-times,
// which are read as UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		t.Time = time.UnixMilli(ms).UTC()
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp %q: unrecognized format", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

// --- auth ---

// Credentials is the body of both signup and login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the login response.
type LoginResult struct {
	Valid bool `json:"valid"`
}

// --- messaging ---

// MessageRecord is a message as stored by the messaging service.
type MessageRecord struct {
	ID         RecordID  `json:"id"`
	Body       string    `json:"body"`
	Recipients []string  `json:"recipients,omitempty"`
	CreatedAt  Timestamp `json:"createdAt"`
}

// SendMessageRequest is the POST body for a new message.
type SendMessageRequest struct {
	UserEmail  string   `json:"userEmail"`
	Body       string   `json:"body"`
	Recipients []string `json:"recipients"`
}

// SentMessage is the console's projection of a MessageRecord.
type SentMessage struct {
	ID         string
	Body       string
	Recipients []string
	SentAt     time.Time
}

// --- dashboard ---

// MonthlyCounts is the per-month message volume of one user for one year.
type MonthlyCounts struct {
	UserEmail string `json:"userEmail"`
	Year      int    `json:"year"`
	Counts    []int  `json:"counts"`
}

// StatusCounts is the delivery outcome tally for one month.
type StatusCounts struct {
	Year      int `json:"year"`
	Month     int `json:"month"`
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
}

// PhoneRank is how often a recipient number was messaged.
type PhoneRank struct {
	PhoneNum string `json:"phoneNum"`
	Count    int    `json:"count"`
}

// --- phonebook ---

// Carrier is a Korean mobile network operator.
type Carrier string

const (
	CarrierSKT  Carrier = "SKT"
	CarrierKT   Carrier = "KT"
	CarrierLG   Carrier = "LG"
	CarrierMVNO Carrier = "MVNO"
)

// Carriers lists the accepted carriers in display order.
var Carriers = []Carrier{CarrierSKT, CarrierKT, CarrierLG, CarrierMVNO}

// ParseCarrier matches s case-insensitively against Carriers.
func ParseCarrier(s string) (Carrier, error) {
	s = strings.TrimSpace(s)
	for _, c := range Carriers {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("carrier %q: must be one of SKT, KT, LG, MVNO", s)
}

// Contact is an address book entry owned by one user.
type Contact struct {
	ID          RecordID  `json:"id"`
	OwnerEmail  string    `json:"ownerEmail"`
	ContactName string    `json:"contactName"`
	PhoneNumber string    `json:"phoneNumber"`
	Carrier     Carrier   `json:"carrier"`
	CreatedAt   Timestamp `json:"createdAt"`
	UpdatedAt   Timestamp `json:"updatedAt"`
}

// CreateContactRequest is the POST body for a new contact.
type CreateContactRequest struct {
	OwnerEmail  string  `json:"ownerEmail"`
	ContactName string  `json:"contactName"`
	PhoneNumber string  `json:"phoneNumber"`
	Carrier     Carrier `json:"carrier"`
}

// --- chat ---

// ChatRequest is the POST body for the chat-assist service.
type ChatRequest struct {
	Prompt string `json:"prompt"`
	UserID string `json:"userId"`
	Model  string `json:"model"`
}

// ChatResponse is the chat-assist reply. Success=false carries Error.
type ChatResponse struct {
	Prompt   string  `json:"prompt"`
	Response string  `json:"response"`
	Success  bool    `json:"success"`
	Error    *string `json:"error"`
}

// ErrorText returns the collaborator's failure reason, or "" when none was given.
func (r ChatResponse) ErrorText() string {
	if r.Error == nil {
		return ""
	}
	return *r.Error
}
