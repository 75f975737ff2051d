// Package model defines domain entities for the application.
package model

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxTextLength is the maximum length of a message body in characters.
const MaxTextLength = 4096

// e164Pattern matches phone numbers in E.164 format: a leading plus
// followed by digits only.
var e164Pattern = regexp.MustCompile(`^\+\d+$`)

// Message represents a stored message. Messages are immutable once
// inserted; CreatedAt is set by the store, not the client.
type Message struct {
	MessageID string  `json:"message_id"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	TS        string  `json:"ts"`
	Text      *string `json:"text"`
	CreatedAt string  `json:"-"`
}

// WebhookMessage is the inbound webhook payload.
type WebhookMessage struct {
	MessageID string  `json:"message_id"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	TS        string  `json:"ts"`
	Text      *string `json:"text"`
}

// Validate checks all field constraints on the payload.
// The returned error message names the offending field.
func (m *WebhookMessage) Validate() error {
	if m.MessageID == "" {
		return errors.New("message_id: must not be empty")
	}
	if !e164Pattern.MatchString(m.From) {
		return errors.New("from: must be in E.164 format (starts with +, followed by digits)")
	}
	if !e164Pattern.MatchString(m.To) {
		return errors.New("to: must be in E.164 format (starts with +, followed by digits)")
	}
	if err := validateTimestamp(m.TS); err != nil {
		return err
	}
	if m.Text != nil && utf8.RuneCountInString(*m.Text) > MaxTextLength {
		return errors.New("text: must be at most 4096 characters")
	}
	return nil
}

// ToMessage converts the payload into the domain entity.
func (m *WebhookMessage) ToMessage() *Message {
	return &Message{
		MessageID: m.MessageID,
		From:      m.From,
		To:        m.To,
		TS:        m.TS,
		Text:      m.Text,
	}
}

// validateTimestamp requires an ISO-8601 UTC timestamp with a Z suffix.
// The string is stored verbatim and ordered lexicographically, so the
// format must be uniform across all messages.
func validateTimestamp(ts string) error {
	if !strings.HasSuffix(ts, "Z") {
		return errors.New("ts: must be ISO-8601 UTC timestamp with Z suffix")
	}
	if _, err := time.Parse(time.RFC3339, ts); err != nil {
		return errors.New("ts: must be valid ISO-8601 UTC timestamp")
	}
	return nil
}
