// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"errors"
	"net/mail"
	"regexp"
	"strings"
)

// Feedback message length bounds, in characters.
const (
	FeedbackMessageMinLen = 10
	FeedbackMessageMaxLen = 5000
)

// Feedback validation errors. The messages are user-facing.
var (
	ErrFeedbackMessageRequired = errors.New("Message is required")
	ErrFeedbackMessageTooShort = errors.New("Message must be at least 10 characters long")
	ErrFeedbackMessageTooLong  = errors.New("Message must be at most 5000 characters long")
	ErrFeedbackEmailInvalid    = errors.New("Invalid email address")
	ErrFeedbackPhoneInvalid    = errors.New("Invalid phone number")
)

// Phone numbers are 10 to 15 characters in total, the leading plus sign
// included.
const feedbackPhoneMaxLen = 15

// phoneRegex matches digits with common separators and an optional leading
// plus sign. The overall upper bound is enforced separately so the plus sign
// counts against it.
var phoneRegex = regexp.MustCompile(`^\+?[0-9][0-9 ()-]{8,13}[0-9]$`)

// ValidateFeedbackMessage trims the message and checks the length bounds.
// Returns the trimmed message on success.
func ValidateFeedbackMessage(message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrFeedbackMessageRequired
	}
	if len([]rune(message)) < FeedbackMessageMinLen {
		return "", ErrFeedbackMessageTooShort
	}
	if len([]rune(message)) > FeedbackMessageMaxLen {
		return "", ErrFeedbackMessageTooLong
	}
	return message, nil
}

// ValidateFeedbackEmail checks an optional email field. Blank values are
// allowed and normalized to the empty string.
func ValidateFeedbackEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", nil
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", ErrFeedbackEmailInvalid
	}
	// mail.ParseAddress accepts display names and domains without dots;
	// the public form wants a plain address with a dotted domain.
	at := strings.LastIndex(email, "@")
	if at < 1 || !strings.Contains(email[at+1:], ".") {
		return "", ErrFeedbackEmailInvalid
	}
	return email, nil
}

// ValidateFeedbackPhone checks an optional phone number field. Blank values
// are allowed and normalized to the empty string.
func ValidateFeedbackPhone(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", nil
	}
	if len(phone) > feedbackPhoneMaxLen || !phoneRegex.MatchString(phone) {
		return "", ErrFeedbackPhoneInvalid
	}
	return phone, nil
}
