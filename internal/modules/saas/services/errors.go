package services

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPayload: empty body or unresolvable sender/recipient
	ErrInvalidPayload = errors.New("invalid inbound payload")
	// ErrChatbotNotFound: no chatbot owns the recipient number
	ErrChatbotNotFound = errors.New("chatbot not found")
	// ErrChatbotInactive: the chatbot exists but is switched off
	ErrChatbotInactive = errors.New("chatbot inactive")
)

// ValidationError is a bad dashboard request
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// PersistenceError wraps a failed database write in the inbound pipeline
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
