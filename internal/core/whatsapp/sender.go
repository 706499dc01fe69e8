// internal/core/whatsapp/sender.go
package whatsapp

import (
	"context"
	"errors"
	"fmt"
)

// Transport identifies the messaging provider a message travelled through
type Transport string

const (
	TransportTwilio Transport = "twilio"
	TransportMeta   Transport = "meta"
)

// ErrTransportNotConfigured is returned when no sender is registered for a transport
var ErrTransportNotConfigured = errors.New("whatsapp transport not configured")

// OutboundMessage adalah pesan keluar ke customer.
// From is the business number for Twilio or the phone_number_id for Meta.
type OutboundMessage struct {
	From string
	To   string
	Body string
}

// Sender mengirim pesan teks lewat satu transport
type Sender interface {
	// Send returns the provider-assigned message id
	Send(ctx context.Context, msg OutboundMessage) (string, error)
	Transport() Transport
}

// SendError is a rejected outbound send
type SendError struct {
	Transport  Transport
	StatusCode int
	Err        error
}

func (e *SendError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s send failed (status %d): %v", e.Transport, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s send failed: %v", e.Transport, e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }

// Registry holds one sender per configured transport
type Registry struct {
	senders map[Transport]Sender
}

// NewRegistry registers the given senders; nil entries are skipped
func NewRegistry(senders ...Sender) *Registry {
	r := &Registry{senders: make(map[Transport]Sender)}
	for _, s := range senders {
		if s != nil {
			r.senders[s.Transport()] = s
		}
	}
	return r
}

// Get returns the sender for t
func (r *Registry) Get(t Transport) (Sender, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: %s", ErrTransportNotConfigured, t)
	}
	s, ok := r.senders[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTransportNotConfigured, t)
	}
	return s, nil
}

// Configured lists registered transports
func (r *Registry) Configured() []Transport {
	out := make([]Transport, 0, len(r.senders))
	for _, t := range []Transport{TransportTwilio, TransportMeta} {
		if _, ok := r.senders[t]; ok {
			out = append(out, t)
		}
	}
	return out
}
