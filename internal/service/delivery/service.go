// Package delivery fans a fired notification trigger out to the configured
// channels.
package delivery

import (
	"errors"
	"fmt"
)

// Notifier sends one message over a concrete channel.
type Notifier interface {
	Send(to string, msg string) error
}

// Target pairs a channel name with its destination address.
type Target struct {
	Channel string
	To      string
}

// Service delivers alert text through every configured target.
type Service struct {
	notifiers map[string]Notifier
	targets   []Target
}

// NewService creates a delivery service over the channel clients and targets.
func NewService(notifiers map[string]Notifier, targets []Target) *Service {
	return &Service{notifiers: notifiers, targets: targets}
}

// Deliver sends the alert to every target, joining per-channel failures. It
// fails outright only when no target is configured at all.
func (s *Service) Deliver(title, body string) error {
	if len(s.targets) == 0 {
		return fmt.Errorf("no delivery targets configured")
	}

	text := title
	if body != "" {
		text += "\n" + body
	}

	var errs []error
	for _, t := range s.targets {
		notifier, ok := s.notifiers[t.Channel]
		if !ok {
			errs = append(errs, fmt.Errorf("unknown channel %s", t.Channel))
			continue
		}

		if err := notifier.Send(t.To, text); err != nil {
			errs = append(errs, fmt.Errorf("send via %s: %w", t.Channel, err))
		}
	}

	return errors.Join(errs...)
}
