// internal/app/system/mailer/mailer.go

// Package mailer hands composed emails to an external delivery client.
//
// The console never sends mail itself. A Composer turns a Message into a
// Handoff the operator's browser opens; the default Mailto composer builds
// mailto: links with recipients in Bcc, split into batches that each fit a
// length limit most mail clients accept.
package mailer

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

// DefaultMaxLength is a conservative mailto: URL length most clients open.
const DefaultMaxLength = 2000

var (
	ErrNoRecipients     = errors.New("no recipients")
	ErrPayloadTooLarge  = errors.New("subject and body exceed the mailto length limit")
	ErrRecipientTooLong = errors.New("recipient does not fit in a mailto link")
)

// Message is an email ready for delivery.
type Message struct {
	Recipients []string
	Subject    string
	Body       string
}

// Handoff is what the operator's client receives. Every recipient appears in
// exactly one link.
type Handoff struct {
	Links      []string `json:"links"`
	Recipients int      `json:"recipients"`
}

// Composer hands a message to the delivery collaborator.
type Composer interface {
	Compose(ctx context.Context, msg Message) (Handoff, error)
}

// Mailto builds mailto: links.
type Mailto struct {
	MaxLength int
}

func (m Mailto) maxLength() int {
	if m.MaxLength <= 0 {
		return DefaultMaxLength
	}
	return m.MaxLength
}

// Compose splits the recipients into as few links as the length limit
// allows, preserving their order.
func (m Mailto) Compose(ctx context.Context, msg Message) (Handoff, error) {
	if err := ctx.Err(); err != nil {
		return Handoff{}, err
	}
	if len(msg.Recipients) == 0 {
		return Handoff{}, ErrNoRecipients
	}

	suffix := "&subject=" + escape(msg.Subject) + "&body=" + escape(msg.Body)
	const prefix = "mailto:?bcc="
	limit := m.maxLength()
	if len(prefix)+len(suffix) >= limit {
		return Handoff{}, ErrPayloadTooLarge
	}

	var (
		links []string
		batch []string
		size  = len(prefix) + len(suffix)
	)
	flush := func() {
		links = append(links, prefix+strings.Join(batch, ",")+suffix)
		batch = nil
		size = len(prefix) + len(suffix)
	}
	for _, r := range msg.Recipients {
		addr := escape(r)
		need := len(addr)
		if len(batch) > 0 {
			need++ // comma
		}
		if size+need > limit {
			if len(batch) == 0 {
				return Handoff{}, ErrRecipientTooLong
			}
			flush()
			need = len(addr)
			if size+need > limit {
				return Handoff{}, ErrRecipientTooLong
			}
		}
		batch = append(batch, addr)
		size += need
	}
	flush()

	return Handoff{Links: links, Recipients: len(msg.Recipients)}, nil
}

// escape percent-encodes s for a mailto: header value. Spaces become %20,
// not "+", which mail clients would show literally. "@" is kept readable.
func escape(s string) string {
	e := url.QueryEscape(s)
	e = strings.ReplaceAll(e, "+", "%20")
	return strings.ReplaceAll(e, "%40", "@")
}
