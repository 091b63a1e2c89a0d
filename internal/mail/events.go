package mail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/r3labs/sse/v2"
)

// Subscribe streams new-message events for the session's mailbox from the
// Mercure hub and calls fn for each. The events carry summaries only; call
// Message for the body. It blocks until ctx is done and returns nil in that
// case.
func (c *Client) Subscribe(ctx context.Context, s *Session, fn func(Message)) error {
	u, err := url.Parse(c.eventsURL)
	if err != nil {
		return fmt.Errorf("subscribe: parse events url: %w", err)
	}
	q := u.Query()
	q.Set("topic", "/accounts/"+s.Account.ID)
	u.RawQuery = q.Encode()

	client := sse.NewClient(u.String())
	client.Headers["Authorization"] = "Bearer " + s.Token

	err = client.SubscribeRawWithContext(ctx, func(ev *sse.Event) {
		m, ok := decodeEvent(ev.Data)
		if !ok {
			return
		}
		fn(m)
	})
	if err != nil && !errors.Is(err, context.Canceled) && ctx.Err() == nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	return nil
}

// decodeEvent reports whether data is a message event and decodes it. The
// hub also publishes account updates, which are ignored.
func decodeEvent(data []byte) (Message, bool) {
	if len(data) == 0 {
		return Message{}, false
	}

	var m messageJSON
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, false
	}
	if m.Type != "Message" || m.ID == "" {
		return Message{}, false
	}
	return m.message(), true
}
