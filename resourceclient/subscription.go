package resourceclient

import "sync"

// Subscription is one consumer's interest in a query.
type Subscription struct {
	client *Client
	query  Query
	key    string
	once   sync.Once
}

// Query returns the subscribed query.
func (s *Subscription) Query() Query {
	return s.query
}

// Close releases the subscription. Calling it more than once is a no-op.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.client.unsubscribe(s.key)
	})
}
