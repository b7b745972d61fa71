package events

import (
	"context"
	"sync"
)

type Handler func(Change)

type Publisher interface {
	Publish(ctx context.Context, change Change) error
}

type Subscriber interface {
	// Subscribe registers handler until the returned Subscription is closed.
	Subscribe(ctx context.Context, handler Handler) (Subscription, error)
}

// Subscription is released exactly once; further Close calls are no-ops.
type Subscription interface {
	Close() error
}

type Bus interface {
	Publisher
	Subscriber
}

type subscription struct {
	once    sync.Once
	closeFn func() error
	err     error
}

func newSubscription(closeFn func() error) *subscription {
	return &subscription{closeFn: closeFn}
}

func (s *subscription) Close() error {
	s.once.Do(func() {
		if s.closeFn != nil {
			s.err = s.closeFn()
		}
	})
	return s.err
}
