// Package notification fans selection updates out to every subscribed presenter.
package notification

import (
	"sync"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"
)

// Presenter receives selection updates.
type Presenter interface {
	ShowSelection(song, artist string)
}

// Selection is the last broadcast selection.
type Selection struct {
	SequenceNo uint64
	Song       string
	Artist     string
}

// subscription represents a subscriber's subscription.
type subscription struct {
	id        string
	presenter Presenter
}

// Manager manages presenter subscriptions and broadcasting.
// It satisfies playback.Presenter.
type Manager struct {
	mu            sync.RWMutex
	subscriptions []*subscription
	sequenceNo    uint64
	last          Selection
}

// NewManager creates a new notification manager.
func NewManager() *Manager {
	return &Manager{
		subscriptions: make([]*subscription, 0),
	}
}

// Subscribe adds a presenter and returns the subscription ID.
// Presenters are notified in subscription order.
func (m *Manager) Subscribe(p Presenter) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New().String()
	m.subscriptions = append(m.subscriptions, &subscription{
		id:        id,
		presenter: p,
	})
	return id
}

// Unsubscribe removes a subscription.
func (m *Manager) Unsubscribe(subscriptionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscriptions {
		if sub.id == subscriptionID {
			m.subscriptions = append(m.subscriptions[:i], m.subscriptions[i+1:]...)
			return
		}
	}
}

// ShowSelection broadcasts the selection to all subscribers.
// A presenter that panics is logged and skipped; the others are still notified.
func (m *Manager) ShowSelection(song, artist string) {
	m.mu.Lock()
	m.sequenceNo++
	m.last = Selection{SequenceNo: m.sequenceNo, Song: song, Artist: artist}
	subs := make([]*subscription, len(m.subscriptions))
	copy(subs, m.subscriptions)
	m.mu.Unlock()

	for _, sub := range subs {
		notify(sub, song, artist)
	}
}

func notify(sub *subscription, song, artist string) {
	defer func() {
		if r := recover(); r != nil {
			zlog.Error().Msgf("notification: presenter panicked: subscription=%s panic=%v", sub.id, r)
		}
	}()
	sub.presenter.ShowSelection(song, artist)
}

// Last returns the most recent selection.
func (m *Manager) Last() Selection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}

// SubscriberCount returns the number of active subscribers.
func (m *Manager) SubscriberCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscriptions)
}

// Close removes all subscriptions.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscriptions = make([]*subscription, 0)
}
