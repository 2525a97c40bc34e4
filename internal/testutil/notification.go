package testutil

import (
	"context"
	"sync"

	"github.com/netcycle/netcycle/internal/notification"
	"github.com/samber/lo"
)

// RecordingPublisher implements notification.Publisher by keeping every
// enqueued notification in memory
type RecordingPublisher struct {
	mu            sync.RWMutex
	notifications []*notification.Notification
	err           error
}

var _ notification.Publisher = (*RecordingPublisher)(nil)

func NewRecordingPublisher() *RecordingPublisher {
	return &RecordingPublisher{}
}

func (p *RecordingPublisher) Enqueue(ctx context.Context, n *notification.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	c := *n
	p.notifications = append(p.notifications, &c)
	return nil
}

// FailWith makes every later Enqueue fail with err
func (p *RecordingPublisher) FailWith(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

// Notifications returns the recorded notifications, optionally of one kind
func (p *RecordingPublisher) Notifications(kinds ...notification.Kind) []*notification.Notification {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(kinds) == 0 {
		return append([]*notification.Notification(nil), p.notifications...)
	}
	return lo.Filter(p.notifications, func(n *notification.Notification, _ int) bool {
		return lo.Contains(kinds, n.Kind)
	})
}

func (p *RecordingPublisher) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notifications = nil
	p.err = nil
}

// RecordingGateway implements notification.Gateway. Numbers listed in
// FailNumbers fail delivery.
type RecordingGateway struct {
	mu          sync.RWMutex
	sent        []notification.Message
	failNumbers map[string]error
}

var _ notification.Gateway = (*RecordingGateway)(nil)

func NewRecordingGateway() *RecordingGateway {
	return &RecordingGateway{failNumbers: make(map[string]error)}
}

func (g *RecordingGateway) Send(ctx context.Context, phoneNumber string, message string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err, ok := g.failNumbers[phoneNumber]; ok {
		return err
	}
	g.sent = append(g.sent, notification.Message{PhoneNumber: phoneNumber, Body: message})
	return nil
}

// FailNumber makes sends to phoneNumber fail with err
func (g *RecordingGateway) FailNumber(phoneNumber string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failNumbers[phoneNumber] = err
}

func (g *RecordingGateway) Sent() []notification.Message {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]notification.Message(nil), g.sent...)
}

func (g *RecordingGateway) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = nil
	g.failNumbers = make(map[string]error)
}
