package eventbus

import (
	"context"
	"sync"
)

type envelope struct {
	event   Event
	payload any
}

type subscriber struct {
	id uint64
	fn func(any)
}

// EventBus delivers events on a single dispatch goroutine started with
// Start. Publishing never blocks: when the buffer is full the event is
// dropped and the OnDrop hooks fire.
type EventBus struct {
	ch    chan envelope
	hooks hooks

	mu     sync.RWMutex
	nextID uint64
	subs   map[Event][]subscriber
}

// New creates a bus with the given buffer size.
func New(buffer int) *EventBus {
	if buffer <= 0 {
		buffer = 64
	}
	return &EventBus{
		ch:   make(chan envelope, buffer),
		subs: make(map[Event][]subscriber),
	}
}

// Start dispatches events until ctx is cancelled.
func (bus *EventBus) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-bus.ch:
			bus.dispatch(env)
		}
	}
}

func (bus *EventBus) subscribe(event Event, fn func(any)) func() {
	bus.mu.Lock()
	bus.nextID++
	id := bus.nextID
	bus.subs[event] = append(bus.subs[event], subscriber{id: id, fn: fn})
	bus.mu.Unlock()

	bus.runOnSubscribe(event)

	return func() {
		bus.mu.Lock()
		defer bus.mu.Unlock()
		subs := bus.subs[event]
		for i, s := range subs {
			if s.id == id {
				bus.subs[event] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

func (bus *EventBus) dispatch(env envelope) {
	bus.mu.RLock()
	subs := make([]subscriber, len(bus.subs[env.event]))
	copy(subs, bus.subs[env.event])
	bus.mu.RUnlock()

	for _, s := range subs {
		bus.call(env, s.fn)
	}
}

func (bus *EventBus) call(env envelope, fn func(any)) {
	defer func() {
		if r := recover(); r != nil {
			bus.runOnPanic(env.event, env.payload, r)
		}
	}()
	fn(env.payload)
}

// Typed publish/subscribe pairs. Subscribe functions return an unsubscribe
// func.

func (bus *EventBus) PublishCommentAdded(p CommentAddedPayload) {
	bus.send(EventCommentAdded, p)
}

func (bus *EventBus) SubscribeCommentAdded(fn func(CommentAddedPayload)) func() {
	return bus.subscribe(EventCommentAdded, func(p any) { fn(p.(CommentAddedPayload)) })
}

func (bus *EventBus) PublishNotificationPublished(p NotificationPublishedPayload) {
	bus.send(EventNotificationPublished, p)
}

func (bus *EventBus) SubscribeNotificationPublished(fn func(NotificationPublishedPayload)) func() {
	return bus.subscribe(EventNotificationPublished, func(p any) { fn(p.(NotificationPublishedPayload)) })
}

func (bus *EventBus) PublishSessionCreated(p SessionCreatedPayload) {
	bus.send(EventSessionCreated, p)
}

func (bus *EventBus) SubscribeSessionCreated(fn func(SessionCreatedPayload)) func() {
	return bus.subscribe(EventSessionCreated, func(p any) { fn(p.(SessionCreatedPayload)) })
}

func (bus *EventBus) PublishSessionDeleted(p SessionDeletedPayload) {
	bus.send(EventSessionDeleted, p)
}

func (bus *EventBus) SubscribeSessionDeleted(fn func(SessionDeletedPayload)) func() {
	return bus.subscribe(EventSessionDeleted, func(p any) { fn(p.(SessionDeletedPayload)) })
}

func (bus *EventBus) PublishSessionExtended(p SessionExtendedPayload) {
	bus.send(EventSessionExtended, p)
}

func (bus *EventBus) SubscribeSessionExtended(fn func(SessionExtendedPayload)) func() {
	return bus.subscribe(EventSessionExtended, func(p any) { fn(p.(SessionExtendedPayload)) })
}

func (bus *EventBus) PublishSessionFinished(p SessionFinishedPayload) {
	bus.send(EventSessionFinished, p)
}

func (bus *EventBus) SubscribeSessionFinished(fn func(SessionFinishedPayload)) func() {
	return bus.subscribe(EventSessionFinished, func(p any) { fn(p.(SessionFinishedPayload)) })
}

func (bus *EventBus) PublishSessionReady(p SessionReadyPayload) {
	bus.send(EventSessionReady, p)
}

func (bus *EventBus) SubscribeSessionReady(fn func(SessionReadyPayload)) func() {
	return bus.subscribe(EventSessionReady, func(p any) { fn(p.(SessionReadyPayload)) })
}
