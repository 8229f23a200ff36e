package relation

import (
	"sync"

	"github.com/peter-xbs/FSM/types"
)

// Sink receives extracted relationships. Repeated identical calls are legal.
type Sink interface {
	Add(trigger types.Entity, receiver types.Entity, relationType string)
}

// Collector is an append-only single writer sink.
type Collector struct {
	items []types.Relationship
}

func (c *Collector) Add(trigger types.Entity, receiver types.Entity, relationType string) {
	c.items = append(c.items, types.Relationship{
		Trigger:  trigger,
		Receiver: receiver,
		Type:     relationType,
	})
}

func (c *Collector) Relationships() []types.Relationship {
	return c.items
}

func (c *Collector) Len() int {
	return len(c.items)
}

// SyncSink serialises Add calls so several extraction goroutines can share
// one downstream sink.
type SyncSink struct {
	mu   sync.Mutex
	sink Sink
}

func NewSyncSink(sink Sink) *SyncSink {
	return &SyncSink{sink: sink}
}

func (s *SyncSink) Add(trigger types.Entity, receiver types.Entity, relationType string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink.Add(trigger, receiver, relationType)
}

type SinkFunc func(trigger types.Entity, receiver types.Entity, relationType string)

func (f SinkFunc) Add(trigger types.Entity, receiver types.Entity, relationType string) {
	f(trigger, receiver, relationType)
}
