package domtimeline

import (
	"sync"

	"github.com/kode4food/caravan"
	"github.com/kode4food/caravan/message"
	"github.com/kode4food/caravan/topic"
)

type (
	// Hub broadcasts every Report of the Histories it observes to any
	// number of Consumers
	Hub[N comparable] struct {
		inner     topic.Topic[*Report[N]]
		producer  topic.Producer[*Report[N]]
		closeOnce sync.Once
	}

	// Consumer receives the Reports matching the Decisions it asked for
	Consumer[N comparable] struct {
		inner     topic.Consumer[*Report[N]]
		decisions map[Decision]bool // empty = all decisions
		filtered  <-chan *Report[N]
		once      sync.Once
		closeOnce sync.Once
	}
)

// NewHub creates a Hub backed by a caravan topic
func NewHub[N comparable]() *Hub[N] {
	inner := caravan.NewTopic[*Report[N]]()
	return &Hub[N]{
		inner:    inner,
		producer: inner.NewProducer(),
	}
}

// Observe publishes the Report to the Hub's Consumers. Once the Hub is
// closed, Reports are dropped
func (h *Hub[N]) Observe(r *Report[N]) {
	_ = message.Send[*Report[N]](h.producer, r)
}

// NewConsumer creates a consumer interested in specific decisions. If no
// decisions are specified, the consumer receives every Report
func (h *Hub[N]) NewConsumer(decisions ...Decision) *Consumer[N] {
	c := &Consumer[N]{inner: h.inner.NewConsumer()}
	if len(decisions) > 0 {
		c.decisions = make(map[Decision]bool, len(decisions))
		for _, d := range decisions {
			c.decisions[d] = true
		}
	}
	return c
}

// Close stops publishing
func (h *Hub[N]) Close() error {
	h.closeOnce.Do(func() {
		h.producer.Close()
	})
	return nil
}

// Receive returns a channel of Reports filtered by the consumer's interests
func (c *Consumer[N]) Receive() <-chan *Report[N] {
	c.once.Do(func() {
		filtered := make(chan *Report[N], 1)

		go func() {
			defer close(filtered)
			for r := range c.inner.Receive() {
				if c.matches(r) {
					filtered <- r
				}
			}
		}()

		c.filtered = filtered
	})

	return c.filtered
}

// Close stops the consumer
func (c *Consumer[N]) Close() error {
	c.closeOnce.Do(func() {
		c.inner.Close()
	})
	return nil
}

func (c *Consumer[N]) matches(r *Report[N]) bool {
	return len(c.decisions) == 0 || c.decisions[r.Decision]
}
