package event

import (
	"context"
	"log"
	"sync"
	"time"
)

const (
	defaultBufferSize = 256
	defaultWorkers    = 4
	consumerTimeout   = 10 * time.Second
)

// Bus fans each published event out to every registered consumer from a
// worker pool. A slow or failing consumer never delays the others and never
// blocks the publisher: when the buffer is full the event is dropped with a
// log line instead of stalling the state mutation that produced it.
type Bus struct {
	ch        chan AchievementEvent
	consumers []Consumer
	wg        sync.WaitGroup
	closeOnce sync.Once
	quit      chan struct{}
}

func NewBus(consumers ...Consumer) *Bus {
	return NewBusWithSize(defaultBufferSize, defaultWorkers, consumers...)
}

func NewBusWithSize(buffer, workers int, consumers ...Consumer) *Bus {
	if buffer <= 0 {
		buffer = defaultBufferSize
	}
	if workers <= 0 {
		workers = defaultWorkers
	}

	b := &Bus{
		ch:        make(chan AchievementEvent, buffer),
		consumers: consumers,
		quit:      make(chan struct{}),
	}

	for i := 0; i < workers; i++ {
		b.wg.Add(1)
		go b.worker()
	}

	return b
}

func (b *Bus) Publish(evt AchievementEvent) {
	select {
	case b.ch <- evt:
	default:
		log.Printf("⚠️ achievement bus buffer full, dropping %s event for user %s", evt.Type, evt.UserID)
	}
}

func (b *Bus) worker() {
	defer b.wg.Done()

	for {
		select {
		case evt := <-b.ch:
			b.dispatch(evt)
		case <-b.quit:
			// Drain whatever is still buffered before exiting.
			for {
				select {
				case evt := <-b.ch:
					b.dispatch(evt)
				default:
					return
				}
			}
		}
	}
}

func (b *Bus) dispatch(evt AchievementEvent) {
	for _, c := range b.consumers {
		b.deliver(c, evt)
	}
}

func (b *Bus) deliver(c Consumer, evt AchievementEvent) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ achievement consumer %s panicked on %s event for user %s: %v", c.Name(), evt.Type, evt.UserID, r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), consumerTimeout)
	defer cancel()

	if err := c.Handle(ctx, evt); err != nil {
		log.Printf("❌ achievement consumer %s failed on %s event for user %s: %v", c.Name(), evt.Type, evt.UserID, err)
	}
}

// Close stops the workers after draining buffered events.
func (b *Bus) Close() {
	b.closeOnce.Do(func() {
		close(b.quit)
	})
	b.wg.Wait()
}
