package mqtt5

import (
	"log"

	"github.com/golang-io/mqtt5/packet"
)

// Events is the narrow set of named hooks an outer layer can subscribe
// to (§4.8). Handlers run off the dispatch thread on a bounded work
// queue; if that queue is saturated, the event is dropped — protocol
// packets are never dropped, only notifications about them.
type Events struct {
	BeforeConnect     func()
	AfterConnect      func(sessionPresent bool, caps BrokerCaps)
	BeforeSubscribe   func(filters []packet.Subscription)
	AfterSubscribe    func(reasonCodes []packet.ReasonCode)
	BeforeUnsubscribe func(filters []string)
	AfterUnsubscribe  func(reasonCodes []packet.ReasonCode)
	OnMessageReceived func(msg *packet.Message, props *packet.PublishProperties)
	AfterDisconnect   func(err error)
	OnPacketSent      func(pkt packet.Packet)
	OnPacketReceived  func(pkt packet.Packet)
}

// eventBus runs an Events consumer's callbacks off a bounded channel
// so a slow user callback cannot stall the reader/writer/dispatcher
// tasks that feed it.
type eventBus struct {
	work chan func()
	stop chan struct{}
}

func newEventBus(capacity int) *eventBus {
	if capacity <= 0 {
		capacity = 256
	}
	b := &eventBus{work: make(chan func(), capacity), stop: make(chan struct{})}
	go b.run()
	return b
}

func (b *eventBus) run() {
	for {
		select {
		case fn := <-b.work:
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.Printf("mqtt5: event handler panic: %v", r)
					}
				}()
				fn()
			}()
		case <-b.stop:
			return
		}
	}
}

// emit enqueues fn for execution on the event goroutine. If the queue
// is full, fn is dropped and a log line records the drop.
func (b *eventBus) emit(fn func()) {
	if fn == nil {
		return
	}
	select {
	case b.work <- fn:
	default:
		log.Printf("mqtt5: event queue saturated, dropping notification")
	}
}

func (b *eventBus) close() {
	close(b.stop)
}
