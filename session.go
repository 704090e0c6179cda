package mqtt5

import (
	"context"
	"sync"
	"time"

	"github.com/golang-io/mqtt5/packet"
	"github.com/golang-io/mqtt5/queue"
	"github.com/golang-io/mqtt5/topic"
)

// ackState is an outgoing_in_flight record's position in the QoS 1/2
// handshake (§3, §4.5 step 4).
type ackState uint8

const (
	PendingAck ackState = iota
	PendingRec
	PendingComp
)

func (s ackState) String() string {
	switch s {
	case PendingAck:
		return "PendingAck"
	case PendingRec:
		return "PendingRec"
	case PendingComp:
		return "PendingComp"
	default:
		return "unknown"
	}
}

// PublishResult is delivered to the caller of Publish once a QoS>0
// flow reaches a terminal state (or is abandoned on SessionLost).
type PublishResult struct {
	ReasonCode packet.ReasonCode
	Err        error
}

// outgoingRecord is one entry of outgoing_in_flight (§3): a publish
// awaiting acknowledgement, plus the channel its caller is blocked on.
type outgoingRecord struct {
	pkt        *packet.PUBLISH
	qos        uint8
	state      ackState
	sendCount  int
	lastSentAt time.Time
	done       chan PublishResult
}

// BrokerCaps mirrors the most recently received CONNACK's negotiated
// limits (§3's broker_caps).
type BrokerCaps struct {
	ReceiveMaximum                uint16
	MaximumQoS                    uint8
	RetainAvailable               bool
	WildcardSubscriptionAvailable bool
	SubscriptionIDsAvailable      bool
	SharedSubscriptionAvailable   bool
	TopicAliasMaximum             uint16
	ServerKeepAlive               uint16
	AssignedClientIdentifier      string
	MaximumPacketSize             uint32
}

// Handler processes one delivered message for a matched subscription.
type Handler func(msg *packet.Message, props *packet.PublishProperties) error

// Session holds the client's protocol state (§5 "Shared resources"):
// outgoing_in_flight, incoming_in_flight, the packet-identifier
// counter, the subscription registry and handler table, and the
// broker's negotiated caps. New creates one Session per Client and it
// outlives individual connections. It is reached from the dispatcher,
// the handshake and the goroutines calling Publish, Subscribe and
// Unsubscribe; s.mu guards nextID, the handler table and the alias
// tables. Outbound PUBLISH identifiers come from ReserveOutgoing and
// SUBSCRIBE/UNSUBSCRIBE identifiers from AssignID.
type Session struct {
	mu     sync.Mutex
	nextID uint16

	outgoing *queue.Store[*outgoingRecord]
	incoming *queue.Store[struct{}] // incoming_in_flight dup-suppression set (I4)

	registry *topic.Registry
	handlers map[uint32]Handler

	aliasIn  map[uint16]string // inbound topic-alias table, reset every connect
	aliasOut map[string]uint16 // outbound topic-alias table, reset every connect

	Caps BrokerCaps
}

// NewSession builds a Session whose outgoing window admits at most
// clientMax concurrent records and whose inbound dup-suppression /
// local Receive-Maximum-enforcement set admits at most clientMax
// concurrent unacknowledged QoS 2 deliveries (Open Question (a): this
// implementation chooses to enforce the limit locally and close with
// ErrReceiveMaximumExceeded on violation, see DESIGN.md).
func NewSession(clientMax uint16) *Session {
	return &Session{
		nextID:   0,
		outgoing: queue.NewStore[*outgoingRecord](int64(clientMax)),
		incoming: queue.NewStore[struct{}](int64(clientMax)),
		registry: topic.NewRegistry(),
		handlers: make(map[uint32]Handler),
		aliasIn:  make(map[uint16]string),
		aliasOut: make(map[string]uint16),
	}
}

// nextPacketID implements §4.5 step 2: probe starting at the stored
// counter, incrementing modulo 65535 and skipping 0, until an
// identifier not already present in outgoing_in_flight is found.
// Callers must hold s.mu.
func (s *Session) nextPacketID() uint16 {
	for {
		s.nextID++
		if s.nextID == 0 {
			s.nextID = 1
		}
		if !s.outgoing.Has(s.nextID) {
			return s.nextID
		}
	}
}

// AssignID reserves the next free packet identifier under the lock
// that also guards nextID. Used by callers that track their own
// acknowledgement channel outside outgoing_in_flight (Subscribe,
// Unsubscribe); outbound PUBLISH must use ReserveOutgoing instead, so
// identifier assignment and the outgoing_in_flight insert happen
// atomically.
func (s *Session) AssignID() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextPacketID()
}

// ReserveOutgoing assigns a packet identifier and inserts rec into
// outgoing_in_flight as one atomic step, blocking until a window slot
// is free (invariant I2). A separate AssignID-then-Add would leave a
// gap where two concurrent Publish calls could both observe the same
// free id before either inserted, violating I1; holding s.mu across
// the insert (not just the id pick) closes it.
func (s *Session) ReserveOutgoing(ctx context.Context, rec *outgoingRecord) (uint16, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextPacketID()
	if err := s.outgoing.Add(ctx, id, rec); err != nil {
		return 0, err
	}
	return id, nil
}

// Subscribe registers filter with handler and returns the subscription
// identifier SUBSCRIBE should carry.
func (s *Session) Subscribe(filter string, h Handler) (uint32, error) {
	id, err := s.registry.Subscribe(filter)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	s.handlers[id] = h
	s.mu.Unlock()
	return id, nil
}

// Unsubscribe removes filter from the registry. Its entry in the
// handler table stays, but Dispatch no longer reaches it.
func (s *Session) Unsubscribe(filter string) {
	s.registry.Unsubscribe(filter)
}

// Dispatch resolves a topic name (already alias-resolved by the
// caller) against the registry and invokes every matching handler,
// falling back to fallback when nothing matches or no matching filter
// has a non-nil handler (§4.6 step "match the topic against the
// subscription registry").
func (s *Session) Dispatch(msg *packet.Message, props *packet.PublishProperties, fallback Handler) {
	matches := s.registry.Match(msg.TopicName)
	if len(matches) == 0 {
		if fallback != nil {
			_ = fallback(msg, props)
		}
		return
	}
	seen := make(map[uint32]bool, len(matches))
	s.mu.Lock()
	var toRun []Handler
	for _, m := range matches {
		if seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		if h, ok := s.handlers[m.ID]; ok && h != nil {
			toRun = append(toRun, h)
		}
	}
	s.mu.Unlock()
	if len(toRun) == 0 {
		if fallback != nil {
			_ = fallback(msg, props)
		}
		return
	}
	for _, h := range toRun {
		_ = h(msg, props)
	}
}

// ResolveInboundAlias applies the topic-alias table to an inbound
// PUBLISH: an empty topic name with a nonzero alias is replaced by the
// name last bound to that alias; a nonempty topic name with a nonzero
// alias (re)binds the alias.
func (s *Session) ResolveInboundAlias(topicName string, alias uint16) (string, error) {
	if alias == 0 {
		return topicName, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if topicName != "" {
		s.aliasIn[alias] = topicName
		return topicName, nil
	}
	name, ok := s.aliasIn[alias]
	if !ok {
		return "", ErrProtocol
	}
	return name, nil
}

// ResetForNewConnection clears the per-connection alias tables; called
// on every fresh CONNECT, since alias bindings do not survive a new
// network connection even when the session itself is resumed.
func (s *Session) ResetForNewConnection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aliasIn = make(map[uint16]string)
	s.aliasOut = make(map[string]uint16)
}

// ClearOutgoing abandons every outgoing_in_flight record, used when a
// reconnect reports SessionPresent=false (§4.5 step 6). Every pending
// caller is woken with SessionLost.
func (s *Session) ClearOutgoing() {
	for _, rec := range s.outgoing.Clear() {
		select {
		case rec.done <- PublishResult{Err: ErrSessionLost}:
		default:
		}
	}
}

// ResendOnResume returns every record that must be re-sent after a
// reconnect with SessionPresent=true (§4.5 step 5): PUBLISH with DUP=1
// for PendingAck/PendingRec, PUBREL for PendingComp.
func (s *Session) ResendOnResume() []*outgoingRecord {
	var recs []*outgoingRecord
	for _, id := range s.outgoing.Keys() {
		if rec, ok := s.outgoing.Get(id); ok {
			recs = append(recs, rec)
		}
	}
	return recs
}
