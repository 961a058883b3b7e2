package mqtt

import log "github.com/sirupsen/logrus"

// pendingMsg is a serialized message held for replay after reconnection.
type pendingMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// backlog is a fixed-capacity FIFO of messages published while disconnected.
// When full, the oldest message is overwritten.
// Not safe for concurrent use; RealPublisher holds its mutex around it.
type backlog struct {
	msgs    []pendingMsg
	next    int // slot the next push writes
	n       int
	dropped int // messages overwritten since the last pop
}

func newBacklog(capacity int) *backlog {
	return &backlog{msgs: make([]pendingMsg, capacity)}
}

func (b *backlog) push(msg pendingMsg) {
	if b.n == len(b.msgs) {
		if b.dropped == 0 {
			log.WithField("capacity", len(b.msgs)).Warn("mqtt: backlog full, dropping oldest")
		}
		b.dropped++
	} else {
		b.n++
	}
	b.msgs[b.next] = msg
	b.next = (b.next + 1) % len(b.msgs)
}

// pop removes and returns the oldest held message.
func (b *backlog) pop() (pendingMsg, bool) {
	if b.n == 0 {
		return pendingMsg{}, false
	}
	if b.dropped > 0 {
		log.WithField("dropped", b.dropped).Warn("mqtt: backlog overflowed while disconnected")
		b.dropped = 0
	}

	oldest := (b.next - b.n + len(b.msgs)) % len(b.msgs)
	msg := b.msgs[oldest]
	b.msgs[oldest] = pendingMsg{}
	b.n--
	return msg, true
}

func (b *backlog) len() int {
	return b.n
}
