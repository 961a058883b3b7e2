package mqtt

import (
	"github.com/sweeney/touch-sensor/internal/logic"
)

// FakePublisher records what the daemon publishes, in order, and answers
// per-button questions about the touch events it saw.
type FakePublisher struct {
	Events   []logic.Event
	Payloads [][]byte

	SystemEvents   []SystemEvent
	SystemPayloads [][]byte

	// PublishError fails every Publish. ButtonErrors fails Publish only for
	// events from the named buttons.
	PublishError error
	ButtonErrors map[string]error

	PublishSystemError error

	Closed    bool
	Connected bool
}

// NewFakePublisher creates an empty FakePublisher.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// FailButton makes Publish return err for events from button.
func (f *FakePublisher) FailButton(button string, err error) {
	if f.ButtonErrors == nil {
		f.ButtonErrors = make(map[string]error)
	}
	f.ButtonErrors[button] = err
}

// Publish formats and records the event unless a failure is configured for it.
func (f *FakePublisher) Publish(event logic.Event) error {
	if f.PublishError != nil {
		return f.PublishError
	}
	if err := f.ButtonErrors[event.Button]; err != nil {
		return err
	}

	payload, err := FormatPayload(event)
	if err != nil {
		return err
	}
	f.Events = append(f.Events, event)
	f.Payloads = append(f.Payloads, payload)
	return nil
}

func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemEvents = append(f.SystemEvents, event)
	f.SystemPayloads = append(f.SystemPayloads, payload)
	return nil
}

// EventsFor returns the recorded events of one button, oldest first.
func (f *FakePublisher) EventsFor(button string) []logic.Event {
	var out []logic.Event
	for _, e := range f.Events {
		if e.Button == button {
			out = append(out, e)
		}
	}
	return out
}

// LastType returns the type of the newest event from button.
func (f *FakePublisher) LastType(button string) (logic.EventType, bool) {
	for i := len(f.Events) - 1; i >= 0; i-- {
		if f.Events[i].Button == button {
			return f.Events[i].Type, true
		}
	}
	return "", false
}

// Count returns how many events of typ button produced.
func (f *FakePublisher) Count(button string, typ logic.EventType) int {
	n := 0
	for _, e := range f.Events {
		if e.Button == button && e.Type == typ {
			n++
		}
	}
	return n
}

// Sequence lists the recorded events as "button:TYPE".
func (f *FakePublisher) Sequence() []string {
	out := make([]string, 0, len(f.Events))
	for _, e := range f.Events {
		out = append(out, e.Button+":"+string(e.Type))
	}
	return out
}

// SystemNames lists the recorded system event names in order.
func (f *FakePublisher) SystemNames() []string {
	out := make([]string, 0, len(f.SystemEvents))
	for _, e := range f.SystemEvents {
		out = append(out, e.Event)
	}
	return out
}

func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}

// Reset returns the fake to its freshly created state.
func (f *FakePublisher) Reset() {
	*f = FakePublisher{}
}
