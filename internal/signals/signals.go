package signals

import "strings"

// Signal is a bit flag identifying one event class raised by the
// pipeline tasks and consumed by the supervisor.
type Signal uint32

// The closed set of signals the pipeline can raise.
const (
	// ProducerEnqueueOK indicates the producer enqueued a value.
	ProducerEnqueueOK Signal = 1 << iota

	// ProducerEnqueueFailed indicates the producer found the queue full
	// and dropped a value.
	ProducerEnqueueFailed

	// ConsumerDequeueOK indicates the consumer dequeued a value.
	ConsumerDequeueOK

	// ConsumerTimeoutLight indicates the consumer crossed its light
	// failure threshold (observation only).
	ConsumerTimeoutLight

	// ConsumerTimeoutModerate indicates the consumer crossed its
	// moderate failure threshold and flushed the queue.
	ConsumerTimeoutModerate

	// ConsumerTimeoutAggressive indicates the consumer crossed its
	// aggressive failure threshold and requested a process restart.
	ConsumerTimeoutAggressive
)

// All is the mask covering every defined signal.
const All = ProducerEnqueueOK |
	ProducerEnqueueFailed |
	ConsumerDequeueOK |
	ConsumerTimeoutLight |
	ConsumerTimeoutModerate |
	ConsumerTimeoutAggressive

var names = map[Signal]string{
	ProducerEnqueueOK:         "producer_enqueue_ok",
	ProducerEnqueueFailed:     "producer_enqueue_failed",
	ConsumerDequeueOK:         "consumer_dequeue_ok",
	ConsumerTimeoutLight:      "consumer_timeout_light",
	ConsumerTimeoutModerate:   "consumer_timeout_moderate",
	ConsumerTimeoutAggressive: "consumer_timeout_aggressive",
}

// Has reports whether every bit in flag is set in s.
func (s Signal) Has(flag Signal) bool {
	return s&flag == flag
}

// Split returns the individual signals set in s, in ascending bit order.
func (s Signal) Split() []Signal {
	var out []Signal
	for bit := ProducerEnqueueOK; bit <= ConsumerTimeoutAggressive; bit <<= 1 {
		if s&bit != 0 {
			out = append(out, bit)
		}
	}
	return out
}

// String renders s as a pipe-separated list of signal names.
func (s Signal) String() string {
	if s == 0 {
		return "none"
	}
	var parts []string
	for _, bit := range s.Split() {
		if name, ok := names[bit]; ok {
			parts = append(parts, name)
		}
	}
	if len(parts) == 0 {
		return "unknown"
	}
	return strings.Join(parts, "|")
}
