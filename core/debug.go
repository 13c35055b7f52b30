package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// TimerEvent captures a timer operation for post-mortem analysis
type TimerEvent struct {
	EventType uint8   // Event type code
	Timer     TimerID // Timer the operation targeted
	Seq       uint32  // Monotonic event number
	Value1    uint32  // Context-dependent value
	Value2    uint32  // Context-dependent value
}

// Event type codes
const (
	EvtInit       = 1 // Init verified
	EvtReset      = 2 // Counters reloaded
	EvtStart      = 3 // Enable bit set
	EvtStop       = 4 // Enable bit cleared
	EvtReadRetry  = 5 // Counter read needed more than one attempt (v1=attempts, v2=upper)
	EvtVerifyFail = 6 // Init readback mismatch (v1=tcr0, v2=tcr1)
)

const (
	EventRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled echoes every recorded event through debugPrintln
	debugEnabled bool = false

	eventRing     [EventRingSize]TimerEvent
	eventRingHead uint8
	eventSeq      uint32
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, a logger, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// RecordEvent captures a timer event in the ring buffer
func RecordEvent(eventType uint8, id TimerID, value1, value2 uint32) {
	eventSeq++
	idx := eventRingHead
	eventRing[idx] = TimerEvent{
		EventType: eventType,
		Timer:     id,
		Seq:       eventSeq,
		Value1:    value1,
		Value2:    value2,
	}
	eventRingHead = (idx + 1) % EventRingSize

	if debugEnabled {
		DebugPrintln(formatEvent(&eventRing[idx]))
	}
}

// Events returns the recorded events, oldest first
func Events() []TimerEvent {
	events := make([]TimerEvent, 0, EventRingSize)
	start := eventRingHead
	for i := uint8(0); i < EventRingSize; i++ {
		evt := eventRing[(start+i)%EventRingSize]
		if evt.EventType == 0 {
			continue // Empty slot
		}
		events = append(events, evt)
	}
	return events
}

// DumpEventRing outputs the event ring buffer (call on shutdown/error)
func DumpEventRing() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[TIMER] === Event Ring Dump ===")
	for _, evt := range Events() {
		debugPrintln(formatEvent(&evt))
	}
	debugPrintln("[TIMER] === End Dump ===")
}

// ClearEventRing clears the event buffer
func ClearEventRing() {
	for i := range eventRing {
		eventRing[i] = TimerEvent{}
	}
	eventRingHead = 0
}

func eventName(eventType uint8) string {
	switch eventType {
	case EvtInit:
		return "INIT"
	case EvtReset:
		return "RESET"
	case EvtStart:
		return "START"
	case EvtStop:
		return "STOP"
	case EvtReadRetry:
		return "READ_RETRY"
	case EvtVerifyFail:
		return "VERIFY_FAIL!"
	default:
		return "UNKNOWN"
	}
}

func formatEvent(evt *TimerEvent) string {
	return "[TIMER] #" + utoa(evt.Seq) + " " + eventName(evt.EventType) +
		" " + evt.Timer.String() +
		" v1=" + hex32(evt.Value1) +
		" v2=" + hex32(evt.Value2)
}

func (evt TimerEvent) String() string {
	return formatEvent(&evt)
}
