// Package media abstracts the playable-media resource behind a small event
// stream so the playback state machine can be driven by a fake in tests and
// by mpv in production.
package media

// EventKind enumerates the resource signals the playback controller consumes.
type EventKind int

const (
	// EventReady fires once per load when the resource can start playing.
	EventReady EventKind = iota
	// EventDuration carries the track duration once metadata is known.
	EventDuration
	// EventTime is the periodic position report while the resource plays.
	EventTime
	// EventEnded fires on natural end of track only, never on replace/stop.
	EventEnded
	// EventError reports a load or playback failure.
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventReady:
		return "ready"
	case EventDuration:
		return "duration"
	case EventTime:
		return "time"
	case EventEnded:
		return "ended"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is one resource signal. Seconds is meaningful for Duration and Time,
// Err for Error.
type Event struct {
	Kind    EventKind
	Seconds float64
	Err     error
}

// Resource is a playable media handle. Load replaces the current source,
// implicitly cancelling any in-flight load. Volume is a fraction in [0,1];
// Seek takes absolute seconds.
type Resource interface {
	Load(url string, headers map[string]string) error
	Play() error
	Pause() error
	Seek(seconds float64) error
	SetVolume(v float64) error
	Events() <-chan Event
	Close() error
}
