// Package playback binds the playlist engine's intent (what should play) to a
// media resource (what is actually playing).
package playback

import (
	"log/slog"

	"github.com/soniq/soniq/internal/media"
	"github.com/soniq/soniq/internal/playlist"
)

// State is the lifecycle of the media resource for the current track.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StatePlaying
	StatePaused
	StateEnded
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateEnded:
		return "ended"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Controller runs the playback state machine. It reacts to two inputs: the
// engine's current track and play/pause intent (via Sync) and the resource's
// event stream (via HandleEvent). It owns only the live resource handle plus
// the mirrored time/duration/volume; track selection stays with the engine.
type Controller struct {
	res    media.Resource
	engine *playlist.Engine
	logger *slog.Logger

	state      State
	currentURI string
	position   float64
	duration   float64
	volume     float64
	lastErr    error
}

func New(res media.Resource, engine *playlist.Engine, logger *slog.Logger, initialVolume float64) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		res:    res,
		engine: engine,
		logger: logger,
		state:  StateIdle,
	}
	c.SetVolume(initialVolume)
	return c
}

func (c *Controller) State() State      { return c.state }
func (c *Controller) Position() float64 { return c.position }
func (c *Controller) Duration() float64 { return c.duration }
func (c *Controller) Volume() float64   { return c.volume }
func (c *Controller) Err() error        { return c.lastErr }

// Sync aligns the resource with the engine. Call it after any engine change:
// a new current track (by media URI identity) triggers a load; otherwise the
// play/pause intent is reconciled.
func (c *Controller) Sync() {
	track, ok := c.engine.Current()
	if !ok {
		return
	}
	if track.TrackFile != c.currentURI {
		if c.state == StatePlaying {
			_ = c.res.Pause()
		}
		c.currentURI = track.TrackFile
		c.position = 0
		c.duration = 0
		c.lastErr = nil
		if err := c.res.Load(track.TrackFile, nil); err != nil {
			c.fail(err)
			return
		}
		c.state = StateLoading
		c.logger.Debug("loading track", slog.Int("id", track.ID), slog.String("name", track.Name))
		return
	}

	if c.engine.IsPlaying() {
		switch c.state {
		case StateReady, StatePaused:
			c.startPlayback()
		case StateEnded:
			c.restart()
		}
	} else if c.state == StatePlaying {
		if err := c.res.Pause(); err != nil {
			c.fail(err)
			return
		}
		c.state = StatePaused
	}
}

// HandleEvent applies one resource event to the state machine.
func (c *Controller) HandleEvent(ev media.Event) {
	switch ev.Kind {
	case media.EventReady:
		if c.state != StateLoading {
			return
		}
		c.state = StateReady
		if c.engine.IsPlaying() {
			c.startPlayback()
		}
	case media.EventDuration:
		// Latched once per track; a new load resets it.
		if c.duration == 0 {
			c.duration = ev.Seconds
		}
	case media.EventTime:
		c.position = ev.Seconds
	case media.EventEnded:
		c.handleEnded()
	case media.EventError:
		c.fail(ev.Err)
	}
}

// handleEnded applies the end-of-track policy: repeat restarts the same track
// from zero, otherwise the engine picks the next track. A boundary no-op
// leaves playback stopped on the last track.
func (c *Controller) handleEnded() {
	if c.engine.IsRepeating() {
		c.restart()
		return
	}
	c.state = StateEnded
	before, hadCurrent := c.engine.Current()
	c.engine.PlayNext()
	after, ok := c.engine.Current()
	if !ok || (hadCurrent && after.ID == before.ID) {
		c.engine.SetPlaying(false)
		return
	}
	c.Sync()
}

// Play records the play intent and starts the resource if it is startable.
// In Loading state the intent alone is enough: playback starts on Ready.
func (c *Controller) Play() {
	c.engine.SetPlaying(true)
	switch c.state {
	case StateReady, StatePaused:
		c.startPlayback()
	case StateEnded:
		c.restart()
	}
}

func (c *Controller) Pause() {
	c.engine.SetPlaying(false)
	if c.state == StatePlaying {
		if err := c.res.Pause(); err != nil {
			c.fail(err)
			return
		}
		c.state = StatePaused
	}
}

func (c *Controller) Toggle() {
	if c.engine.IsPlaying() {
		c.Pause()
	} else {
		c.Play()
	}
}

// Seek jumps to an absolute position. Meaningful only once the duration is
// known; the input is clamped to [0, duration] and the position updated
// optimistically, the resource will confirm with its own time report.
func (c *Controller) Seek(seconds float64) {
	if c.duration <= 0 {
		return
	}
	if seconds < 0 {
		seconds = 0
	}
	if seconds > c.duration {
		seconds = c.duration
	}
	if err := c.res.Seek(seconds); err != nil {
		c.fail(err)
		return
	}
	c.position = seconds
}

// SeekBy seeks relative to the current position.
func (c *Controller) SeekBy(delta float64) {
	c.Seek(c.position + delta)
}

// SetVolume clamps to [0,1] and applies immediately regardless of state.
func (c *Controller) SetVolume(v float64) {
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	c.volume = v
	if err := c.res.SetVolume(v); err != nil {
		c.logger.Warn("set volume", slog.Any("err", err))
	}
}

func (c *Controller) startPlayback() {
	if err := c.res.Play(); err != nil {
		c.fail(err)
		return
	}
	c.state = StatePlaying
}

func (c *Controller) restart() {
	if err := c.res.Seek(0); err != nil {
		c.fail(err)
		return
	}
	c.position = 0
	c.engine.SetPlaying(true)
	c.startPlayback()
}

// fail stops playback without touching the current track: no auto-advance on
// error, a broken stream must not cascade into an error loop.
func (c *Controller) fail(err error) {
	c.state = StateError
	c.lastErr = err
	c.engine.SetPlaying(false)
	c.logger.Error("playback failure", slog.Any("err", err))
}
