// Package playlist owns the ordered track collection, the shuffle and repeat
// modes, and the "current track" pointer that decides what plays next.
package playlist

import (
	"math/rand"

	"github.com/soniq/soniq/internal/api"
)

// Engine holds the working playlist and its derived shuffled view. The active
// view is the shuffled permutation while shuffle is on, otherwise the base
// order. The current track is matched by id, so it may be any track, not
// necessarily a playlist member; next/previous on a non-member is a no-op.
type Engine struct {
	tracks   []api.Track
	shuffled []api.Track

	current   *api.Track
	playing   bool
	shuffling bool
	repeating bool
}

func New() *Engine {
	return &Engine{}
}

// SetPlaylist replaces the ordered collection. While shuffle is on, the
// shuffled view is recomputed from the new collection as a fresh permutation.
// The current track is left untouched.
func (e *Engine) SetPlaylist(tracks []api.Track) {
	e.tracks = make([]api.Track, len(tracks))
	copy(e.tracks, tracks)
	if e.shuffling {
		e.shuffled = shuffleTracks(e.tracks)
	}
}

// Tracks returns a copy of the base playlist.
func (e *Engine) Tracks() []api.Track {
	out := make([]api.Track, len(e.tracks))
	copy(out, e.tracks)
	return out
}

func (e *Engine) Len() int { return len(e.tracks) }

// ActiveView returns the list navigation operates over: the shuffled view if
// shuffle is on, the base playlist otherwise.
func (e *Engine) ActiveView() []api.Track {
	if e.shuffling {
		return e.shuffled
	}
	return e.tracks
}

// SetCurrent makes track current and starts playing. The track is accepted
// without membership validation: header and manual picks play fine, they just
// have no next/previous neighbors.
func (e *Engine) SetCurrent(track api.Track) {
	t := track
	e.current = &t
	e.playing = true
}

// Current returns the current track, if any.
func (e *Engine) Current() (api.Track, bool) {
	if e.current == nil {
		return api.Track{}, false
	}
	return *e.current, true
}

func (e *Engine) IsPlaying() bool       { return e.playing }
func (e *Engine) SetPlaying(play bool)  { e.playing = play }
func (e *Engine) TogglePlayPause()      { e.playing = !e.playing }
func (e *Engine) IsShuffled() bool      { return e.shuffling }
func (e *Engine) IsRepeating() bool     { return e.repeating }
func (e *Engine) ToggleRepeat()         { e.repeating = !e.repeating }

// ToggleShuffle flips shuffle mode. Turning it on computes a fresh uniform
// permutation of the current playlist; each enable reshuffles independently
// of any previous shuffle. Turning it off discards the shuffled view.
func (e *Engine) ToggleShuffle() {
	e.shuffling = !e.shuffling
	if e.shuffling {
		e.shuffled = shuffleTracks(e.tracks)
	} else {
		e.shuffled = nil
	}
}

// PlayNext advances to the next track in the active view. With no current
// track it jumps to the first element. At the last element, or when the
// current track is not in the view, nothing happens; there is no wraparound.
func (e *Engine) PlayNext() {
	if len(e.tracks) == 0 {
		return
	}
	view := e.ActiveView()
	if e.current == nil {
		e.SetCurrent(view[0])
		return
	}
	idx := indexByID(view, e.current.ID)
	if idx >= 0 && idx < len(view)-1 {
		e.SetCurrent(view[idx+1])
	}
}

// PlayPrevious moves to the previous track in the active view. With no
// current track it jumps to the last element. At the first element, or when
// the current track is not in the view, nothing happens.
func (e *Engine) PlayPrevious() {
	if len(e.tracks) == 0 {
		return
	}
	view := e.ActiveView()
	if e.current == nil {
		e.SetCurrent(view[len(view)-1])
		return
	}
	idx := indexByID(view, e.current.ID)
	if idx > 0 {
		e.SetCurrent(view[idx-1])
	}
}

// indexByID finds the first track with the given id, -1 when absent.
func indexByID(view []api.Track, id int) int {
	for i, t := range view {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func shuffleTracks(tracks []api.Track) []api.Track {
	out := make([]api.Track, len(tracks))
	copy(out, tracks)
	rand.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
