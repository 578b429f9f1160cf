// Package favorites keeps the signed-in user's liked tracks in sync with the
// server. The local list is only ever mutated on a confirmed server response.
package favorites

import (
	"context"
	"errors"
	"log/slog"

	"github.com/soniq/soniq/internal/api"
	"github.com/soniq/soniq/internal/auth"
)

// ErrAuthRequired is returned before any network call when the session cannot
// possibly complete an authenticated request.
var ErrAuthRequired = errors.New("favorites: sign in required")

// Controller owns the favorite-track list for the current session.
type Controller struct {
	client  *api.Client
	session *auth.Manager
	logger  *slog.Logger

	tracks []api.Track
}

func New(client *api.Client, session *auth.Manager, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{client: client, session: session, logger: logger}
}

// Tracks returns the favorites in server order.
func (c *Controller) Tracks() []api.Track {
	out := make([]api.Track, len(c.tracks))
	copy(out, c.tracks)
	return out
}

func (c *Controller) Len() int { return len(c.tracks) }

// IsFavorite reports whether the track id is in the loaded favorites.
func (c *Controller) IsFavorite(id int) bool {
	return c.indexOf(id) >= 0
}

// Load fetches the user's favorites, refreshing the access token once if it
// has gone stale.
func (c *Controller) Load(ctx context.Context) error {
	if !c.session.IsAuthenticated() {
		return ErrAuthRequired
	}
	tracks, err := auth.WithReauth(ctx, c.session, func(ctx context.Context, access string) ([]api.Track, error) {
		return c.client.FavoriteTracks(ctx, access)
	})
	if err != nil {
		return err
	}
	c.tracks = tracks
	c.logger.Debug("favorites loaded", slog.Int("count", len(tracks)))
	return nil
}

// Toggle flips the favorite status of the track on the server and mirrors the
// confirmed result locally. Without a usable session it fails fast with
// ErrAuthRequired and touches neither the network nor the local list.
func (c *Controller) Toggle(ctx context.Context, track api.Track) error {
	if !c.session.IsAuthenticated() {
		return ErrAuthRequired
	}
	if c.IsFavorite(track.ID) {
		return c.remove(ctx, track.ID)
	}
	return c.add(ctx, track)
}

func (c *Controller) add(ctx context.Context, track api.Track) error {
	confirmed, err := auth.WithReauth(ctx, c.session, func(ctx context.Context, access string) (api.Track, error) {
		return c.client.AddFavorite(ctx, access, track.ID)
	})
	if err != nil {
		return err
	}
	// The server's copy wins over whatever the caller passed in.
	c.tracks = append(c.tracks, confirmed)
	return nil
}

func (c *Controller) remove(ctx context.Context, id int) error {
	_, err := auth.WithReauth(ctx, c.session, func(ctx context.Context, access string) (struct{}, error) {
		return struct{}{}, c.client.RemoveFavorite(ctx, access, id)
	})
	if err != nil {
		return err
	}
	if i := c.indexOf(id); i >= 0 {
		c.tracks = append(c.tracks[:i], c.tracks[i+1:]...)
	}
	return nil
}

// Clear drops the local list, for sign-out.
func (c *Controller) Clear() {
	c.tracks = nil
}

func (c *Controller) indexOf(id int) int {
	for i, tr := range c.tracks {
		if tr.ID == id {
			return i
		}
	}
	return -1
}
