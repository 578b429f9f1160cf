// Package app is the bubbletea front end: screens, key handling and the
// message plumbing between the API, the playlist engine and the playback
// controller.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/soniq/soniq/internal/api"
	"github.com/soniq/soniq/internal/auth"
	"github.com/soniq/soniq/internal/config"
	"github.com/soniq/soniq/internal/favorites"
	"github.com/soniq/soniq/internal/media"
	"github.com/soniq/soniq/internal/playback"
	"github.com/soniq/soniq/internal/playlist"
	"github.com/soniq/soniq/internal/ui"
)

type screen int

const (
	screenSignIn screen = iota
	screenSignUp
	screenCatalog
	screenSelections
	screenSelectionDetail
	screenFavorites
	screenNowPlaying
)

type Model struct {
	cfg     *config.Config
	client  *api.Client
	session *auth.Manager
	engine  *playlist.Engine
	ctrl    *playback.Controller
	res     media.Resource
	favs    *favorites.Controller
	theme   ui.Theme

	screen   screen
	status   string
	errorMsg string
	fatalErr error

	catalog        []api.Track
	visible        []api.Track
	selections     []api.Selection
	selectionName  string
	selectionItems []api.Track

	selection int
	width     int
	height    int
	showHelp  bool

	// loadGen stamps async loads with the session they were issued under;
	// selGen does the same per selection fetch. A response whose stamp no
	// longer matches is dropped instead of applied.
	loadGen int
	selGen  int

	searching bool
	searchQ   string

	signIn signInForm
	signUp signUpForm

	palette     *PaletteState
	paletteOpen bool
}

func New(cfg *config.Config, client *api.Client, session *auth.Manager, res media.Resource, engine *playlist.Engine, ctrl *playback.Controller, favs *favorites.Controller) Model {
	m := Model{
		cfg:     cfg,
		client:  client,
		session: session,
		engine:  engine,
		ctrl:    ctrl,
		res:     res,
		favs:    favs,
		theme:   ui.GetTheme(cfg.UI.Theme, os.Getenv("NO_COLOR") != ""),
		screen:  screenSignIn,
		status:  "Sign in to listen",
		signIn:  newSignInForm(),
		signUp:  newSignUpForm(),
	}
	if session.IsAuthenticated() {
		m.screen = screenCatalog
		m.status = "Loading catalog…"
	}
	m.palette = NewPaletteState(NewCommandRegistry(&m))
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.watchMediaCmd(), textinputBlink()}
	if m.session.IsAuthenticated() {
		cmds = append(cmds, m.loadCatalogCmd(), m.loadSelectionsCmd(), m.loadFavoritesCmd())
	}
	return tea.Batch(cmds...)
}

// Messages

type catalogMsg struct {
	gen    int
	tracks []api.Track
	err    error
}

type selectionsMsg struct {
	gen        int
	selections []api.Selection
	err        error
}

type selectionMsg struct {
	gen int
	sel api.Selection
	err error
}

type authMsg struct {
	user api.User
	err  error
}

type signUpMsg struct {
	user api.User
	err  error
}

type favoritesLoadedMsg struct {
	gen int
	err error
}

type favoriteToggledMsg struct {
	track api.Track
	err   error
}

type mediaMsg media.Event

type clearErrorMsg struct{}

// Commands

func (m Model) loadCatalogCmd() tea.Cmd {
	gen := m.loadGen
	return func() tea.Msg {
		ctx, cancel := m.cfg.DeadlineContext()
		defer cancel()
		tracks, err := m.client.AllTracks(ctx)
		return catalogMsg{gen: gen, tracks: tracks, err: err}
	}
}

func (m Model) loadSelectionsCmd() tea.Cmd {
	gen := m.loadGen
	return func() tea.Msg {
		ctx, cancel := m.cfg.DeadlineContext()
		defer cancel()
		selections, err := m.client.AllSelections(ctx)
		return selectionsMsg{gen: gen, selections: selections, err: err}
	}
}

func (m Model) loadSelectionCmd(id int) tea.Cmd {
	gen := m.selGen
	return func() tea.Msg {
		ctx, cancel := m.cfg.DeadlineContext()
		defer cancel()
		sel, err := m.client.SelectionByID(ctx, id)
		return selectionMsg{gen: gen, sel: sel, err: err}
	}
}

func (m Model) loadFavoritesCmd() tea.Cmd {
	gen := m.loadGen
	return func() tea.Msg {
		ctx, cancel := m.cfg.DeadlineContext()
		defer cancel()
		return favoritesLoadedMsg{gen: gen, err: m.favs.Load(ctx)}
	}
}

// signInCmd validates credentials, then exchanges them for tokens. The two
// endpoints are separate on the service; both must succeed before the session
// is usable.
func (m Model) signInCmd(email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		user, err := m.session.Login(ctx, email, password)
		if err != nil {
			return authMsg{err: err}
		}
		if err := m.session.IssueTokens(ctx, email, password); err != nil {
			return authMsg{err: err}
		}
		return authMsg{user: user}
	}
}

func (m Model) signUpCmd(email, password, username string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		user, err := m.session.SignUp(ctx, email, password, username)
		return signUpMsg{user: user, err: err}
	}
}

func (m Model) toggleFavoriteCmd(track api.Track) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.cfg.DeadlineContext()
		defer cancel()
		return favoriteToggledMsg{track: track, err: m.favs.Toggle(ctx, track)}
	}
}

func (m Model) watchMediaCmd() tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-m.res.Events()
		if !ok {
			return nil
		}
		return mediaMsg(evt)
	}
}

func (m Model) clearErrorCmd() tea.Cmd {
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return clearErrorMsg{}
	})
}

func (m Model) setError(err error) (Model, tea.Cmd) {
	if errors.Is(err, favorites.ErrAuthRequired) || errors.Is(err, auth.ErrNotAuthenticated) {
		m.errorMsg = "sign in required"
	} else {
		m.errorMsg = err.Error()
	}
	return m, m.clearErrorCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case clearErrorMsg:
		m.errorMsg = ""
		return m, nil
	case mediaMsg:
		m.ctrl.HandleEvent(media.Event(msg))
		if msg.Kind == media.EventError && msg.Err != nil {
			next, cmd := m.setError(msg.Err)
			return next, tea.Batch(cmd, next.watchMediaCmd())
		}
		return m, m.watchMediaCmd()
	case catalogMsg:
		if msg.gen != m.loadGen {
			return m, nil
		}
		if msg.err != nil {
			return m.setError(msg.err)
		}
		m.catalog = msg.tracks
		m.visible = m.filterCatalog(m.searchQ)
		m.status = fmt.Sprintf("%d tracks", len(m.catalog))
		return m, nil
	case selectionsMsg:
		if msg.gen != m.loadGen {
			return m, nil
		}
		if msg.err != nil {
			return m.setError(msg.err)
		}
		m.selections = msg.selections
		return m, nil
	case selectionMsg:
		if msg.gen != m.selGen {
			return m, nil
		}
		if msg.err != nil {
			return m.setError(msg.err)
		}
		m.selectionName = msg.sel.Name
		m.selectionItems = m.resolveSelection(msg.sel)
		m.screen = screenSelectionDetail
		m.selection = 0
		m.status = fmt.Sprintf("%s: %d tracks", msg.sel.Name, len(m.selectionItems))
		return m, nil
	case authMsg:
		if msg.err != nil {
			return m.setError(msg.err)
		}
		m.screen = screenCatalog
		m.selection = 0
		m.status = "Welcome, " + msg.user.Username
		return m, tea.Batch(m.loadCatalogCmd(), m.loadSelectionsCmd(), m.loadFavoritesCmd())
	case signUpMsg:
		if msg.err != nil {
			return m.setError(msg.err)
		}
		m.screen = screenSignIn
		m.signIn = newSignInForm()
		m.signIn.email.SetValue(msg.user.Email)
		m.status = "Account created, sign in"
		return m, nil
	case favoritesLoadedMsg:
		if msg.gen != m.loadGen {
			return m, nil
		}
		if msg.err != nil {
			return m.setError(msg.err)
		}
		m.status = fmt.Sprintf("%d favorites", m.favs.Len())
		return m, nil
	case favoriteToggledMsg:
		if msg.err != nil {
			return m.setError(msg.err)
		}
		if m.favs.IsFavorite(msg.track.ID) {
			m.status = "Added to favorites: " + msg.track.Name
		} else {
			m.status = "Removed from favorites: " + msg.track.Name
		}
		if m.screen == screenFavorites {
			m.selection = clamp(m.selection, 0, maxInt(m.favs.Len()-1, 0))
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.screen {
	case screenSignIn:
		return m.updateSignIn(msg)
	case screenSignUp:
		return m.updateSignUp(msg)
	}
	if m.paletteOpen {
		return m.updatePalette(msg)
	}
	if m.searching {
		return m.updateSearch(msg)
	}

	keys := m.cfg.Keybindings
	s := msg.String()
	switch {
	case keyIs(s, keys.Quit):
		return m, tea.Quit
	case keyIs(s, keys.Help):
		m.showHelp = !m.showHelp
		return m, nil
	case s == "ctrl+p":
		m.paletteOpen = true
		m.palette.Reset()
		return m, nil
	case s == "tab":
		m.screen = nextScreen(m.screen)
		m.selection = 0
		return m, nil
	case s == "shift+tab":
		m.screen = prevScreen(m.screen)
		m.selection = 0
		return m, nil
	case s == "esc":
		if m.screen == screenSelectionDetail {
			m.screen = screenSelections
			m.selection = 0
		}
		m.selGen++
		return m, nil
	case s == "j" || s == "down":
		if m.selection < m.currentListLen()-1 {
			m.selection++
		}
		return m, nil
	case s == "k" || s == "up":
		if m.selection > 0 {
			m.selection--
		}
		return m, nil
	case s == "enter":
		return m.handleEnter()
	case keyIs(s, keys.PlayPause):
		m.ctrl.Toggle()
		return m, nil
	case keyIs(s, keys.NextTrack):
		m.engine.PlayNext()
		m.ctrl.Sync()
		return m, nil
	case keyIs(s, keys.PrevTrack):
		m.engine.PlayPrevious()
		m.ctrl.Sync()
		return m, nil
	case keyIs(s, keys.Shuffle):
		m.engine.ToggleShuffle()
		if m.engine.IsShuffled() {
			m.status = "Shuffle on"
		} else {
			m.status = "Shuffle off"
		}
		return m, nil
	case keyIs(s, keys.Repeat):
		m.engine.ToggleRepeat()
		if m.engine.IsRepeating() {
			m.status = "Repeat on"
		} else {
			m.status = "Repeat off"
		}
		return m, nil
	case keyIs(s, keys.SeekBackward):
		m.ctrl.SeekBy(-float64(m.cfg.Player.SeekSmall))
		return m, nil
	case keyIs(s, keys.SeekForward):
		m.ctrl.SeekBy(float64(m.cfg.Player.SeekSmall))
		return m, nil
	case s == "H":
		m.ctrl.SeekBy(-float64(m.cfg.Player.SeekLarge))
		return m, nil
	case s == "L":
		m.ctrl.SeekBy(float64(m.cfg.Player.SeekLarge))
		return m, nil
	case keyIs(s, keys.VolumeDown):
		m.ctrl.SetVolume(m.ctrl.Volume() - float64(m.cfg.Player.VolumeStep)/100)
		return m, nil
	case keyIs(s, keys.VolumeUp):
		m.ctrl.SetVolume(m.ctrl.Volume() + float64(m.cfg.Player.VolumeStep)/100)
		return m, nil
	case keyIs(s, keys.Favorite):
		if t, ok := m.targetTrack(); ok {
			return m, m.toggleFavoriteCmd(t)
		}
		return m, nil
	case keyIs(s, keys.Search):
		if m.screen == screenCatalog {
			m.searching = true
			m.searchQ = ""
			m.visible = m.filterCatalog("")
			m.status = "Type to filter, enter to keep, esc to clear"
		}
		return m, nil
	case keyIs(s, keys.Logout):
		return m.logout()
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		return m, nil
	case "esc":
		m.searching = false
		m.searchQ = ""
		m.visible = m.filterCatalog("")
		return m, nil
	case "backspace":
		if len(m.searchQ) > 0 {
			m.searchQ = m.searchQ[:len(m.searchQ)-1]
			m.visible = m.filterCatalog(m.searchQ)
			m.selection = 0
		}
		return m, nil
	default:
		if len(msg.Runes) == 1 {
			m.searchQ += msg.String()
			m.visible = m.filterCatalog(m.searchQ)
			m.selection = 0
		}
		return m, nil
	}
}

func (m Model) updatePalette(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+p":
		m.paletteOpen = false
		return m, nil
	case "enter":
		cmd := m.palette.SelectedCommand()
		m.paletteOpen = false
		if cmd == nil {
			return m, nil
		}
		return cmd.Handler(&m)
	case "up":
		m.palette.SelectUp()
		return m, nil
	case "down":
		m.palette.SelectDown()
		return m, nil
	case "backspace":
		m.palette.Backspace()
		return m, nil
	case "left":
		m.palette.CursorLeft()
		return m, nil
	case "right":
		m.palette.CursorRight()
		return m, nil
	default:
		if len(msg.Runes) == 1 {
			m.palette.InsertChar(msg.Runes[0])
		}
		return m, nil
	}
}

func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	switch m.screen {
	case screenCatalog:
		if len(m.visible) > 0 {
			idx := clamp(m.selection, 0, len(m.visible)-1)
			m.playFrom(m.visible, m.visible[idx])
		}
	case screenSelections:
		if len(m.selections) > 0 {
			idx := clamp(m.selection, 0, len(m.selections)-1)
			m.selGen++
			return m, m.loadSelectionCmd(m.selections[idx].ID)
		}
	case screenSelectionDetail:
		if len(m.selectionItems) > 0 {
			idx := clamp(m.selection, 0, len(m.selectionItems)-1)
			m.playFrom(m.selectionItems, m.selectionItems[idx])
		}
	case screenFavorites:
		favs := m.favs.Tracks()
		if len(favs) > 0 {
			idx := clamp(m.selection, 0, len(favs)-1)
			m.playFrom(favs, favs[idx])
		}
	}
	return m, nil
}

// playFrom makes the visible list the active playlist and starts the chosen
// track, so next/previous walk the list the user actually sees.
func (m *Model) playFrom(list []api.Track, track api.Track) {
	m.engine.SetPlaylist(list)
	m.engine.SetCurrent(track)
	m.ctrl.Sync()
	m.status = "Playing " + track.Name
}

func (m Model) logout() (tea.Model, tea.Cmd) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	m.session.Logout(ctx)
	m.favs.Clear()
	m.ctrl.Pause()
	m.loadGen++
	m.selGen++
	m.screen = screenSignIn
	m.signIn = newSignInForm()
	m.selection = 0
	m.status = "Signed out"
	return m, nil
}

// targetTrack is what the favorite key acts on: the highlighted list entry, or
// the playing track on the now-playing screen.
func (m Model) targetTrack() (api.Track, bool) {
	switch m.screen {
	case screenCatalog:
		if len(m.visible) > 0 {
			return m.visible[clamp(m.selection, 0, len(m.visible)-1)], true
		}
	case screenSelectionDetail:
		if len(m.selectionItems) > 0 {
			return m.selectionItems[clamp(m.selection, 0, len(m.selectionItems)-1)], true
		}
	case screenFavorites:
		favs := m.favs.Tracks()
		if len(favs) > 0 {
			return favs[clamp(m.selection, 0, len(favs)-1)], true
		}
	case screenNowPlaying:
		return m.engine.Current()
	}
	return api.Track{}, false
}

func (m Model) filterCatalog(q string) []api.Track {
	if q == "" {
		return m.catalog
	}
	q = strings.ToLower(q)
	var out []api.Track
	for _, t := range m.catalog {
		if strings.Contains(strings.ToLower(t.Name), q) ||
			strings.Contains(strings.ToLower(t.Author), q) ||
			strings.Contains(strings.ToLower(t.Album), q) {
			out = append(out, t)
		}
	}
	return out
}

// resolveSelection maps a selection's track ids onto the loaded catalog,
// keeping the selection's order and skipping ids the catalog does not carry.
func (m Model) resolveSelection(sel api.Selection) []api.Track {
	byID := make(map[int]api.Track, len(m.catalog))
	for _, t := range m.catalog {
		if _, ok := byID[t.ID]; !ok {
			byID[t.ID] = t
		}
	}
	var out []api.Track
	for _, id := range sel.Items {
		if t, ok := byID[id]; ok {
			out = append(out, t)
		}
	}
	return out
}

func (m Model) currentListLen() int {
	switch m.screen {
	case screenCatalog:
		return len(m.visible)
	case screenSelections:
		return len(m.selections)
	case screenSelectionDetail:
		return len(m.selectionItems)
	case screenFavorites:
		return m.favs.Len()
	default:
		return 0
	}
}

func nextScreen(s screen) screen {
	switch s {
	case screenCatalog:
		return screenSelections
	case screenSelections, screenSelectionDetail:
		return screenFavorites
	case screenFavorites:
		return screenNowPlaying
	default:
		return screenCatalog
	}
}

func prevScreen(s screen) screen {
	switch s {
	case screenCatalog:
		return screenNowPlaying
	case screenSelections, screenSelectionDetail:
		return screenCatalog
	case screenFavorites:
		return screenSelections
	default:
		return screenFavorites
	}
}

// keyIs reports whether the pressed key matches a comma-separated binding.
func keyIs(s, binding string) bool {
	for _, alt := range strings.Split(binding, ",") {
		if alt == "space" {
			alt = " "
		}
		if s == alt {
			return true
		}
	}
	return false
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
