package app

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/soniq/soniq/internal/api"
	"github.com/soniq/soniq/internal/auth"
	"github.com/soniq/soniq/internal/config"
	"github.com/soniq/soniq/internal/favorites"
	"github.com/soniq/soniq/internal/media"
	"github.com/soniq/soniq/internal/playback"
	"github.com/soniq/soniq/internal/playlist"
)

// stubResource is a media.Resource that records calls and never errors.
type stubResource struct {
	events chan media.Event
	loads  []string
}

func (s *stubResource) Load(url string, headers map[string]string) error {
	s.loads = append(s.loads, url)
	return nil
}
func (s *stubResource) Play() error                { return nil }
func (s *stubResource) Pause() error               { return nil }
func (s *stubResource) Seek(float64) error         { return nil }
func (s *stubResource) SetVolume(float64) error    { return nil }
func (s *stubResource) Events() <-chan media.Event { return s.events }
func (s *stubResource) Close() error               { return nil }

func testConfig() *config.Config {
	return &config.Config{
		UI: config.UIConfig{Theme: "midnight", NoEmoji: true},
		Player: config.PlayerConfig{
			InitialVolume: 50,
			SeekSmall:     5,
			SeekLarge:     30,
			VolumeStep:    5,
		},
		Keybindings: config.KeybindConfig{
			PlayPause:    "space",
			NextTrack:    "n",
			PrevTrack:    "p",
			SeekForward:  "l",
			SeekBackward: "h",
			VolumeUp:     "+",
			VolumeDown:   "-",
			Shuffle:      "s",
			Repeat:       "r",
			Favorite:     "f",
			Search:       "/",
			Logout:       "ctrl+l",
			Help:         "?",
			Quit:         "q,ctrl+c",
		},
	}
}

func createTestModel(t *testing.T) (Model, *stubResource) {
	t.Helper()
	cfg := testConfig()
	// Unroutable address: app tests drive the model with messages directly.
	client := api.New("http://127.0.0.1:1", nil)
	session := auth.NewManager(client, nil, nil)
	res := &stubResource{events: make(chan media.Event, 8)}
	engine := playlist.New()
	ctrl := playback.New(res, engine, nil, 0.5)
	favs := favorites.New(client, session, nil)
	return New(cfg, client, session, res, engine, ctrl, favs), res
}

func updateModel(m Model, msg tea.Msg) (Model, tea.Cmd) {
	nm, cmd := m.Update(msg)
	return nm.(Model), cmd
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func catalogOf(names ...string) []api.Track {
	var out []api.Track
	for i, name := range names {
		out = append(out, api.Track{
			ID:        i + 1,
			Name:      name,
			Author:    "Artist " + name,
			TrackFile: "https://cdn.example.com/" + name + ".mp3",
		})
	}
	return out
}

func signedInCatalogModel(t *testing.T, names ...string) (Model, *stubResource) {
	t.Helper()
	m, res := createTestModel(t)
	m.screen = screenCatalog
	m, _ = updateModel(m, catalogMsg{tracks: catalogOf(names...)})
	return m, res
}

func TestStartsOnSignInWhenUnauthenticated(t *testing.T) {
	m, _ := createTestModel(t)
	if m.screen != screenSignIn {
		t.Fatalf("expected sign-in screen, got %d", m.screen)
	}
	view := m.View()
	if !strings.Contains(view, "Sign In") {
		t.Errorf("sign-in view missing title:\n%s", view)
	}
}

func TestSignInFormTypingAndValidation(t *testing.T) {
	m, _ := createTestModel(t)

	for _, r := range "me@example.com" {
		m, _ = updateModel(m, keyRunes(string(r)))
	}
	if got := m.signIn.email.Value(); got != "me@example.com" {
		t.Fatalf("email input = %q", got)
	}

	// Submitting without a password is rejected locally.
	m, _ = updateModel(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.errorMsg == "" {
		t.Fatal("expected validation error for empty password")
	}

	// Tab moves to the password field.
	m, _ = updateModel(m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = updateModel(m, keyRunes("x"))
	if got := m.signIn.password.Value(); got != "x" {
		t.Fatalf("password input = %q", got)
	}
}

func TestSignUpValidation(t *testing.T) {
	tests := []struct {
		name                              string
		email, username, password, repeat string
		wantErr                           bool
	}{
		{"valid", "a@b.c", "al", "secret1", "secret1", false},
		{"missing fields", "", "al", "secret1", "secret1", true},
		{"bad email", "nope", "al", "secret1", "secret1", true},
		{"short password", "a@b.c", "al", "ab", "ab", true},
		{"mismatch", "a@b.c", "al", "secret1", "secret2", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateSignUp(tt.email, tt.username, tt.password, tt.repeat)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateSignUp() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnterPlaysSelectedTrack(t *testing.T) {
	m, res := signedInCatalogModel(t, "Alpha", "Beta", "Gamma")

	m, _ = updateModel(m, keyRunes("j"))
	m, _ = updateModel(m, tea.KeyMsg{Type: tea.KeyEnter})

	cur, ok := m.engine.Current()
	if !ok || cur.Name != "Beta" {
		t.Fatalf("expected Beta playing, got %+v ok=%v", cur, ok)
	}
	if len(res.loads) != 1 || !strings.Contains(res.loads[0], "Beta") {
		t.Fatalf("expected resource load for Beta, got %v", res.loads)
	}
	if !strings.Contains(m.status, "Beta") {
		t.Errorf("status should name the track, got %q", m.status)
	}
}

func TestNextPrevWalkTheVisibleList(t *testing.T) {
	m, _ := signedInCatalogModel(t, "Alpha", "Beta", "Gamma")
	m, _ = updateModel(m, tea.KeyMsg{Type: tea.KeyEnter}) // play Alpha

	m, _ = updateModel(m, keyRunes("n"))
	if cur, _ := m.engine.Current(); cur.Name != "Beta" {
		t.Fatalf("expected Beta after next, got %s", cur.Name)
	}
	m, _ = updateModel(m, keyRunes("n"))
	m, _ = updateModel(m, keyRunes("n")) // boundary no-op
	if cur, _ := m.engine.Current(); cur.Name != "Gamma" {
		t.Fatalf("expected Gamma at the end, got %s", cur.Name)
	}
	m, _ = updateModel(m, keyRunes("p"))
	if cur, _ := m.engine.Current(); cur.Name != "Beta" {
		t.Fatalf("expected Beta after prev, got %s", cur.Name)
	}
}

func TestSearchFiltersCatalog(t *testing.T) {
	m, _ := signedInCatalogModel(t, "Morning Sun", "Night Drive", "Sunset Blvd")

	m, _ = updateModel(m, keyRunes("/"))
	if !m.searching {
		t.Fatal("expected search mode")
	}
	for _, r := range "sun" {
		m, _ = updateModel(m, keyRunes(string(r)))
	}
	if len(m.visible) != 2 {
		t.Fatalf("expected 2 matches for 'sun', got %d: %v", len(m.visible), m.visible)
	}

	// Enter keeps the filter, esc clears it.
	m, _ = updateModel(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.searching || len(m.visible) != 2 {
		t.Fatal("enter must exit search mode keeping the filter")
	}
	m, _ = updateModel(m, keyRunes("/"))
	m, _ = updateModel(m, tea.KeyMsg{Type: tea.KeyEscape})
	if len(m.visible) != 3 {
		t.Fatalf("esc must clear the filter, got %d visible", len(m.visible))
	}
}

func TestShuffleRepeatKeys(t *testing.T) {
	m, _ := signedInCatalogModel(t, "Alpha", "Beta")

	m, _ = updateModel(m, keyRunes("s"))
	if !m.engine.IsShuffled() {
		t.Fatal("expected shuffle on")
	}
	m, _ = updateModel(m, keyRunes("r"))
	if !m.engine.IsRepeating() {
		t.Fatal("expected repeat on")
	}
	m, _ = updateModel(m, keyRunes("s"))
	if m.engine.IsShuffled() {
		t.Fatal("expected shuffle off")
	}
}

func TestMediaEventsDriveThePlaybackController(t *testing.T) {
	m, _ := signedInCatalogModel(t, "Alpha")
	m, _ = updateModel(m, tea.KeyMsg{Type: tea.KeyEnter})

	m, cmd := updateModel(m, mediaMsg{Kind: media.EventDuration, Seconds: 120})
	if cmd == nil {
		t.Fatal("media messages must re-arm the event watcher")
	}
	m, _ = updateModel(m, mediaMsg{Kind: media.EventReady})
	if m.ctrl.State() != playback.StatePlaying {
		t.Fatalf("expected playing after ready, got %v", m.ctrl.State())
	}
	if m.ctrl.Duration() != 120 {
		t.Fatalf("expected duration 120, got %v", m.ctrl.Duration())
	}
}

func TestFavoriteToggleWithoutSessionShowsPrompt(t *testing.T) {
	m, _ := signedInCatalogModel(t, "Alpha")

	_, cmd := updateModel(m, keyRunes("f"))
	if cmd == nil {
		t.Fatal("favorite key must produce a command")
	}
	msg := cmd()
	toggled, ok := msg.(favoriteToggledMsg)
	if !ok {
		t.Fatalf("expected favoriteToggledMsg, got %T", msg)
	}
	m, _ = updateModel(m, toggled)
	if m.errorMsg != "sign in required" {
		t.Fatalf("expected sign-in prompt, got %q", m.errorMsg)
	}
}

func TestSelectionResolvesAgainstCatalogInOrder(t *testing.T) {
	m, _ := signedInCatalogModel(t, "Alpha", "Beta", "Gamma")

	sel := api.Selection{ID: 7, Name: "Evening", Items: []int{3, 1, 99}}
	m, _ = updateModel(m, selectionMsg{sel: sel})

	if m.screen != screenSelectionDetail {
		t.Fatalf("expected selection detail screen, got %d", m.screen)
	}
	if len(m.selectionItems) != 2 {
		t.Fatalf("unknown ids must be skipped, got %d items", len(m.selectionItems))
	}
	if m.selectionItems[0].Name != "Gamma" || m.selectionItems[1].Name != "Alpha" {
		t.Fatalf("selection order must be preserved: %v", m.selectionItems)
	}
}

func TestStaleLoadResultsAreDropped(t *testing.T) {
	m, _ := signedInCatalogModel(t, "Alpha", "Beta")

	// A catalog response issued before logout must not repopulate the model.
	m, _ = updateModel(m, tea.KeyMsg{Type: tea.KeyCtrlL})
	m, _ = updateModel(m, catalogMsg{gen: 0, tracks: catalogOf("Late")})
	if len(m.catalog) != 2 || m.catalog[0].Name != "Alpha" {
		t.Fatalf("stale catalog applied after logout: %v", m.catalog)
	}

	// A selection fetch superseded by a newer one must not open its detail.
	m.screen = screenSelections
	m.selections = []api.Selection{{ID: 1, Name: "Old"}, {ID: 2, Name: "New"}}
	m, _ = updateModel(m, tea.KeyMsg{Type: tea.KeyEnter}) // fetch Old
	m, _ = updateModel(m, keyRunes("j"))
	m, _ = updateModel(m, tea.KeyMsg{Type: tea.KeyEnter}) // fetch New, supersedes Old
	firstGen := m.selGen - 1
	m, _ = updateModel(m, selectionMsg{gen: firstGen, sel: api.Selection{ID: 1, Name: "Old"}})
	if m.screen == screenSelectionDetail {
		t.Fatal("superseded selection response opened the detail screen")
	}
	m, _ = updateModel(m, selectionMsg{gen: m.selGen, sel: api.Selection{ID: 2, Name: "New"}})
	if m.screen != screenSelectionDetail || m.selectionName != "New" {
		t.Fatalf("current selection response must apply, got screen=%d name=%q", m.screen, m.selectionName)
	}
}

func TestHelpToggleAndQuit(t *testing.T) {
	m, _ := signedInCatalogModel(t, "Alpha")

	m, _ = updateModel(m, keyRunes("?"))
	if !m.showHelp {
		t.Fatal("expected help shown")
	}
	if !strings.Contains(m.View(), "Help") {
		t.Error("help view missing title")
	}
	m, _ = updateModel(m, keyRunes("?"))
	if m.showHelp {
		t.Fatal("expected help hidden")
	}

	_, cmd := updateModel(m, keyRunes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}

func TestErrorMessageClears(t *testing.T) {
	m, _ := signedInCatalogModel(t, "Alpha")

	m, cmd := updateModel(m, catalogMsg{err: api.ErrNetwork})
	if m.errorMsg == "" || cmd == nil {
		t.Fatal("expected error message and a clear timer")
	}
	m, _ = updateModel(m, clearErrorMsg{})
	if m.errorMsg != "" {
		t.Fatal("expected error cleared")
	}
}

func TestLogoutReturnsToSignIn(t *testing.T) {
	m, _ := signedInCatalogModel(t, "Alpha")

	m, _ = updateModel(m, tea.KeyMsg{Type: tea.KeyCtrlL})
	if m.screen != screenSignIn {
		t.Fatalf("expected sign-in screen after logout, got %d", m.screen)
	}
	if m.session.IsAuthenticated() {
		t.Fatal("session must be cleared")
	}
}

func TestViewOutputPerScreen(t *testing.T) {
	m, _ := signedInCatalogModel(t, "Alpha", "Beta")
	m.selections = []api.Selection{{ID: 1, Name: "Chill", Items: []int{1}}}

	screens := []struct {
		name     string
		screen   screen
		contains []string
	}{
		{"Catalog", screenCatalog, []string{"Tracks", "Alpha", "Beta"}},
		{"Selections", screenSelections, []string{"Selections", "Chill"}},
		{"Favorites", screenFavorites, []string{"Favorites", "no favorites"}},
		{"NowPlaying", screenNowPlaying, []string{"Now Playing", "Nothing playing"}},
	}

	for _, sc := range screens {
		t.Run(sc.name, func(t *testing.T) {
			m.screen = sc.screen
			out := m.View()
			for _, want := range sc.contains {
				if !strings.Contains(out, want) {
					t.Errorf("screen %s: expected %q in output:\n%s", sc.name, want, out)
				}
			}
		})
	}
}
