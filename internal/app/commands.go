package app

import tea "github.com/charmbracelet/bubbletea"

// Command is an action invokable from the command palette.
type Command struct {
	ID          string
	Name        string
	Description string
	Category    string
	Keybinding  string
	Handler     func(m *Model) (tea.Model, tea.Cmd)
}

// CommandRegistry holds all available commands.
type CommandRegistry struct {
	commands []Command
}

// NewCommandRegistry creates a registry with all available commands.
func NewCommandRegistry(m *Model) *CommandRegistry {
	r := &CommandRegistry{}

	// Navigation
	r.register(Command{
		ID:          "nav.catalog",
		Name:        "Go to Catalog",
		Description: "Browse all tracks",
		Category:    "Navigation",
		Handler: func(m *Model) (tea.Model, tea.Cmd) {
			m.screen = screenCatalog
			m.selection = 0
			return *m, nil
		},
	})
	r.register(Command{
		ID:          "nav.selections",
		Name:        "Go to Selections",
		Description: "Browse curated selections",
		Category:    "Navigation",
		Handler: func(m *Model) (tea.Model, tea.Cmd) {
			m.screen = screenSelections
			m.selection = 0
			return *m, nil
		},
	})
	r.register(Command{
		ID:          "nav.favorites",
		Name:        "Go to Favorites",
		Description: "Show your liked tracks",
		Category:    "Navigation",
		Handler: func(m *Model) (tea.Model, tea.Cmd) {
			m.screen = screenFavorites
			m.selection = 0
			return *m, nil
		},
	})
	r.register(Command{
		ID:          "nav.now_playing",
		Name:        "Go to Now Playing",
		Description: "Show the now playing screen",
		Category:    "Navigation",
		Handler: func(m *Model) (tea.Model, tea.Cmd) {
			m.screen = screenNowPlaying
			return *m, nil
		},
	})

	// Playback
	r.register(Command{
		ID:          "playback.play_pause",
		Name:        "Play/Pause",
		Description: "Toggle playback",
		Category:    "Playback",
		Keybinding:  m.cfg.Keybindings.PlayPause,
		Handler: func(m *Model) (tea.Model, tea.Cmd) {
			m.ctrl.Toggle()
			return *m, nil
		},
	})
	r.register(Command{
		ID:          "playback.next",
		Name:        "Next Track",
		Description: "Skip to the next track",
		Category:    "Playback",
		Keybinding:  m.cfg.Keybindings.NextTrack,
		Handler: func(m *Model) (tea.Model, tea.Cmd) {
			m.engine.PlayNext()
			m.ctrl.Sync()
			return *m, nil
		},
	})
	r.register(Command{
		ID:          "playback.prev",
		Name:        "Previous Track",
		Description: "Go to the previous track",
		Category:    "Playback",
		Keybinding:  m.cfg.Keybindings.PrevTrack,
		Handler: func(m *Model) (tea.Model, tea.Cmd) {
			m.engine.PlayPrevious()
			m.ctrl.Sync()
			return *m, nil
		},
	})
	r.register(Command{
		ID:          "playback.shuffle",
		Name:        "Toggle Shuffle",
		Description: "Turn shuffle on or off",
		Category:    "Playback",
		Keybinding:  m.cfg.Keybindings.Shuffle,
		Handler: func(m *Model) (tea.Model, tea.Cmd) {
			m.engine.ToggleShuffle()
			return *m, nil
		},
	})
	r.register(Command{
		ID:          "playback.repeat",
		Name:        "Toggle Repeat",
		Description: "Repeat the current track",
		Category:    "Playback",
		Keybinding:  m.cfg.Keybindings.Repeat,
		Handler: func(m *Model) (tea.Model, tea.Cmd) {
			m.engine.ToggleRepeat()
			return *m, nil
		},
	})

	// Library
	r.register(Command{
		ID:          "library.favorite",
		Name:        "Toggle Favorite",
		Description: "Like or unlike the highlighted track",
		Category:    "Library",
		Keybinding:  m.cfg.Keybindings.Favorite,
		Handler: func(m *Model) (tea.Model, tea.Cmd) {
			if t, ok := m.targetTrack(); ok {
				return *m, m.toggleFavoriteCmd(t)
			}
			return *m, nil
		},
	})
	r.register(Command{
		ID:          "library.reload",
		Name:        "Reload Catalog",
		Description: "Refetch tracks, selections and favorites",
		Category:    "Library",
		Handler: func(m *Model) (tea.Model, tea.Cmd) {
			m.status = "Reloading…"
			return *m, tea.Batch(m.loadCatalogCmd(), m.loadSelectionsCmd(), m.loadFavoritesCmd())
		},
	})

	// Session
	r.register(Command{
		ID:          "session.logout",
		Name:        "Sign Out",
		Description: "Clear the session and return to sign in",
		Category:    "Session",
		Keybinding:  m.cfg.Keybindings.Logout,
		Handler: func(m *Model) (tea.Model, tea.Cmd) {
			return m.logout()
		},
	})

	// UI
	r.register(Command{
		ID:          "ui.help",
		Name:        "Show Help",
		Description: "Display keybindings help",
		Category:    "UI",
		Keybinding:  m.cfg.Keybindings.Help,
		Handler: func(m *Model) (tea.Model, tea.Cmd) {
			m.showHelp = !m.showHelp
			return *m, nil
		},
	})
	r.register(Command{
		ID:          "ui.quit",
		Name:        "Quit",
		Description: "Exit Soniq",
		Category:    "UI",
		Keybinding:  m.cfg.Keybindings.Quit,
		Handler: func(m *Model) (tea.Model, tea.Cmd) {
			return *m, tea.Quit
		},
	})

	return r
}

func (r *CommandRegistry) register(cmd Command) {
	r.commands = append(r.commands, cmd)
}

// Commands returns all registered commands.
func (r *CommandRegistry) Commands() []Command {
	return r.commands
}

// SearchableNames returns command names for fuzzy matching.
func (r *CommandRegistry) SearchableNames() []string {
	names := make([]string, len(r.commands))
	for i, cmd := range r.commands {
		names[i] = cmd.Name
	}
	return names
}
