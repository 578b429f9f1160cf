package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/soniq/soniq/internal/api"
	"github.com/soniq/soniq/internal/playback"
)

func (m Model) View() string {
	if m.fatalErr != nil {
		return m.renderFatalError()
	}
	if m.paletteOpen {
		return m.palette.Render(&m)
	}
	if m.showHelp {
		return m.renderHelp()
	}
	var main string
	switch m.screen {
	case screenSignIn:
		main = m.renderSignIn()
	case screenSignUp:
		main = m.renderSignUp()
	case screenCatalog:
		main = m.renderCatalog()
	case screenSelections:
		main = m.renderSelections()
	case screenSelectionDetail:
		main = m.renderSelectionDetail()
	case screenFavorites:
		main = m.renderFavorites()
	case screenNowPlaying:
		main = m.renderNowPlaying()
	}
	top := m.theme.Title.Render("Soniq ▸ " + m.screenTitle())
	status := m.theme.Dim.Render(m.status)
	if m.errorMsg != "" {
		status = m.theme.Error.Render(m.errorMsg)
	}
	bottom := m.renderPlayerBar()
	return lipgloss.JoinVertical(lipgloss.Left, top, main, status, bottom)
}

func (m Model) renderFatalError() string {
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		m.theme.Border.Render(
			lipgloss.JoinVertical(lipgloss.Center,
				m.theme.Error.Render("Fatal Error"),
				"",
				m.theme.Text.Render(m.fatalErr.Error()),
				"",
				m.theme.Dim.Render("Press Ctrl+C to quit"),
			),
		),
	)
}

func (m Model) renderSignIn() string {
	var b strings.Builder
	b.WriteString(m.theme.Title.Render("Sign In") + "\n\n")
	b.WriteString("  " + m.signIn.email.View() + "\n")
	b.WriteString("  " + m.signIn.password.View() + "\n\n")
	b.WriteString(m.theme.Dim.Render("  tab: next field  enter: sign in  ctrl+r: create account"))
	return b.String()
}

func (m Model) renderSignUp() string {
	var b strings.Builder
	b.WriteString(m.theme.Title.Render("Create Account") + "\n\n")
	b.WriteString("  " + m.signUp.email.View() + "\n")
	b.WriteString("  " + m.signUp.username.View() + "\n")
	b.WriteString("  " + m.signUp.password.View() + "\n")
	b.WriteString("  " + m.signUp.repeat.View() + "\n\n")
	b.WriteString(m.theme.Dim.Render("  tab: next field  enter: create  esc: back to sign in"))
	return b.String()
}

func (m Model) renderCatalog() string {
	var b strings.Builder
	title := "Tracks"
	if m.searchQ != "" || m.searching {
		title = fmt.Sprintf("Tracks matching %q", m.searchQ)
	}
	b.WriteString(m.theme.Title.Render(title) + "\n")
	if len(m.visible) == 0 {
		b.WriteString(m.theme.Dim.Render("  (nothing here)") + "\n")
		return b.String()
	}
	b.WriteString(m.renderTrackList(m.visible))
	return b.String()
}

func (m Model) renderSelections() string {
	var b strings.Builder
	b.WriteString(m.theme.Title.Render("Selections") + "\n")
	if len(m.selections) == 0 {
		b.WriteString(m.theme.Dim.Render("  (no selections)") + "\n")
		return b.String()
	}
	for i, s := range m.selections {
		prefix := "  "
		if i == m.selection {
			prefix = m.cursorMarker()
		}
		line := fmt.Sprintf("%s%s (%d tracks)", prefix, s.Name, len(s.Items))
		if i == m.selection {
			b.WriteString(m.theme.Highlight.Render(line) + "\n")
		} else {
			b.WriteString(m.theme.Text.Render(line) + "\n")
		}
	}
	return b.String()
}

func (m Model) renderSelectionDetail() string {
	var b strings.Builder
	b.WriteString(m.theme.Title.Render(m.selectionName) + "\n")
	if len(m.selectionItems) == 0 {
		b.WriteString(m.theme.Dim.Render("  (no tracks in this selection)") + "\n")
		return b.String()
	}
	b.WriteString(m.renderTrackList(m.selectionItems))
	b.WriteString(m.theme.Dim.Render("  esc: back to selections") + "\n")
	return b.String()
}

func (m Model) renderFavorites() string {
	var b strings.Builder
	b.WriteString(m.theme.Title.Render("Favorites") + "\n")
	favs := m.favs.Tracks()
	if len(favs) == 0 {
		b.WriteString(m.theme.Dim.Render("  (no favorites yet)") + "\n")
		return b.String()
	}
	b.WriteString(m.renderTrackList(favs))
	return b.String()
}

func (m Model) renderTrackList(tracks []api.Track) string {
	var b strings.Builder
	current, hasCurrent := m.engine.Current()
	for i, t := range tracks {
		prefix := "  "
		if i == m.selection {
			prefix = m.cursorMarker()
		}
		heart := " "
		if m.favs.IsFavorite(t.ID) {
			heart = m.heartMarker()
		}
		playing := ""
		if hasCurrent && t.ID == current.ID {
			playing = m.playingMarker()
		}
		line := fmt.Sprintf("%s%s %s — %s (%s)%s", prefix, heart, t.Author, t.Name, formatTime(float64(t.DurationSec)), playing)
		if i == m.selection {
			b.WriteString(m.theme.Highlight.Render(line) + "\n")
		} else {
			b.WriteString(m.theme.Text.Render(line) + "\n")
		}
	}
	return b.String()
}

func (m Model) renderNowPlaying() string {
	var b strings.Builder
	b.WriteString(m.theme.Title.Render("Now Playing") + "\n\n")

	current, ok := m.engine.Current()
	if !ok {
		b.WriteString(m.theme.Dim.Render("Nothing playing") + "\n")
		return b.String()
	}
	b.WriteString(m.theme.Accent.Render(current.Name) + "\n")
	b.WriteString(m.theme.Text.Render(current.Author) + "\n")
	if current.Album != "" {
		b.WriteString(m.theme.Dim.Render(current.Album) + "\n")
	}
	b.WriteString("\n")

	width := m.width - 4
	if width < 10 {
		width = 10
	}
	pct := 0.0
	if m.ctrl.Duration() > 0 {
		pct = m.ctrl.Position() / m.ctrl.Duration()
	}
	filled := int(float64(width) * pct)
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("━", filled) + strings.Repeat("─", width-filled)
	b.WriteString(m.theme.Highlight.Render(bar) + "\n")
	b.WriteString(m.theme.Dim.Render(fmt.Sprintf("%s / %s", formatTime(m.ctrl.Position()), formatTime(m.ctrl.Duration()))) + "\n")

	if m.ctrl.State() == playback.StateError && m.ctrl.Err() != nil {
		b.WriteString("\n" + m.theme.Error.Render("Playback failed: "+m.ctrl.Err().Error()) + "\n")
	}
	return b.String()
}

func (m Model) renderHelp() string {
	k := m.cfg.Keybindings
	lines := []string{
		m.theme.Title.Render("Help"),
		"",
		m.theme.Accent.Render("Global"),
		"  tab/shift+tab : Switch screens",
		fmt.Sprintf("  %-13s : Toggle help", k.Help),
		"  ctrl+p        : Command palette",
		fmt.Sprintf("  %-13s : Quit", k.Quit),
		fmt.Sprintf("  %-13s : Sign out", k.Logout),
		"",
		m.theme.Accent.Render("Player"),
		fmt.Sprintf("  %-13s : Play/Pause", k.PlayPause),
		fmt.Sprintf("  %s / %-9s : Next / Previous track", k.NextTrack, k.PrevTrack),
		fmt.Sprintf("  %s / %-9s : Seek back / forward %ds", k.SeekBackward, k.SeekForward, m.cfg.Player.SeekSmall),
		fmt.Sprintf("  H / %-9s : Seek back / forward %ds", "L", m.cfg.Player.SeekLarge),
		fmt.Sprintf("  %s / %-9s : Volume down / up", k.VolumeDown, k.VolumeUp),
		fmt.Sprintf("  %-13s : Toggle shuffle", k.Shuffle),
		fmt.Sprintf("  %-13s : Toggle repeat", k.Repeat),
		"",
		m.theme.Accent.Render("Library"),
		"  j / k         : Move selection down / up",
		"  enter         : Play / open selection",
		fmt.Sprintf("  %-13s : Toggle favorite", k.Favorite),
		fmt.Sprintf("  %-13s : Filter tracks", k.Search),
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderPlayerBar() string {
	name := "(stopped)"
	if current, ok := m.engine.Current(); ok {
		name = fmt.Sprintf("%s — %s", current.Author, current.Name)
	}
	state := "⏵"
	if !m.engine.IsPlaying() {
		state = "⏸"
	}
	if m.cfg.UI.NoEmoji {
		state = ">"
		if !m.engine.IsPlaying() {
			state = "||"
		}
	}
	progress := ""
	if m.ctrl.Duration() > 0 {
		progress = fmt.Sprintf(" %s/%s", formatTime(m.ctrl.Position()), formatTime(m.ctrl.Duration()))
	}

	shuffle := ""
	if m.engine.IsShuffled() {
		shuffle = " [shuffle]"
	}
	repeat := ""
	if m.engine.IsRepeating() {
		repeat = " [repeat]"
	}
	volStr := fmt.Sprintf("Vol: %.0f%%", m.ctrl.Volume()*100)

	return fmt.Sprintf("%s %s%s  %s%s%s", state, name, progress, volStr, shuffle, repeat)
}

func (m Model) cursorMarker() string {
	if m.cfg.UI.NoEmoji {
		return "> "
	}
	return "⏵ "
}

func (m Model) heartMarker() string {
	if m.cfg.UI.NoEmoji {
		return "*"
	}
	return "♥"
}

func (m Model) playingMarker() string {
	if m.cfg.UI.NoEmoji {
		return "  [playing]"
	}
	return "  ♫"
}

func (m Model) screenTitle() string {
	switch m.screen {
	case screenSignIn:
		return "Sign In"
	case screenSignUp:
		return "Sign Up"
	case screenCatalog:
		return "Catalog"
	case screenSelections:
		return "Selections"
	case screenSelectionDetail:
		return "Selection"
	case screenFavorites:
		return "Favorites"
	case screenNowPlaying:
		return "Now Playing"
	default:
		return ""
	}
}

// formatTime renders seconds as m:ss.
func formatTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", int(seconds)/60, int(seconds)%60)
}
