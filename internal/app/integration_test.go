package app

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
)

// TestInteractiveSession drives a full program through teatest: browse the
// catalog, toggle help, and quit.
func TestInteractiveSession(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping interactive test in short mode")
	}

	m, _ := signedInCatalogModel(t, "Alpha", "Beta", "Gamma")
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(120, 40))

	actions := []struct {
		name string
		key  tea.KeyMsg
	}{
		{"select_down", keyRunes("j")},
		{"select_down2", keyRunes("j")},
		{"select_up", keyRunes("k")},
		{"open_help", keyRunes("?")},
		{"close_help", keyRunes("?")},
		{"next_screen", tea.KeyMsg{Type: tea.KeyTab}},
		{"quit", keyRunes("q")},
	}
	for _, action := range actions {
		t.Logf("Action: %s", action.name)
		tm.Send(action.key)
		time.Sleep(50 * time.Millisecond)
	}

	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))

	final := tm.FinalModel(t).(Model)
	if final.showHelp {
		t.Error("help should be closed at exit")
	}
	if final.screen != screenSelections {
		t.Errorf("expected selections screen at exit, got %d", final.screen)
	}
}

// TestSignInFlowInteractive types into the sign-in form through the program
// loop and quits.
func TestSignInFlowInteractive(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping interactive test in short mode")
	}

	m, _ := createTestModel(t)
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(120, 40))

	for _, r := range "me@example.com" {
		tm.Send(keyRunes(string(r)))
	}
	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})

	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))

	final := tm.FinalModel(t).(Model)
	if final.screen != screenSignIn {
		t.Errorf("expected sign-in screen, got %d", final.screen)
	}
	if got := final.signIn.email.Value(); got != "me@example.com" {
		t.Errorf("email input = %q", got)
	}
}
