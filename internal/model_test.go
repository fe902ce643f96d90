package internal

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"klocka/internal/app"
	"klocka/internal/kv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

type countingAlarm struct {
	rings int
}

func (a *countingAlarm) Ring() { a.rings++ }

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m *Model, keys ...string) {
	for _, k := range keys {
		m.Update(key(k))
	}
}

func typeText(m *Model, text string) {
	for _, r := range text {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

type fixture struct {
	model *Model
	app   *app.App
	clock *fakeClock
	alarm *countingAlarm
}

func newFixture(t *testing.T, opts Options) fixture {
	t.Helper()
	store, err := kv.Open(filepath.Join(t.TempDir(), "klocka.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	clock := &fakeClock{now: time.UnixMilli(1_700_000_000_000)}
	a := app.New(store, clock, nil)
	require.NoError(t, a.Load())

	al := &countingAlarm{}
	opts.Alarm = al
	return fixture{model: NewModel(a, opts), app: a, clock: clock, alarm: al}
}

func TestTimerViewListsActiveProducts(t *testing.T) {
	f := newFixture(t, Options{})

	view := f.model.View()
	assert.Contains(t, view, "Veggie Dog")
	assert.Contains(t, view, "Muffin Blaubeer")
	assert.Contains(t, view, "00:20:00")
	assert.Contains(t, view, "Zeit einstellen: c")
}

func TestStartTickExpireRingsAlarm(t *testing.T) {
	f := newFixture(t, Options{})

	send(f.model, "s")
	require.True(t, f.app.Rows()[0].Running())

	f.clock.now = f.clock.now.Add(5 * time.Minute)
	f.model.Update(MsgTick{})
	assert.Contains(t, f.model.View(), "00:15:00")
	assert.Zero(t, f.alarm.rings)

	f.clock.now = f.clock.now.Add(15 * time.Minute)
	f.model.Update(MsgTick{})
	assert.Equal(t, 1, f.alarm.rings)
	assert.True(t, f.app.Rows()[0].Expired())
	assert.Contains(t, f.model.View(), "Abgelaufen: Veggie Dog")

	f.model.Update(MsgTick{})
	assert.Equal(t, 1, f.alarm.rings, "an expiry rings once")
}

func TestStopKey(t *testing.T) {
	f := newFixture(t, Options{})

	send(f.model, "down", "s")
	require.True(t, f.app.Rows()[1].Running())

	send(f.model, "x")
	assert.False(t, f.app.Rows()[1].Running())
	assert.Equal(t, "00:20:00", f.app.Rows()[1].Remaining)
}

func TestKioskHidesConfig(t *testing.T) {
	f := newFixture(t, Options{Kiosk: true})

	send(f.model, "c")
	assert.Equal(t, screenTimers, f.model.screen)
	assert.NotContains(t, f.model.View(), "Zeit einstellen: c")
}

func TestPINGate(t *testing.T) {
	f := newFixture(t, Options{PIN: "1234"})

	send(f.model, "c")
	require.Equal(t, screenPIN, f.model.screen)
	typeText(f.model, "9999")
	send(f.model, "enter")
	assert.Equal(t, screenTimers, f.model.screen)
	assert.Contains(t, f.model.View(), "Falsche PIN")

	send(f.model, "c")
	typeText(f.model, "1234")
	assert.NotContains(t, f.model.View(), "1234")
	send(f.model, "enter")
	assert.Equal(t, screenConfig, f.model.screen)
}

func TestConfigAddProduct(t *testing.T) {
	f := newFixture(t, Options{})

	send(f.model, "c", "n")
	require.True(t, f.model.Editing)
	typeText(f.model, "Tea")
	send(f.model, "tab", "backspace")
	typeText(f.model, "0")
	send(f.model, "tab", "backspace")
	typeText(f.model, "1")
	send(f.model, "enter")

	products := f.app.Products()
	require.Len(t, products, 9)
	p := products[8]
	assert.Equal(t, int64(9), p.ID)
	assert.Equal(t, "Tea", p.Name)
	assert.Equal(t, 0, p.Hours)
	assert.Equal(t, 1, p.Minutes)

	send(f.model, "t")
	rows := f.app.Rows()
	require.Len(t, rows, 9)
	assert.Equal(t, "00:01:00", rows[8].Remaining)
}

func TestConfigClampsMinutes(t *testing.T) {
	f := newFixture(t, Options{})

	send(f.model, "c", "right", "right", "enter")
	require.Equal(t, fieldMinutes, f.model.Field)
	send(f.model, "backspace", "backspace")
	typeText(f.model, "75")
	send(f.model, "enter")

	assert.Equal(t, 59, f.app.Products()[0].Minutes)
}

func TestConfigToggleAndDelete(t *testing.T) {
	f := newFixture(t, Options{})

	send(f.model, "c")
	f.model.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.False(t, f.app.Products()[0].Active)

	send(f.model, "down", "d")
	assert.Len(t, f.app.Products(), 7)

	send(f.model, "t")
	for _, r := range f.app.Rows() {
		assert.NotEqual(t, "Veggie Dog", r.Name)
		assert.NotEqual(t, "Plant Dog", r.Name)
	}
}

func TestEditCancelKeepsValue(t *testing.T) {
	f := newFixture(t, Options{})

	send(f.model, "c", "enter")
	typeText(f.model, " XL")
	send(f.model, "esc")

	assert.Equal(t, "Veggie Dog", f.app.Products()[0].Name)
	assert.False(t, f.model.Editing)
}

func TestLanguageToggle(t *testing.T) {
	f := newFixture(t, Options{Language: "de"})

	send(f.model, "L")
	assert.Contains(t, f.model.View(), "Set times: c")
	send(f.model, "L")
	assert.Contains(t, f.model.View(), "Zeit einstellen: c")
}

func TestEmptyTimerView(t *testing.T) {
	f := newFixture(t, Options{Language: "en"})
	for _, p := range f.app.Products() {
		require.NoError(t, f.app.DeleteProduct(p.ID))
	}

	view := f.model.View()
	assert.True(t, strings.Contains(view, "No active products"))
	send(f.model, "s", "x")
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "████░░░░", progressBar(0.5, 8))
	assert.Equal(t, "░░░░", progressBar(0, 4))
	assert.Equal(t, "████", progressBar(1, 4))
	assert.Equal(t, "████", progressBar(3, 4))
}

func TestSimultaneousExpiriesShareStatus(t *testing.T) {
	f := newFixture(t, Options{})

	send(f.model, "s", "down", "s")
	f.clock.now = f.clock.now.Add(20 * time.Minute)
	f.model.Update(MsgTick{})

	assert.Equal(t, 2, f.alarm.rings)
	assert.Equal(t, "Abgelaufen: Veggie Dog, Plant Dog", f.model.Status)
}
