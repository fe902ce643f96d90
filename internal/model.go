package internal

import (
	"log/slog"
	"strconv"
	"strings"

	"klocka/internal/alarm"
	"klocka/internal/app"
	"klocka/internal/product"

	tea "github.com/charmbracelet/bubbletea"
)

type MsgTick struct{}

type screen int

const (
	screenTimers screen = iota
	screenConfig
	screenPIN
)

// field is a column of the config table.
type field int

const (
	fieldName field = iota
	fieldHours
	fieldMinutes
	fieldCount
)

type Options struct {
	Kiosk    bool
	Language string
	PIN      string
	Alarm    alarm.Alarm
	Logger   *slog.Logger
}

type Model struct {
	app    *app.App
	alarm  alarm.Alarm
	logger *slog.Logger
	kiosk  bool
	pin    string
	lang   string

	screen screen

	// Timer view
	Selected int

	// Config view
	ConfigSelected int
	Field          field
	Editing        bool
	Input          string

	PINInput string

	Status string
	Err    error
}

func NewModel(a *app.App, opts Options) *Model {
	if opts.Alarm == nil {
		opts.Alarm = alarm.Silent{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	lang := opts.Language
	if _, ok := translations[lang]; !ok {
		lang = "de"
	}
	return &Model{
		app:    a,
		alarm:  opts.Alarm,
		logger: opts.Logger,
		kiosk:  opts.Kiosk,
		pin:    opts.PIN,
		lang:   lang,
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case MsgTick:
		m.tick()
		return m, nil
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		return m, nil
	}
	return m, nil
}

func (m *Model) View() string {
	switch m.screen {
	case screenConfig:
		return m.configView()
	case screenPIN:
		return m.pinView()
	default:
		return m.timerView()
	}
}

func (m *Model) tick() {
	expired, err := m.app.Tick()
	m.report(err)
	if len(expired) == 0 {
		return
	}
	names := make([]string, len(expired))
	for i, p := range expired {
		m.alarm.Ring()
		names[i] = p.Name
	}
	m.Status = m.t().expiredNotice + ": " + strings.Join(names, ", ")
}

// report records a storage failure without dropping in-memory state.
func (m *Model) report(err error) {
	if err == nil {
		return
	}
	m.logger.Error("storage write failed", "error", err)
	m.Err = err
}

func (m *Model) t() labels {
	return translations[m.lang]
}

func (m *Model) toggleLanguage() {
	if m.lang == "de" {
		m.lang = "en"
	} else {
		m.lang = "de"
	}
}

func (m *Model) selectedRow() (app.Row, bool) {
	rows := m.app.Rows()
	if m.Selected < 0 || m.Selected >= len(rows) {
		return app.Row{}, false
	}
	return rows[m.Selected], true
}

func (m *Model) selectedProduct() (product.Product, bool) {
	products := m.app.Products()
	if m.ConfigSelected < 0 || m.ConfigSelected >= len(products) {
		return product.Product{}, false
	}
	return products[m.ConfigSelected], true
}

func (m *Model) clampSelection() {
	if n := len(m.app.Rows()); m.Selected >= n {
		m.Selected = max(n-1, 0)
	}
	if n := len(m.app.Products()); m.ConfigSelected >= n {
		m.ConfigSelected = max(n-1, 0)
	}
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.screen {
	case screenConfig:
		return m.handleConfigInput(msg)
	case screenPIN:
		return m.handlePINInput(msg)
	}

	m.Err = nil
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
	case "down", "j":
		if m.Selected < len(m.app.Rows())-1 {
			m.Selected++
		}
	case "enter", "s":
		if row, ok := m.selectedRow(); ok {
			m.report(m.app.Start(row.ID))
			m.Status = ""
		}
	case "x":
		if row, ok := m.selectedRow(); ok {
			m.report(m.app.Stop(row.ID))
			m.Status = ""
		}
	case "X":
		m.report(m.app.StopAll())
		m.Status = ""
	case "L":
		m.toggleLanguage()
	case "c":
		if m.kiosk {
			break
		}
		if m.pin != "" {
			m.PINInput = ""
			m.screen = screenPIN
			break
		}
		m.screen = screenConfig
	}
	return m, nil
}

func (m *Model) handlePINInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.PINInput = ""
		m.screen = screenTimers
	case "enter":
		if m.PINInput == m.pin {
			m.screen = screenConfig
			m.Status = ""
		} else {
			m.logger.Warn("wrong pin entered")
			m.Status = m.t().wrongPIN
			m.screen = screenTimers
		}
		m.PINInput = ""
	case "backspace":
		if len(m.PINInput) > 0 {
			m.PINInput = m.PINInput[:len(m.PINInput)-1]
		}
	default:
		runes := []rune(msg.String())
		if len(runes) == 1 && runes[0] >= '0' && runes[0] <= '9' {
			m.PINInput += string(runes[0])
		}
	}
	return m, nil
}

func (m *Model) handleConfigInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.Editing {
		return m.handleFieldInput(msg)
	}

	m.Err = nil
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "t", "esc":
		m.screen = screenTimers
		m.clampSelection()
	case "up", "k":
		if m.ConfigSelected > 0 {
			m.ConfigSelected--
		}
	case "down", "j":
		if m.ConfigSelected < len(m.app.Products())-1 {
			m.ConfigSelected++
		}
	case "left", "h", "shift+tab":
		m.Field = (m.Field + fieldCount - 1) % fieldCount
	case "right", "l", "tab":
		m.Field = (m.Field + 1) % fieldCount
	case "n":
		p, err := m.app.AddProduct()
		m.report(err)
		m.selectProduct(p.ID)
		m.Field = fieldName
		m.startEditing()
	case "d":
		if p, ok := m.selectedProduct(); ok {
			m.report(m.app.DeleteProduct(p.ID))
			m.clampSelection()
		}
	case " ", "space":
		if p, ok := m.selectedProduct(); ok {
			active := !p.Active
			m.report(m.app.UpdateProduct(p.ID, product.Patch{Active: &active}))
		}
	case "enter", "e":
		m.startEditing()
	case "L":
		m.toggleLanguage()
	}
	return m, nil
}

func (m *Model) selectProduct(id int64) {
	for i, p := range m.app.Products() {
		if p.ID == id {
			m.ConfigSelected = i
			return
		}
	}
}

func (m *Model) startEditing() {
	p, ok := m.selectedProduct()
	if !ok {
		return
	}
	switch m.Field {
	case fieldName:
		m.Input = p.Name
	case fieldHours:
		m.Input = strconv.Itoa(p.Hours)
	case fieldMinutes:
		m.Input = strconv.Itoa(p.Minutes)
	}
	m.Editing = true
}

func (m *Model) commitField() {
	p, ok := m.selectedProduct()
	if !ok {
		return
	}
	var patch product.Patch
	switch m.Field {
	case fieldName:
		name := m.Input
		patch.Name = &name
	case fieldHours:
		hours := product.ClampInt(m.Input, 0, product.MaxHours)
		patch.Hours = &hours
	case fieldMinutes:
		minutes := product.ClampInt(m.Input, 0, product.MaxMinutes)
		patch.Minutes = &minutes
	}
	m.report(m.app.UpdateProduct(p.ID, patch))
}

func (m *Model) handleFieldInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Editing = false
		m.Input = ""
	case "enter":
		m.commitField()
		m.Editing = false
		m.Input = ""
	case "tab":
		m.commitField()
		m.Field = (m.Field + 1) % fieldCount
		m.startEditing()
	case "backspace":
		runes := []rune(m.Input)
		if len(runes) > 0 {
			m.Input = string(runes[:len(runes)-1])
		}
	default:
		runes := []rune(msg.String())
		if msg.Type == tea.KeySpace {
			runes = []rune{' '}
		}
		if len(runes) != 1 {
			break
		}
		if m.Field == fieldName {
			m.Input += string(runes[0])
		} else if runes[0] >= '0' && runes[0] <= '9' || runes[0] == '-' {
			m.Input += string(runes[0])
		}
	}
	return m, nil
}
