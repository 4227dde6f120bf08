// Package tui provides the interactive Bubble Tea dashboard for cashcast.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/hollowbrook/cashcast/internal/config"
	"github.com/hollowbrook/cashcast/internal/forecast"
	"github.com/hollowbrook/cashcast/internal/model"
	"github.com/hollowbrook/cashcast/internal/pipeline"
	"github.com/hollowbrook/cashcast/internal/store"
	"github.com/hollowbrook/cashcast/internal/tui/components"
	"github.com/hollowbrook/cashcast/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ForecastLoadedMsg is sent when the projection pipeline finishes.
type ForecastLoadedMsg struct {
	Proj     pipeline.Projection
	Digest   model.Digest
	Current  int64
	LoadTime time.Duration
	Err      error
}

// App is the root Bubble Tea model.
type App struct {
	// Data
	proj    pipeline.Projection
	digest  model.Digest
	current int64

	loaded   bool
	loadErr  error
	loadTime time.Duration

	refreshing bool

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	// Per-tab state
	calScroll int
	sim       simulateState

	spinner spinner.Model

	// Config snapshot taken at startup
	cfg    config.Config
	dbPath string
	today  time.Time
}

const (
	minTerminalWidth = 70
	compactWidth     = 110
	maxContentWidth  = 160

	scrollOverhead   = 6 // header + status bar height for half-page calc
	minContentHeight = 5
)

// NewApp creates a new TUI app model.
func NewApp(cfg config.Config, dbPath string, today time.Time) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		cfg:     cfg,
		dbPath:  dbPath,
		today:   today,
		spinner: sp,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadForecastCmd(a.cfg, a.dbPath, a.today),
		a.spinner.Tick,
	)
}

// loadForecastCmd runs the projection and digest in a background goroutine.
func loadForecastCmd(cfg config.Config, dbPath string, today time.Time) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()

		s, err := store.Open(dbPath)
		if err != nil {
			return ForecastLoadedMsg{Err: err, LoadTime: time.Since(start)}
		}
		defer func() { _ = s.Close() }()

		horizonEnd := today.AddDate(0, 0, cfg.General.HorizonDays)
		proj, err := pipeline.Project(s, today, horizonEnd, forecast.ExpandOptions{})
		if err != nil {
			return ForecastLoadedMsg{Err: err, LoadTime: time.Since(start)}
		}

		current, err := s.OpeningBalance(today)
		if err != nil {
			return ForecastLoadedMsg{Err: err, LoadTime: time.Since(start)}
		}

		digest := pipeline.BuildDigest(proj, today, current, cfg.Forecast.BufferFloorCents, time.Now().UTC())

		return ForecastLoadedMsg{
			Proj:     proj,
			Digest:   digest,
			Current:  current,
			LoadTime: time.Since(start),
		}
	}
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.sim.form != nil {
			a.sim.form = a.sim.form.WithWidth(a.contentWidth())
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp {
			return a, nil
		}

		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if a.activeTab == 1 && a.calScroll > 0 {
				a.calScroll--
			}
			return a, nil

		case tea.MouseButtonWheelDown:
			if a.activeTab == 1 && a.calScroll < a.maxCalScroll() {
				a.calScroll++
			}
			return a, nil

		case tea.MouseButtonLeft:
			// Tab bar occupies the first header line
			if msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 && tab < len(components.Tabs) {
					return a.switchTab(tab)
				}
			}
			return a, nil
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKeys(msg)

	case ForecastLoadedMsg:
		a.loaded = true
		a.refreshing = false
		a.loadErr = msg.Err
		a.loadTime = msg.LoadTime
		if msg.Err == nil {
			a.proj = msg.Proj
			a.digest = msg.Digest
			a.current = msg.Current
			if a.calScroll > a.maxCalScroll() {
				a.calScroll = a.maxCalScroll()
			}
		}
		return a, nil

	case spinner.TickMsg:
		if !a.loaded || a.refreshing {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	// Forward unhandled messages to the simulate form (cursor blinks, etc.)
	if a.activeTab == 2 && a.sim.form != nil {
		return a.updateSimulateForm(msg)
	}

	return a, nil
}

func (a App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}

	if !a.loaded {
		return a, nil
	}

	// Simulate form intercepts keys while active
	if a.activeTab == 2 && a.sim.form != nil {
		if key == "esc" {
			a.sim.form = nil
			return a, nil
		}
		return a.updateSimulateForm(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	// Calendar tab scrolling
	if a.activeTab == 1 {
		switch key {
		case "j", "down":
			if a.calScroll < a.maxCalScroll() {
				a.calScroll++
			}
			return a, nil
		case "k", "up":
			if a.calScroll > 0 {
				a.calScroll--
			}
			return a, nil
		case "g":
			a.calScroll = 0
			return a, nil
		case "G":
			a.calScroll = a.maxCalScroll()
			return a, nil
		case "ctrl+d":
			a.calScroll += a.halfPage()
			if a.calScroll > a.maxCalScroll() {
				a.calScroll = a.maxCalScroll()
			}
			return a, nil
		case "ctrl+u":
			a.calScroll -= a.halfPage()
			if a.calScroll < 0 {
				a.calScroll = 0
			}
			return a, nil
		}
	}

	// Simulate tab: enter starts a new check
	if a.activeTab == 2 && (key == "enter" || key == "n") {
		return a.startSimulateForm()
	}

	if key == "q" {
		return a, tea.Quit
	}

	if key == "r" && !a.refreshing {
		a.refreshing = true
		return a, tea.Batch(
			loadForecastCmd(a.cfg, a.dbPath, a.today),
			a.spinner.Tick,
		)
	}

	// Tab navigation
	switch key {
	case "left":
		return a.switchTab((a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs))
	case "right":
		return a.switchTab((a.activeTab + 1) % len(components.Tabs))
	}
	if len(key) == 1 {
		if idx := components.TabIdxByKey(rune(key[0])); idx >= 0 {
			return a.switchTab(idx)
		}
	}
	return a, nil
}

func (a App) switchTab(idx int) (tea.Model, tea.Cmd) {
	a.activeTab = idx
	if idx == 2 && a.sim.form == nil && a.sim.result == nil {
		return a.startSimulateForm()
	}
	return a, nil
}

func (a App) halfPage() int {
	hp := (a.height - scrollOverhead) / 2
	if hp < 1 {
		hp = 1
	}
	return hp
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}

	if !a.loaded {
		return a.viewLoading()
	}

	if a.showHelp {
		return a.viewHelp()
	}

	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := a.height
	if h < 5 {
		h = 5
	}

	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  cashcast needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)

	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderFocus).
		Background(t.Surface).
		Padding(2, 4)

	logoStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.Surface).
		Bold(true)

	subtitleStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ cashcast"))
	b.WriteString(subtitleStyle.Render(" · Cash-flow Forecast"))
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())
	b.WriteString(subtitleStyle.Render(" Projecting balances..."))

	card := cardStyle.Render(b.String())

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderFocus).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.Surface).
		Bold(true)

	keyStyle := lipgloss.NewStyle().
		Foreground(t.Info).
		Background(t.Surface).
		Bold(true)

	descStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)

	dimStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")

	bindings := []struct{ key, desc string }{
		{"o c s", "Jump to tab"},
		{"← →", "Previous / Next tab"},
		{"j k", "Scroll calendar"},
		{"g G", "Calendar top / bottom"},
		{"^d ^u", "Half-page scroll"},
		{"Enter", "New affordability check"},
		{"Esc", "Cancel form"},
		{"r", "Recompute forecast"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}
	for _, bind := range bindings {
		fmt.Fprintf(&b, "  %s  %s\n",
			keyStyle.Render(fmt.Sprintf("%-8s", bind.key)),
			descStyle.Render(bind.desc))
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	card := cardStyle.Render(b.String())

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	// Header: tab bar + horizon pill
	pillStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.Surface)

	pillAccent := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface).
		Bold(true)

	pill := pillStyle.Render(" ") +
		pillAccent.Render(fmt.Sprintf("%s .. %s", a.proj.Horizon.Start, a.proj.Horizon.End)) +
		pillStyle.Render(" ")
	if len(a.proj.Warnings) > 0 {
		warnStyle := lipgloss.NewStyle().Foreground(t.Warn).Background(t.Surface)
		pill += pillStyle.Render("│ ") + warnStyle.Render(fmt.Sprintf("%d source warnings ", len(a.proj.Warnings)))
	}

	pillRowStyle := lipgloss.NewStyle().
		Background(t.Surface).
		Width(w)

	header := components.RenderTabBar(a.activeTab, w) + "\n" + pillRowStyle.Render(pill)

	dataAge := fmt.Sprintf("%.1fs", a.loadTime.Seconds())
	statusBar := components.RenderStatusBar(w, dataAge, a.refreshing)

	headerH := lipgloss.Height(header)
	statusH := lipgloss.Height(statusBar)
	contentH := h - headerH - statusH
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	var content string
	if a.loadErr != nil {
		errStyle := lipgloss.NewStyle().Foreground(t.Debit).Background(t.Surface)
		content = "\n  " + errStyle.Render(fmt.Sprintf("forecast failed: %v", a.loadErr))
	} else {
		switch a.activeTab {
		case 0:
			content = a.renderOverviewTab(cw)
		case 1:
			content = a.renderCalendarTab(cw, contentH)
		case 2:
			content = a.renderSimulateTab(cw)
		}
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)

	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Helpers ────────────────────────────────────────────────────

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	padding := strings.Repeat("\n", h-len(lines))
	return s + padding
}

// fillLinesWithBackground pads each line to width w with background color so
// gaps between cards and empty lines keep the themed background.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")

	var result strings.Builder
	for i, line := range lines {
		placed := lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
		result.WriteString(placed)
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar:
// one leading column, two columns between tabs.
func (a App) tabAtX(x int) int {
	pos := 1
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)

		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW

		if i < len(components.Tabs)-1 {
			pos += 2
		}
	}
	return -1
}
