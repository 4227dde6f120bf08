// Package theme defines the color roles of the cashcast dashboard.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme maps the dashboard's semantic roles onto a palette. Money movement
// gets dedicated roles so inflows, outflows, and floor breaches read
// consistently across tabs regardless of the palette underneath.
type Theme struct {
	Name        string
	Background  lipgloss.Color // app background
	Surface     lipgloss.Color // card and bar backgrounds
	Border      lipgloss.Color // card borders
	BorderFocus lipgloss.Color // focused panels (help, loading)
	TextDim     lipgloss.Color // hints, separators
	TextMuted   lipgloss.Color // labels, metadata
	TextPrimary lipgloss.Color // content text
	Accent       lipgloss.Color // active tab, titles
	AccentBright lipgloss.Color // emphasized accent text
	Credit      lipgloss.Color // money in, safe verdicts, healthy balances
	Debit       lipgloss.Color // money out, unsafe verdicts, errors
	Warn        lipgloss.Color // below buffer floor, tight dates
	Notice      lipgloss.Color // shift annotations, mid headroom
	Info        lipgloss.Color // spinner, neutral highlights
}

// Active is the currently selected theme.
var Active = FlexokiDark

// FlexokiDark is the default - warm, paper-inspired dark palette.
var FlexokiDark = Theme{
	Name:         "flexoki-dark",
	Background:   lipgloss.Color("#100F0F"),
	Surface:      lipgloss.Color("#1C1B1A"),
	Border:       lipgloss.Color("#403E3C"),
	BorderFocus:  lipgloss.Color("#3AA99F"),
	TextDim:      lipgloss.Color("#575653"),
	TextMuted:    lipgloss.Color("#878580"),
	TextPrimary:  lipgloss.Color("#FFFCF0"),
	Accent:       lipgloss.Color("#3AA99F"),
	AccentBright: lipgloss.Color("#5BC8BE"),
	Credit:       lipgloss.Color("#879A39"),
	Debit:        lipgloss.Color("#D14D41"),
	Warn:         lipgloss.Color("#DA702C"),
	Notice:       lipgloss.Color("#D0A215"),
	Info:         lipgloss.Color("#24837B"),
}

// CatppuccinMocha is a soft pastel palette.
var CatppuccinMocha = Theme{
	Name:         "catppuccin-mocha",
	Background:   lipgloss.Color("#1E1E2E"),
	Surface:      lipgloss.Color("#313244"),
	Border:       lipgloss.Color("#585B70"),
	BorderFocus:  lipgloss.Color("#89B4FA"),
	TextDim:      lipgloss.Color("#6C7086"),
	TextMuted:    lipgloss.Color("#A6ADC8"),
	TextPrimary:  lipgloss.Color("#CDD6F4"),
	Accent:       lipgloss.Color("#89B4FA"),
	AccentBright: lipgloss.Color("#B4D0FB"),
	Credit:       lipgloss.Color("#A6E3A1"),
	Debit:        lipgloss.Color("#F38BA8"),
	Warn:         lipgloss.Color("#FAB387"),
	Notice:       lipgloss.Color("#F9E2AF"),
	Info:         lipgloss.Color("#94E2D5"),
}

// TokyoNight is a cool blue/purple palette.
var TokyoNight = Theme{
	Name:         "tokyo-night",
	Background:   lipgloss.Color("#1A1B26"),
	Surface:      lipgloss.Color("#24283B"),
	Border:       lipgloss.Color("#565F89"),
	BorderFocus:  lipgloss.Color("#7AA2F7"),
	TextDim:      lipgloss.Color("#565F89"),
	TextMuted:    lipgloss.Color("#A9B1D6"),
	TextPrimary:  lipgloss.Color("#C0CAF5"),
	Accent:       lipgloss.Color("#7AA2F7"),
	AccentBright: lipgloss.Color("#A9C1FF"),
	Credit:       lipgloss.Color("#9ECE6A"),
	Debit:        lipgloss.Color("#F7768E"),
	Warn:         lipgloss.Color("#FF9E64"),
	Notice:       lipgloss.Color("#E0AF68"),
	Info:         lipgloss.Color("#7DCFFF"),
}

// Terminal sticks to ANSI 16 colors for maximum compatibility.
var Terminal = Theme{
	Name:         "terminal",
	Background:   lipgloss.Color("0"),
	Surface:      lipgloss.Color("0"),
	Border:       lipgloss.Color("8"),
	BorderFocus:  lipgloss.Color("6"),
	TextDim:      lipgloss.Color("8"),
	TextMuted:    lipgloss.Color("7"),
	TextPrimary:  lipgloss.Color("15"),
	Accent:       lipgloss.Color("6"),
	AccentBright: lipgloss.Color("14"),
	Credit:       lipgloss.Color("2"),
	Debit:        lipgloss.Color("1"),
	Warn:         lipgloss.Color("3"),
	Notice:       lipgloss.Color("11"),
	Info:         lipgloss.Color("14"),
}

// All available themes.
var All = []Theme{FlexokiDark, CatppuccinMocha, TokyoNight, Terminal}

// ByName returns a theme by its name, defaulting to FlexokiDark.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return FlexokiDark
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}
