package styles

import "github.com/charmbracelet/lipgloss"

// Oxocarbon color scheme - IBM Carbon inspired
// Following base16 oxocarbon-dark palette
var (
	// Base colors
	OxocarbonBlack  = lipgloss.Color("#161616")
	OxocarbonBase00 = lipgloss.Color("#262626")
	OxocarbonBase01 = lipgloss.Color("#393939")
	OxocarbonBase02 = lipgloss.Color("#525252")
	OxocarbonBase03 = lipgloss.Color("#767676")
	OxocarbonBase04 = lipgloss.Color("#dde1e6")
	OxocarbonBase05 = lipgloss.Color("#f2f4f8")
	OxocarbonWhite  = lipgloss.Color("#ffffff")

	// Accent colors
	OxocarbonTeal      = lipgloss.Color("#3ddbd9")
	OxocarbonBlue      = lipgloss.Color("#78a9ff")
	OxocarbonPink      = lipgloss.Color("#ee5396")
	OxocarbonRed       = lipgloss.Color("#ff5252")
	OxocarbonCyan      = lipgloss.Color("#33b1ff")
	OxocarbonMagenta   = lipgloss.Color("#ff7eb6")
	OxocarbonGreen     = lipgloss.Color("#42be65")
	OxocarbonPurple    = lipgloss.Color("#be95ff")
	OxocarbonLightBlue = lipgloss.Color("#82cfff")
)

var (
	AppStyle = lipgloss.NewStyle().
			Padding(1, 2)

	TitleStyle = lipgloss.NewStyle().
			Foreground(OxocarbonWhite).
			Background(OxocarbonPurple).
			Padding(0, 1).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(OxocarbonLightBlue).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(OxocarbonBase03).
			Italic(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(OxocarbonBase03)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(OxocarbonRed).
			Bold(true)

	StatusStyle = lipgloss.NewStyle().
			Foreground(OxocarbonGreen)

	// Category sidebar
	CategoryStyle = lipgloss.NewStyle().
			PaddingLeft(1).
			Foreground(OxocarbonBase04)

	CategoryFocusedStyle = lipgloss.NewStyle().
				PaddingLeft(1).
				Foreground(OxocarbonPurple).
				Bold(true)

	CategoryInactiveCursorStyle = lipgloss.NewStyle().
					PaddingLeft(1).
					Foreground(OxocarbonBase05).
					Bold(true)

	// Grid cells
	CellStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(OxocarbonBase01).
			Foreground(OxocarbonBase04)

	CellFocusedStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(OxocarbonPurple).
				Foreground(OxocarbonBase05).
				Bold(true)

	// Side menu
	MenuStyle = lipgloss.NewStyle().
			Padding(1, 2).
			Border(lipgloss.NormalBorder(), false, true, false, false).
			BorderForeground(OxocarbonBase01)

	MenuItemStyle = lipgloss.NewStyle().
			Foreground(OxocarbonBase04)

	MenuItemFocusedStyle = lipgloss.NewStyle().
				Foreground(OxocarbonPurple).
				Bold(true)

	// Modal dialogs
	ModalStyle = lipgloss.NewStyle().
			Padding(1, 3).
			Border(lipgloss.DoubleBorder()).
			BorderForeground(OxocarbonPurple)

	// Virtual keyboard keys
	KeycapStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(OxocarbonBase04)

	KeycapFocusedStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(OxocarbonPurple).
				Foreground(OxocarbonBlack).
				Bold(true)

	// Playback overlay
	PlayerBoxStyle = lipgloss.NewStyle().
			Padding(1, 3).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(OxocarbonTeal)

	ProgressBarFilled = lipgloss.NewStyle().Foreground(OxocarbonTeal)
	ProgressBarEmpty  = lipgloss.NewStyle().Foreground(OxocarbonBase01)

	BadgeLiveStyle = lipgloss.NewStyle().
			Foreground(OxocarbonBlack).
			Background(OxocarbonRed).
			Padding(0, 1).
			Bold(true)

	BadgeFavStyle = lipgloss.NewStyle().
			Foreground(OxocarbonMagenta)
)
