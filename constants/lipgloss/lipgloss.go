package lipgloss

import (
	lip "github.com/charmbracelet/lipgloss"
)

// Shared console styles used across commands.
var (
	Red    = lip.NewStyle().Foreground(lip.Color("9"))
	Green  = lip.NewStyle().Foreground(lip.Color("10"))
	Yellow = lip.NewStyle().Foreground(lip.Color("11"))
	Info   = lip.NewStyle().Foreground(lip.Color("12"))
	Gray   = lip.NewStyle().Foreground(lip.Color("8"))

	BoxStyle = lip.NewStyle().
			Border(lip.RoundedBorder()).
			BorderForeground(lip.Color("8")).
			Padding(0, 1)
)
