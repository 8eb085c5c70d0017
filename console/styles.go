package console

import "github.com/charmbracelet/lipgloss"

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	numberStyle  = cellStyle.Align(lipgloss.Right)
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
)

var methodStyles = map[string]lipgloss.Style{
	"GET":    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	"POST":   lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	"PUT":    lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	"DELETE": lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	"PATCH":  lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
}
