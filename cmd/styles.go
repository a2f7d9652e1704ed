package cmd

import "github.com/charmbracelet/lipgloss"

var whiteText = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
var grayText = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

var greenIcon = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).PaddingRight(1)
var yellowIcon = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).PaddingRight(1)
var redIcon = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).PaddingRight(1)

var errorLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).PaddingRight(1)
var successLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).PaddingRight(1)
