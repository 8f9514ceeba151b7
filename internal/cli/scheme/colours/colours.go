package colours

import "github.com/fatih/color"

// Colour scheme for the CLI
var (
	Title    = color.New(color.FgCyan, color.Bold)
	Location = color.New(color.FgMagenta, color.Bold)
	Speaker  = color.New(color.FgMagenta)
	Dutch    = color.New(color.FgWhite, color.Bold)
	Translat = color.New(color.FgHiBlack)
	Prompt   = color.New(color.FgGreen, color.Bold)
	Error    = color.New(color.FgRed, color.Bold)
	Success  = color.New(color.FgGreen)
	Info     = color.New(color.FgBlue)
	Warning  = color.New(color.FgYellow)
)
