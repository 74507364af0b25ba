package config

const (
	LightTheme string = "light"
	DarkTheme  string = "dark"
)

// Terminal colors used by the line editor (ANSI 256 palette), per theme.
const (
	ColorPrompt  string = "63"
	ColorOutput  string = "212"
	ColorSuccess string = "42"
	ColorError   string = "196"
	ColorMuted   string = "245"

	ColorPromptLight  string = "27"
	ColorOutputLight  string = "127"
	ColorSuccessLight string = "28"
	ColorErrorLight   string = "160"
	ColorMutedLight   string = "240"
)
