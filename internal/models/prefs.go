package models

// Theme identifies one of the UI themes. Rendering concerns stay in the
// client; the service only stores the identifier.
type Theme string

const (
	ThemeLight    Theme = "light"
	ThemeDark     Theme = "dark"
	ThemeSepia    Theme = "sepia"
	ThemeMidnight Theme = "midnight"
	ThemeAshval   Theme = "ashval"
)

// Themes lists every known theme.
var Themes = []Theme{ThemeLight, ThemeDark, ThemeSepia, ThemeMidnight, ThemeAshval}

// DefaultTheme is used when nothing (or something unknown) is stored.
const DefaultTheme = ThemeLight

// Valid reports whether t is a known theme.
func (t Theme) Valid() bool {
	for _, k := range Themes {
		if k == t {
			return true
		}
	}
	return false
}

// MenuStyle controls how the AI writer menu is presented.
type MenuStyle string

const (
	MenuStyleFloating MenuStyle = "floating"
	MenuStyleSidebar  MenuStyle = "sidebar"
)

// UserPreferences holds the writer's settings.
type UserPreferences struct {
	Notifications NotificationPrefs `json:"notifications"`
	AIWriter      AIWriterPrefs     `json:"aiWriter"`
	FontFamily    string            `json:"fontFamily"`
}

// NotificationPrefs toggles the reminders the client shows.
type NotificationPrefs struct {
	TaskReminders  bool `json:"taskReminders"`
	PomodoroAlerts bool `json:"pomodoroAlerts"`
	DailySummary   bool `json:"dailySummary"`
}

// AIWriterPrefs configures the AI writing assistant.
type AIWriterPrefs struct {
	RepetitionThreshold int       `json:"repetitionThreshold"`
	AutoLoreCreation    bool      `json:"autoLoreCreation"`
	AutoSceneAnalysis   bool      `json:"autoSceneAnalysis"`
	MenuStyle           MenuStyle `json:"menuStyle"`
	CustomInstruction   string    `json:"customInstruction,omitempty"`
}

// DefaultPreferences returns the preferences of a fresh workspace.
func DefaultPreferences() UserPreferences {
	return UserPreferences{
		Notifications: NotificationPrefs{
			TaskReminders:  true,
			PomodoroAlerts: true,
		},
		AIWriter: AIWriterPrefs{
			RepetitionThreshold: 3,
			AutoLoreCreation:    true,
			MenuStyle:           MenuStyleFloating,
		},
		FontFamily: "sans",
	}
}

// PomodoroConfig is persisted for the client-side timer.
type PomodoroConfig struct {
	WorkMinutes             int `json:"work"`
	ShortBreakMinutes       int `json:"shortBreak"`
	LongBreakMinutes        int `json:"longBreak"`
	SessionsBeforeLongBreak int `json:"sessionsBeforeLongBreak"`
}

// DefaultPomodoro returns the classic 25/5/15 cycle.
func DefaultPomodoro() PomodoroConfig {
	return PomodoroConfig{
		WorkMinutes:             25,
		ShortBreakMinutes:       5,
		LongBreakMinutes:        15,
		SessionsBeforeLongBreak: 4,
	}
}
