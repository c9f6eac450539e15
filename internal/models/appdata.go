package models

// Storage keys of the persisted workspace.
const (
	KeyAppData         = "smartNotesAppData"
	KeyLearnedWords    = "smartNotesLearnedWordsAi"
	KeyActiveProjectID = "ashvalLastActiveProjectId"
)

// AppData is the persistence envelope: every collection plus settings,
// serialized as one JSON document.
type AppData struct {
	Notes           []Note          `json:"notes"`
	Tasks           []Task          `json:"tasks"`
	LoreEntries     []LoreEntry     `json:"loreEntries"`
	Projects        []Project       `json:"projects"`
	PlotNodes       []PlotNode      `json:"plotOutlineNodes"`
	UserPreferences UserPreferences `json:"userPreferences"`
	ActiveTheme     Theme           `json:"activeTheme"`
	PomodoroConfig  PomodoroConfig  `json:"pomodoroConfig"`
}

// EmptyAppData returns an envelope with empty collections and defaults.
func EmptyAppData() AppData {
	return AppData{
		Notes:           []Note{},
		Tasks:           []Task{},
		LoreEntries:     []LoreEntry{},
		Projects:        []Project{},
		PlotNodes:       []PlotNode{},
		UserPreferences: DefaultPreferences(),
		ActiveTheme:     DefaultTheme,
		PomodoroConfig:  DefaultPomodoro(),
	}
}

// Clone returns a deep copy of d.
func (d AppData) Clone() AppData {
	out := d
	out.Notes = make([]Note, len(d.Notes))
	for i, n := range d.Notes {
		out.Notes[i] = n.Clone()
	}
	out.Tasks = make([]Task, len(d.Tasks))
	for i, t := range d.Tasks {
		out.Tasks[i] = t.Clone()
	}
	out.LoreEntries = make([]LoreEntry, len(d.LoreEntries))
	for i, e := range d.LoreEntries {
		out.LoreEntries[i] = e.Clone()
	}
	out.Projects = append([]Project{}, d.Projects...)
	out.PlotNodes = make([]PlotNode, len(d.PlotNodes))
	for i, p := range d.PlotNodes {
		out.PlotNodes[i] = p.Clone()
	}
	return out
}
