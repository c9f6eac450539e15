package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/ashval/inkweaver/internal/apperr"
	"github.com/ashval/inkweaver/internal/models"
	"github.com/ashval/inkweaver/internal/normalize"
	"github.com/ashval/inkweaver/internal/storage"
)

// Preferences returns the user preferences.
func (s *Store) Preferences() models.UserPreferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.UserPreferences
}

// SetPreferences replaces the user preferences.
func (s *Store) SetPreferences(ctx context.Context, p models.UserPreferences) (models.UserPreferences, error) {
	if p.AIWriter.MenuStyle == "" {
		p.AIWriter.MenuStyle = models.MenuStyleFloating
	}
	p.FontFamily = strings.TrimSpace(p.FontFamily)
	if p.FontFamily == "" {
		p.FontFamily = models.DefaultPreferences().FontFamily
	}
	err := validation.ValidateStruct(&p.AIWriter,
		validation.Field(&p.AIWriter.RepetitionThreshold, validation.Min(2), validation.Max(100)),
		validation.Field(&p.AIWriter.MenuStyle, validation.In(models.MenuStyleFloating, models.MenuStyleSidebar)),
	)
	if err != nil {
		return models.UserPreferences{}, apperr.Invalid("update preferences", err)
	}

	s.mu.Lock()
	s.data.UserPreferences = p
	s.commit(ctx, Change{Collection: CollectionPreferences, Kind: Updated, ID: "userPreferences"})
	return p, nil
}

// Theme returns the active theme.
func (s *Store) Theme() models.Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.ActiveTheme
}

// SetTheme switches the active theme.
func (s *Store) SetTheme(ctx context.Context, t models.Theme) error {
	if !t.Valid() {
		return apperr.Invalid("set theme", errors.New("unknown theme "+string(t)))
	}
	s.mu.Lock()
	s.data.ActiveTheme = t
	s.commit(ctx, Change{Collection: CollectionPreferences, Kind: Updated, ID: "activeTheme"})
	return nil
}

// Pomodoro returns the pomodoro timer configuration.
func (s *Store) Pomodoro() models.PomodoroConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.PomodoroConfig
}

// SetPomodoro replaces the pomodoro timer configuration.
func (s *Store) SetPomodoro(ctx context.Context, c models.PomodoroConfig) error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.WorkMinutes, validation.Required, validation.Min(1), validation.Max(180)),
		validation.Field(&c.ShortBreakMinutes, validation.Required, validation.Min(1), validation.Max(60)),
		validation.Field(&c.LongBreakMinutes, validation.Required, validation.Min(1), validation.Max(120)),
		validation.Field(&c.SessionsBeforeLongBreak, validation.Required, validation.Min(1), validation.Max(12)),
	)
	if err != nil {
		return apperr.Invalid("set pomodoro", err)
	}
	s.mu.Lock()
	s.data.PomodoroConfig = c
	s.commit(ctx, Change{Collection: CollectionPreferences, Kind: Updated, ID: "pomodoroConfig"})
	return nil
}

// LearnedWords returns the words excluded from repetition checks, sorted.
func (s *Store) LearnedWords() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.learned...)
}

// AddLearnedWord adds word (lowercased) to the learned set.
func (s *Store) AddLearnedWord(word string) ([]string, error) {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return nil, apperr.Invalid("learn word", errors.New("word is required"))
	}
	s.mu.Lock()
	i := sort.SearchStrings(s.learned, word)
	if i < len(s.learned) && s.learned[i] == word {
		out := append([]string{}, s.learned...)
		s.mu.Unlock()
		return out, nil
	}
	s.learned = append(s.learned, "")
	copy(s.learned[i+1:], s.learned[i:])
	s.learned[i] = word
	s.saveLearnedLocked()
	out := append([]string{}, s.learned...)
	s.mu.Unlock()

	s.notify(Change{Collection: CollectionPreferences, Kind: Updated, ID: "learnedWords"})
	return out, nil
}

// ForgetLearnedWord removes word from the learned set.
func (s *Store) ForgetLearnedWord(word string) []string {
	word = strings.ToLower(strings.TrimSpace(word))
	s.mu.Lock()
	i := sort.SearchStrings(s.learned, word)
	if i < len(s.learned) && s.learned[i] == word {
		s.learned = append(s.learned[:i], s.learned[i+1:]...)
		s.saveLearnedLocked()
	}
	out := append([]string{}, s.learned...)
	s.mu.Unlock()

	s.notify(Change{Collection: CollectionPreferences, Kind: Updated, ID: "learnedWords"})
	return out
}

func (s *Store) readLearnedWords() []string {
	raw, err := s.provider.Load(models.KeyLearnedWords)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("load learned words failed", slog.String("error", err.Error()))
		}
		return []string{}
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		s.logger.Warn("learned words are corrupt; ignoring", slog.String("error", err.Error()))
		return []string{}
	}
	return normalize.LearnedWords(v)
}

func (s *Store) saveLearnedLocked() {
	raw, err := json.Marshal(s.learned)
	if err == nil {
		err = s.provider.Save(models.KeyLearnedWords, raw)
	}
	if err != nil {
		s.logger.Warn("persist learned words failed", slog.String("error", err.Error()))
	}
}

func (s *Store) readActiveProject() *string {
	raw, err := s.provider.Load(models.KeyActiveProjectID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("load active project failed", slog.String("error", err.Error()))
		}
		return nil
	}
	// Stored either as a bare id or as a JSON string.
	id := strings.TrimSpace(string(raw))
	var quoted string
	if json.Unmarshal(raw, &quoted) == nil {
		id = strings.TrimSpace(quoted)
	}
	if id == "" || id == "null" || s.projectIndex(id) < 0 {
		return nil
	}
	return &id
}

func (s *Store) saveActiveProjectLocked() {
	var err error
	if s.activeProject == nil {
		err = s.provider.Delete(models.KeyActiveProjectID)
	} else {
		err = s.provider.Save(models.KeyActiveProjectID, []byte(*s.activeProject))
	}
	if err != nil {
		s.logger.Warn("persist active project failed", slog.String("error", err.Error()))
	}
}

// fixActiveProjectLocked drops an active project that no longer exists.
func (s *Store) fixActiveProjectLocked() {
	if s.activeProject != nil && s.projectIndex(*s.activeProject) < 0 {
		s.activeProject = nil
		s.saveActiveProjectLocked()
	}
}
