// Package config manages MeetingMate's settings file and environment.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/bassamadnan/meetingmate/meeting"
	"github.com/bassamadnan/meetingmate/reminder"
)

const defaultNote = "Please make sure to attend on time and be prepared."

// Settings are the user-tunable reminder options.
type Settings struct {
	RecipientPolicy   string `json:"recipientPolicy"` // "all" or "non-organizer"
	Subject           string `json:"subject"`
	Signature         string `json:"signature"`
	DefaultNote       string `json:"defaultNote"`
	DefaultWindowDays int    `json:"defaultWindowDays"`
	TimeZone          string `json:"timeZone"` // IANA name, empty for the local zone
}

// DefaultSettings returns the settings written to a fresh settings file.
func DefaultSettings() Settings {
	return Settings{
		RecipientPolicy:   string(reminder.AllAttendees),
		Subject:           reminder.DefaultSubject,
		Signature:         reminder.DefaultSignature,
		DefaultNote:       defaultNote,
		DefaultWindowDays: 7,
	}
}

// Validate checks the settings for values the rest of the program rejects.
func (s Settings) Validate() error {
	if _, err := reminder.ParseRecipientPolicy(s.RecipientPolicy); err != nil {
		return err
	}
	if !meeting.ValidWindow(s.DefaultWindowDays) {
		return fmt.Errorf("defaultWindowDays must be one of %v, got %d", meeting.WindowChoices, s.DefaultWindowDays)
	}
	if _, err := s.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves TimeZone.
func (s Settings) Location() (*time.Location, error) {
	if s.TimeZone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(s.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid timeZone %q: %w", s.TimeZone, err)
	}
	return loc, nil
}

// Composer builds the reminder composer these settings describe.
func (s Settings) Composer() (reminder.Composer, error) {
	policy, err := reminder.ParseRecipientPolicy(s.RecipientPolicy)
	if err != nil {
		return reminder.Composer{}, err
	}
	loc, err := s.Location()
	if err != nil {
		return reminder.Composer{}, err
	}
	return reminder.Composer{
		Policy:    policy,
		Subject:   s.Subject,
		Signature: s.Signature,
		Location:  loc,
	}, nil
}

// Manager handles loading, saving, and accessing settings.
type Manager struct {
	filePath string
	settings *Settings
	mu       sync.RWMutex
}

// NewManager creates a settings manager, writing defaults when the file is missing.
func NewManager(filePath string) (*Manager, error) {
	m := &Manager{
		filePath: filePath,
		settings: &Settings{},
	}
	if err := m.Load(); err != nil {
		return nil, err
	}
	return m, nil
}

// Load reads the settings file. Missing fields keep their defaults.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			defaults := DefaultSettings()
			m.settings = &defaults
			return m.save()
		}
		return err
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, &settings); err != nil {
		return fmt.Errorf("unable to parse %s: %w", m.filePath, err)
	}
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings in %s: %w", m.filePath, err)
	}
	m.settings = &settings
	return nil
}

// save writes the current settings. Callers hold the lock.
func (m *Manager) save() error {
	data, err := json.MarshalIndent(m.settings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.filePath, data, 0644)
}

// Settings returns a copy of the current settings.
func (m *Manager) Settings() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return *m.settings
}

// SetDefaultWindow remembers the last look-ahead the user picked.
func (m *Manager) SetDefaultWindow(days int) error {
	if !meeting.ValidWindow(days) {
		return fmt.Errorf("look-ahead of %d days is not one of %v", days, meeting.WindowChoices)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settings.DefaultWindowDays == days {
		return nil
	}
	m.settings.DefaultWindowDays = days
	return m.save()
}

// SetRecipientPolicy switches between addressing all attendees and only non-organizers.
func (m *Manager) SetRecipientPolicy(policy reminder.RecipientPolicy) error {
	if _, err := reminder.ParseRecipientPolicy(string(policy)); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings.RecipientPolicy = string(policy)
	return m.save()
}
