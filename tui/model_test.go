package tui

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bassamadnan/meetingmate/config"
	"github.com/bassamadnan/meetingmate/meeting"
	"github.com/bassamadnan/meetingmate/reminder"
	"github.com/bassamadnan/meetingmate/workflow"
)

var now = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

type sourceMock struct {
	ListEventsFunc func(ctx context.Context, start, end time.Time) ([]meeting.RawEvent, error)
}

func (s *sourceMock) ListEvents(ctx context.Context, start, end time.Time) ([]meeting.RawEvent, error) {
	return s.ListEventsFunc(ctx, start, end)
}

type sinkMock struct {
	SendFunc func(to string) error
	sent     []string
}

func (s *sinkMock) Send(_ context.Context, to, _, _ string) error {
	s.sent = append(s.sent, to)
	if s.SendFunc != nil {
		return s.SendFunc(to)
	}
	return nil
}

func oneOnOne(id string, offset time.Duration, a, b string) meeting.RawEvent {
	return meeting.RawEvent{
		ID:        id,
		Start:     now.Add(offset),
		End:       now.Add(offset + 30*time.Minute),
		Attendees: []meeting.Attendee{{Email: a}, {Email: b}},
	}
}

func staticSource(events ...meeting.RawEvent) *sourceMock {
	return &sourceMock{ListEventsFunc: func(context.Context, time.Time, time.Time) ([]meeting.RawEvent, error) {
		return events, nil
	}}
}

func newTestModel(t *testing.T, src workflow.Source, sink reminder.MailSink) (Model, *config.Manager) {
	t.Helper()
	cfg, err := config.NewManager(filepath.Join(t.TempDir(), "meetingmate.json"))
	require.NoError(t, err)

	wf := workflow.New(src, reminder.Composer{}, reminder.NewDispatcher(sink, reminder.NotifierFunc(func(reminder.Notice) {})),
		workflow.WithClock(func() time.Time { return now }),
		workflow.WithDefaultNote("Please be on time."),
	)
	m := NewInitialModel(context.Background(), wf, cfg, nil, "me@example.com")
	m.loc = time.UTC
	m = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 48})
	return m, cfg
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model
}

// run executes a command returned by Update and feeds its message back.
func run(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	return update(t, m, cmd())
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

var space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}

func loaded(t *testing.T, m Model) Model {
	t.Helper()
	return run(t, m, loadMeetingsCmd(m.ctx, m.workflow, m.windowDays))
}

func TestModel_LoadShowsMeetings(t *testing.T) {
	src := staticSource(
		oneOnOne("a", 2*time.Hour, "alice@example.com", "bob@example.com"),
		meeting.RawEvent{ID: "team", Start: now.Add(time.Hour), End: now.Add(2 * time.Hour),
			Attendees: []meeting.Attendee{{Email: "a@x"}, {Email: "b@x"}, {Email: "c@x"}}},
	)
	m, _ := newTestModel(t, src, &sinkMock{})
	assert.Contains(t, m.View(), "Loading meetings")

	m = loaded(t, m)
	require.Len(t, m.meetings, 1)
	view := m.View()
	assert.Contains(t, view, "alice@example.com, bob@example.com")
	assert.Contains(t, view, "2024-01-01")
	assert.Contains(t, view, "10:00 AM")
	assert.Contains(t, view, "10:30 AM")
	assert.Contains(t, view, "[ ]")
	assert.Contains(t, view, "Please be on time.")
	assert.Contains(t, view, reminder.DefaultSignature)
	assert.NotContains(t, view, "c@x")
}

func TestModel_NoMeetings(t *testing.T) {
	m, _ := newTestModel(t, staticSource(), &sinkMock{})
	m = loaded(t, m)

	assert.Equal(t, workflow.MeetingsLoaded, m.workflow.State())
	assert.Contains(t, m.View(), "No Upcoming Meetings Scheduled")
	assert.Contains(t, m.View(), "next 7 days")
}

func TestModel_SourceError(t *testing.T) {
	src := &sourceMock{ListEventsFunc: func(context.Context, time.Time, time.Time) ([]meeting.RawEvent, error) {
		return nil, errors.New("backend unavailable")
	}}
	m, _ := newTestModel(t, src, &sinkMock{})
	m = loaded(t, m)

	assert.True(t, m.statusIsError)
	assert.Contains(t, m.statusBarText, "unable to fetch meetings")
	assert.Contains(t, m.View(), "backend unavailable")
	assert.NotContains(t, m.View(), "Participants")
}

func TestModel_ToggleSelection(t *testing.T) {
	src := staticSource(
		oneOnOne("a", time.Hour, "alice@example.com", "bob@example.com"),
		oneOnOne("b", 3*time.Hour, "carol@example.com", "dave@example.com"),
	)
	m, _ := newTestModel(t, src, &sinkMock{})
	m = loaded(t, m)

	m = update(t, m, space)
	assert.True(t, m.selected[0])
	assert.True(t, m.workflow.IsSelected(0))
	assert.Contains(t, m.View(), "[x]")

	m = update(t, m, keyRune('x'))
	assert.False(t, m.selected[0])
	assert.False(t, m.workflow.IsSelected(0))
}

func TestModel_SendWithoutSelection(t *testing.T) {
	sink := &sinkMock{}
	m, _ := newTestModel(t, staticSource(oneOnOne("a", time.Hour, "alice@example.com", "bob@example.com")), sink)
	m = loaded(t, m)

	next, cmd := m.Update(keyRune('s'))
	m = next.(Model)
	assert.Nil(t, cmd)
	assert.Empty(t, sink.sent)
	require.NotEmpty(t, m.noticeLog)
	assert.Equal(t, reminder.LevelError, m.noticeLog[len(m.noticeLog)-1].Level)
	assert.Contains(t, m.View(), workflow.ErrEmptySelection.Error())
}

func TestModel_SendSelected(t *testing.T) {
	sink := &sinkMock{SendFunc: func(to string) error {
		if to == "bob@example.com" {
			return errors.New("quota exceeded")
		}
		return nil
	}}
	src := staticSource(
		oneOnOne("a", time.Hour, "alice@example.com", "bob@example.com"),
		oneOnOne("b", 3*time.Hour, "carol@example.com", "dave@example.com"),
	)
	m, _ := newTestModel(t, src, sink)
	m = loaded(t, m)
	m = update(t, m, space)

	next, cmd := m.Update(keyRune('s'))
	m = next.(Model)
	assert.True(t, m.busy)

	// input is ignored until the batch finishes
	m = update(t, m, space)
	assert.True(t, m.selected[0])

	m = run(t, m, cmd)
	assert.False(t, m.busy)
	assert.Equal(t, []string{"alice@example.com", "bob@example.com"}, sink.sent)
	assert.Equal(t, []bool{false, false}, m.selected)
	assert.True(t, m.statusIsError)
	assert.Equal(t, "Sent 1 reminders, 1 failed", m.statusBarText)
	assert.Equal(t, workflow.MeetingsLoaded, m.workflow.State())
}

func TestModel_NoteIsUsed(t *testing.T) {
	var body string
	sink := reminderSinkFunc(func(to, b string) error {
		body = b
		return nil
	})
	m, _ := newTestModel(t, staticSource(oneOnOne("a", time.Hour, "alice@example.com", "bob@example.com")), sink)
	m = loaded(t, m)
	m = update(t, m, space)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, focusNote, m.focus)
	m.note.SetValue("Bring the roadmap.")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, focusTable, m.focus)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	cmd()
	assert.Contains(t, body, "Bring the roadmap.")
}

type reminderSinkFunc func(to, body string) error

func (f reminderSinkFunc) Send(_ context.Context, to, _, body string) error { return f(to, body) }

func TestModel_WindowSwitchPersists(t *testing.T) {
	var gotEnd time.Time
	src := &sourceMock{ListEventsFunc: func(_ context.Context, _, end time.Time) ([]meeting.RawEvent, error) {
		gotEnd = end
		return nil, nil
	}}
	m, cfg := newTestModel(t, src, &sinkMock{})
	m = loaded(t, m)

	next, cmd := m.Update(keyRune('3'))
	m = next.(Model)
	m = run(t, m, cmd)

	assert.Equal(t, 15, m.windowDays)
	assert.Equal(t, now.AddDate(0, 0, 15), gotEnd)
	assert.Equal(t, 15, cfg.Settings().DefaultWindowDays)

	next, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = next.(Model)
	m = run(t, m, cmd)
	assert.Equal(t, 30, m.windowDays)

	// already at the widest window
	next, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = next.(Model)
	m = run(t, m, cmd)
	assert.Equal(t, 30, m.windowDays)
}

func TestModel_Notices(t *testing.T) {
	notices := make(chan reminder.Notice, 1)
	m, _ := newTestModel(t, staticSource(), &sinkMock{})
	m.notices = notices

	next, cmd := m.Update(NoticeMsg{Level: reminder.LevelSuccess, Text: "Reminder email sent to alice@example.com"})
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.Len(t, m.noticeLog, 1)

	for i := 0; i < maxNotices+2; i++ {
		m = update(t, m, NoticeMsg{Level: reminder.LevelInfo, Text: "tick"})
	}
	assert.Len(t, m.noticeLog, maxNotices)

	close(notices)
	assert.Equal(t, noticesClosedMsg{}, waitForNoticeCmd(notices)())
}

func TestBlockedModel(t *testing.T) {
	m := NewBlockedModel(errors.New("authentication failed: token revoked"))
	assert.Nil(t, m.Init())
	assert.Contains(t, m.View(), "token revoked")

	_, cmd := m.Update(keyRune('s'))
	assert.Nil(t, cmd)

	_, cmd = m.Update(keyRune('q'))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestModel_RejectedSendComesBackAsError(t *testing.T) {
	m, _ := newTestModel(t, staticSource(oneOnOne("a", time.Hour, "alice@example.com", "bob@example.com")), &sinkMock{})
	m = loaded(t, m)

	msg := sendRemindersCmd(m.ctx, m.workflow)()
	errMsg, ok := msg.(ErrorMsg)
	require.True(t, ok)
	assert.ErrorIs(t, errMsg.Err, workflow.ErrEmptySelection)

	m.busy = true
	m = update(t, m, msg)
	assert.False(t, m.busy)
	assert.True(t, m.statusIsError)
	require.NotEmpty(t, m.noticeLog)
	assert.Equal(t, workflow.ErrEmptySelection.Error(), m.noticeLog[len(m.noticeLog)-1].Text)
}

func TestModel_ClearSelection(t *testing.T) {
	src := staticSource(
		oneOnOne("a", time.Hour, "alice@example.com", "bob@example.com"),
		oneOnOne("b", 3*time.Hour, "carol@example.com", "dave@example.com"),
	)
	m, _ := newTestModel(t, src, &sinkMock{})
	m = loaded(t, m)
	m = update(t, m, space)
	require.Equal(t, workflow.SelectionMade, m.workflow.State())

	m = update(t, m, keyRune('c'))
	assert.Equal(t, []bool{false, false}, m.selected)
	assert.Equal(t, workflow.MeetingsLoaded, m.workflow.State())
	assert.NotContains(t, m.View(), "[x]")
}

func TestModel_SwitchRecipientPolicy(t *testing.T) {
	sink := &sinkMock{}
	ev := oneOnOne("a", time.Hour, "alice@example.com", "bob@example.com")
	ev.Attendees[0].Organizer = true
	m, cfg := newTestModel(t, staticSource(ev), sink)
	m = loaded(t, m)

	m = update(t, m, keyRune('p'))
	assert.Equal(t, string(reminder.NonOrganizers), cfg.Settings().RecipientPolicy)
	assert.Equal(t, policyLabel(reminder.NonOrganizers), m.noticeLog[len(m.noticeLog)-1].Text)

	m = update(t, m, space)
	m = run(t, m, sendRemindersCmd(m.ctx, m.workflow))
	assert.Equal(t, []string{"bob@example.com"}, sink.sent)

	m = update(t, m, keyRune('p'))
	assert.Equal(t, string(reminder.AllAttendees), cfg.Settings().RecipientPolicy)
}

func TestModel_NotePlaceholderIsDefaultNote(t *testing.T) {
	m, _ := newTestModel(t, staticSource(), &sinkMock{})
	assert.Equal(t, "Please be on time.", m.note.Placeholder)
}
