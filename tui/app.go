package tui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/bassamadnan/meetingmate/config"
	"github.com/bassamadnan/meetingmate/meeting"
	"github.com/bassamadnan/meetingmate/reminder"
	"github.com/bassamadnan/meetingmate/workflow"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// App is the classic tview renderer of the selection workflow. Workflow
// calls run in goroutines; every widget change goes through QueueUpdateDraw.
type App struct {
	*tview.Application
	rootPages    *tview.Pages
	windowSelect *tview.DropDown
	meetingTable *MeetingTable
	composePane  *ComposePane
	sendButton   *tview.Button
	noticePane   *NoticePane
	statusBar    *tview.TextView
	focusOrder   []tview.Primitive

	ctx        context.Context
	workflow   *workflow.Workflow
	settings   *config.Manager
	notices    <-chan reminder.Notice
	owner      string
	windowDays int
	busy       bool
	tempStatus bool
}

func NewApp(ctx context.Context, wf *workflow.Workflow, cfgManager *config.Manager, notices <-chan reminder.Notice, owner string) *App {
	settings := cfgManager.Settings()
	loc, err := settings.Location()
	if err != nil {
		loc = time.Local
	}
	signature := settings.Signature
	if signature == "" {
		signature = reminder.DefaultSignature
	}

	tuiApp := &App{
		Application: tview.NewApplication(),
		ctx:         ctx,
		workflow:    wf,
		settings:    cfgManager,
		notices:     notices,
		owner:       owner,
		windowDays:  settings.DefaultWindowDays,
	}

	labels := make([]string, len(meeting.WindowChoices))
	for i, d := range meeting.WindowChoices {
		labels[i] = windowLabel(d)
	}
	tuiApp.windowSelect = tview.NewDropDown().
		SetLabel("Look-ahead: ").
		SetOptions(labels, nil)
	tuiApp.windowSelect.SetCurrentOption(windowIndex(tuiApp.windowDays))
	tuiApp.windowSelect.SetSelectedFunc(func(text string, index int) {
		tuiApp.startLoad(meeting.WindowChoices[index])
	})

	tuiApp.meetingTable = NewMeetingTable(loc)
	tuiApp.meetingTable.SetInputCapture(tuiApp.tableKeys)

	tuiApp.composePane = NewComposePane(wf.Note(), wf.DefaultNote(), signature)
	tuiApp.sendButton = tview.NewButton("Send Reminder").SetSelectedFunc(tuiApp.startSend)
	tuiApp.noticePane = NewNoticePane()

	tuiApp.statusBar = tview.NewTextView().
		SetDynamicColors(true).
		SetText(" [::d]Status: Connecting to Google Calendar... | [::b]Ctrl+C[::-]:Quit").
		SetTextAlign(tview.AlignLeft)
	tuiApp.statusBar.SetBackgroundColor(tcell.ColorDefault)

	sendRow := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(nil, 0, 1, false).
		AddItem(tuiApp.sendButton, 17, 0, false)

	leftCol := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(tuiApp.windowSelect, 1, 0, false).
		AddItem(tuiApp.meetingTable, 0, 1, true)

	rightCol := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(tuiApp.composePane, 0, 1, false).
		AddItem(sendRow, 1, 0, false).
		AddItem(tuiApp.noticePane, 0, 1, false)

	dashboard := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(leftCol, 0, 3, true).
		AddItem(rightCol, 0, 2, false)
	dashboard.SetBackgroundColor(tcell.ColorDefault)

	mainLayoutWithStatus := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(dashboard, 0, 1, true).
		AddItem(tuiApp.statusBar, 1, 0, false)
	mainLayoutWithStatus.SetBackgroundColor(tcell.ColorDefault)

	tuiApp.focusOrder = []tview.Primitive{
		tuiApp.meetingTable,
		tuiApp.windowSelect,
		tuiApp.composePane.note,
		tuiApp.sendButton,
	}

	tuiApp.rootPages = tview.NewPages().
		AddPage(PageDashboard, mainLayoutWithStatus, true, true)

	tuiApp.Application.SetRoot(tuiApp.rootPages, true).EnableMouse(true)
	tuiApp.setGlobalKeybindings()
	tuiApp.busy = true

	return tuiApp
}

// NewBlockedApp returns an app that only reports a credential failure.
func NewBlockedApp(err error) *App {
	tuiApp := &App{Application: tview.NewApplication()}
	modal := tview.NewModal().
		SetText(fmt.Sprintf("Authentication failed\n\n%v\n\nCheck credentials.json and remove a stale token.json, then restart.", err)).
		AddButtons([]string{"Quit"}).
		SetDoneFunc(func(buttonIndex int, buttonLabel string) {
			tuiApp.Stop()
		})
	tuiApp.rootPages = tview.NewPages().AddPage(PageBlocked, modal, true, true)
	tuiApp.Application.SetRoot(tuiApp.rootPages, true)
	return tuiApp
}

func (a *App) Run() error {
	if a.workflow != nil {
		go a.processNotices()
		go a.updateStatusTimer()
		a.busy = false
		a.startLoad(a.windowDays)
		a.Application.SetFocus(a.meetingTable)
	}
	return a.Application.Run()
}

func (a *App) setGlobalKeybindings() {
	a.Application.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlC:
			a.Stop()
			return nil
		case tcell.KeyCtrlS:
			a.startSend()
			return nil
		case tcell.KeyTab:
			a.cycleFocus(1)
			return nil
		case tcell.KeyBacktab:
			a.cycleFocus(-1)
			return nil
		}
		return event
	})
}

func (a *App) tableKeys(event *tcell.EventKey) *tcell.EventKey {
	switch event.Rune() {
	case 'q', 'Q':
		a.Stop()
		return nil
	case ' ', 'x':
		a.toggleCurrent()
		return nil
	case 'c':
		a.clearSelection()
		return nil
	case 'p':
		a.switchPolicy()
		return nil
	case 's':
		a.startSend()
		return nil
	case 'r':
		a.startLoad(a.windowDays)
		return nil
	}
	return event
}

func (a *App) cycleFocus(delta int) {
	current := a.GetFocus()
	idx := 0
	for i, p := range a.focusOrder {
		if p == current {
			idx = i
			break
		}
	}
	next := (idx + delta + len(a.focusOrder)) % len(a.focusOrder)
	a.SetFocus(a.focusOrder[next])
}

func (a *App) toggleCurrent() {
	if a.busy {
		return
	}
	idx := a.meetingTable.CurrentIndex()
	if idx < 0 {
		return
	}
	if err := a.workflow.Toggle(idx); err != nil {
		a.setErrorStatus(err.Error())
		return
	}
	a.meetingTable.Toggle(idx)
	a.setStandardStatusMessage()
}

func (a *App) clearSelection() {
	if a.busy {
		return
	}
	a.workflow.ClearSelection()
	a.meetingTable.ClearSelection()
	a.setStandardStatusMessage()
}

func (a *App) switchPolicy() {
	if a.busy {
		return
	}
	policy, err := nextPolicy(a.settings, a.workflow)
	if err != nil {
		a.setErrorStatus(err.Error())
		return
	}
	a.noticePane.Add(reminder.Notice{Level: reminder.LevelInfo, Text: policyLabel(policy)})
}

// startLoad must be called from the event loop.
func (a *App) startLoad(days int) {
	if a.busy {
		return
	}
	if days != a.windowDays {
		if err := a.settings.SetDefaultWindow(days); err != nil {
			log.Printf("TUI: unable to save look-ahead: %v", err)
		}
	}
	a.busy = true
	a.windowDays = days
	a.statusBar.SetText(fmt.Sprintf(" [::d]Loading meetings for the next %s...", windowLabel(days)))

	go func() {
		err := a.workflow.Load(a.ctx, days)
		meetings := snapshot(a.workflow.Meetings())
		a.QueueUpdateDraw(func() {
			a.busy = false
			if err != nil {
				log.Printf("TUI: load failed: %v", err)
				a.meetingTable.SetMeetings(nil, 0)
				var srcErr *workflow.SourceError
				if errors.As(err, &srcErr) {
					a.setErrorStatus(srcErr.Error())
				} else {
					a.setErrorStatus(err.Error())
				}
				return
			}
			a.meetingTable.SetMeetings(meetings, days)
			a.setStandardStatusMessage()
		})
	}()
}

// startSend must be called from the event loop.
func (a *App) startSend() {
	if a.busy {
		return
	}
	if a.meetingTable.SelectedCount() == 0 {
		a.noticePane.Add(reminder.Notice{Level: reminder.LevelError, Text: workflow.ErrEmptySelection.Error()})
		a.setErrorStatus(workflow.ErrEmptySelection.Error())
		return
	}
	a.workflow.SetNote(a.composePane.Note())
	a.busy = true
	a.statusBar.SetText(" [::d]Sending reminders...")

	go func() {
		results, err := a.workflow.Send(a.ctx)
		a.QueueUpdateDraw(func() {
			a.busy = false
			if err != nil {
				a.setErrorStatus(err.Error())
				return
			}
			a.meetingTable.ClearSelection()
			summary, failed := dispatchSummary(results)
			if failed {
				a.setErrorStatus(summary)
				return
			}
			a.showTemporaryStatus(summary, 4*time.Second)
		})
	}()
}

func (a *App) processNotices() {
	for n := range a.notices {
		notice := n
		a.QueueUpdateDraw(func() {
			a.noticePane.Add(notice)
		})
	}
	log.Println("TUI: notice channel closed.")
}

func (a *App) updateStatusTimer() {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
			a.QueueUpdateDraw(func() {
				if !a.busy && !a.tempStatus {
					a.setStandardStatusMessage()
				}
			})
		}
	}
}

func (a *App) showTemporaryStatus(text string, duration time.Duration) {
	a.tempStatus = true
	a.statusBar.SetText(fmt.Sprintf(" [green]%s[-]", tview.Escape(text)))
	time.AfterFunc(duration, func() {
		a.QueueUpdateDraw(func() {
			a.tempStatus = false
			a.setStandardStatusMessage()
		})
	})
}

func (a *App) setErrorStatus(text string) {
	a.tempStatus = true
	a.statusBar.SetText(fmt.Sprintf(" [red]%s[-] | [::b]R[::-]:Reload [::b]Ctrl+C[::-]:Quit", tview.Escape(text)))
}

func (a *App) setStandardStatusMessage() {
	if a.statusBar == nil || a.busy {
		return
	}
	a.tempStatus = false
	account := ""
	if a.owner != "" {
		account = a.owner + " | "
	}
	statusMsg := fmt.Sprintf(" [::d]%s%s | %d meetings, %d selected | [::b]Space[::-]:Select [::b]C[::-]:Clear [::b]P[::-]:Recipients [::b]Tab[::-]:Next [::b]Ctrl+S[::-]:Send [::b]R[::-]:Reload [::b]Q/Ctrl+C[::-]:Quit",
		account, time.Now().Format("15:04:05"), len(a.meetingTable.meetings), a.meetingTable.SelectedCount())
	a.statusBar.SetText(statusMsg)
}
