package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bassamadnan/meetingmate/auth"
	"github.com/bassamadnan/meetingmate/calendar"
	"github.com/bassamadnan/meetingmate/config"
	"github.com/bassamadnan/meetingmate/gmail"
	"github.com/bassamadnan/meetingmate/reminder"
	"github.com/bassamadnan/meetingmate/tui"
	"github.com/bassamadnan/meetingmate/workflow"
)

const (
	envFile      = ".env"
	ownerTimeout = 5 * time.Second
)

func main() {
	env, err := config.LoadEnv(envFile)
	if err != nil {
		log.Fatalf("Failed to read environment: %v", err)
	}

	logFile, err := os.OpenFile(env.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0660)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer logFile.Close()
	log.SetOutput(logFile)
	log.Println("Application starting...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Shutdown signal received, cancelling context...")
		cancel()
	}()

	cfgManager, err := config.NewManager(env.SettingsFile)
	if err != nil {
		log.Fatalf("Failed to initialize config manager: %v", err)
	}
	settings := cfgManager.Settings()
	composer, err := settings.Composer()
	if err != nil {
		log.Fatalf("Invalid settings: %v", err)
	}
	log.Println("Config manager initialized.")

	provider, err := auth.NewProvider(env.CredentialsFile, env.TokenFile, &auth.LocalServerFlow{Out: os.Stdout}, calendar.Scope, gmail.Scope)
	if err == nil {
		httpClient, clientErr := provider.Client(ctx)
		if clientErr == nil {
			runDashboard(ctx, env, cfgManager, composer, httpClient)
			return
		}
		err = clientErr
	}

	var authErr *auth.AuthError
	if !errors.As(err, &authErr) {
		log.Fatalf("Failed to initialize credentials: %v", err)
	}
	log.Printf("Authentication failed, starting blocked UI: %v", err)
	runBlocked(env, err)
}

func runDashboard(ctx context.Context, env config.Env, cfgManager *config.Manager, composer reminder.Composer, httpClient *http.Client) {
	calendarClient, err := calendar.NewClient(ctx, httpClient)
	if err != nil {
		log.Fatalf("Failed to initialize Calendar client: %v", err)
	}
	gmailClient, err := gmail.NewClient(ctx, httpClient)
	if err != nil {
		log.Fatalf("Failed to initialize Gmail client: %v", err)
	}
	log.Println("Google clients initialized.")

	ownerCtx, ownerCancel := context.WithTimeout(ctx, ownerTimeout)
	owner, err := calendarClient.Owner(ownerCtx)
	ownerCancel()
	if err != nil {
		log.Printf("Could not resolve calendar owner: %v", err)
	}

	notices := make(chan reminder.Notice, 16)
	notifier := reminder.MultiNotifier{reminder.NewChanNotifier(ctx, notices), reminder.LogNotifier{}}
	dispatcher := reminder.NewDispatcher(gmailClient, notifier)
	wf := workflow.New(calendarClient, composer, dispatcher,
		workflow.WithDefaultNote(cfgManager.Settings().DefaultNote))

	switch env.UI {
	case config.UIClassic:
		tuiApp := tui.NewApp(ctx, wf, cfgManager, notices, owner)
		log.Println("TUI application initialized.")
		if err := tuiApp.Run(); err != nil {
			log.Fatalf("Error running TUI application: %v", err)
		}
	default:
		model := tui.NewInitialModel(ctx, wf, cfgManager, notices, owner)
		p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
		log.Println("TUI model initialized.")
		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			log.Fatalf("Error running TUI application: %v", err)
		}
	}
	log.Println("TUI application stopped. Exiting.")
}

func runBlocked(env config.Env, authErr error) {
	var err error
	if env.UI == config.UIClassic {
		err = tui.NewBlockedApp(authErr).Run()
	} else {
		_, err = tea.NewProgram(tui.NewBlockedModel(authErr), tea.WithAltScreen()).Run()
	}
	if err != nil {
		log.Fatalf("Error running TUI application: %v", err)
	}
}
