package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"tymer/internal/auth"
	"tymer/internal/backend"
	"tymer/internal/config"
	"tymer/internal/localstore"
	"tymer/internal/nav"
	"tymer/internal/schedule"
	"tymer/internal/session"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Open the on-device store
	local, err := localstore.Open(cfg.LocalStorePath, cfg.DeviceKeyPath)
	if err != nil {
		log.Fatalf("Failed to open local store: %v", err)
	}
	defer local.Close()

	log.Printf("Local store opened at %s", cfg.LocalStorePath)

	if cfg.DebugAlwaysOpen {
		if err := local.SetDebugAlwaysOpen(true); err != nil {
			log.Printf("Warning: failed to enable debug override: %v", err)
		}
		log.Println("WARNING: gating disabled by DEBUG_ALWAYS_OPEN, never ship this")
	}

	// OAuth providers for account sign-in
	providers := map[string]*oauth2.Config{}
	if cfg.GoogleClientID != "" {
		providers["google"] = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  cfg.OAuthRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
		}
	}

	// The auth service wraps an unauthenticated client; the main client
	// pulls its bearer tokens from the auth service.
	authClient := backend.NewClient(cfg.BackendBaseURL, nil)
	authService := auth.NewService(authClient, local, providers)
	apiClient := backend.NewClient(cfg.BackendBaseURL, authService)

	store := session.NewStore(apiClient, local, schedule.SystemClock{}, log.Default())

	start := nav.ScreenOnboarding
	if local.HasCompletedOnboarding() {
		start = nav.ScreenFeed
	}
	screens := nav.NewMachine(start)
	// The camera is reachable only while a window is open; the debug
	// override reports the window as open too.
	screens.SetGuard(func(to nav.Screen) bool {
		return to != nav.ScreenCamera || store.Status().IsOpen
	})
	log.Printf("Starting on the %s screen", screens.Current())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if authService.UserID() == "" {
		log.Println("No account signed in; set credentials and restart")
	} else {
		user, err := apiClient.Profile(ctx)
		if err != nil {
			log.Printf("Warning: failed to load profile: %v", err)
		} else {
			store.SetCurrentUser(user)
			log.Printf("Signed in as %s", user.DisplayNameOrUsername())
		}
	}

	// Bring back any post that never reached the backend, then refresh.
	store.RestoreLocalMoment()
	store.LoadWindows(ctx)
	store.LoadData(ctx)

	store.RegisterObserver(func() {
		status := store.Status()
		if status.IsOpen {
			log.Printf("Feed open: %s, %ds remaining", status.ActiveWindow.Label, status.SecondsRemainingInWindow)
		} else {
			log.Printf("Feed closed: %s (blur %.1f)", status.CountdownText, store.BlurRadius())
		}
	})

	go store.RunStatusTicker(ctx, cfg.StatusTickPeriod)

	log.Println("Session running, Ctrl+C to stop")
	<-ctx.Done()

	// Let in-flight reaction syncs settle before exiting.
	store.WaitForSync()
	log.Println("Shutdown complete")
}
