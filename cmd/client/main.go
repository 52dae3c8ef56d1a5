package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	apisdk "github.com/hilthontt/devtea/api-sdk"
	"github.com/hilthontt/devtea/api-sdk/option"
	"github.com/hilthontt/devtea/internal/tui"
)

func main() {
	fs := flag.NewFlagSet("devtea-client", flag.ExitOnError)
	baseURL := fs.String("url", "", "API base URL (default $DEVTEA_BASE_URL or http://localhost:8080/api)")
	userID := fs.String("user", "", "user id to register as (default: a new random id)")
	username := fs.String("name", "", "display name; asked for when empty")
	poll := fs.Duration("poll", apisdk.DefaultPollInterval, "poll interval of the focused conversation")
	highlight := fs.String("highlight", "", "selection color, e.g. #F59E0B")
	debugLog := fs.String("debug-log", "", "write HTTP traffic to this file")
	_ = fs.Parse(os.Args[1:])

	if *userID == "" {
		*userID = uuid.NewString()
	}

	opts := []option.RequestOption{}
	if *baseURL != "" {
		opts = append(opts, option.WithBaseURL(*baseURL))
	}
	if *debugLog != "" {
		f, err := os.OpenFile(*debugLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		opts = append(opts, option.WithDebugLog(log.New(f, "", log.LstdFlags)))
	}

	cfg := tui.Config{
		Client:   apisdk.NewClient(opts...),
		UserID:   *userID,
		Username: *username,
		ConnectionOptions: []apisdk.ConnectionOption{
			apisdk.WithPollInterval(*poll),
		},
	}
	if *highlight != "" {
		cfg.Highlight = highlight
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := tui.Run(ctx, cfg, tea.WithAltScreen(), tea.WithContext(ctx)); err != nil {
		fmt.Fprintln(os.Stderr, "Error running client:", err)
		os.Exit(1)
	}
}
