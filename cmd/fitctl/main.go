// fitctl is a small terminal client for the fitstudio backend. It keeps a
// persisted session cache so repeated commands reuse one login, and can
// follow the server's session event stream to stay in sync.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fitstudio/fitstudio-server/internal/clientsession"
	"github.com/fitstudio/fitstudio-server/internal/realtime"
	"github.com/gorilla/websocket"
)

func main() {
	baseURL := flag.String("server", envOr("FITSTUDIO_URL", "http://localhost:8080"), "backend base URL")
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("failed to resolve home directory: %v", err)
	}
	stateDir := filepath.Join(home, ".fitstudio")

	client, err := NewAPIClient(*baseURL, filepath.Join(stateDir, "credentials.json"))
	if err != nil {
		log.Fatalf("failed to initialize client: %v", err)
	}

	cache, err := clientsession.NewCache(clientsession.NewFileStorage(filepath.Join(stateDir, "session.json")))
	if err != nil {
		log.Fatalf("failed to initialize session cache: %v", err)
	}

	ctx := context.Background()

	switch flag.Arg(0) {
	case "login":
		runLogin(ctx, client, cache, flag.Args()[1:])
	case "logout":
		runLogout(ctx, client, cache)
	case "whoami":
		runWhoami(ctx, client, cache)
	case "watch":
		runWatch(ctx, client, cache)
	default:
		usage()
		os.Exit(2)
	}
}

func runLogin(ctx context.Context, client *APIClient, cache *clientsession.Cache, args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	remember := fs.Bool("remember", false, "request a long-lived refresh token")
	fs.Parse(args)

	if *email == "" || *password == "" {
		log.Fatal("login requires -email and -password")
	}

	profile, err := client.Login(ctx, *email, *password, *remember)
	if err != nil {
		log.Fatalf("login failed: %v", err)
	}

	if err := cache.Set(profile); err != nil {
		log.Fatalf("failed to persist session: %v", err)
	}

	fmt.Printf("Signed in as %s %s (%s)\n", profile.FirstName, profile.LastName, profile.Role)
}

func runLogout(ctx context.Context, client *APIClient, cache *clientsession.Cache) {
	if err := client.Logout(ctx); err != nil {
		log.Printf("logout request failed: %v", err)
	}
	if err := cache.Clear(); err != nil {
		log.Fatalf("failed to clear session cache: %v", err)
	}
	fmt.Println("Signed out")
}

func runWhoami(ctx context.Context, client *APIClient, cache *clientsession.Cache) {
	// Restore re-validates the persisted session against the server
	// before trusting the cached profile.
	if err := cache.Restore(ctx, client); err != nil {
		fmt.Println("Not signed in")
		return
	}

	profile := cache.Get()
	if profile == nil {
		fmt.Println("Not signed in")
		return
	}

	fmt.Printf("%s %s <%s> role=%s\n", profile.FirstName, profile.LastName, profile.Email, profile.Role)
}

func runWatch(ctx context.Context, client *APIClient, cache *clientsession.Cache) {
	if err := cache.Restore(ctx, client); err != nil {
		log.Fatalf("no active session: %v", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(client.EventsURL(), nil)
	if err != nil {
		log.Fatalf("failed to connect to event stream: %v", err)
	}
	defer conn.Close()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		conn.Close()
	}()

	fmt.Println("Watching session events (ctrl-c to stop)")
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var event realtime.Event
		if err := json.Unmarshal(data, &event); err != nil {
			log.Printf("failed to decode event: %v", err)
			continue
		}

		if err := cache.HandleEvent(ctx, event, client); err != nil {
			log.Printf("failed to apply %s event: %v", event.Type, err)
			continue
		}
		fmt.Printf("event: %s\n", event.Type)
	}
}

func envOr(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: fitctl [-server URL] <login|logout|whoami|watch> [args]")
}
