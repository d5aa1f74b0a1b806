package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Mithul-Joseph/mcp-project/internal/config"
	"github.com/Mithul-Joseph/mcp-project/internal/mcpsession"
	"github.com/Mithul-Joseph/mcp-project/internal/orchestrator"
	"github.com/Mithul-Joseph/mcp-project/internal/provider"
	"github.com/Mithul-Joseph/mcp-project/internal/telemetry"
	"github.com/Mithul-Joseph/mcp-project/memory"
)

func main() {
	// .env is optional; a missing file is fine.
	_ = godotenv.Load()

	// Basic env check (SDK also reads API key)
	if os.Getenv("ANTHROPIC_API_KEY") == "" {
		fmt.Println("Missing ANTHROPIC_API_KEY; export it before running.")
		os.Exit(1)
	}

	cfg, err := config.Load(config.DefaultPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// Load prior conversation if exists. The file is an append-only history
	// across runs; each query still starts a fresh transcript, so prior turns
	// are never resubmitted to the model.
	persistPath := "conversation.json"
	persisted, err := memory.LoadConversation(persistPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load persisted conversation: %v\n", err)
	}

	// Set up graceful shutdown on Ctrl-C (SIGINT) / SIGTERM
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigch)
	go func() {
		<-sigch
		fmt.Println("\nExiting...")
		cancel()
	}()

	reg := orchestrator.NewRegistry()
	sessions := connectServers(ctx, cfg, reg)
	defer closeSessions(sessions)

	client := provider.NewClient(provider.NewAnthropicClient(), provider.ResolveModel(cfg.Model))
	loop, err := orchestrator.New(orchestrator.Config{
		Model:       client,
		Registry:    reg,
		MaxTurns:    cfg.MaxTurns,
		CallTimeout: cfg.ToolTimeout,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "orchestrator: %v\n", err)
		os.Exit(1)
	}

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("MCP chat started. Type your queries or 'quit' to exit.")

	// stdin reader goroutine -> lines into channel
	inputCh := make(chan string)
	go func() {
		for scanner.Scan() {
			inputCh <- scanner.Text()
		}
		close(inputCh)
	}()

outer:
	for {
		fmt.Print("\u001b[94mQuery\u001b[0m: ")
		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			break outer
		case line, ok = <-inputCh:
			if !ok {
				break outer
			}
		}
		query := strings.TrimSpace(line)
		if query == "" {
			continue
		}
		if strings.EqualFold(query, "quit") {
			break
		}

		answer, transcript, err := loop.ProcessQuery(ctx, query)
		switch {
		case errors.Is(err, context.Canceled):
			break outer
		case errors.Is(err, orchestrator.ErrMaxTurnsExceeded):
			fmt.Fprintln(os.Stderr, "error: model kept requesting tools past the turn limit; giving up on this query")
			continue
		case err != nil:
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Println(answer)

		// Persist minimal text-only transcript (user + assistant)
		persisted = append(persisted, memory.FromTranscript(transcript)...)
		if err := memory.SaveConversation(persistPath, persisted); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to save conversation: %v\n", err)
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: stdin read error: %v\n", err)
	}
}

// connectServers brings up every configured MCP server in name order. A server
// that fails to connect or enumerate is reported and skipped; the chat runs
// with whatever connected.
func connectServers(ctx context.Context, cfg config.Config, reg *orchestrator.Registry) []*mcpsession.Session {
	var sessions []*mcpsession.Session
	for _, name := range cfg.ServerNames() {
		s, err := mcpsession.Connect(ctx, name, cfg.Servers[name])
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: server %q unavailable: %v\n", name, err)
			telemetry.Emit("provider_connect_failed", map[string]any{"provider": name, "error": err.Error()})
			continue
		}
		before := len(reg.Catalog())
		if err := reg.Register(ctx, name, s); err != nil {
			fmt.Fprintf(os.Stderr, "warning: server %q unavailable: %v\n", name, err)
			telemetry.Emit("provider_connect_failed", map[string]any{"provider": name, "error": err.Error()})
			_ = s.Close()
			continue
		}
		sessions = append(sessions, s)
		var toolNames []string
		for _, d := range reg.Catalog()[before:] {
			toolNames = append(toolNames, d.Name)
		}
		fmt.Printf("Connected to %s with tools: %s\n", name, strings.Join(toolNames, ", "))
		telemetry.Emit("provider_connected", map[string]any{"provider": name, "tools": len(toolNames)})
	}
	return sessions
}

// closeSessions tears sessions down in reverse acquisition order.
func closeSessions(sessions []*mcpsession.Session) {
	for i := len(sessions) - 1; i >= 0; i-- {
		if err := sessions[i].Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing %q: %v\n", sessions[i].Name(), err)
		}
	}
}
