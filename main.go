// Command tactics serves the radius engine of a grid-based turn strategy
// game.
//
// Commands:
//  1. "serve" runs the HTTP server exposing the REST API, WebSocket events and an /mcp endpoint
//  2. "mcp" runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "radius" prints a one-shot movement, attack or path query on a scenario
//  4. "generate" prints a generated scenario as JSON
//
// Flags control host/port, scenario directory, debug logging, and optional
// ngrok tunneling for easy external access during development.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/mcp-training/tactics/api"
	"github.com/wricardo/mcp-training/tactics/game/config"
	"github.com/wricardo/mcp-training/tactics/game/grid"
	"github.com/wricardo/mcp-training/tactics/game/mapgen"
	"github.com/wricardo/mcp-training/tactics/game/service"
	"github.com/wricardo/mcp-training/tactics/game/session"
	"github.com/wricardo/mcp-training/tactics/transport/mcp"
	"github.com/wricardo/mcp-training/tactics/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Tactics Radius Server"
)

// Session retention
const (
	sessionCleanupInterval = time.Hour
	sessionMaxAge          = 24 * time.Hour
)

// main loads .env and runs the command line.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// newApp builds the command tree.
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "tactics",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "Directory containing scenario files",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging"},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			setupLogging(cmd.Bool("debug"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			serveCommand(),
			mcpCommand(),
			radiusCommand(),
			generateCommand(),
		},
	}
}

// setupLogging configures the standard logger and the slog default.
func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
		level = slog.LevelDebug
	} else {
		log.SetFlags(log.LstdFlags)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// services is the wired backend shared by every command.
type services struct {
	sessions  *session.Manager
	scenarios *config.Manager
	radius    service.RadiusService
}

// initializeServices wires the session and scenario managers into the radius
// service. notifier may be nil.
func initializeServices(configDir string, notifier service.Notifier) (*services, error) {
	scenarios, err := config.NewManager(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create scenario manager: %w", err)
	}
	sessions := session.NewManager()
	return &services{
		sessions:  sessions,
		scenarios: scenarios,
		radius:    service.NewRadiusService(sessions, scenarios, notifier),
	}, nil
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within the retention window.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(maxAge); removed > 0 {
				log.Printf("Cleaned up %d expired sessions", removed)
			}
		}
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"server", "http"},
		Usage:   "Run HTTP server with REST API, WebSocket, and MCP endpoint",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
			&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host"},
			&cli.StringSliceFlag{
				Name:    "allowed-origins",
				Usage:   "WebSocket origins to accept (all when empty)",
				Sources: cli.EnvVars("ALLOWED_ORIGINS"),
			},
			&cli.BoolFlag{Name: "ngrok", Usage: "Enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "Ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain (optional)", Sources: cli.EnvVars("NGROK_DOMAIN")},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log.Printf("Starting %s v%s (mode: serve)", AppName, Version)
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			hub := websocket.NewHub(cmd.StringSlice("allowed-origins")...)
			go hub.Run(ctx)

			svcs, err := initializeServices(cmd.String("config-dir"), hub)
			if err != nil {
				return err
			}
			go sessionCleanupRoutine(ctx, svcs.sessions, sessionCleanupInterval, sessionMaxAge)

			return runHTTPServer(ctx, svcs.radius, hub, serveOptions{
				addr:        fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port")),
				ngrok:       cmd.Bool("ngrok"),
				ngrokAuth:   cmd.String("ngrok-auth"),
				ngrokDomain: cmd.String("ngrok-domain"),
			})
		},
	}
}

type serveOptions struct {
	addr        string
	ngrok       bool
	ngrokAuth   string
	ngrokDomain string
}

// newRouter mounts the REST API at the root and the MCP message endpoint at
// /mcp. The MCP tools call back into the API at baseURL.
func newRouter(apiServer http.Handler, baseURL string) *http.ServeMux {
	mcpClient := mcp.NewClient(baseURL)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})
	return mainRouter
}

// runHTTPServer serves the API until ctx is done. If ngrok is enabled it
// also provisions a public tunnel.
func runHTTPServer(ctx context.Context, radius service.RadiusService, hub *websocket.Hub, opts serveOptions) error {
	apiServer := api.NewServer(radius, hub)
	mainRouter := newRouter(apiServer, "http://"+opts.addr)

	httpServer := &http.Server{
		Addr:         opts.addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", opts.addr)
		log.Printf("REST API: http://%s/api", opts.addr)
		log.Printf("WebSocket: ws://%s/api/ws?session=<session_id>", opts.addr)
		log.Printf("MCP endpoint: http://%s/mcp", opts.addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	if opts.ngrok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, mainRouter, opts.ngrokAuth, opts.ngrokDomain)
		}()
	}

	var err error
	select {
	case <-ctx.Done():
		log.Println("Received shutdown signal. Shutting down...")
	case err = <-serveErr:
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Printf("HTTP server shutdown error: %v", shutdownErr)
	}

	wg.Wait()
	log.Println("Server stopped")
	return err
}

// runNgrokTunnel serves handler through an ngrok tunnel until ctx is done.
func runNgrokTunnel(ctx context.Context, handler http.Handler, authToken, domain string) {
	if authToken == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(domain))
		log.Printf("Using custom ngrok domain: %s", domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}
	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	ngrokURL := tun.URL()
	log.Printf("Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  REST API (ngrok): %s/api", ngrokURL)
	log.Printf("  WebSocket (ngrok): %s/api/ws?session=<session_id>", ngrokURL)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed && ctx.Err() == nil {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:    "mcp",
		Aliases: []string{"stdio-mcp", "mcp-stdio"},
		Usage:   "Run MCP stdio server with internal HTTP server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-url",
				Value:   "http://localhost:8080",
				Usage:   "External API server to reuse when reachable",
				Sources: cli.EnvVars("RADIUS_API_URL"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log.Printf("Starting %s v%s (mode: mcp)", AppName, Version)
			baseURL, shutdown, err := resolveAPI(ctx, cmd.String("api-url"), cmd.String("config-dir"))
			if err != nil {
				return err
			}
			defer shutdown()

			log.Printf("MCP stdio server ready (API at %s)", baseURL)
			if err := server.ServeStdio(mcp.NewClient(baseURL).GetMCPServer()); err != nil {
				return fmt.Errorf("MCP stdio server error: %w", err)
			}
			return nil
		},
	}
}

// resolveAPI returns externalURL when an API answers there. Otherwise it
// starts an internal API on a random loopback port and returns its URL with
// a shutdown func.
func resolveAPI(ctx context.Context, externalURL, configDir string) (string, func(), error) {
	log.Printf("Checking for external API server at %s...", externalURL)

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/api/health")
	if err == nil {
		resp.Body.Close()
		if resp.StatusCode < 500 {
			log.Printf("External API server found at %s, using it for MCP", externalURL)
			return externalURL, func() {}, nil
		}
	}

	log.Printf("No external API server found, starting internal HTTP server")

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("failed to get available port: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	hub := websocket.NewHub()
	go hub.Run(ctx)

	svcs, err := initializeServices(configDir, hub)
	if err != nil {
		cancel()
		listener.Close()
		return "", nil, err
	}

	httpServer := &http.Server{Handler: api.NewServer(svcs.radius, hub)}
	go func() {
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Printf("Internal HTTP server error: %v", err)
		}
	}()

	internalURL := "http://" + listener.Addr().String()
	log.Printf("Internal HTTP server on %s for MCP stdio", internalURL)

	shutdown := func() {
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}
	return internalURL, shutdown, nil
}

func radiusCommand() *cli.Command {
	return &cli.Command{
		Name:      "radius",
		Usage:     "Print the movement or attack radius of a unit on a scenario",
		ArgsUsage: "[scenario]",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "x", Usage: "Unit column", Required: true},
			&cli.IntFlag{Name: "y", Usage: "Unit row", Required: true},
			&cli.FloatFlag{Name: "radius", Usage: "Override the unit's movement radius", Value: -1},
			&cli.BoolFlag{Name: "attack", Usage: "Print the attack radius instead of the movement radius"},
			&cli.StringFlag{Name: "mode", Value: "default", Usage: "Attack mode: default or cost"},
			&cli.StringFlag{Name: "to", Usage: "Print the path to this x,y target instead"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			svcs, err := initializeServices(cmd.String("config-dir"), nil)
			if err != nil {
				return err
			}
			return printRadius(ctx, cmd.Root().Writer, svcs.radius, radiusOptions{
				scenario: cmd.Args().First(),
				at:       grid.Vec(int(cmd.Int("x")), int(cmd.Int("y"))),
				radius:   cmd.Float("radius"),
				attack:   cmd.Bool("attack"),
				mode:     cmd.String("mode"),
				to:       cmd.String("to"),
			})
		},
	}
}

type radiusOptions struct {
	scenario string
	at       grid.Vector
	radius   float64 // negative means the unit's own radius
	attack   bool
	mode     string
	to       string
}

// printRadius runs one query on a fresh session and writes the marked map.
func printRadius(ctx context.Context, w io.Writer, radius service.RadiusService, opts radiusOptions) error {
	info, err := radius.CreateSession(ctx, opts.scenario)
	if err != nil {
		return err
	}
	defer radius.DeleteSession(ctx, info.ID)

	var override *float64
	if opts.radius >= 0 {
		override = &opts.radius
	}

	switch {
	case opts.to != "":
		to, err := grid.ParseVector(opts.to)
		if err != nil {
			return err
		}
		report, err := radius.Path(ctx, info.ID, opts.at, to)
		if err != nil {
			return err
		}
		fmt.Fprint(w, report.Map)
		if !report.Reachable {
			fmt.Fprintf(w, "%s cannot reach %s this turn\n", report.Unit.ID, to)
			return nil
		}
		steps := make([]string, len(report.Steps))
		for i, v := range report.Steps {
			steps[i] = v.String()
		}
		fmt.Fprintf(w, "%s reaches %s at cost %g: %s\n", report.Unit.ID, to, report.Cost, strings.Join(steps, " -> "))

	case opts.attack:
		report, err := radius.Attackable(ctx, info.ID, service.AttackQuery{
			X: opts.at.X, Y: opts.at.Y, Mode: opts.mode, Radius: override,
		})
		if err != nil {
			return err
		}
		fmt.Fprint(w, report.Map)
		fmt.Fprintf(w, "%s (%s mode): %d attackable tiles, %d targets\n",
			report.Unit.ID, report.Mode, len(report.Items), len(report.Targets))
		for _, target := range report.Targets {
			fmt.Fprintf(w, "  %s from %s\n", target.Vector, target.From)
		}

	default:
		report, err := radius.Moveable(ctx, info.ID, service.RadiusQuery{
			X: opts.at.X, Y: opts.at.Y, Radius: override,
		})
		if err != nil {
			return err
		}
		fmt.Fprint(w, report.Map)
		fmt.Fprintf(w, "%s (radius %g): %d reachable tiles, %d destinations\n",
			report.Unit.ID, report.Radius, len(report.Items), len(report.Destinations))
	}
	return nil
}

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Print a generated scenario as JSON",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "seed", Value: mapgen.DefaultSeed, Usage: "Noise seed"},
			&cli.IntFlag{Name: "width", Value: mapgen.DefaultWidth, Usage: "Map width"},
			&cli.IntFlag{Name: "height", Value: mapgen.DefaultHeight, Usage: "Map height"},
			&cli.StringFlag{Name: "save", Usage: "Also save the scenario under this name in the config directory"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts := mapgen.DefaultOptions()
			opts.Seed = int64(cmd.Int("seed"))
			opts.Width = int(cmd.Int("width"))
			opts.Height = int(cmd.Int("height"))

			world, err := mapgen.Generate(opts)
			if err != nil {
				return err
			}
			if name := cmd.String("save"); name != "" {
				scenarios, err := config.NewManager(cmd.String("config-dir"))
				if err != nil {
					return err
				}
				if err := scenarios.SaveScenario(name, world.Scenario); err != nil {
					return err
				}
				log.Printf("Saved scenario %s to %s", name, cmd.String("config-dir"))
			}

			encoder := json.NewEncoder(cmd.Root().Writer)
			encoder.SetIndent("", "  ")
			return encoder.Encode(world.Scenario)
		},
	}
}
