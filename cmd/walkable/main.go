package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"route-finder/internal/server"
	"route-finder/internal/telemetry"
	"route-finder/navmesh"
	"route-finder/scene"
	"route-finder/walkable"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "walkable",
		Short: "Route tokens around walls and compute how far they can move",
		Long: `walkable loads a scene of walls and tokens and answers shortest-path
queries for disc-shaped agents, plus the set of grid cells a token can
reach within its movement budget.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, _ := cmd.Flags().GetString("log-level")
			return setupLogging(level)
		},
	}
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug|info|warn|error")

	// Serve command - HTTP API with live reload
	serveCmd := &cobra.Command{
		Use:   "serve <scene.yaml>",
		Short: "Serve route and reachability queries over HTTP",
		Args:  cobra.ExactArgs(1),
		RunE:  runServe,
	}
	serveCmd.Flags().String("addr", ":8080", "Listen address")
	serveCmd.Flags().Bool("watch", true, "Reload the scene when its files change")

	// Route command - one query, printed as JSON
	routeCmd := &cobra.Command{
		Use:   "route <scene.yaml> <x0> <y0> <x1> <y1>",
		Short: "Print the route between two points",
		Args:  cobra.ExactArgs(5),
		RunE:  runRoute,
	}
	routeCmd.Flags().Float64("radius", 0, "Agent radius in pixels")
	routeCmd.Flags().String("token", "", "Start from this token's centre and use its radius")
	routeCmd.Flags().Bool("snap", true, "Snap the destination to the grid cell centre")

	// Reach command - reachable grid for a token
	reachCmd := &cobra.Command{
		Use:   "reach <scene.yaml> <token>",
		Short: "Print the grid cells a token can reach",
		Args:  cobra.ExactArgs(2),
		RunE:  runReach,
	}
	reachCmd.Flags().Float64("max-distance", -1, "Movement budget in scene units (default from scene settings)")

	strategiesCmd := &cobra.Command{
		Use:   "strategies",
		Short: "List the available search strategies",
		Run: func(cmd *cobra.Command, _ []string) {
			for _, name := range navmesh.Strategies() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}

	rootCmd.AddCommand(serveCmd, routeCmd, reachCmd, strategiesCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func setupLogging(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", level, err)
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	watch, _ := cmd.Flags().GetBool("watch")

	sc, err := scene.Load(args[0])
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	srv, err := server.New(sc, args[0],
		server.WithLogger(slog.Default()),
		server.WithObserver(telemetry.New(reg)),
		server.WithGatherer(reg))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if watch {
		watcher, err := scene.NewWatcher(sc.Files...)
		if err != nil {
			return fmt.Errorf("watch %s: %w", args[0], err)
		}
		defer watcher.Close()
		go srv.Watch(ctx, watcher)
	}

	slog.Info("serving scene",
		slog.String("scene", args[0]),
		slog.Int("walls", len(sc.Walls)),
		slog.Int("tokens", len(sc.Tokens)),
		slog.Bool("watch", watch))
	return srv.ListenAndServe(ctx, addr)
}

func runRoute(cmd *cobra.Command, args []string) error {
	radius, _ := cmd.Flags().GetFloat64("radius")
	tokenID, _ := cmd.Flags().GetString("token")
	snap, _ := cmd.Flags().GetBool("snap")

	coords, err := parseFloats(args[1:])
	if err != nil {
		return err
	}
	sc, w, err := loadWalkable(args[0], -1)
	if err != nil {
		return err
	}

	x0, y0 := coords[0], coords[1]
	if tokenID != "" {
		token, ok := sc.Token(tokenID)
		if !ok {
			return fmt.Errorf("unknown token %q", tokenID)
		}
		center := token.Center()
		x0, y0 = center.X, center.Y
		if !cmd.Flags().Changed("radius") {
			radius = w.AgentRadius(token)
		}
	}

	path := w.FindPath(x0, y0, coords[2], coords[3], radius, snap)
	return printJSON(cmd, map[string]any{
		"path":      path,
		"waypoints": walkable.CompressWaypoints(walkable.ToWaypoints(path)),
		"distance":  walkable.PathDistance(path, sc.Geometry),
		"units":     sc.Geometry.GridUnits,
		"success":   path.Reachable(),
	})
}

func runReach(cmd *cobra.Command, args []string) error {
	maxDistance, _ := cmd.Flags().GetFloat64("max-distance")

	sc, w, err := loadWalkable(args[0], maxDistance)
	if err != nil {
		return err
	}
	token, ok := sc.Token(args[1])
	if !ok {
		return fmt.Errorf("unknown token %q", args[1])
	}

	grid := w.SelectToken(&token, sc.Tokens)
	return printJSON(cmd, map[string]any{
		"token":       token.ID,
		"maxDistance": w.Settings().MaxDistance,
		"cells":       grid,
	})
}

// loadWalkable loads a scene and builds its mesh. A non-negative
// maxDistance overrides the scene's movement budget.
func loadWalkable(path string, maxDistance float64) (*scene.Scene, *walkable.Walkable, error) {
	sc, err := scene.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if maxDistance >= 0 {
		sc.Settings.MaxDistance = maxDistance
	}
	w, err := walkable.FromScene(sc, walkable.WithLogger(slog.Default()))
	if err != nil {
		return nil, nil, err
	}
	return sc, w, nil
}

func parseFloats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, arg := range args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid coordinate %q: %w", arg, err)
		}
		out[i] = v
	}
	return out, nil
}

func printJSON(cmd *cobra.Command, value any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
