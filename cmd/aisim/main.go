// aisim runs a demo AI simulation: a navmesh world with patrolling and
// chasing agents, an optional websocket debug stream for an external
// renderer, and optional snapshot persistence.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"aicore/internal/agent"
	"aicore/internal/config"
	"aicore/internal/db"
	"aicore/internal/debugview"
	"aicore/internal/geom"
	"aicore/internal/system"
)

const defaultConfigPath = "config/aisim.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := defaultConfigPath
	if p := os.Getenv("AICORE_CONFIG"); p != "" {
		cfgPath = p
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = config.Default()
		slog.Info("no config file, using defaults", "path", cfgPath)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))
	system.EnableDebugLogging(logLevel == slog.LevelDebug)

	slog.Info("aisim starting", "log_level", cfg.LogLevel, "tick_rate", cfg.TickRate)

	sys := system.New()
	sys.CreateNavMesh(
		geom.V(cfg.Nav.BoundsMin[0], cfg.Nav.BoundsMin[1], cfg.Nav.BoundsMin[2]),
		geom.V(cfg.Nav.BoundsMax[0], cfg.Nav.BoundsMax[1], cfg.Nav.BoundsMax[2]),
		cfg.Nav.CellSize,
	)

	// A wall through the middle of the world so the paths are worth
	// watching in the debug view.
	midX := (cfg.Nav.BoundsMin[0] + cfg.Nav.BoundsMax[0]) / 2
	midY := (cfg.Nav.BoundsMin[1] + cfg.Nav.BoundsMax[1]) / 2
	sys.Mesh().MarkObstacle(geom.V(midX, midY, cfg.Nav.BoundsMin[2]), cfg.Nav.CellSize*2)

	spawnDemoAgents(sys, cfg)

	var store *db.DB
	if cfg.Database.Enabled {
		store, err = db.New(ctx, cfg.Database.DSN())
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer store.Close()
		if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		slog.Info("snapshot persistence enabled")
	}

	view := debugview.NewServer()

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Debug.Enabled {
		g.Go(func() error {
			return view.Run(gctx, cfg.Debug.Addr)
		})
	}

	g.Go(func() error {
		return simLoop(gctx, sys, cfg, view, store)
	})

	return g.Wait()
}

// simLoop drives the fixed-step update until the context is canceled.
func simLoop(ctx context.Context, sys *system.System, cfg config.Sim, view *debugview.Server, store *db.DB) error {
	dt := 1.0 / float64(cfg.TickRate)
	ticker := time.NewTicker(time.Duration(float64(time.Second) * dt))
	defer ticker.Stop()

	persistEvery := cfg.TickRate * 5 // roughly every 5 seconds
	tick := 0

	for {
		select {
		case <-ctx.Done():
			if store != nil {
				persist(sys, store)
			}
			return ctx.Err()
		case <-ticker.C:
			sys.Update(dt)
			tick++

			if cfg.Debug.Enabled {
				// The mesh is static; resend it once a second.
				view.Publish(debugview.BuildSnapshot(sys, tick%cfg.TickRate == 0))
			}
			if store != nil && tick%persistEvery == 0 {
				persist(sys, store)
			}
		}
	}
}

func persist(sys *system.System, store *db.DB) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for _, a := range sys.Agents() {
		if err := store.SaveSnapshot(ctx, db.Capture(a)); err != nil {
			slog.Warn("snapshot save failed", "agent", a.Name(), "err", err)
		}
	}
}

// spawnDemoAgents populates the world: two patrolling guards and one
// hunter chasing the nearest agent it can see.
func spawnDemoAgents(sys *system.System, cfg config.Sim) {
	min := cfg.Nav.BoundsMin
	max := cfg.Nav.BoundsMax
	z := min[2]

	guardA := sys.CreateAgent("guard-a", nil)
	applyDefaults(guardA, cfg.Agents)
	guardA.Position = geom.V(min[0]+1, min[1]+1, z)
	guardA.SetBehaviorTree(system.NewPatrolTree([]geom.Vec3{
		geom.V(min[0]+1, min[1]+1, z),
		geom.V(max[0]-2, min[1]+1, z),
		geom.V(max[0]-2, max[1]-2, z),
	}))

	guardB := sys.CreateAgent("guard-b", nil)
	applyDefaults(guardB, cfg.Agents)
	guardB.Position = geom.V(max[0]-2, max[1]-2, z)
	guardB.SetBehaviorTree(system.NewPatrolTree([]geom.Vec3{
		geom.V(max[0]-2, max[1]-2, z),
		geom.V(min[0]+1, max[1]-2, z),
		geom.V(min[0]+1, min[1]+1, z),
	}))

	hunter := sys.CreateAgent("hunter", nil)
	applyDefaults(hunter, cfg.Agents)
	hunter.Position = geom.V((min[0]+max[0])/2, min[1]+1, z)
	hunter.SetBehaviorTree(system.NewChaseTree(func(a *agent.Agent) (geom.Vec3, bool) {
		visible := a.VisibleAgents()
		if len(visible) == 0 {
			return geom.Vec3{}, false
		}
		nearest := visible[0]
		for _, other := range visible[1:] {
			if geom.Dist(a.Position, other.Position) < geom.Dist(a.Position, nearest.Position) {
				nearest = other
			}
		}
		return nearest.Position, true
	}))

	slog.Info("demo agents spawned", "agents", len(sys.Agents()))
}

func applyDefaults(a *agent.Agent, d config.AgentDefaults) {
	a.MaxSpeed = d.MaxSpeed
	a.Acceleration = d.Acceleration
	a.StoppingDistance = d.StoppingDistance
	a.VisionRange = d.VisionRange
	a.VisionAngle = d.VisionAngle
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
