package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/driveframe/storyteller/core"
	"github.com/driveframe/storyteller/cyclectrl"
	"github.com/driveframe/storyteller/hdmap"
	"github.com/driveframe/storyteller/internal/logging"
	"github.com/driveframe/storyteller/internal/observability"
	"github.com/driveframe/storyteller/planning"
	"github.com/driveframe/storyteller/story"
)

func main() {
	mapPath := flag.String("map", "configs/junction_map.json", "path to the junction map JSON")
	replayPath := flag.String("replay", "configs/trajectory_replay.json", "path to the trajectory replay JSON")
	tick := flag.Duration("tick", 100*time.Millisecond, "cycle interval")
	duration := flag.Duration("duration", 10*time.Second, "total run duration")
	accelerated := flag.Bool("accelerated", false, "run cycles back-to-back (vs real-time)")
	searchRadius := flag.Float64("search-radius", 3.0, "map query search radius in metres")
	lookahead := flag.Float64("lookahead", 200.0, "maximum look-ahead arc-length in metres")
	metricsAddr := flag.String("metrics-addr", ":9105", "listen address for the /metrics endpoint")

	flag.Parse()

	ctx := context.Background()
	log := logging.NewFromEnv()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		fatal(ctx, log, "init tracing", err)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdownTracing, log)

	collector, err := observability.NewStorytellerCollector(nil)
	if err != nil {
		fatal(ctx, log, "register metrics", err)
	}

	// ==== HD map ====

	index := hdmap.NewIndex()
	mapFile, err := os.Open(*mapPath)
	if err != nil {
		fatal(ctx, log, "open junction map", err)
	}
	summary, err := hdmap.LoadMap(index, mapFile)
	mapFile.Close()
	if err != nil {
		fatal(ctx, log, "load junction map", err)
	}
	log.Info(ctx, "loaded junction map",
		logging.Int("junctions", len(summary.JunctionIDs)),
		logging.Int("pnc_junctions", len(summary.PNCJunctionIDs)),
	)

	// ==== Trajectory replay ====

	replayFile, err := os.Open(*replayPath)
	if err != nil {
		fatal(ctx, log, "open trajectory replay", err)
	}
	replay, err := planning.LoadReplay(replayFile)
	replayFile.Close()
	if err != nil {
		fatal(ctx, log, "load trajectory replay", err)
	}
	log.Info(ctx, "loaded trajectory replay", logging.Int("cycles", len(replay)))

	// ==== Storytelling pipeline ====

	feed := planning.NewFeed()
	stories := story.NewStore(collector)
	stories.Subscribe(func(ev story.Event) {
		log.Info(ctx, "story transition",
			logging.String("direction", ev.Type.String()),
			logging.String("junction_id", ev.Story.ID),
			logging.String("kind", ev.Story.Kind.String()),
			logging.Any("distance", ev.Story.Distance),
		)
	})

	scanner := core.NewScanner(index, *searchRadius, *lookahead, collector)
	engine := core.NewStoryEngine(log, collector)
	engine.RegisterTeller(core.NewCloseToJunctionTeller(feed, scanner, stories, log))
	if err := engine.InitTellers(); err != nil {
		fatal(ctx, log, "init tellers", err)
	}

	// ==== Metrics endpoint ====

	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	srv := &http.Server{Addr: *metricsAddr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "metrics server failed", logging.String("error", err.Error()))
		}
	}()

	// ==== Cycle loop ====

	mode := cyclectrl.RealTime
	if *accelerated {
		mode = cyclectrl.Accelerated
	}
	ctrl := cyclectrl.NewController(time.Now().UTC(), *tick, mode)
	ctrl.AddListener(func(cycle int, now time.Time) {
		if len(replay) > 0 {
			feed.Publish(replay[cycle%len(replay)])
		}
		engine.RunCycle(ctx, cycle)
	})

	log.Info(ctx, "storyteller started",
		logging.String("tick", tick.String()),
		logging.String("duration", duration.String()),
		logging.Any("search_radius", *searchRadius),
		logging.Any("lookahead", *lookahead),
	)
	<-ctrl.Run(*duration)

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)

	log.Info(ctx, "storyteller finished", logging.Int("cycles", ctrl.CycleCount()))
}

func fatal(ctx context.Context, log logging.Logger, msg string, err error) {
	log.Error(ctx, msg, logging.String("error", err.Error()))
	os.Exit(1)
}
