package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/espoir/limitedjanken/internal/config"
	"github.com/espoir/limitedjanken/internal/game"
	"github.com/espoir/limitedjanken/internal/oracle"
	"github.com/espoir/limitedjanken/internal/persona"
	"github.com/espoir/limitedjanken/internal/repository"
	"github.com/espoir/limitedjanken/internal/server"
	"github.com/espoir/limitedjanken/internal/transcript"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting limited rock-paper-scissors simulator",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	// Roster
	roster := persona.DefaultRoster()
	if cfg.Roster.Path != "" {
		roster, err = persona.Load(cfg.Roster.Path)
		if err != nil {
			logger.Fatal("failed to load roster", zap.Error(err))
		}
	}
	players := make([]game.PlayerConfig, 0, len(roster))
	for _, e := range roster {
		players = append(players, game.PlayerConfig{Name: e.Name, Persona: e.Persona, Loan: e.Loan})
	}

	// Oracle boundary
	var decider game.Oracle
	switch cfg.Oracle.Kind {
	case "remote":
		remote, err := oracle.NewRemote(cfg.Oracle.URL, cfg.Oracle.Timeout, logger)
		if err != nil {
			logger.Fatal("failed to connect remote oracle", zap.Error(err))
		}
		defer remote.Close()
		decider = remote
	default:
		profile := oracle.Profile{
			Aggression: cfg.Oracle.Bot.Aggression,
			Caution:    cfg.Oracle.Bot.Caution,
			Greed:      cfg.Oracle.Bot.Greed,
		}
		decider = oracle.NewBot(profile, cfg.Oracle.Seed, logger)
		logger.Info("using built-in bot oracle", zap.Int64("seed", cfg.Oracle.Seed))
	}

	settings := buildSettings(cfg.Game)
	g, err := game.New(settings, players, decider, logger)
	if err != nil {
		logger.Fatal("failed to create game", zap.Error(err))
	}

	// Optional spectator feed
	var hub *server.SpectatorHub
	if cfg.Spectator.Enabled {
		hub = server.NewSpectatorHub(logger)
		go func() {
			if serveErr := hub.Serve(ctx, cfg.Spectator.Address); serveErr != nil {
				logger.Error("spectator server error", zap.Error(serveErr))
			}
		}()
		defer hub.Close()
	}

	for !g.Over() {
		if ctx.Err() != nil {
			logger.Warn("simulation interrupted", zap.Error(ctx.Err()))
			break
		}
		g.ProgressTurn(ctx)
		if hub != nil {
			hub.Broadcast(g.TurnEvent())
		}
	}

	if !g.Over() {
		logger.Warn("simulation did not reach a terminal state; skipping archive")
		return
	}

	records := g.Transcript()

	if cfg.Archive.TranscriptDir != "" {
		if err := exportTranscript(cfg.Archive.TranscriptDir, g.ID(), records, logger); err != nil {
			logger.Error("transcript export failed", zap.Error(err))
		}
	}

	if cfg.Archive.DatabaseDSN != "" {
		if err := archiveGame(ctx, cfg.Archive.DatabaseDSN, g, settings, records, logger); err != nil {
			logger.Error("game archive failed", zap.Error(err))
		}
	}

	logger.Info("simulation finished",
		zap.String("game_id", g.ID()),
		zap.Int("turns", g.CurrentTurn()),
	)
}

func buildSettings(gc config.GameConfig) game.Settings {
	settings := game.Settings{
		InitialStars:         gc.InitialStars,
		InitialCardsEachType: gc.InitialCardsEachType,
		MaxTurns:             gc.MaxTurns,
		MinutesPerTurn:       gc.MinutesPerTurn,
		ExpectedPlayers:      gc.TotalPlayers,
		TurnOrder:            game.TurnOrder(gc.TurnOrder),
		ShuffleSeed:          gc.ShuffleSeed,
	}
	if len(gc.StatusLabels) > 0 {
		settings.StatusLabels = make(map[game.PlayerStatus]string)
		keys := map[string]game.PlayerStatus{
			"active":              game.StatusActive,
			"eliminated_no_star":  game.StatusEliminatedNoStar,
			"eliminated_time_out": game.StatusEliminatedTimeOut,
			"out_success":         game.StatusOutSuccess,
		}
		for key, status := range keys {
			if label, ok := gc.StatusLabels[key]; ok {
				settings.StatusLabels[status] = label
			}
		}
	}
	return settings
}

func exportTranscript(dir, gameID string, records []game.TranscriptRecord, logger *zap.Logger) error {
	w, err := transcript.NewWriter(dir, gameID)
	if err != nil {
		return err
	}
	if err := w.WriteAll(records); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	logger.Info("transcript exported",
		zap.String("path", w.Path()),
		zap.Int("records", len(records)))
	return nil
}

func archiveGame(ctx context.Context, dsn string, g *game.Game, settings game.Settings, records []game.TranscriptRecord, logger *zap.Logger) error {
	db, err := repository.NewDB(ctx, dsn, logger)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Migrate(ctx); err != nil {
		return err
	}
	repo := repository.NewGameRepository(db)
	return repo.SaveResult(ctx, repository.GameResult{
		GameID:     g.ID(),
		Turns:      g.CurrentTurn(),
		MaxTurns:   settings.MaxTurns,
		Standings:  g.FinalStandings(),
		Transcript: records,
	})
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
