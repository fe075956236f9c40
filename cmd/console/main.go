package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/KH-Mind/tbrr-sub000/internal/config"
	"github.com/KH-Mind/tbrr-sub000/internal/logger"
	"github.com/KH-Mind/tbrr-sub000/internal/storage"
	"github.com/KH-Mind/tbrr-sub000/pkg/actor"
	"github.com/KH-Mind/tbrr-sub000/pkg/engine"
	"github.com/KH-Mind/tbrr-sub000/pkg/interaction"
	"github.com/KH-Mind/tbrr-sub000/pkg/random"
	"github.com/KH-Mind/tbrr-sub000/pkg/state"
	"github.com/KH-Mind/tbrr-sub000/pkg/textfilter"
)

func main() {
	name := flag.String("name", "Wanderer", "character name")
	cruel := flag.Bool("cruel", false, "enable cruel world content")
	fated := flag.Bool("fated", false, "play as a fated one")
	logPath := flag.String("log", "console.log", "log file path")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// The terminal belongs to the UI, so logs go to a file.
	logFile, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logFile.Close()
	}()
	log := logger.SetupTo(logFile, cfg)

	lib, err := storage.NewContentLoader(cfg.DataDir, log).Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load content: %v\n", err)
		os.Exit(1)
	}

	seed := cfg.Seed
	if seed == 0 {
		if seed, err = random.NewSeed(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to seed: %v\n", err)
			os.Exit(1)
		}
	}

	a := actor.New(*name, 20, 10, 999)
	a.CruelWorld = *cruel
	a.FatedOne = *fated
	s := state.NewSession(cfg.StartArea)
	log = logger.WithRun(log, s.ID.String())
	log.Info("Starting run", "seed", seed, "data_dir", cfg.DataDir, "area", cfg.StartArea)

	var store storage.RunStore
	if cfg.RedisURL != "" {
		store = connectStore(cfg.RedisURL, log)
		if store != nil {
			defer func() {
				_ = store.Close()
			}()
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := tea.NewProgram(NewConsoleUI(cancel),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())

	// Interaction handlers draw from the run's stream off the engine goroutine.
	rng := random.NewLocked(random.New(seed))
	bridge := newTeaBridge(p)
	eng := engine.New(lib, rng, bridge, bridge, log).
		WithInteractions(newInteractions(cfg.InteractionTimeout, rng, log)).
		WithFilter(newFilter(cfg.SensitiveTerms))

	r := &runner{
		eng:     eng,
		lib:     lib,
		actor:   a,
		session: s,
		seed:    seed,
		store:   store,
		out:     p,
		logger:  log,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.Run(ctx)
	}()

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		cancel()
		wg.Wait()
		os.Exit(1)
	}
	cancel()
	wg.Wait()
	log.Info("Run closed", "events", r.session.EventCount, "deaths", len(r.session.DeathStats))
}

func connectStore(url string, log *slog.Logger) storage.RunStore {
	rs, err := storage.NewRedisRunStore(url, log)
	if err != nil {
		log.Warn("Run saving disabled", "error", err)
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := rs.WaitForConnection(ctx, 5, time.Second); err != nil {
		log.Warn("Run saving disabled", "error", err)
		_ = rs.Close()
		return nil
	}
	return rs
}

func newFilter(extra string) *textfilter.Filter {
	terms := maps.Clone(textfilter.DefaultTerms)
	maps.Copy(terms, textfilter.ParseTerms(extra))
	return textfilter.New(terms)
}

// newInteractions registers the mini-games available to content.
// They draw from rng so a seeded run replays its games too.
func newInteractions(timeout time.Duration, rng random.Source, log *slog.Logger) *interaction.Registry {
	reg := interaction.NewRegistry(timeout, log)

	reg.Register("coin_flip", interaction.HandlerFunc(func(ctx context.Context, params map[string]any, a *actor.Actor) (string, error) {
		if rng.IntN(2) == 0 {
			return "heads", nil
		}
		return "tails", nil
	}))

	reg.Register("dice", interaction.HandlerFunc(func(ctx context.Context, params map[string]any, a *actor.Actor) (string, error) {
		target := 4
		switch v := params["target"].(type) {
		case int:
			target = v
		case float64:
			target = int(v)
		}
		if random.Between(rng, 1, 6) >= target {
			return "win", nil
		}
		return "lose", nil
	}))

	log.Debug("Interactions registered", "types", strings.Join(reg.Types(), ","))
	return reg
}
