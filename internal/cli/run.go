package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"studyclock/internal/config"
	"studyclock/internal/core/model"
	"studyclock/internal/core/session"
	"studyclock/internal/history"
	"studyclock/internal/input"
	"studyclock/internal/platform"
)

var (
	studyFlag    string
	breakFlag    string
	sessionsFlag string
	loopFlag     bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a study/break chain to completion",
	Long: `Run starts a chain of alternating study and break countdowns and blocks
until the configured number of sessions completes or the process is
interrupted. Durations accept "M:S" or a bare number of minutes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := commandLogger()

		lock, err := platform.AcquireRunLock(appName)
		if err != nil {
			return err
		}
		defer lock.Release()

		defaults, err := config.Load(appName)
		if err != nil {
			return err
		}
		chainConfig, err := applyFlags(cmd, defaults)
		if err != nil {
			return err
		}

		store, err := history.Open(historyPath())
		if err != nil {
			return err
		}
		defer store.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if !loopFlag {
			return runChain(ctx, logger, store, chainConfig)
		}
		return runLoop(ctx, cmd, logger, store, chainConfig)
	},
}

func init() {
	runCmd.Flags().StringVar(&studyFlag, "study", "", `study duration ("M:S" or minutes)`)
	runCmd.Flags().StringVar(&breakFlag, "break", "", `break duration ("M:S" or minutes)`)
	runCmd.Flags().StringVar(&sessionsFlag, "sessions", "", "number of study+break pairs")
	runCmd.Flags().BoolVar(&loopFlag, "loop", false, "start a new chain after each completed one")
	rootCmd.AddCommand(runCmd)
}

// applyFlags overrides file defaults with whatever flags were set explicitly.
func applyFlags(cmd *cobra.Command, defaults model.ChainConfig) (model.ChainConfig, error) {
	chainConfig := defaults
	if cmd.Flags().Changed("study") {
		studyLimit, err := input.ParseSpan(studyFlag)
		if err != nil {
			return chainConfig, err
		}
		chainConfig.StudyLimit = studyLimit
	}
	if cmd.Flags().Changed("break") {
		breakLimit, err := input.ParseSpan(breakFlag)
		if err != nil {
			return chainConfig, err
		}
		chainConfig.BreakLimit = breakLimit
	}
	if cmd.Flags().Changed("sessions") {
		sessions, err := input.ParseCount(sessionsFlag)
		if err != nil {
			return chainConfig, err
		}
		chainConfig.TotalSessions = sessions
	}
	return chainConfig, nil
}

// runLoop runs chains back to back. Between chains it picks up defaults
// reloaded by the config watcher; flags set explicitly stay pinned.
func runLoop(ctx context.Context, cmd *cobra.Command, logger *slog.Logger, store *history.Store, first model.ChainConfig) error {
	var mu sync.Mutex
	pending := first

	go func() {
		err := config.Watch(ctx, appName, logger, func(defaults model.ChainConfig) {
			updated, err := applyFlags(cmd, defaults)
			if err != nil {
				logger.Warn("ignoring reloaded defaults", "error", err)
				return
			}
			mu.Lock()
			pending = updated
			mu.Unlock()
		})
		if err != nil {
			logger.Warn("config watcher stopped", "error", err)
		}
	}()

	for {
		mu.Lock()
		chainConfig := pending
		mu.Unlock()

		if err := runChain(ctx, logger, store, chainConfig); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// runChain drives one chain from Begin to ChainComplete, recording every
// finished interval.
func runChain(ctx context.Context, logger *slog.Logger, store *history.Store, chainConfig model.ChainConfig) error {
	sequencer := session.New(session.Config{TickInterval: time.Second})
	defer sequencer.Close()

	events := sequencer.Subscribe(1024)
	if err := sequencer.Begin(chainConfig); err != nil {
		return err
	}

	chainID := sequencer.ChainID().String()
	if err := store.RecordChainStart(chainID, chainConfig, time.Now()); err != nil {
		logger.Warn("record chain start", "error", err)
	}
	logger.Info("chain started",
		"chain", chainID,
		"study", chainConfig.StudyLimit,
		"break", chainConfig.BreakLimit,
		"sessions", chainConfig.TotalSessions)

	recorder := &intervalRecorder{store: store, logger: logger, chainID: chainID}

	for {
		select {
		case <-ctx.Done():
			sequencer.HaltAll()
			recorder.abort(time.Now())
			logger.Info("chain halted", "chain", chainID)
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			switch event.Type {
			case session.EventElapsed:
				logger.Debug("elapsed",
					"kind", event.Kind,
					"elapsed", event.Elapsed,
					"limit", event.Limit)
			case session.EventLimitReached:
				recorder.markComplete()
				logger.Info("interval complete", "kind", event.Kind, "limit", event.Limit)
			case session.EventSessionChange:
				recorder.change(event)
				logger.Info("session", "kind", event.Kind, "remaining", event.Remaining)
			case session.EventChainComplete:
				if err := store.MarkChainComplete(chainID, event.At); err != nil {
					logger.Warn("mark chain complete", "error", err)
				}
				notifyComplete()
				logger.Info("chain complete", "chain", chainID)
				return nil
			}
		}
	}
}

// notifyComplete is the single permitted notification side effect.
func notifyComplete() {
	fmt.Print("\a")
}

// intervalRecorder turns the sequencer event stream into interval rows.
type intervalRecorder struct {
	store     *history.Store
	logger    *slog.Logger
	chainID   string
	kind      session.Kind
	limit     time.Duration
	startedAt time.Time
	completed bool
}

func (recorder *intervalRecorder) markComplete() {
	recorder.completed = true
}

func (recorder *intervalRecorder) change(event session.Event) {
	recorder.flush(event.At)
	if event.Kind == session.KindIdle {
		recorder.kind = session.KindIdle
		return
	}
	recorder.kind = event.Kind
	recorder.limit = event.Limit
	recorder.startedAt = event.At
	recorder.completed = false
}

func (recorder *intervalRecorder) abort(at time.Time) {
	recorder.flush(at)
	recorder.kind = session.KindIdle
}

func (recorder *intervalRecorder) flush(endedAt time.Time) {
	if recorder.kind != session.KindStudy && recorder.kind != session.KindBreak {
		return
	}
	err := recorder.store.RecordInterval(history.Interval{
		ChainID:   recorder.chainID,
		Kind:      recorder.kind,
		Limit:     recorder.limit,
		StartedAt: recorder.startedAt,
		EndedAt:   endedAt,
		Completed: recorder.completed,
	})
	if err != nil {
		recorder.logger.Warn("record interval", "error", err)
	}
	recorder.completed = false
}

func historyPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "studyclock-history.db"
	}
	dir := filepath.Join(configDir, appName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "studyclock-history.db"
	}
	return filepath.Join(dir, "history.db")
}
