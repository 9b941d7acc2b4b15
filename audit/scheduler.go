package audit

import (
	"context"
	"errors"
	"fmt"

	"github.com/Henryno111/deposit-stx/ledger"
	"github.com/Henryno111/deposit-stx/observability"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// DefaultSpec runs the audit every 15 minutes (seconds field included).
const DefaultSpec = "0 */15 * * * *"

type Exporter interface {
	Export(ctx context.Context, snap Snapshot) (string, error)
}

// Scheduler runs the reconciler, and the snapshot export when an exporter is
// set, on a cron schedule.
type Scheduler struct {
	Cron       *cron.Cron
	Reconciler *Reconciler
	Store      ledger.Store
	Exporter   Exporter
	Ctx        context.Context
}

func NewScheduler(ctx context.Context, store ledger.Store, rec *Reconciler, exp Exporter) *Scheduler {
	return &Scheduler{
		Cron:       cron.New(cron.WithSeconds()),
		Reconciler: rec,
		Store:      store,
		Exporter:   exp,
		Ctx:        ctx,
	}
}

func (s *Scheduler) Register(spec string) error {
	if spec == "" {
		spec = DefaultSpec
	}
	if _, err := s.Cron.AddFunc(spec, s.run); err != nil {
		return fmt.Errorf("register audit task: %w", err)
	}
	return nil
}

func (s *Scheduler) Start() { s.Cron.Start() }

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
}

func (s *Scheduler) run() {
	if err := s.RunOnce(s.Ctx); err != nil {
		log.Error().Err(err).Msg("audit run failed")
	}
}

// RunOnce reconciles and, if configured, exports a snapshot. A failed
// reconciliation is logged and still exported so the bad state is kept.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	rep, err := s.Reconciler.Check(ctx)
	switch {
	case err == nil:
		log.Info().Uint64("height", rep.Height).Uint64("total_pool", rep.TotalPool).
			Uint64("depositors", rep.DepositorCount).Msg("ledger reconciled")
	case errors.Is(err, ledger.ErrInvariantViolation):
		log.Error().Uint64("height", rep.Height).Strs("problems", rep.Problems).Msg("ledger invariant violation")
	default:
		return err
	}
	observability.RecordReconciliation(rep.Height, rep.TotalPool, rep.DepositorCount, rep.OK())

	if s.Exporter == nil {
		return err
	}
	snap, serr := TakeSnapshot(ctx, s.Store)
	if serr != nil {
		return fmt.Errorf("snapshot: %w", serr)
	}
	key, xerr := s.Exporter.Export(ctx, snap)
	if xerr != nil {
		return xerr
	}
	log.Info().Str("key", key).Uint64("height", snap.Height).Msg("ledger snapshot exported")
	return err
}
