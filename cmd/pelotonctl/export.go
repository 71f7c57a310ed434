package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/arvarik/peloton-go/peloton"
)

// exportRecord is one line of export output.
type exportRecord struct {
	WorkoutID string          `json:"workout_id"`
	Workout   json.RawMessage `json:"workout"`
	Summary   json.RawMessage `json:"summary"`
}

// exporter fetches a user's workouts and then each workout's summary with a bounded
// number of workers, pacing summary requests with a token bucket.
type exporter struct {
	client  *peloton.Client
	logger  zerolog.Logger
	workers int
	limiter *rate.Limiter
}

// newExporter builds an exporter. A non-positive rps leaves requests unpaced.
func newExporter(client *peloton.Client, logger zerolog.Logger, workers int, rps float64) *exporter {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}

	return &exporter{
		client:  client,
		logger:  logger,
		workers: max(workers, 1),
		limiter: rate.NewLimiter(limit, 1),
	}
}

// run writes one JSON line per workout to w, in the order the API returned them.
func (e *exporter) run(ctx context.Context, w io.Writer, userID string, limit int) (int, error) {
	workouts, err := e.client.User.Workouts(ctx, userID, &peloton.WorkoutListOptions{
		JoinOptions: peloton.JoinOptions{IncludeRide: true},
		MaxResults:  limit,
	})
	if err != nil {
		return 0, fmt.Errorf("list workouts: %w", err)
	}

	records := make([]exportRecord, len(workouts))
	for i, raw := range workouts {
		var head struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(raw, &head); err != nil || head.ID == "" {
			return 0, fmt.Errorf("workout %d has no id", i)
		}
		records[i] = exportRecord{WorkoutID: head.ID, Workout: raw}
	}

	e.logger.Info().Int("workouts", len(records)).Int("workers", e.workers).Msg("Fetching workout summaries")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := range records {
		rec := &records[i]
		g.Go(func() error {
			if err := e.limiter.Wait(gctx); err != nil {
				return err
			}

			summary, err := e.client.Workout.Summary(gctx, rec.WorkoutID)
			if err != nil {
				return fmt.Errorf("workout %s: %w", rec.WorkoutID, err)
			}
			rec.Summary = summary

			e.logger.Debug().Str("workout_id", rec.WorkoutID).Msg("Fetched summary")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	enc := json.NewEncoder(w)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return 0, fmt.Errorf("write record: %w", err)
		}
	}
	return len(records), nil
}

func newExportCmd(a *app) *cobra.Command {
	var (
		userID  string
		limit   int
		workers int
		rps     float64
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export workouts with their summaries as JSON lines",
		Long: `Export fetches a user's workouts and the summary of each one, writing one JSON
object per line. Summaries are fetched concurrently by --workers workers, at most
--rps requests per second.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("workers") {
				workers = a.cfg.Export.Workers
			}
			if !cmd.Flags().Changed("rps") {
				rps = a.cfg.Export.RequestsPerSecond
			}
			if workers < 1 {
				return fmt.Errorf("--workers must be positive, got %d", workers)
			}
			if rps <= 0 {
				return fmt.Errorf("--rps must be positive, got %v", rps)
			}

			n, err := newExporter(a.client, a.logger, workers, rps).run(cmd.Context(), a.out, userID, limit)
			if err != nil {
				return err
			}

			a.logger.Info().Int("workouts", n).Msg("Export finished")
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user ID (default is the logged-in user)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "maximum number of workouts, 0 for all")
	cmd.Flags().IntVarP(&workers, "workers", "w", 4, "concurrent summary requests")
	cmd.Flags().Float64Var(&rps, "rps", 5, "summary requests per second")

	return cmd
}
