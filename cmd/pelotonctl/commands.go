package main

import (
	"encoding/json"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/arvarik/peloton-go/peloton"
)

// identity is the whoami view of a session.
type identity struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	ExpiresAt time.Time `json:"expires_at"`
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Log in and show the session identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.client.Authenticate(cmd.Context())
			if err != nil {
				return err
			}

			id := identity{
				UserID:    s.UserID,
				Username:  s.Username,
				Email:     s.Email,
				Name:      s.Name,
				ExpiresAt: s.ExpiresAt,
			}
			return a.render(id, func(table *tablewriter.Table) error {
				table.Header("User ID", "Username", "Email", "Name", "Session Expires")
				return table.Append(id.UserID, id.Username, id.Email, id.Name, id.ExpiresAt.Format(time.RFC3339))
			})
		},
	}
}

type instructorRow struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	FitnessDiscipline string `json:"fitness_discipline"`
}

func newInstructorsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "instructors",
		Short: "List instructors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			instructors, err := a.client.Instructor.List(cmd.Context())
			if err != nil {
				return err
			}

			return a.render(instructors, func(table *tablewriter.Table) error {
				rows, err := decodeRows[instructorRow](instructors)
				if err != nil {
					return err
				}

				table.Header("ID", "Name", "Discipline")
				for _, r := range rows {
					if err := table.Append(r.ID, r.Name, orDash(r.FitnessDiscipline)); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

type workoutRow struct {
	ID                string `json:"id"`
	FitnessDiscipline string `json:"fitness_discipline"`
	Status            string `json:"status"`
	CreatedAt         int64  `json:"created_at"`
	Ride              *struct {
		Title      string `json:"title"`
		Instructor *struct {
			Name string `json:"name"`
		} `json:"instructor"`
	} `json:"ride"`
}

func (r workoutRow) title() string {
	if r.Ride == nil {
		return "-"
	}
	return orDash(r.Ride.Title)
}

func (r workoutRow) instructor() string {
	if r.Ride == nil || r.Ride.Instructor == nil {
		return "-"
	}
	return orDash(r.Ride.Instructor.Name)
}

func newWorkoutsCmd(a *app) *cobra.Command {
	var (
		userID      string
		limit       int
		rides       bool
		instructors bool
	)

	cmd := &cobra.Command{
		Use:   "workouts",
		Short: "List a user's workouts",
		Long:  "List the workouts of a user, newest first. Without --user the logged-in user is used.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			workouts, err := a.client.User.Workouts(cmd.Context(), userID, &peloton.WorkoutListOptions{
				JoinOptions: peloton.JoinOptions{IncludeRide: rides || instructors, IncludeInstructor: instructors},
				MaxResults:  limit,
			})
			if err != nil {
				return err
			}

			return a.render(workouts, func(table *tablewriter.Table) error {
				rows, err := decodeRows[workoutRow](workouts)
				if err != nil {
					return err
				}

				table.Header("#", "ID", "Discipline", "Status", "Created", "Class", "Instructor")
				for i, r := range rows {
					if err := table.Append(itoa(i+1), r.ID, orDash(r.FitnessDiscipline), orDash(r.Status),
						formatUnix(r.CreatedAt), r.title(), r.instructor()); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user ID (default is the logged-in user)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of workouts, 0 for all")
	cmd.Flags().BoolVar(&rides, "rides", false, "include ride details")
	cmd.Flags().BoolVar(&instructors, "instructors", false, "include ride and instructor details")

	return cmd
}

// workoutDetail is the workout command's view: the workout and the requested extras.
type workoutDetail struct {
	Workout json.RawMessage `json:"workout"`
	Summary json.RawMessage `json:"summary,omitempty"`
	Metrics json.RawMessage `json:"metrics,omitempty"`
}

func newWorkoutCmd(a *app) *cobra.Command {
	var (
		withMetrics bool
		withSummary bool
		every       time.Duration
	)

	cmd := &cobra.Command{
		Use:   "workout WORKOUT_ID",
		Short: "Show a workout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			workoutID := args[0]

			var (
				detail workoutDetail
				err    error
			)
			detail.Workout, err = a.client.Workout.Get(ctx, workoutID, &peloton.JoinOptions{IncludeRide: true, IncludeInstructor: true})
			if err != nil {
				return err
			}
			if withSummary {
				if detail.Summary, err = a.client.Workout.Summary(ctx, workoutID); err != nil {
					return err
				}
			}
			if withMetrics {
				if detail.Metrics, err = a.client.Workout.Metrics(ctx, workoutID, every); err != nil {
					return err
				}
			}

			return a.render(detail, func(table *tablewriter.Table) error {
				var r workoutRow
				if err := json.Unmarshal(detail.Workout, &r); err != nil {
					return err
				}

				table.Header("Field", "Value")
				for _, kv := range [][2]string{
					{"ID", r.ID},
					{"Discipline", orDash(r.FitnessDiscipline)},
					{"Status", orDash(r.Status)},
					{"Created", formatUnix(r.CreatedAt)},
					{"Class", r.title()},
					{"Instructor", r.instructor()},
				} {
					if err := table.Append(kv[0], kv[1]); err != nil {
						return err
					}
				}
				if detail.Summary != nil {
					if err := table.Append("Summary", string(detail.Summary)); err != nil {
						return err
					}
				}
				if detail.Metrics != nil {
					if err := table.Append("Metrics", "use --output json to view the performance graph"); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&withMetrics, "metrics", false, "include the performance graph")
	cmd.Flags().BoolVar(&withSummary, "summary", false, "include the workout summary")
	cmd.Flags().DurationVar(&every, "every", 10*time.Second, "performance graph sampling interval")

	return cmd
}
