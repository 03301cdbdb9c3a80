// Command eigaplan is the operator CLI: it imports crawled schedules,
// seeds theaters and walking distances, and prints catalog stats.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ktokiya/eigaplan/internal/config"
	"github.com/ktokiya/eigaplan/internal/database"
	"github.com/ktokiya/eigaplan/internal/ingest"
	"github.com/ktokiya/eigaplan/internal/repository"
)

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "eigaplan",
		Short:         "Movie viewing-plan catalog operations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newImportCmd(), newSeedCmd(), newStatsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func openDB() (*sql.DB, error) {
	db := config.LoadDB()
	return database.Open(db.User, db.Pass, db.Host, db.Port, db.Name)
}

func cliContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Minute)
}

func newImportCmd() *cobra.Command {
	var url string
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a crawled schedule export (JSON file or --url)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cliContext()
			defer cancel()

			var payload []byte
			switch {
			case url != "":
				body, err := ingest.FetchExport(ctx, url)
				if err != nil {
					return err
				}
				payload = body
			case len(args) == 1:
				body, err := os.ReadFile(args[0])
				if err != nil {
					return err
				}
				payload = body
			default:
				return fmt.Errorf("provide a schedule file or --url")
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			showtimes := repository.NewShowtimeRepo(db)
			importer := ingest.NewImporter(
				repository.NewTheaterRepo(db),
				repository.NewMovieRepo(db),
				showtimes,
				repository.NewCrawlStatusRepo(db),
			)
			res, err := importer.Import(ctx, payload)
			if err != nil {
				return err
			}
			fmt.Printf("imported %d showtimes (%d movies) for %s, skipped %d\n",
				res.ImportedShowtimes, res.ImportedMovies, res.TargetDate, res.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "fetch the schedule export from this URL")
	return cmd
}

// seedFile describes the seed JSON: venues plus symmetric walking times
// keyed by theater name.
type seedFile struct {
	Theaters  []repository.Theater `json:"theaters"`
	Distances []struct {
		From           string `json:"from"`
		To             string `json:"to"`
		WalkingMinutes int    `json:"walking_minutes"`
	} `json:"distances"`
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file>",
		Short: "Seed theaters and walking distances from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var seed seedFile
			if err := json.Unmarshal(raw, &seed); err != nil {
				return fmt.Errorf("decode seed file: %w", err)
			}

			ctx, cancel := cliContext()
			defer cancel()

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			theaters := repository.NewTheaterRepo(db)
			distances := repository.NewDistanceRepo(db)

			for i := range seed.Theaters {
				if err := theaters.Upsert(ctx, &seed.Theaters[i]); err != nil {
					return fmt.Errorf("seed theater %q: %w", seed.Theaters[i].Name, err)
				}
			}
			for _, d := range seed.Distances {
				from, err := theaters.GetByName(ctx, d.From)
				if err != nil {
					return fmt.Errorf("distance from %q: %w", d.From, err)
				}
				to, err := theaters.GetByName(ctx, d.To)
				if err != nil {
					return fmt.Errorf("distance to %q: %w", d.To, err)
				}
				if err := distances.Upsert(ctx, from.ID, to.ID, d.WalkingMinutes); err != nil {
					return err
				}
			}
			fmt.Printf("seeded %d theaters and %d distance pairs\n",
				len(seed.Theaters), len(seed.Distances))
			return nil
		},
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print catalog row counts and the per-date breakdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cliContext()
			defer cancel()

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			showtimes := repository.NewShowtimeRepo(db)
			stats, err := repository.NewStatsRepo(db, showtimes).Collect(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("theaters:    %d\n", stats.Theaters)
			fmt.Printf("movies:      %d\n", stats.Movies)
			fmt.Printf("showtimes:   %d\n", stats.Showtimes)
			fmt.Printf("saved plans: %d\n", stats.SavedPlans)

			dates := make([]string, 0, len(stats.ShowtimesByDay))
			for d := range stats.ShowtimesByDay {
				dates = append(dates, d)
			}
			sort.Strings(dates)
			for _, d := range dates {
				fmt.Printf("  %s: %d showtimes\n", d, stats.ShowtimesByDay[d])
			}
			return nil
		},
	}
}
