// Package ingest loads crawled schedule exports into the catalog. The
// export is a JSON document of flat schedule items; end times are
// derived from the movie's runtime because listings sites publish only
// start times.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/ktokiya/eigaplan/internal/repository"
	"github.com/ktokiya/eigaplan/internal/timeutil"
)

const (
	defaultDurationMin = 120
	defaultPriceYen    = 2000
)

// ScheduleExport mirrors the crawler's JSON output.
type ScheduleExport struct {
	Metadata struct {
		TargetDate string `json:"target_date"`
		Source     string `json:"source,omitempty"`
	} `json:"metadata"`
	Schedule []ScheduleItem `json:"schedule"`
}

// ScheduleItem is one crawled showtime listing.
type ScheduleItem struct {
	TheaterName string `json:"theater_name"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	DurationMin int    `json:"duration_min,omitempty"`
	Screen      uint32 `json:"screen_number,omitempty"`
	PriceYen    uint32 `json:"price_yen,omitempty"`
}

// Result summarizes one import run.
type Result struct {
	TargetDate        string `json:"target_date"`
	ImportedMovies    int    `json:"imported_movies"`
	ImportedShowtimes int    `json:"imported_showtimes"`
	Skipped           int    `json:"skipped"`
}

// Importer writes crawled schedules into the catalog inside one
// transaction per run.
type Importer struct {
	Theaters  *repository.TheaterRepo
	Movies    *repository.MovieRepo
	Showtimes *repository.ShowtimeRepo
	Crawls    *repository.CrawlStatusRepo
}

func NewImporter(t *repository.TheaterRepo, m *repository.MovieRepo, s *repository.ShowtimeRepo, c *repository.CrawlStatusRepo) *Importer {
	return &Importer{Theaters: t, Movies: m, Showtimes: s, Crawls: c}
}

var (
	crawlerNoise  = regexp.MustCompile(`コピー\s*印刷\s*すべてのスケジュールを見る`)
	trailingClock = regexp.MustCompile(`\d+:\d+.*$`)
	leadingClock  = regexp.MustCompile(`^\d+:\d+\s*`)
	innerSpaces   = regexp.MustCompile(`\s+`)
)

// CleanTitle strips crawler artifacts (UI captions, stray clock tokens)
// from a scraped movie title. Returns "" when nothing usable remains.
func CleanTitle(title string) string {
	title = crawlerNoise.ReplaceAllString(title, "")
	title = leadingClock.ReplaceAllString(title, "")
	title = trailingClock.ReplaceAllString(title, "")
	title = strings.TrimSpace(innerSpaces.ReplaceAllString(title, " "))
	if len([]rune(title)) < 2 {
		return ""
	}
	return title
}

// EndTime derives a showtime's end from its start and runtime. Exactly
// midnight renders as "24:00"; sessions running past midnight are not
// representable in a single-day catalog and report an error.
func EndTime(start string, durationMin int) (string, error) {
	startMin, err := timeutil.ToMinutes(start)
	if err != nil {
		return "", err
	}
	if durationMin <= 0 {
		durationMin = defaultDurationMin
	}
	end := startMin + durationMin
	if end == timeutil.MinutesPerDay {
		return "24:00", nil
	}
	if end > timeutil.MinutesPerDay {
		return "", fmt.Errorf("showtime %s+%dmin runs past midnight", start, durationMin)
	}
	return timeutil.ToClock(end)
}

// Import decodes a schedule export and replaces that date's showtimes.
// Unusable rows (unknown theater, empty cleaned title, over-midnight
// sessions) are skipped with a log line, not fatal. Crawl status is
// updated per theater touched by the run.
func (im *Importer) Import(ctx context.Context, raw []byte) (*Result, error) {
	var export ScheduleExport
	if err := json.Unmarshal(raw, &export); err != nil {
		return nil, fmt.Errorf("decode schedule export: %w", err)
	}
	return im.ImportExport(ctx, &export)
}

// ImportExport is the decoded-form entry point used by the CLI and the
// admin API after they have already parsed the payload.
func (im *Importer) ImportExport(ctx context.Context, export *ScheduleExport) (*Result, error) {
	date := export.Metadata.TargetDate
	if date == "" {
		return nil, fmt.Errorf("schedule export missing metadata.target_date")
	}

	tx, err := im.Showtimes.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if err := im.Showtimes.ClearDateTx(ctx, tx, date); err != nil {
		return nil, err
	}

	res := &Result{TargetDate: date}
	seenMovies := map[string]bool{}
	perTheater := map[uint64]*theaterTally{}

	for _, item := range export.Schedule {
		title := CleanTitle(item.Title)
		if title == "" {
			res.Skipped++
			continue
		}
		theater, err := im.Theaters.GetByName(ctx, item.TheaterName)
		if err != nil {
			if err == repository.ErrTheaterNotFound {
				log.Printf("ingest: unknown theater %q, skipping", item.TheaterName)
				res.Skipped++
				continue
			}
			return nil, err
		}

		duration := item.DurationMin
		if duration <= 0 {
			duration = defaultDurationMin
		}
		end, err := EndTime(item.StartTime, duration)
		if err != nil {
			log.Printf("ingest: %v, skipping %q at %s", err, title, item.TheaterName)
			res.Skipped++
			continue
		}

		movieID, err := im.Movies.GetOrCreate(ctx, title, duration)
		if err != nil {
			return nil, err
		}
		if !seenMovies[title] {
			seenMovies[title] = true
			res.ImportedMovies++
		}

		screen := item.Screen
		if screen == 0 {
			screen = 1
		}
		price := item.PriceYen
		if price == 0 {
			price = defaultPriceYen
		}
		itemDate := item.Date
		if itemDate == "" {
			itemDate = date
		}
		if _, err := im.Showtimes.UpsertTx(ctx, tx, theater.ID, movieID, itemDate, item.StartTime, end, screen, price); err != nil {
			return nil, err
		}
		res.ImportedShowtimes++

		t := perTheater[theater.ID]
		if t == nil {
			t = &theaterTally{name: theater.Name, movies: map[string]bool{}}
			perTheater[theater.ID] = t
		}
		t.movies[title] = true
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	for id, t := range perTheater {
		if err := im.Crawls.RecordResult(ctx, id, t.name, len(t.movies), true); err != nil {
			log.Printf("ingest: record crawl status for %s: %v", t.name, err)
		}
	}
	return res, nil
}

type theaterTally struct {
	name   string
	movies map[string]bool
}
