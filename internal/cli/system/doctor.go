package system

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/julianstephens/weekgrid/internal/backup"
	"github.com/julianstephens/weekgrid/internal/cache/sqlite"
	"github.com/julianstephens/weekgrid/internal/cli"
	"github.com/julianstephens/weekgrid/internal/migration"
	"github.com/julianstephens/weekgrid/internal/models"
	"github.com/julianstephens/weekgrid/migrations"
)

type DoctorCmd struct{}

type check struct {
	name string
	run  func(ctx *cli.Context) error
	// warn marks checks whose failure is only a warning.
	warn bool
}

var checks = []check{
	{name: "Cache reachable", run: checkCacheReachable},
	{name: "Schema version", run: checkSchemaVersion},
	{name: "Backups present", run: checkBackupsPresent, warn: true},
	{name: "Remote sheet", run: checkRemote, warn: true},
	{name: "Current week", run: checkCurrentWeek, warn: true},
	{name: "Clock/timezone", run: checkClockTimezone},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	for _, c := range checks {
		err := c.run(ctx)
		var skip skipError
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case errors.As(err, &skip):
			ctx.Printf("⊘ %s: SKIPPED (%s)\n", c.name, skip.reason)
		case c.warn:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

// skipError marks a check that does not apply to this setup.
type skipError struct{ reason string }

func (s skipError) Error() string { return "skipped: " + s.reason }

func skipped(reason string) error {
	return skipError{reason: reason}
}

func checkCacheReachable(ctx *cli.Context) error {
	if err := ctx.Provider.Load(); err != nil {
		return fmt.Errorf("failed to load cache: %w", err)
	}
	if _, err := ctx.Provider.Keys(""); err != nil {
		return fmt.Errorf("failed to query cache: %w", err)
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	store, ok := ctx.Provider.(*sqlite.Store)
	if !ok || store.GetDB() == nil {
		return skipped("not a sqlite cache")
	}
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return err
	}
	runner := migration.NewRunner(store.GetDB(), subFS, migration.SQLite)
	current, err := runner.CurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}
	latest, err := runner.LatestVersion()
	if err != nil {
		return fmt.Errorf("failed to get latest schema version: %w", err)
	}
	switch {
	case current > latest:
		return fmt.Errorf("cache schema version (%d) is newer than supported version (%d)", current, latest)
	case current < latest:
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", current, latest)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	path := ctx.CachePath()
	if path == "" {
		return skipped("not a sqlite cache")
	}
	backups, err := backup.NewManager(path).List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'weekgrid backup create'")
	}
	return nil
}

func checkRemote(ctx *cli.Context) error {
	if ctx.Remote == nil {
		return skipped("offline mode")
	}
	weeks, err := ctx.Remote.AvailableWeeks(ctx.Ctx)
	if err != nil {
		return fmt.Errorf("sheet unreachable: %w", err)
	}
	ctx.Printf("   %d weeks on the sheet\n", len(weeks))
	return nil
}

// checkCurrentWeek reports overlapping slots in the week last shown.
func checkCurrentWeek(ctx *cli.Context) error {
	if err := ctx.Provider.Load(); err != nil {
		return skipped("cache unavailable")
	}
	week, err := ctx.Cache.CurrentWeek()
	if err != nil {
		return err
	}
	if !week.Valid() {
		return skipped("no week shown yet")
	}
	rec, err := ctx.OpenLocal(string(week))
	if err != nil {
		return err
	}
	var n int
	for _, day := range models.Days {
		n += len(rec.Store().OverlapPairs(day))
	}
	if n > 0 {
		return fmt.Errorf("%d overlapping slot pairs in week %s", n, week)
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := ctx.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if _, offset := now.Zone(); offset == 0 && now.Location() == time.UTC {
		ctx.Printf("   Note: timezone is UTC\n")
	}
	return nil
}
