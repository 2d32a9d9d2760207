// Package cli holds the state shared by weekgrid's commands. The commands
// themselves live in the subpackages.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/julianstephens/weekgrid/internal/backup"
	"github.com/julianstephens/weekgrid/internal/cache"
	"github.com/julianstephens/weekgrid/internal/cache/disk"
	"github.com/julianstephens/weekgrid/internal/cache/postgres"
	"github.com/julianstephens/weekgrid/internal/cache/sqlite"
	"github.com/julianstephens/weekgrid/internal/config"
	"github.com/julianstephens/weekgrid/internal/constants"
	"github.com/julianstephens/weekgrid/internal/logger"
	"github.com/julianstephens/weekgrid/internal/models"
	"github.com/julianstephens/weekgrid/internal/reconcile"
	"github.com/julianstephens/weekgrid/internal/sheets"
	"github.com/julianstephens/weekgrid/internal/utils"
)

type Context struct {
	Ctx    context.Context
	Config *config.Config
	// ConfigPath is where the config file is read from or written to.
	ConfigPath string
	Provider   cache.Provider
	Cache      *cache.Cache
	// Remote is nil in offline mode.
	Remote reconcile.Remote
	// Reminders is only set for long-running commands.
	Reminders reconcile.Reminders
	Now       func() time.Time
	In        io.Reader
	Out       io.Writer
}

// NewContext wires a context around an opened provider. The remote client
// is built when the config resolves an endpoint.
func NewContext(ctx context.Context, cfg *config.Config, p cache.Provider) (*Context, error) {
	c := &Context{
		Ctx:      ctx,
		Config:   cfg,
		Provider: p,
		Cache:    cache.New(p),
		Now:      time.Now,
		In:       os.Stdin,
		Out:      os.Stdout,
	}
	if endpoint := cfg.ResolveEndpoint(); endpoint != "" {
		client, err := sheets.New(endpoint, cfg.HTTPTimeout)
		if err != nil {
			return nil, err
		}
		c.Remote = client
	}
	return c, nil
}

// OpenProvider returns the cache backend named in cfg, unopened.
func OpenProvider(cfg *config.Config) (cache.Provider, error) {
	switch cfg.Cache.Backend {
	case constants.CacheBackendDiskv:
		return disk.NewStore(cfg.Cache.Path), nil
	case constants.CacheBackendPostgres:
		connStr, err := config.ResolveConnString()
		if err != nil {
			return nil, err
		}
		if err := postgres.ValidateConnString(connStr); err != nil {
			return nil, err
		}
		return postgres.New(connStr), nil
	default:
		return sqlite.NewStore(cfg.Cache.Path), nil
	}
}

func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.Out, args...)
}

// Confirm asks a yes/no question on In. Anything but y or yes is a no.
func (c *Context) Confirm(question string) (bool, error) {
	c.Printf("%s [y/N]: ", question)
	response, err := bufio.NewReader(c.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

// Reconciler builds a reconciler over the context's cache and remote.
func (c *Context) Reconciler() (*reconcile.Reconciler, error) {
	return reconcile.New(c.options())
}

func (c *Context) options() reconcile.Options {
	return reconcile.Options{
		Grid:            c.Config.Grid(),
		Cache:           c.Cache,
		Remote:          c.Remote,
		Reminders:       c.Reminders,
		DefaultDuration: c.Config.DefaultDuration,
		Now:             c.Now,
	}
}

// ResolveWeek turns a week argument into a week key. Empty means the week
// last shown, or this week when none was.
func (c *Context) ResolveWeek(arg string) (models.WeekKey, error) {
	if arg == "" {
		week, err := c.Cache.CurrentWeek()
		if err != nil {
			logger.Warn("Could not read current week", "error", err)
		}
		if week.Valid() {
			return week, nil
		}
		return models.WeekOf(c.Now()), nil
	}
	date, err := utils.ParseDate(arg, c.Now())
	if err != nil {
		return "", err
	}
	return models.WeekOf(date), nil
}

// Open activates the week named by arg and refreshes it from the remote
// sheet.
func (c *Context) Open(arg string) (*reconcile.Reconciler, error) {
	week, err := c.ResolveWeek(arg)
	if err != nil {
		return nil, err
	}
	return c.OpenWeek(week)
}

// OpenWeek activates week. A failed refresh leaves the cached copy in
// place and is reported as a warning.
func (c *Context) OpenWeek(week models.WeekKey) (*reconcile.Reconciler, error) {
	rec, err := c.Reconciler()
	if err != nil {
		return nil, err
	}
	job, err := rec.ActivateWeek(week)
	if err != nil {
		return nil, err
	}
	if _, err := rec.Run(c.Ctx, job); err != nil {
		c.Printf("Warning: showing cached copy, remote read failed: %v\n", err)
	}
	return rec, nil
}

// OpenLocal activates the week named by arg from the cache alone. Goals,
// notes and the standard marker never touch the remote sheet.
func (c *Context) OpenLocal(arg string) (*reconcile.Reconciler, error) {
	week, err := c.ResolveWeek(arg)
	if err != nil {
		return nil, err
	}
	opts := c.options()
	opts.Remote = nil
	rec, err := reconcile.New(opts)
	if err != nil {
		return nil, err
	}
	if _, err := rec.ActivateWeek(week); err != nil {
		return nil, err
	}
	return rec, nil
}

// Sync runs job and reports a remote failure as the command's error. The
// local change has already been rolled back when it returns one.
func (c *Context) Sync(rec *reconcile.Reconciler, job *reconcile.Job) (reconcile.Result, error) {
	res, err := rec.Run(c.Ctx, job)
	if err != nil {
		var copyErr *reconcile.CopyError
		if errors.As(err, &copyErr) {
			return res, err
		}
		return res, fmt.Errorf("could not %s: %w", job.Action, err)
	}
	return res, nil
}

// Online reports whether commands talk to a remote sheet.
func (c *Context) Online() bool {
	return c.Remote != nil
}

// CachePath is the SQLite cache file, empty for other backends.
func (c *Context) CachePath() string {
	if _, ok := c.Provider.(*sqlite.Store); !ok {
		return ""
	}
	return c.Provider.GetConfigPath()
}

// PerformAutomaticBackup creates an automatic backup and silently handles
// errors. Only the SQLite backend is backed up.
func (c *Context) PerformAutomaticBackup() {
	path := c.CachePath()
	if path == "" {
		return
	}
	if _, err := backup.NewManager(path).Create(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}
