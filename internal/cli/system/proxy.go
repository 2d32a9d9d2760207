package system

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/julianstephens/weekgrid/internal/cli"
	"github.com/julianstephens/weekgrid/internal/sheetproxy"
)

// ProxyCmd serves the sheet API over a local SQLite table, standing in for
// the hosted spreadsheet.
type ProxyCmd struct {
	Addr string `help:"Listen address." default:"${proxy_addr}"`
	DB   string `help:"Row database. Defaults to proxy.db in the config directory." type:"path"`
}

func (c *ProxyCmd) Run(ctx *cli.Context) error {
	path := c.DB
	if path == "" {
		path = filepath.Join(ctx.Config.Dir(), "proxy.db")
	}
	store, err := sheetproxy.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	sigCtx, stop := signal.NotifyContext(ctx.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx.Printf("Serving sheet proxy on http://%s (rows in %s)\n", c.Addr, path)
	return sheetproxy.NewServer(store).Run(sigCtx, c.Addr)
}
