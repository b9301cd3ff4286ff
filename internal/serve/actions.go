package serve

import (
	"os/signal"
	"syscall"

	"github.com/folio-dev/blogrender/internal/common"
	"github.com/folio-dev/blogrender/pkg/server"
	"github.com/urfave/cli/v2"
)

// ServeAction runs the HTTP server until SIGINT or SIGTERM.
func ServeAction(c *cli.Context) error {
	logger := common.NewLogger(c)

	cfg, err := common.LoadConfig(c)
	if err != nil {
		return err
	}

	svc, closeIndex, err := common.OpenService(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeIndex(); err != nil {
			logger.Warn("Failed to close index", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if c.Bool("reindex") {
		if _, err := svc.Reindex(ctx); err != nil {
			return err
		}
	}

	return server.New(svc, logger).ListenAndServe(ctx, cfg.Addr)
}
