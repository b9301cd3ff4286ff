package index

import (
	"fmt"

	"github.com/folio-dev/blogrender/internal/common"
	"github.com/urfave/cli/v2"
)

// IndexAction loads the content directory into the sqlite index and prints
// the report.
func IndexAction(c *cli.Context) error {
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

	report, err := svc.Reindex(c.Context, c.StringSlice("locale")...)
	if err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}
	if err := common.WriteOutput(c.App.Writer, c.String("format"), report); err != nil {
		return err
	}
	if len(report.Failed) > 0 {
		return cli.Exit(fmt.Sprintf("%d posts failed to index", len(report.Failed)), 1)
	}
	return nil
}
