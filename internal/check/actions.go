package check

import (
	"fmt"

	"github.com/folio-dev/blogrender/internal/common"
	"github.com/folio-dev/blogrender/pkg/blog"
	"github.com/urfave/cli/v2"
)

// Report lists the posts whose language does not match their locale.
type Report struct {
	Checked    int                     `json:"checked" yaml:"checked"`
	Mismatches []blog.LanguageMismatch `json:"mismatches" yaml:"mismatches"`
}

// CheckAction reindexes and fails when a post is written in another
// language than its locale.
func CheckAction(c *cli.Context) error {
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

	indexed, err := svc.Reindex(c.Context, c.StringSlice("locale")...)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	report := Report{
		Checked:    indexed.Indexed + indexed.Unchanged,
		Mismatches: indexed.Mismatches,
	}
	if report.Mismatches == nil {
		report.Mismatches = []blog.LanguageMismatch{}
	}
	if err := common.WriteOutput(c.App.Writer, c.String("format"), report); err != nil {
		return err
	}
	if len(report.Mismatches) > 0 {
		return cli.Exit(fmt.Sprintf("%d posts do not match their locale", len(report.Mismatches)), 1)
	}
	return nil
}
