package meta

import (
	"github.com/folio-dev/blogrender/internal/common"
	"github.com/folio-dev/blogrender/models"
	"github.com/folio-dev/blogrender/pkg/metadata"
	"github.com/urfave/cli/v2"
)

// Result is the output of the meta command.
type Result struct {
	Source   string          `json:"source" yaml:"source"`
	Metadata models.Metadata `json:"metadata" yaml:"metadata"`
	Excerpt  string          `json:"excerpt" yaml:"excerpt"`
}

// MetaAction prints the head metadata and excerpt of an HTML source.
func MetaAction(c *cli.Context) error {
	logger := common.NewLogger(c)
	source := c.Args().First()

	raw, err := common.ReadSource(c.Context, c, source)
	if err != nil {
		return err
	}

	result := Result{
		Source:   source,
		Metadata: metadata.Extract(string(raw)),
		Excerpt:  metadata.Excerpt(string(raw)),
	}
	logger.Debug("Extracted metadata", "source", source, "tags", len(result.Metadata.Tags))
	return common.WriteOutput(c.App.Writer, c.String("format"), result)
}
