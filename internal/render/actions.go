package render

import (
	"fmt"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/folio-dev/blogrender/internal/common"
	"github.com/folio-dev/blogrender/models"
	renderpkg "github.com/folio-dev/blogrender/pkg/render"
	"github.com/urfave/cli/v2"
)

// RenderAction transforms an HTML file, URL or stdin into a UI tree and
// prints it as json, html or markdown.
func RenderAction(c *cli.Context) error {
	logger := common.NewLogger(c)
	source := c.Args().First()

	raw, err := common.ReadSource(c.Context, c, source)
	if err != nil {
		return err
	}

	t := renderpkg.New(logger)
	out := c.App.Writer

	switch format := c.String("format"); format {
	case "json", "":
		node := t.Transform(models.RenderRequest{
			HTML:      string(raw),
			Lang:      c.String("lang"),
			ClassName: c.String("class"),
		})
		if node == nil {
			logger.Warn("Document produced no content", "source", source)
		}
		return common.WriteOutput(out, "json", node)
	case "html":
		node := t.Transform(models.RenderRequest{
			HTML:      string(raw),
			Lang:      c.String("lang"),
			ClassName: c.String("class"),
		})
		html, err := renderpkg.HTML(node)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, html)
		return err
	case "markdown":
		// body only: the container stylesheet has no markdown form
		html, err := renderpkg.HTML(models.Fragment(t.TransformBody(string(raw))))
		if err != nil {
			return err
		}
		md, err := htmltomarkdown.ConvertString(html)
		if err != nil {
			return fmt.Errorf("failed to convert to markdown: %w", err)
		}
		_, err = fmt.Fprintln(out, md)
		return err
	default:
		return fmt.Errorf("unknown format %q (want json, html or markdown)", format)
	}
}
