package render

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"
)

const sample = `<html><head><title>Sample</title></head><body>
<h1 class="title">Hello</h1>
<p>Read the <a href="/docs">docs</a> first.</p>
<img src="/a.png" alt="A" width="640" height="480">
</body></html>`

func runRender(t *testing.T, args ...string) (string, error) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "post.html")
	if err := os.WriteFile(path, []byte(sample), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	var out, errOut bytes.Buffer
	app := &cli.App{
		Name:      "blogrender",
		Writer:    &out,
		ErrWriter: &errOut,
		Commands: []*cli.Command{{
			Name:   "render",
			Action: RenderAction,
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "lang"},
				&cli.StringFlag{Name: "class"},
				&cli.StringFlag{Name: "format", Value: "json"},
			},
		}},
	}
	err := app.Run(append(append([]string{"blogrender", "render"}, args...), path))
	return out.String(), err
}

func TestRenderAction(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		contains []string
	}{
		{
			name:     "json",
			args:     []string{"--lang", "en", "--class", "post"},
			contains: []string{`"type": "element"`, `"className": "rendered-html w-full post"`, `"type": "image"`},
		},
		{
			name:     "html",
			args:     []string{"--format", "html"},
			contains: []string{`<h1 class="title">Hello</h1>`, `<a href="/docs">docs</a>`, "<style>"},
		},
		{
			name:     "markdown",
			args:     []string{"--format", "markdown"},
			contains: []string{"# Hello", "[docs](/docs)", "![A](/a.png)"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := runRender(t, tt.args...)
			if err != nil {
				t.Fatalf("RenderAction() error = %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("RenderAction() output missing %q\n%s", want, got)
				}
			}
		})
	}
}

func TestRenderActionJSONIsValid(t *testing.T) {
	got, err := runRender(t)
	if err != nil {
		t.Fatalf("RenderAction() error = %v", err)
	}
	var v map[string]any
	if err := json.Unmarshal([]byte(got), &v); err != nil {
		t.Fatalf("RenderAction() output is not json: %v", err)
	}
	if v["tag"] != "div" {
		t.Errorf("root tag = %v, want div", v["tag"])
	}
}

func TestRenderActionUnknownFormat(t *testing.T) {
	if _, err := runRender(t, "--format", "pdf"); err == nil {
		t.Error("RenderAction() error = nil, want error for unknown format")
	}
}
