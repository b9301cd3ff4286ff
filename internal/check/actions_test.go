package check

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"
)

const english = `<html><head><title>Post</title></head><body><p>The transformer walks every
node of the parsed document and builds a tree of components that the page can render for
every reader of the blog.</p></body></html>`

const spanish = `<html><head><title>Post</title></head><body><p>El transformador recorre cada
nodo del documento y construye un árbol de componentes que la página puede mostrar a cada
lector del blog.</p></body></html>`

func writePost(t *testing.T, root, locale, slug, html string) {
	t.Helper()
	dir := filepath.Join(root, locale, "posts")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, slug+".html"), []byte(html), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func runCheck(t *testing.T, content string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	app := &cli.App{
		Name:           "blogrender",
		Writer:         &out,
		ErrWriter:      &errOut,
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "content-dir"},
			&cli.StringFlag{Name: "db"},
			&cli.StringFlag{Name: "cache-dir"},
			&cli.BoolFlag{Name: "quiet"},
		},
		Commands: []*cli.Command{{
			Name:   "check",
			Action: CheckAction,
			Flags: []cli.Flag{
				&cli.StringSliceFlag{Name: "locale"},
				&cli.StringFlag{Name: "format", Value: "yaml"},
				&cli.IntFlag{Name: "workers"},
			},
		}},
	}
	err := app.Run([]string{"blogrender", "--quiet", "--content-dir", content,
		"--db", filepath.Join(t.TempDir(), "index.db"), "--cache-dir", t.TempDir(), "check"})
	return out.String(), err
}

func TestCheckActionClean(t *testing.T) {
	content := t.TempDir()
	writePost(t, content, "en", "hello", english)
	writePost(t, content, "es", "hola", spanish)

	got, err := runCheck(t, content)
	if err != nil {
		t.Fatalf("CheckAction() error = %v", err)
	}
	if !strings.Contains(got, "checked: 2") || !strings.Contains(got, "mismatches: []") {
		t.Errorf("CheckAction() output = %q, want 2 checked and no mismatches", got)
	}
}

func TestCheckActionMismatch(t *testing.T) {
	content := t.TempDir()
	writePost(t, content, "en", "hello", english)
	writePost(t, content, "pt-BR", "ola", english)

	got, err := runCheck(t, content)
	if err == nil {
		t.Fatal("CheckAction() error = nil, want mismatch error")
	}
	exit, ok := err.(cli.ExitCoder)
	if !ok || exit.ExitCode() != 1 {
		t.Errorf("CheckAction() error = %v, want exit code 1", err)
	}
	if !strings.Contains(got, "slug: ola") || !strings.Contains(got, "detected: en") {
		t.Errorf("CheckAction() output = %q, want the pt-BR mismatch", got)
	}
}
