package operation

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/recode/pkg/charset"
	"github.com/walteh/recode/pkg/ignore"
	"github.com/walteh/recode/pkg/log"
	"github.com/walteh/recode/pkg/rename"
	"github.com/walteh/recode/pkg/rules"
)

func testContext(t *testing.T) (context.Context, *bytes.Buffer) {
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = false })

	zl := zerolog.New(zerolog.NewTestWriter(t))
	console := &bytes.Buffer{}
	ctx := zl.WithContext(context.Background())
	return log.NewContext(ctx, log.New(console, zl)), console
}

func osOptions(t *testing.T, m *rules.Map) Options {
	t.Helper()
	ig, err := ignore.New(ignore.DefaultPatterns...)
	require.NoError(t, err)
	fs := afero.NewOsFs()
	return Options{Fs: fs, Rules: m, Ignore: ig, Detector: &charset.ProbeDetector{Fs: fs}, Workers: 4}
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestReplacer(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"hello.txt":  "Hello world, Hello!",
		"plain.txt":  "nothing here",
		"blob.bin":   "\x00\xff\xfeHello",
		".git/HEAD":  "Hello",
		"sub/cat.md": "one Cat",
	})

	ctx, console := testContext(t)
	summary, err := NewReplacer(osOptions(t, rules.DefaultVocabulary())).Run(ctx, root)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Processed)
	assert.Equal(t, 2, summary.Changed)
	assert.Equal(t, 0, summary.Failed)

	assert.Equal(t, "hello everyone, hello!", readFile(t, filepath.Join(root, "hello.txt")))
	assert.Equal(t, "one Dog", readFile(t, filepath.Join(root, "sub", "cat.md")))
	assert.Equal(t, "\x00\xff\xfeHello", readFile(t, filepath.Join(root, "blob.bin")))

	assert.Contains(t, console.String(), "replace: 3 processed, 3 succeeded, 0 failed")
	assert.Contains(t, console.String(), "2 replacements")
}

func TestReplacerDryRun(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"hello.txt": "Hello world"})

	opts := osOptions(t, rules.DefaultVocabulary())
	opts.DryRun = true

	ctx, _ := testContext(t)
	summary, err := NewReplacer(opts).Run(ctx, root)
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, "hello everyone", summary.Results[0].After)
	assert.Equal(t, "Hello world", readFile(t, filepath.Join(root, "hello.txt")))
}

func TestReplacerMissingRoot(t *testing.T) {
	ctx, _ := testContext(t)
	_, err := NewReplacer(osOptions(t, rules.DefaultVocabulary())).Run(ctx, filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestRenamer(t *testing.T) {
	tmp := t.TempDir()
	root := filepath.Join(tmp, "proj")
	writeTree(t, root, map[string]string{
		"foo/foo.txt": "include foo.txt",
		"foo/bar.txt": "plain",
		"main.c":      `#include "proj/foo/foo.txt"`,
		".git/foo":    "foo",
	})
	record := filepath.Join(tmp, "records", "rename.yaml")

	fixed := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
	ctx, console := testContext(t)
	report, err := NewRenamer(RenameOptions{
		Options:    osOptions(t, rules.MustNew(rules.Rule{Old: "foo", New: "baz"})),
		RecordFile: record,
		Now:        func() time.Time { return fixed },
	}).Run(ctx, root)
	require.NoError(t, err)

	assert.Equal(t, root, report.Root)
	assert.Equal(t, rename.Stats{Succeeded: 1}, report.Files)
	assert.Equal(t, rename.Stats{Succeeded: 1}, report.Dirs)
	require.NotNil(t, report.FileContents)
	require.NotNil(t, report.DirContents)

	assert.Equal(t, "include baz.txt", readFile(t, filepath.Join(root, "baz", "baz.txt")))
	assert.Equal(t, "plain", readFile(t, filepath.Join(root, "baz", "bar.txt")))
	assert.Equal(t, `#include "proj/baz/baz.txt"`, readFile(t, filepath.Join(root, "main.c")))
	assert.NoDirExists(t, filepath.Join(root, "foo"))
	assert.Equal(t, "foo", readFile(t, filepath.Join(root, ".git", "foo")))

	rec, err := rename.ReadRecord(afero.NewOsFs(), record)
	require.NoError(t, err)
	assert.Equal(t, report.RunID, rec.RunID)
	assert.Equal(t, root, rec.Root)
	assert.True(t, fixed.Equal(rec.CreatedAt))
	assert.Equal(t, rename.Mapping{{Old: filepath.Join(root, "foo", "foo.txt"), New: filepath.Join(root, "foo", "baz.txt")}}, rec.Files)
	assert.Equal(t, rename.Mapping{{Old: filepath.Join(root, "foo"), New: filepath.Join(root, "baz")}}, rec.Dirs)

	assert.Contains(t, console.String(), "foo.txt -> baz.txt")
	assert.Contains(t, console.String(), "rename directories: 1 processed, 1 succeeded, 0 failed")
}

func TestRenamerRenameRoot(t *testing.T) {
	tmp := t.TempDir()
	root := filepath.Join(tmp, "foo_proj")
	writeTree(t, root, map[string]string{"a.txt": "in foo_proj"})

	m := rules.MustNew(rules.Rule{Old: "foo", New: "baz"})

	ctx, _ := testContext(t)
	report, err := NewRenamer(RenameOptions{Options: osOptions(t, m), RenameRoot: true}).Run(ctx, root)
	require.NoError(t, err)

	want := filepath.Join(tmp, "baz_proj")
	assert.Equal(t, want, report.Root)
	assert.NoDirExists(t, root)
	assert.Equal(t, "in baz_proj", readFile(t, filepath.Join(want, "a.txt")))
}

func TestRenamerKeepsRootByDefault(t *testing.T) {
	tmp := t.TempDir()
	root := filepath.Join(tmp, "foo_proj")
	writeTree(t, root, map[string]string{"a.txt": "x"})

	ctx, _ := testContext(t)
	report, err := NewRenamer(RenameOptions{Options: osOptions(t, rules.MustNew(rules.Rule{Old: "foo", New: "baz"}))}).Run(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, root, report.Root)
	assert.DirExists(t, root)
}

func TestRenamerDryRun(t *testing.T) {
	tmp := t.TempDir()
	root := filepath.Join(tmp, "proj")
	writeTree(t, root, map[string]string{"foo/foo.txt": "foo.txt"})
	record := filepath.Join(tmp, "rec.json")

	opts := osOptions(t, rules.MustNew(rules.Rule{Old: "foo", New: "baz"}))
	opts.DryRun = true

	ctx, _ := testContext(t)
	report, err := NewRenamer(RenameOptions{Options: opts, RecordFile: record}).Run(ctx, root)
	require.NoError(t, err)

	assert.Len(t, report.Plan.Files, 1)
	assert.Len(t, report.Plan.Dirs, 1)
	assert.Equal(t, "foo.txt", readFile(t, filepath.Join(root, "foo", "foo.txt")))
	assert.NoFileExists(t, record)
}

func TestDirectoryRules(t *testing.T) {
	root := filepath.Join(string(filepath.Separator)+"work", "proj_foo")
	dirs := rename.Mapping{
		{Old: filepath.Join(root, "foo", "foo"), New: filepath.Join(root, "foo", "baz")},
		{Old: filepath.Join(root, "foo"), New: filepath.Join(root, "baz")},
	}
	base := rules.MustNew(rules.Rule{Old: "foo", New: "baz"})

	got, err := directoryRules(root, dirs, base)
	require.NoError(t, err)
	assert.Equal(t, []rules.Rule{
		{Old: "proj_foo/foo/foo", New: "proj_baz/baz/baz"},
		{Old: "proj_foo/foo", New: "proj_baz/baz"},
		{Old: "foo", New: "baz"},
	}, got.Rules())
}
