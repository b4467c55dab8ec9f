package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/recode/pkg/charset"
	"github.com/walteh/recode/pkg/collect"
	"github.com/walteh/recode/pkg/ignore"
	"github.com/walteh/recode/pkg/rewrite"
	"github.com/walteh/recode/pkg/rules"
)

func testContext(t *testing.T) context.Context {
	return zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
}

func newEngine(t *testing.T, fs afero.Fs) *Engine {
	t.Helper()
	m, err := ignore.New(ignore.DefaultPatterns...)
	require.NoError(t, err)
	c := collect.New(fs, charset.NewClassifier(fs, &charset.ProbeDetector{Fs: fs}), collect.Options{Workers: 4, Ignore: m})
	return New(c, rewrite.New(fs, rewrite.Options{}), Options{Workers: 3})
}

func seed(t *testing.T, fs afero.Fs, files map[string]string) {
	t.Helper()
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}
}

func read(t *testing.T, fs afero.Fs, name string) string {
	t.Helper()
	b, err := afero.ReadFile(fs, name)
	require.NoError(t, err)
	return string(b)
}

func TestRun(t *testing.T) {
	fs := afero.NewMemMapFs()
	seed(t, fs, map[string]string{
		"/root/hello.txt":      "Hello world, Hello!",
		"/root/sub/cat.md":     "a Cat sat",
		"/root/sub/plain.txt":  "nothing",
		"/root/blob.bin":       "\x00\xFF\xFE\x00Hello",
		"/root/.git/HEAD":      "Hello",
		"/root/late_error.txt": strings.Repeat("x", 200) + "Hello \xff",
	})

	m := rules.MustNew(
		rules.Rule{Old: "Hello world", New: "hello everyone"},
		rules.Rule{Old: "Hello", New: "hello"},
		rules.Rule{Old: "Cat", New: "Dog"},
	)

	summary, err := newEngine(t, fs).Run(testContext(t), "/root", m)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Collected)
	assert.Equal(t, 4, summary.Processed)
	assert.Equal(t, 2, summary.Changed)
	assert.Equal(t, 1, summary.Unchanged)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 3, summary.Succeeded())
	assert.Equal(t, 3, summary.Replacements)
	assert.Len(t, summary.Results, 4)
	assert.Equal(t, "4 processed, 2 changed, 1 unchanged, 1 failed, 3 replacements", summary.String())

	assert.Equal(t, "hello everyone, hello!", read(t, fs, "/root/hello.txt"))
	assert.Equal(t, "a Dog sat", read(t, fs, "/root/sub/cat.md"))
	assert.Equal(t, "nothing", read(t, fs, "/root/sub/plain.txt"))
	assert.Equal(t, "\x00\xFF\xFE\x00Hello", read(t, fs, "/root/blob.bin"))
	assert.Equal(t, "Hello", read(t, fs, "/root/.git/HEAD"))
	assert.Equal(t, strings.Repeat("x", 200)+"Hello \xff", read(t, fs, "/root/late_error.txt"))
}

func TestRunIsIdempotent(t *testing.T) {
	fs := afero.NewMemMapFs()
	seed(t, fs, map[string]string{
		"/root/a.txt": "Hello world",
		"/root/b.txt": "Cat and Hello",
	})
	m := rules.DefaultVocabulary()
	e := newEngine(t, fs)

	first, err := e.Run(testContext(t), "/root", m)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Changed)

	second, err := e.Run(testContext(t), "/root", m)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Changed)
	assert.Equal(t, 2, second.Unchanged)
}

func TestRunOrderSensitive(t *testing.T) {
	fs := afero.NewMemMapFs()
	seed(t, fs, map[string]string{"/root/a.txt": "A"})

	m := rules.MustNew(rules.Rule{Old: "A", New: "B"}, rules.Rule{Old: "B", New: "C"})
	_, err := newEngine(t, fs).Run(testContext(t), "/root", m)
	require.NoError(t, err)
	assert.Equal(t, "C", read(t, fs, "/root/a.txt"))
}

func TestRunCancelled(t *testing.T) {
	fs := afero.NewMemMapFs()
	seed(t, fs, map[string]string{"/root/a.txt": "Hello"})

	ctx, cancel := context.WithCancel(testContext(t))
	cancel()

	_, err := newEngine(t, fs).Run(ctx, "/root", rules.DefaultVocabulary())
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "Hello", read(t, fs, "/root/a.txt"))
}

func TestRunMissingRoot(t *testing.T) {
	_, err := newEngine(t, afero.NewMemMapFs()).Run(testContext(t), "/missing", rules.DefaultVocabulary())
	require.Error(t, err)
}

func TestRunSkipsByteOrderMarkGarbage(t *testing.T) {
	fs := afero.NewMemMapFs()
	garbage := map[string]string{
		"/r/odd.bin":   "\xff\xfe\x00\xd8\x41\x00\x42\xff\x01",
		"/r/mixed.bin": "\xff\xfe\x12\x9f\x34\xc2\x41\x00",
	}
	seed(t, fs, garbage)
	seed(t, fs, map[string]string{"/r/a.txt": "A b"})

	detector, err := charset.NewDetector(fs, charset.StrategyAuto)
	require.NoError(t, err)
	c := collect.New(fs, charset.NewClassifier(fs, detector), collect.Options{Workers: 2})
	e := New(c, rewrite.New(fs, rewrite.Options{}), Options{Workers: 2})

	summary, err := e.Run(testContext(t), "/r", rules.MustNew(rules.Rule{Old: "A", New: "Z"}))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Collected)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 1, summary.Changed)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, "Z b", read(t, fs, "/r/a.txt"))
	for name, content := range garbage {
		assert.Equal(t, content, read(t, fs, name), name)
	}
}
