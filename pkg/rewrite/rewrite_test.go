package rewrite

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/recode/pkg/charset"
	"github.com/walteh/recode/pkg/rules"
)

func testContext(t *testing.T) context.Context {
	return zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
}

func helloRules() *rules.Map {
	return rules.MustNew(
		rules.Rule{Old: "Hello world", New: "hello everyone"},
		rules.Rule{Old: "Hello", New: "hello"},
	)
}

func lookup(t *testing.T, label string) charset.Encoding {
	t.Helper()
	enc, err := charset.Lookup(label)
	require.NoError(t, err)
	return enc
}

func TestRewriteFile(t *testing.T) {
	tests := []struct {
		name             string
		content          string
		enc              func(t *testing.T) charset.Encoding
		opts             Options
		rules            *rules.Map
		wantContent      string
		wantChanged      bool
		wantReplacements int
		wantErr          bool
	}{
		{
			name:             "hello_end_to_end",
			content:          "Hello world, Hello!",
			rules:            helloRules(),
			wantContent:      "hello everyone, hello!",
			wantChanged:      true,
			wantReplacements: 2,
		},
		{
			name:        "no_match_is_untouched",
			content:     "nothing to see",
			rules:       helloRules(),
			wantContent: "nothing to see",
		},
		{
			name:             "order_sensitive",
			content:          "A",
			rules:            rules.MustNew(rules.Rule{Old: "A", New: "B"}, rules.Rule{Old: "B", New: "C"}),
			wantContent:      "C",
			wantChanged:      true,
			wantReplacements: 2,
		},
		{
			name:             "boundary_aware_finds_straddling_match",
			content:          "xxHello",
			opts:             Options{BufferSize: 4},
			rules:            helloRules(),
			wantContent:      "xxhello",
			wantChanged:      true,
			wantReplacements: 1,
		},
		{
			name:        "chunk_local_misses_straddling_match",
			content:     "xxHello",
			opts:        Options{BufferSize: 4, ChunkMode: ChunkModeLocal},
			rules:       helloRules(),
			wantContent: "xxHello",
		},
		{
			name:             "chunk_local_matches_inside_chunk",
			content:          "Helloxxx",
			opts:             Options{BufferSize: 5, ChunkMode: ChunkModeLocal},
			rules:            helloRules(),
			wantContent:      "helloxxx",
			wantChanged:      true,
			wantReplacements: 1,
		},
		{
			name:             "bom_preserved",
			content:          "\xEF\xBB\xBFHello",
			enc:              func(t *testing.T) charset.Encoding { return charset.UTF8BOM },
			rules:            helloRules(),
			wantContent:      "\xEF\xBB\xBFhello",
			wantChanged:      true,
			wantReplacements: 1,
		},
		{
			name:             "latin1_stays_latin1",
			content:          "caf\xe9 Cat",
			enc:              func(t *testing.T) charset.Encoding { return lookup(t, "iso-8859-1") },
			rules:            rules.MustNew(rules.Rule{Old: "Cat", New: "Dog"}),
			wantContent:      "caf\xe9 Dog",
			wantChanged:      true,
			wantReplacements: 1,
		},
		{
			name:        "invalid_utf8_is_left_alone",
			content:     "Hello \xff\xfe",
			rules:       helloRules(),
			wantContent: "Hello \xff\xfe",
			wantErr:     true,
		},
		{
			name:        "lossy_decode_is_left_alone",
			content:     "Hello \x81",
			enc:         func(t *testing.T) charset.Encoding { return lookup(t, "shift_jis") },
			rules:       helloRules(),
			wantContent: "Hello \x81",
			wantErr:     true,
		},
		{
			name:        "value_equal_to_key_is_not_a_change",
			content:     "same",
			rules:       rules.MustNew(rules.Rule{Old: "same", New: "same"}),
			wantContent: "same",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, "/f.txt", []byte(tt.content), 0o644))

			enc := charset.UTF8
			if tt.enc != nil {
				enc = tt.enc(t)
			}

			res := New(fs, tt.opts).RewriteFile(testContext(t), "/f.txt", enc, tt.rules)
			assert.Equal(t, "/f.txt", res.Path)
			assert.Equal(t, tt.wantChanged, res.Changed)
			assert.Equal(t, tt.wantReplacements, res.Replacements)
			if tt.wantErr {
				require.Error(t, res.Err)
				assert.True(t, res.Failed())
			} else {
				require.NoError(t, res.Err)
			}

			got, err := afero.ReadFile(fs, "/f.txt")
			require.NoError(t, err)
			assert.Equal(t, tt.wantContent, string(got))

			leftovers, err := afero.Glob(fs, "/.f.txt.recode-*")
			require.NoError(t, err)
			assert.Empty(t, leftovers, "temp files must not be left behind")
		})
	}
}

func TestRewriteFileLargerThanBuffer(t *testing.T) {
	fs := afero.NewMemMapFs()
	content := strings.Repeat("Hello world; ", 200)
	require.NoError(t, afero.WriteFile(fs, "/big.txt", []byte(content), 0o644))

	res := New(fs, Options{BufferSize: 7}).RewriteFile(testContext(t), "/big.txt", charset.UTF8, helloRules())
	require.NoError(t, res.Err)
	assert.Equal(t, 200, res.Replacements)

	got, err := afero.ReadFile(fs, "/big.txt")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("hello everyone; ", 200), string(got))
}

func TestRewriteFileDryRun(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/f.txt", []byte("Hello world"), 0o644))

	res := New(fs, Options{DryRun: true}).RewriteFile(testContext(t), "/f.txt", charset.UTF8, helloRules())
	require.NoError(t, res.Err)
	assert.True(t, res.Changed)
	assert.Equal(t, "Hello world", res.Before)
	assert.Equal(t, "hello everyone", res.After)

	got, err := afero.ReadFile(fs, "/f.txt")
	require.NoError(t, err)
	assert.Equal(t, "Hello world", string(got))
}

func TestRewriteFileOnDisk(t *testing.T) {
	dir := t.TempDir()
	changed := filepath.Join(dir, "changed.txt")
	unchanged := filepath.Join(dir, "unchanged.txt")
	require.NoError(t, os.WriteFile(changed, []byte("Hello"), 0o600))
	require.NoError(t, os.WriteFile(unchanged, []byte("nothing"), 0o644))

	old := time.Now().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, os.Chtimes(unchanged, old, old))

	rw := New(afero.NewOsFs(), Options{})
	ctx := testContext(t)

	res := rw.RewriteFile(ctx, changed, charset.UTF8, helloRules())
	require.NoError(t, res.Err)
	assert.True(t, res.Changed)

	res = rw.RewriteFile(ctx, unchanged, charset.UTF8, helloRules())
	require.NoError(t, res.Err)
	assert.False(t, res.Changed)

	info, err := os.Stat(unchanged)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(old), "unchanged file must keep its mtime")

	info, err = os.Stat(changed)
	require.NoError(t, err)
	if runtime.GOOS != "windows" {
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestRewriteFileMissing(t *testing.T) {
	res := New(afero.NewMemMapFs(), Options{}).RewriteFile(testContext(t), "/missing", charset.UTF8, helloRules())
	require.Error(t, res.Err)
	assert.False(t, res.Changed)
}

func TestParseChunkMode(t *testing.T) {
	m, err := ParseChunkMode("")
	require.NoError(t, err)
	assert.Equal(t, ChunkModeBoundaryAware, m)

	m, err = ParseChunkMode("LOCAL")
	require.NoError(t, err)
	assert.Equal(t, ChunkModeLocal, m)

	_, err = ParseChunkMode("overlap")
	require.Error(t, err)
}
