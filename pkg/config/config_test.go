package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/anrid/overlap/pkg/simtime"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func testFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.StringP("receptions", "r", "", "")
	fs.StringP("windows", "w", "", "")
	fs.String("purge-before", "", "")
	fs.String("format", DefaultFormat, "")
	fs.Bool("check", false, "")
	fs.Bool("verbose", false, "")
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadFromFlags(t *testing.T) {
	r := require.New(t)

	cfg, err := Load(testFlags(t, "-r", "rx.csv", "-w", "q.csv", "--purge-before", "2ms", "--verbose"), "")
	r.NoError(err)
	r.Equal("rx.csv", cfg.Receptions)
	r.Equal("q.csv", cfg.Windows)
	r.Equal("table", cfg.Format)
	r.Equal(slog.LevelDebug, cfg.LogLevel())

	p, err := cfg.Params(nil)
	r.NoError(err)
	r.NotNil(p.PurgeBefore)
	r.Equal(2*simtime.Millisecond, *p.PurgeBefore)
}

func TestLoadFromFileAndEnv(t *testing.T) {
	r := require.New(t)

	path := filepath.Join(t.TempDir(), "overlap.yaml")
	r.NoError(os.WriteFile(path, []byte("receptions: from-file.csv\nwindows: q.csv\nformat: csv\ncheck: true\n"), 0o600))
	t.Setenv("OVERLAP_WINDOWS", "from-env.csv")

	cfg, err := Load(testFlags(t, "--format", "table"), path)
	r.NoError(err)
	r.Equal("from-file.csv", cfg.Receptions)
	r.Equal("from-env.csv", cfg.Windows)
	r.Equal("table", cfg.Format)
	r.True(cfg.Check)
	r.Equal(slog.LevelInfo, cfg.LogLevel())

	p, err := cfg.Params(nil)
	r.NoError(err)
	r.Nil(p.PurgeBefore)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"complete", Config{Receptions: "a", Windows: "b", Format: "csv"}, true},
		{"no receptions", Config{Windows: "b", Format: "csv"}, false},
		{"no windows", Config{Receptions: "a", Format: "csv"}, false},
		{"bad purge", Config{Receptions: "a", Windows: "b", Format: "csv", PurgeBefore: "soon"}, false},
		{"bad format", Config{Receptions: "a", Windows: "b", Format: "xml"}, false},
	}

	for _, tc := range tests {
		err := tc.cfg.Validate()
		if tc.ok {
			require.NoError(t, err, tc.name)
		} else {
			require.Error(t, err, tc.name)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(testFlags(t), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
