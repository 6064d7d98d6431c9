package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunExitCodes(t *testing.T) {
	dir := t.TempDir()
	rx := filepath.Join(dir, "rx.csv")
	q := filepath.Join(dir, "q.csv")
	require.NoError(t, os.WriteFile(rx, []byte("receiver,transmission,transmitter,start,end\nhost1,tx1,radioA,1ms,5ms\n"), 0o600))
	require.NoError(t, os.WriteFile(q, []byte("receiver,start,end\nhost1,2ms,3ms\n"), 0o600))

	require.Equal(t, 0, run([]string{"-r", rx, "-w", q, "--format", "csv", "--check"}))
	require.Equal(t, 2, run([]string{"-r", rx}))
	require.Equal(t, 2, run([]string{"--no-such-flag"}))
	require.Equal(t, 1, run([]string{"-r", filepath.Join(dir, "missing.csv"), "-w", q}))
}
