package interference

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/anrid/overlap/pkg/simtime"
	"github.com/stretchr/testify/require"
)

const testReceptions = `receiver,transmission,transmitter,start,end
host1,tx1,radioA,1ms,5ms
host1,tx2,radioB,2ms,3ms
# retransmission
host1,tx3,radioA,8ms,10ms
host2,tx1,radioA,1.2ms,5.2ms
`

const testWindows = `receiver,start,end
host1,4ms,9ms
host2,6ms,7ms
host3,0s,1s
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestReadReceptions(t *testing.T) {
	r := require.New(t)

	rxs, err := ReadReceptions(context.Background(), writeFile(t, "rx.csv", testReceptions))
	r.NoError(err)
	r.Len(rxs, 4)
	r.Equal("host1", rxs[0].Receiver)
	r.Equal("tx1", rxs[0].Transmission.ID)
	r.Equal("radioA", rxs[0].Transmission.Transmitter)
	r.Equal(simtime.Millisecond, rxs[0].Transmission.Start)
	r.Equal(5*simtime.Millisecond, rxs[0].Transmission.End)
}

func TestReadErrors(t *testing.T) {
	ctx := context.Background()

	_, err := ReadReceptions(ctx, filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)

	_, err = ReadReceptions(ctx, writeFile(t, "bad.csv", "h,h,h,h,h\nrx,tx,radio,soon,later\n"))
	require.ErrorContains(t, err, "record 2")

	_, err = ReadReceptions(ctx, writeFile(t, "short.csv", "h,h,h,h,h\nrx,tx,1s\n"))
	require.Error(t, err)

	_, err = ReadWindows(ctx, writeFile(t, "backwards.csv", "h,h,h\nrx,2s,1s\n"))
	require.ErrorContains(t, err, "window ends before it starts")
}

func TestRun(t *testing.T) {
	r := require.New(t)

	report, err := Run(context.Background(), Params{
		ReceptionsFileOrURL: writeFile(t, "rx.csv", testReceptions),
		WindowsFileOrURL:    writeFile(t, "q.csv", testWindows),
		Check:               true,
		Logger:              quietLogger(),
	})
	r.NoError(err)
	r.Equal(4, report.NumReceptions)
	r.Equal(2, report.NumReceivers)
	r.Equal(0, report.NumPurged)
	r.Len(report.Matches, 3)
	r.Equal([]string{"tx1", "tx3"}, ids(report.Matches[0].Transmissions))
	r.Empty(report.Matches[1].Transmissions)
	r.Empty(report.Matches[2].Transmissions)

	var buf bytes.Buffer
	r.NoError(report.Render(&buf, "csv"))
	r.Contains(buf.String(), "host1,4ms - 9ms,tx1,radioA,1ms - 5ms")
	r.Contains(buf.String(), "host1,4ms - 9ms,tx3,radioA,8ms - 10ms")

	buf.Reset()
	r.NoError(report.Render(&buf, "table"))
	r.Contains(buf.String(), "tx3")

	r.Error(report.Render(&buf, "xml"))
}

func TestRunPurge(t *testing.T) {
	r := require.New(t)

	purge := simtime.MustParse("6ms")
	report, err := Run(context.Background(), Params{
		ReceptionsFileOrURL: writeFile(t, "rx.csv", testReceptions),
		WindowsFileOrURL:    writeFile(t, "q.csv", testWindows),
		PurgeBefore:         &purge,
		Logger:              quietLogger(),
	})
	r.NoError(err)
	r.Equal(3, report.NumPurged)
	r.Equal(1, report.NumReceivers)
	r.Equal(1, report.NumReceptions)
	r.Equal([]string{"tx3"}, ids(report.Matches[0].Transmissions))
}

func TestRunFromURL(t *testing.T) {
	r := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		switch req.URL.Path {
		case "/rx.csv":
			io.WriteString(w, testReceptions)
		case "/q.csv":
			io.WriteString(w, testWindows)
		default:
			http.NotFound(w, req)
		}
	}))
	defer srv.Close()

	report, err := Run(context.Background(), Params{
		ReceptionsFileOrURL: srv.URL + "/rx.csv",
		WindowsFileOrURL:    srv.URL + "/q.csv",
		Logger:              quietLogger(),
	})
	r.NoError(err)
	r.Equal(4, report.NumReceptions)

	_, err = Run(context.Background(), Params{
		ReceptionsFileOrURL: srv.URL + "/missing.csv",
		WindowsFileOrURL:    srv.URL + "/q.csv",
		Logger:              quietLogger(),
	})
	r.ErrorContains(err, "status code: 404")
}
