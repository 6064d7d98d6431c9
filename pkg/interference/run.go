package interference

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/anrid/overlap/pkg/simtime"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
)

// Params configures Run.
type Params struct {
	ReceptionsFileOrURL string
	WindowsFileOrURL    string
	// PurgeBefore, when set, drops receptions that ended before it prior to
	// answering any window.
	PurgeBefore *simtime.Time
	// Check verifies every reception tree after loading and purging.
	Check  bool
	Logger *slog.Logger
}

// Match is the answer to one Window.
type Match struct {
	Window        Window
	Transmissions []*Transmission
}

// Report is the outcome of Run.
type Report struct {
	NumReceptions int
	NumReceivers  int
	NumPurged     int
	Matches       []Match
}

// Run loads receptions into a Cache and answers every query window.
func Run(ctx context.Context, p Params) (*Report, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("reading receptions", "source", p.ReceptionsFileOrURL)
	receptions, err := ReadReceptions(ctx, p.ReceptionsFileOrURL)
	if err != nil {
		return nil, err
	}

	cache := NewCache(WithLogger(logger))
	for _, rx := range receptions {
		if err := cache.AddReception(rx.Receiver, rx.Transmission); err != nil {
			return nil, err
		}
	}

	report := &Report{}
	if p.PurgeBefore != nil {
		report.NumPurged = cache.RemoveEndedBefore(*p.PurgeBefore)
	}
	report.NumReceptions = cache.NumReceptions()
	report.NumReceivers = len(cache.Receivers())
	logger.Info("loaded receptions",
		"receptions", report.NumReceptions, "receivers", report.NumReceivers, "purged", report.NumPurged)

	if p.Check {
		if err := cache.Check(); err != nil {
			return nil, errors.Wrap(err, "reception cache is inconsistent")
		}
		logger.Debug("reception trees verified")
	}

	logger.Info("reading query windows", "source", p.WindowsFileOrURL)
	windows, err := ReadWindows(ctx, p.WindowsFileOrURL)
	if err != nil {
		return nil, err
	}

	for _, w := range windows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		report.Matches = append(report.Matches, Match{
			Window:        w,
			Transmissions: cache.InterferingTransmissions(w.Receiver, w.Start, w.End),
		})
	}

	return report, nil
}

// Render writes the report as a table ("table") or as CSV ("csv").
func (r *Report) Render(w io.Writer, format string) error {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.AppendHeader(table.Row{"Receiver", "Window", "Transmission", "Transmitter", "Reception"})

	for _, m := range r.Matches {
		window := fmt.Sprintf("%s - %s", m.Window.Start, m.Window.End)
		if len(m.Transmissions) == 0 {
			tbl.AppendRow(table.Row{m.Window.Receiver, window, "-", "-", "-"})
			continue
		}
		for _, tx := range m.Transmissions {
			tbl.AppendRow(table.Row{
				m.Window.Receiver, window, tx.ID, tx.Transmitter,
				fmt.Sprintf("%s - %s", tx.Start, tx.End),
			})
		}
	}

	var out string
	switch strings.ToLower(format) {
	case "", "table":
		tbl.AppendFooter(table.Row{"", "", "", "Windows", len(r.Matches)})
		out = tbl.Render()
	case "csv":
		out = tbl.RenderCSV()
	default:
		return errors.Errorf("unknown output format: %s", format)
	}

	_, err := fmt.Fprintln(w, out)
	return err
}
