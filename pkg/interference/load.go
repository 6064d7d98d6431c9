package interference

import (
	"context"
	"encoding/csv"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/anrid/overlap/pkg/simtime"
	"github.com/pkg/errors"
)

// Window is one query: which transmissions overlap [Start, End] at Receiver.
type Window struct {
	Receiver string
	Start    simtime.Time
	End      simtime.Time
}

// Reception pairs a transmission with the receiver it arrives at.
type Reception struct {
	Receiver     string
	Transmission *Transmission
}

// ReadReceptions reads "receiver,transmission,transmitter,start,end" records
// from a local CSV file or URL. The first record is a header.
func ReadReceptions(ctx context.Context, fileOrURL string) ([]Reception, error) {
	var out []Reception

	err := readCSVFileOrURL(ctx, fileOrURL, 5, func(recordNumber int, record []string) error {
		if recordNumber == 1 {
			// Skip headers.
			return nil
		}

		start, err := simtime.Parse(record[3])
		if err != nil {
			return errors.Wrapf(err, "record %d: start", recordNumber)
		}
		end, err := simtime.Parse(record[4])
		if err != nil {
			return errors.Wrapf(err, "record %d: end", recordNumber)
		}

		out = append(out, Reception{
			Receiver: strings.TrimSpace(record[0]),
			Transmission: &Transmission{
				ID:          strings.TrimSpace(record[1]),
				Transmitter: strings.TrimSpace(record[2]),
				Start:       start,
				End:         end,
			},
		})
		return nil
	})

	return out, err
}

// ReadWindows reads "receiver,start,end" query records from a local CSV file
// or URL. The first record is a header.
func ReadWindows(ctx context.Context, fileOrURL string) ([]Window, error) {
	var out []Window

	err := readCSVFileOrURL(ctx, fileOrURL, 3, func(recordNumber int, record []string) error {
		if recordNumber == 1 {
			return nil
		}

		start, err := simtime.Parse(record[1])
		if err != nil {
			return errors.Wrapf(err, "record %d: start", recordNumber)
		}
		end, err := simtime.Parse(record[2])
		if err != nil {
			return errors.Wrapf(err, "record %d: end", recordNumber)
		}
		if start > end {
			return errors.Errorf("record %d: window ends before it starts [%s - %s]", recordNumber, start, end)
		}

		out = append(out, Window{
			Receiver: strings.TrimSpace(record[0]),
			Start:    start,
			End:      end,
		})
		return nil
	})

	return out, err
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func readCSVFileOrURL(ctx context.Context, fileOrURL string, fields int, forEachRecord func(recordNumber int, record []string) error) error {
	file := fileOrURL

	if isURL(fileOrURL) {
		// Download its contents to a local temp location.
		tmp, err := downloadURLToTempFile(ctx, fileOrURL)
		if err != nil {
			return err
		}
		defer os.Remove(tmp)
		file = tmp
	}

	f, err := os.Open(file)
	if err != nil {
		return errors.Wrapf(err, "failed to open CSV file: %s", file)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = fields
	cr.Comment = '#'
	var recordNumber int

	for {
		rec, err := cr.Read()
		if err != nil {
			if err != io.EOF {
				return errors.Wrapf(err, "failed to read CSV record from file: %s", fileOrURL)
			}
			// We're done.
			break
		}

		recordNumber++
		err = forEachRecord(recordNumber, rec)
		if err != nil {
			return errors.Wrapf(err, "failed to process CSV record from %s", fileOrURL)
		}
	}

	return nil
}

func downloadURLToTempFile(ctx context.Context, url string) (filename string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.Wrapf(err, "failed to build request for URL: %s", url)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, "failed to download data from URL: %s", url)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return "", errors.Errorf("failed to download data from URL: %s - got status code: %d", url, res.StatusCode)
	}

	f, err := os.CreateTemp(os.TempDir(), "overlap-csv")
	if err != nil {
		return "", errors.Wrapf(err, "failed to create a temp file to store data in")
	}
	defer f.Close()

	_, err = io.Copy(f, res.Body)
	if err != nil {
		os.Remove(f.Name())
		return "", errors.Wrapf(err, "failed to read data from HTTP response from URL: %s", url)
	}

	return f.Name(), nil
}
