package osmparser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dsnet/compress/bzip2"
)

const cacheDateLayout = "20060102"

var ErrInvalidCacheHeader = errors.New("dataset cache header must be '# Queried: YYYYMMDD'")

// WriteRows writes rows as a bzip2 compressed tsv. The first line records the
// extraction date, the second the row count.
func WriteRows(filename string, rows []Row, queried time.Time) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	bz, err := bzip2.NewWriter(f, &bzip2.WriterConfig{})
	if err != nil {
		return err
	}
	defer bz.Close()

	w := bufio.NewWriter(bz)

	fmt.Fprintf(w, "# Queried: %s\n", queried.Format(cacheDateLayout))
	fmt.Fprintf(w, "# Rows: %d\n", len(rows))

	for _, r := range rows {
		latF := strconv.FormatFloat(r.Lat, 'f', -1, 64)
		lonF := strconv.FormatFloat(r.Lon, 'f', -1, 64)
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s", r.ID, r.Kind, latF, lonF, r.Names)

		keys := make([]string, 0, len(r.Tags))
		for k := range r.Tags {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "\t%s=%s", k, r.Tags[k])
		}
		fmt.Fprintf(w, "\n")
	}

	return w.Flush()
}

// ReadRows reads a cache written by WriteRows. It returns the extraction date
// from the header together with the rows.
func ReadRows(filename string) ([]Row, time.Time, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, time.Time{}, err
	}
	defer f.Close()

	bz, err := bzip2.NewReader(f, nil)
	if err != nil {
		return nil, time.Time{}, err
	}
	defer bz.Close()

	return readRows(bufio.NewReader(bz))
}

func readRows(br *bufio.Reader) ([]Row, time.Time, error) {
	line, err := readLine(br)
	if err != nil {
		return nil, time.Time{}, err
	}
	queried, err := parseQueriedHeader(line)
	if err != nil {
		return nil, time.Time{}, err
	}

	line, err = readLine(br)
	if err != nil {
		return nil, time.Time{}, err
	}
	numRows, err := strconv.Atoi(strings.TrimPrefix(line, "# Rows: "))
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("invalid row count header %q: %w", line, err)
	}

	rows := make([]Row, 0, numRows)
	for i := 0; i < numRows; i++ {
		line, err := readLine(br)
		if err != nil {
			return nil, time.Time{}, fmt.Errorf("row %d: %w", i, err)
		}
		row, err := parseRow(line)
		if err != nil {
			return nil, time.Time{}, fmt.Errorf("row %d: %w", i, err)
		}
		rows = append(rows, row)
	}
	return rows, queried, nil
}

// IsStale reports whether a cache queried at queried is older than maxAge.
// maxAge <= 0 never expires.
func IsStale(queried, now time.Time, maxAge time.Duration) bool {
	if maxAge <= 0 {
		return false
	}
	return now.Sub(queried) > maxAge
}

func parseQueriedHeader(line string) (time.Time, error) {
	if !strings.HasPrefix(line, "# Queried: ") {
		return time.Time{}, ErrInvalidCacheHeader
	}
	t, err := time.Parse(cacheDateLayout, strings.TrimPrefix(line, "# Queried: "))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidCacheHeader, err)
	}
	return t, nil
}

func parseRow(line string) (Row, error) {
	tokens := strings.Split(line, "\t")
	if len(tokens) < 5 {
		return Row{}, fmt.Errorf("expected at least 5 fields, got %d", len(tokens))
	}
	id, err := strconv.ParseInt(tokens[0], 10, 64)
	if err != nil {
		return Row{}, err
	}
	lat, err := strconv.ParseFloat(tokens[2], 64)
	if err != nil {
		return Row{}, err
	}
	lon, err := strconv.ParseFloat(tokens[3], 64)
	if err != nil {
		return Row{}, err
	}

	tags := make(map[string]string, len(tokens)-5)
	for _, kv := range tokens[5:] {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return Row{}, fmt.Errorf("invalid tag %q", kv)
		}
		tags[k] = v
	}

	return Row{
		ID:    id,
		Kind:  tokens[1],
		Lat:   lat,
		Lon:   lon,
		Names: tokens[4],
		Tags:  tags,
	}, nil
}

func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
