package metrics

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

var ErrResultLog = errors.New("result log")

var Header = []string{"SimulationSecond", "NodesNumber", "Throughput(bytes/s)", "EndToEndDelay(s)", "Protocol"}

// ResultLog writes samples as CSV rows, flushing after each one.
type ResultLog struct {
	w      *csv.Writer
	closer io.Closer
	Path   string
}

// NewResultLog writes the header to w.
func NewResultLog(w io.Writer) (*ResultLog, error) {
	r := &ResultLog{w: csv.NewWriter(w)}
	if err := r.write(Header); err != nil {
		return nil, err
	}
	return r, nil
}

// OpenResultLog creates the CSV at path; "-" means stdout. Failing to
// open the file is an error, there is no fallback.
func OpenResultLog(path string) (*ResultLog, error) {
	if path == "-" {
		r, err := NewResultLog(os.Stdout)
		if r != nil {
			r.Path = path
		}
		return r, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResultLog, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResultLog, err)
	}
	r, err := NewResultLog(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	r.Path = path
	return r, nil
}

func (r *ResultLog) Append(s Sample) error {
	return r.write([]string{
		strconv.FormatFloat(s.Second, 'f', -1, 64),
		strconv.Itoa(s.Nodes),
		strconv.FormatFloat(s.Throughput, 'f', 4, 64),
		strconv.FormatFloat(s.EndToEndDelay, 'f', 6, 64),
		s.Protocol.String(),
	})
}

func (r *ResultLog) write(row []string) error {
	if err := r.w.Write(row); err != nil {
		return fmt.Errorf("%w: %v", ErrResultLog, err)
	}
	r.w.Flush()
	if err := r.w.Error(); err != nil {
		return fmt.Errorf("%w: %v", ErrResultLog, err)
	}
	return nil
}

func (r *ResultLog) Close() error {
	r.w.Flush()
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}
