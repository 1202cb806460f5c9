package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/logcost/logcost-go/pkg/tracker"
)

// csvHeader is the stable column set consumers rely on.
var csvHeader = []string{"key", "file", "line", "level", "message_template", "count", "bytes"}

// WriteCSV renders the snapshot as CSV in site order, one row per call
// site.
func WriteCSV(w io.Writer, snap tracker.Snapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range snap.Entries {
		row := []string{
			e.Site().String(),
			e.File,
			strconv.Itoa(e.Line),
			e.Level,
			e.Template,
			strconv.FormatInt(e.Count, 10),
			strconv.FormatInt(e.Bytes, 10),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the CSV rendering to a file, creating parent
// directories as needed.
func WriteCSVFile(path string, snap tracker.Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create csv dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	if err := WriteCSV(f, snap); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
