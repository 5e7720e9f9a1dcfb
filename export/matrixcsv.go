package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/theoremus-urban-solutions/schedule-analytics/analysis"
)

// WriteMatrixCSV renders a travel-time matrix as CSV: the header row lists
// origin stations, each body row is one destination. Undefined cells are
// left empty.
func WriteMatrixCSV(w io.Writer, m analysis.Matrix) error {
	cw := csv.NewWriter(w)
	header := make([]string, 0, len(m.Stations)+1)
	header = append(header, "")
	for _, s := range m.Stations {
		header = append(header, s.Name)
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for d, s := range m.Stations {
		row := make([]string, 0, len(m.Stations)+1)
		row = append(row, s.Name)
		for o := range m.Stations {
			if m.Defined(d, o) {
				row = append(row, strconv.FormatFloat(m.Minutes[d][o], 'f', 1, 64))
			} else {
				row = append(row, "")
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
