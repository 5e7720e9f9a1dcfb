package export

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theoremus-urban-solutions/schedule-analytics/analysis"
)

func TestWriteMatrixCSV(t *testing.T) {
	m := analysis.Matrix{
		Stations: []analysis.Station{{ID: "A", Name: "Alpha"}, {ID: "B", Name: "Beta"}},
		Minutes: [][]float64{
			{0, math.NaN()},
			{5.25, 0},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteMatrixCSV(&buf, m))

	assert.Equal(t, ",Alpha,Beta\nAlpha,0.0,\nBeta,5.2,0.0\n", buf.String())
}
