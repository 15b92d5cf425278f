package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Patient ID", "Status"},
		Rows: []map[string]string{
			{"Patient ID": "P-1", "Status": "approved"},
			{"Patient ID": "P-2, \"quoted\"", "Status": "pending"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	text := strings.TrimPrefix(string(out), "\uFEFF")
	lines := strings.Split(strings.TrimSpace(text), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Patient ID,Status", lines[0])
	assert.Equal(t, `"P-2, ""quoted""",pending`, lines[2])
}

func TestExportersRequireHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(Dataset{}, "x")
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset(), "Case Export")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestPDFTextDropsUndrawableRunes(t *testing.T) {
	cases := map[string]string{
		"\u2705 Approved":             "Approved",
		"\u23F8\uFE0F On Hold":        "On Hold",
		"\u274C Not Approved":         "Not Approved",
		"Dx \u2014 Asthma, caf\u00e9": "Dx \u2014 Asthma, caf\u00e9",
		"\u2705":                      "",
	}
	for in, want := range cases {
		assert.Equal(t, want, pdfText(in), in)
	}
}

func TestPDFExporterRendersIconStatuses(t *testing.T) {
	data := Dataset{
		Headers: []string{"Status"},
		Rows:    []map[string]string{{"Status": "\u2705 Approved"}, {"Status": "\u23F8\uFE0F On Hold"}},
	}
	out, err := NewPDFExporter().Render(data, "\U0001F4CB Cases")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "a b", truncate("a \n b"))
	long := strings.Repeat("x", 60)
	assert.Equal(t, pdfMaxCellLen, len([]rune(truncate(long))))
}
