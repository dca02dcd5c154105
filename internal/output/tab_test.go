package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genoskip/genoskip/internal/analyze"
	"github.com/genoskip/genoskip/internal/transcript"
)

func testResults() []analyze.Result {
	return []analyze.Result{
		{
			Therapy: transcript.Therapy{
				Name:           "Wildtype",
				Description:    "The unmodified transcript.",
				FramePreserved: true,
			},
			Comparisons: []transcript.Comparison{
				{Track: "exons", Remaining: 70, Original: 70, Percentage: 1.0, Fraction: "70/70"},
				{Track: "coding", Remaining: 29, Original: 29, Percentage: 1.0, Fraction: "29/29"},
			},
		},
		{
			Therapy: transcript.Therapy{
				Name:           "Skip exon 2",
				Expression:     "ENST00000000001.1:c.1_17del",
				FramePreserved: false,
			},
			Comparisons: []transcript.Comparison{
				{Track: "exons", Remaining: 50, Original: 70, Percentage: 0.7142857, Fraction: "50/70"},
				{Track: "coding", Remaining: 12, Original: 29, Percentage: 0.4137931, Fraction: "12/29"},
			},
		},
	}
}

func TestTabWriter(t *testing.T) {
	var buf strings.Builder
	tw := NewTabWriter(&buf)

	require.NoError(t, tw.WriteAll(testResults()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)

	assert.Equal(t, "#Therapy\tExpression\tFrame\tTrack\tRemaining\tPercentage", lines[0])
	assert.Equal(t, "Wildtype\t-\tpreserved\texons\t70/70\t100.0%", lines[1])
	assert.Equal(t, "Skip exon 2\tENST00000000001.1:c.1_17del\tframeshift\tcoding\t12/29\t41.4%", lines[4])
}

func TestTabWriter_EmptyResults(t *testing.T) {
	var buf strings.Builder
	tw := NewTabWriter(&buf)

	require.NoError(t, tw.WriteAll(nil))
	assert.Equal(t, "#Therapy\tExpression\tFrame\tTrack\tRemaining\tPercentage\n", buf.String())
}
