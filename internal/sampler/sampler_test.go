package sampler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSample(t *testing.T) {
	s := New()
	sample := s.Sample()

	assert.False(t, sample.TakenAt.IsZero())
	assert.Greater(t, sample.HeapAllocMB, 0.0)
	assert.Greater(t, sample.SysMB, 0.0)
	assert.Greater(t, sample.RSSMB, 0.0)
	assert.Greater(t, sample.Goroutines, 0)
}

func TestHeapProfileSummary(t *testing.T) {
	// Keep an allocation alive so it shows up under inuse_space
	held := make([][]byte, 0, 64)
	for i := 0; i < 64; i++ {
		held = append(held, make([]byte, 128*1024))
	}
	defer func() { _ = held }()

	data, err := CaptureHeapProfile()
	require.NoError(t, err)
	require.NotEmpty(t, data)

	summary, err := SummarizeHeapProfile(data)
	require.NoError(t, err)
	assert.Greater(t, summary.InuseSpace, int64(0))
	assert.Greater(t, summary.AllocSpace, int64(0))
	assert.NotEmpty(t, summary.TopSites)
	for i := 1; i < len(summary.TopSites); i++ {
		assert.GreaterOrEqual(t, summary.TopSites[i-1].InuseBytes, summary.TopSites[i].InuseBytes)
	}
}

func TestSummarizeHeapProfileInvalidData(t *testing.T) {
	_, err := SummarizeHeapProfile([]byte("not a profile"))
	assert.Error(t, err)
}
