package tasks

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReporterCollectsRuntimeStatus(t *testing.T) {
	r := NewReporter(0, testLogger())

	assert.True(t, r.LastStatus().CollectedAt.IsZero())

	r.tick()

	status := r.LastStatus()
	assert.Greater(t, status.Cores, 0)
	assert.NotEmpty(t, status.RuntimeVersion)
	assert.Greater(t, status.Goroutines, 0)
	assert.Greater(t, status.HeapAllocBytes, uint64(0))
	assert.False(t, status.CollectedAt.IsZero())
}
