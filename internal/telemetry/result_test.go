package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSuccessVectorValueIsHottestDevice(t *testing.T) {
	result := SuccessVector([]float64{40, 65, 52})

	assert.True(t, result.OK())
	assert.InDelta(t, 65.0, result.Value(), 0.001)
	assert.Equal(t, []float64{40, 65, 52}, result.Values())
}

func TestSuccessVectorEmptyIsUnavailable(t *testing.T) {
	result := SuccessVector(nil)

	assert.True(t, result.IsUnavailable())
	assert.Equal(t, "no readings", result.Reason())
}

func TestSyntheticIsSuccessWithEstimateFlag(t *testing.T) {
	result := Synthetic(47.5)

	assert.True(t, result.OK())
	assert.True(t, result.IsSynthetic())
	assert.InDelta(t, 47.5, result.Value(), 0.001)
}

func TestFailureReasonCarriesCause(t *testing.T) {
	result := Failure(assert.AnError)

	assert.True(t, result.Failed())
	assert.False(t, result.OK())
	assert.Equal(t, assert.AnError.Error(), result.Reason())
	assert.Equal(t, assert.AnError, result.Err())
}

func TestSamplePreservesEstimateFlag(t *testing.T) {
	measured := Success(61).Sample(CPUTemp)
	assert.Equal(t, CPUTemp, measured.Metric)
	assert.False(t, measured.Estimated)

	estimated := Synthetic(55).Sample(GPUTemp)
	assert.True(t, estimated.Estimated)
	assert.Equal(t, Celsius, estimated.Unit)
}
