package chart

import (
	"math"
	"testing"
	"time"

	"forecast-dashboard/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errPoint(i int, actual, e float64) model.PredictionErrorPoint {
	return model.PredictionErrorPoint{
		Timestamp: model.NewTime(t0.Add(time.Duration(i) * time.Hour)),
		Predicted: actual - e,
		Actual:    actual,
		Error:     e,
	}
}

func TestComputeErrorStatistics_Empty(t *testing.T) {
	st, ok := ComputeErrorStatistics(nil)
	assert.False(t, ok)
	assert.Nil(t, st)

	st, ok = ComputeErrorStatistics([]model.PredictionErrorPoint{errPoint(0, 100, math.NaN()), errPoint(1, 100, math.Inf(-1))})
	assert.False(t, ok)
	assert.Nil(t, st)
}

func TestComputeErrorStatistics_MAPEExcludesZeroActual(t *testing.T) {
	st, ok := ComputeErrorStatistics([]model.PredictionErrorPoint{errPoint(0, 0, 5), errPoint(1, 100, 10)})
	require.True(t, ok)

	assert.True(t, st.MAPEAvailable)
	assert.InDelta(t, 10, st.MAPE, 1e-9)
	assert.Equal(t, 1, st.MAPEExcluded)
	assert.Equal(t, 2, st.TotalErrors)
	assert.InDelta(t, 7.5, st.MAE, 1e-9)
}

func TestComputeErrorStatistics_MAPEUnavailable(t *testing.T) {
	st, ok := ComputeErrorStatistics([]model.PredictionErrorPoint{errPoint(0, 0, 5)})
	require.True(t, ok)
	assert.False(t, st.MAPEAvailable)
	assert.Equal(t, 0.0, st.MAPE)
}

func TestComputeErrorStatistics_Values(t *testing.T) {
	points := []model.PredictionErrorPoint{
		errPoint(0, 100, 2),
		errPoint(1, 100, -4),
		errPoint(2, 100, 6),
		errPoint(3, 100, math.NaN()),
	}
	st, ok := ComputeErrorStatistics(points)
	require.True(t, ok)

	assert.Equal(t, 3, st.TotalErrors)
	assert.InDelta(t, 4, st.AvgAbsError, 1e-9)
	assert.Equal(t, st.AvgAbsError, st.MAE)
	assert.InDelta(t, 6, st.MaxAbsError, 1e-9)
	assert.InDelta(t, 2, st.MinAbsError, 1e-9)
	assert.InDelta(t, 4, st.MedianAbsError, 1e-9)
	assert.InDelta(t, math.Sqrt(8.0/3), st.StdDevAbsError, 1e-9)
	assert.InDelta(t, math.Sqrt(56.0/3), st.RMSE, 1e-9)
	assert.InDelta(t, 4.0/3, st.Bias, 1e-9)
	assert.InDelta(t, 4, st.MAPE, 1e-9)
}

func TestComputeErrorStatistics_RMSEAtLeastMAE(t *testing.T) {
	sets := [][]float64{
		{1, 2, 3},
		{-10, 0.5, 7, -2},
		{100, -0.01},
		{3, 3, 3},
	}
	for _, errs := range sets {
		var points []model.PredictionErrorPoint
		for i, e := range errs {
			points = append(points, errPoint(i, 50, e))
		}
		st, ok := ComputeErrorStatistics(points)
		require.True(t, ok)
		assert.GreaterOrEqual(t, st.MAE, 0.0)
		assert.GreaterOrEqual(t, st.RMSE+1e-12, st.MAE)
	}
}

func TestComputeErrorStatistics_StdDevLargeErrors(t *testing.T) {
	st, ok := ComputeErrorStatistics([]model.PredictionErrorPoint{errPoint(0, 50, 1e9), errPoint(1, 50, -(1e9 + 1))})
	require.True(t, ok)
	assert.InDelta(t, 0.5, st.StdDevAbsError, 1e-9)

	same := 1e8 + 0.1
	st, ok = ComputeErrorStatistics([]model.PredictionErrorPoint{errPoint(0, 50, same), errPoint(1, 50, same), errPoint(2, 50, -same)})
	require.True(t, ok)
	assert.InDelta(t, 0, st.StdDevAbsError, 1e-6)
}

func TestMedian_EvenCount(t *testing.T) {
	assert.Equal(t, 2.5, median([]float64{4, 1, 3, 2}))
	assert.Equal(t, 0.0, median(nil))
}

func TestEvaluateThresholds(t *testing.T) {
	assert.Empty(t, EvaluateThresholds(nil, DefaultThresholds()))

	calm := &ErrorStatistics{RMSE: 2, MAPE: 1, MAPEAvailable: true, Bias: -1}
	assert.Empty(t, EvaluateThresholds(calm, DefaultThresholds()))

	bad := &ErrorStatistics{RMSE: 12, MAPE: 20, MAPEAvailable: true, Bias: -6}
	breaches := EvaluateThresholds(bad, DefaultThresholds())
	require.Len(t, breaches, 3)
	assert.Equal(t, "high_rmse", breaches[0].AlertType)
	assert.Equal(t, "high_mape", breaches[1].AlertType)
	assert.Equal(t, "high_bias", breaches[2].AlertType)
	for _, b := range breaches {
		assert.Equal(t, "warning", b.Severity)
	}

	noMAPE := &ErrorStatistics{MAPE: 99}
	assert.Empty(t, EvaluateThresholds(noMAPE, DefaultThresholds()))
}
