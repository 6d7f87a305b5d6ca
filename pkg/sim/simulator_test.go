package sim

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulator_Constellation(t *testing.T) {
	s := New(WithSeed(1))
	res, err := s.Constellation(context.Background(), ConstellationParams{
		Modulation: "qam", BitsPerSymbol: 2, NumSymbols: 500, SNRList: []float64{-5, 15},
	})
	require.NoError(t, err)

	assert.Equal(t, "4-QAM", res.Modulation)
	assert.Len(t, res.Constellation, 4)
	require.Contains(t, res.SNRLevels, -5.0)
	require.Contains(t, res.SNRLevels, 15.0)
	assert.Len(t, res.SNRLevels[15], 500)
}

func TestSimulator_Seeded(t *testing.T) {
	p := BERParams{Modulation: "qam", BitsPerSymbol: 2, SNRList: []float64{0}, NumBits: 2000, Channels: []string{ChannelAWGN}}
	a, err := New(WithSeed(7)).BER(context.Background(), p)
	require.NoError(t, err)
	b, err := New(WithSeed(7)).BER(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, a.BER, b.BER)
}

func TestSimulator_BER(t *testing.T) {
	s := New(WithSeed(42))
	res, err := s.BER(context.Background(), BERParams{
		Modulation:    "qam",
		BitsPerSymbol: 2,
		SNRList:       []float64{0, 10},
		NumBits:       40000,
		Channels:      []string{ChannelAWGN, ChannelRayleigh},
	})
	require.NoError(t, err)
	assert.Equal(t, 40000, res.NumBits)

	// QPSK in AWGN at Es/N0 = 0 dB: Q(1) is about 0.159.
	assert.InDelta(t, 0.159, res.BER[0][ChannelAWGN], 0.02)
	assert.Less(t, res.BER[10][ChannelAWGN], res.BER[0][ChannelAWGN])
	assert.Greater(t, res.BER[10][ChannelRayleigh], res.BER[10][ChannelAWGN], "fading hurts")
}

func TestSimulator_BER_Errors(t *testing.T) {
	s := New()
	_, err := s.BER(context.Background(), BERParams{Modulation: "qam", BitsPerSymbol: 2, NumBits: 100, Channels: []string{"rician"}})
	assert.ErrorContains(t, err, "unknown channel")

	_, err = s.BER(context.Background(), BERParams{Modulation: "qam", BitsPerSymbol: 4, NumBits: 3})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.BER(ctx, BERParams{Modulation: "qam", BitsPerSymbol: 2, NumBits: 100, SNRList: []float64{0}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSimulator_CompareMIMO(t *testing.T) {
	s := New(WithSeed(3))
	res, err := s.CompareMIMO(context.Background(), CompareParams{
		SISOConfig: []int{1, 1},
		MIMOConfig: []int{2, 2},
		NumBits:    20000,
		SNRList:    []float64{0, 6},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.SISO.NumRxAnt)
	assert.Equal(t, 2, res.MIMO.NumRxAnt)
	require.Len(t, res.BERRatio, 2)
	for i := range res.BERRatio {
		assert.Less(t, res.MIMO.BER[i], res.SISO.BER[i], "receive diversity lowers BER")
	}
}

func TestSimulator_BERMIMO_Errors(t *testing.T) {
	s := New()
	_, err := s.BERMIMO(context.Background(), MIMOParams{NumTxAnt: 0, NumRxAnt: 2, NumBits: 10})
	assert.Error(t, err)

	_, err = s.CompareMIMO(context.Background(), CompareParams{SISOConfig: []int{1}, MIMOConfig: []int{2, 2}, NumBits: 10})
	assert.ErrorContains(t, err, "siso_config")
}

func TestSimulator_MultiRadioMap(t *testing.T) {
	s := New()
	res, err := s.MultiRadioMap(context.Background(), MultiRadioMapParams{
		TXPositions: [][]float64{{0, 0, 10}, {200, 0, 10}},
		RXPositions: [][]float64{{20, 0, 1.5}, {180, 0, 1.5}},
		Metric:      MetricSINR,
	})
	require.NoError(t, err)

	assert.Equal(t, "dB", res.Unit)
	assert.Equal(t, res.Grid.Rows, len(res.Grid.Values))
	assert.Equal(t, res.Grid.Cols, len(res.Grid.Values[0]))
	require.Len(t, res.Receivers, 2)
	assert.Equal(t, 0, res.Receivers[0].ServingTX)
	assert.Equal(t, 1, res.Receivers[1].ServingTX)
	assert.Greater(t, res.Receivers[0].SINRDB, 0.0)
	assert.GreaterOrEqual(t, res.Stats.Max, res.Stats.Mean)
	assert.True(t, res.Stats.Coverage > 0 && res.Stats.Coverage <= 1)
}

func TestSimulator_RadioMap(t *testing.T) {
	s := New()
	res, err := s.RadioMap(context.Background(), RadioMapParams{
		TXPosition: []float64{0, 0, 0},
		RXPosition: []float64{100, 0, 0},
		Metric:     MetricRSS,
	})
	require.NoError(t, err)
	assert.Equal(t, "dBm", res.Unit)

	cfg := DefaultRadioConfig()
	want := cfg.TxPowerDBm + cfg.PathGainDB([3]float64{}, [3]float64{100, 0, 0})
	assert.InDelta(t, want, res.Receivers[0].Value, 1e-9)
	assert.False(t, math.IsNaN(res.Stats.Mean))

	_, err = s.RadioMap(context.Background(), RadioMapParams{TXPosition: []float64{0, 0}, Metric: MetricRSS})
	assert.Error(t, err)

	_, err = s.RadioMap(context.Background(), RadioMapParams{TXPosition: []float64{0, 0, 0}, Metric: "snr"})
	assert.ErrorContains(t, err, "unknown metric")
}

func TestRadioConfig_PathGain(t *testing.T) {
	cfg := DefaultRadioConfig()
	near := cfg.PathGainDB([3]float64{}, [3]float64{10, 0, 0})
	far := cfg.PathGainDB([3]float64{}, [3]float64{100, 0, 0})
	assert.InDelta(t, 20, near-far, 1e-9, "free space loses 20 dB per decade")
}
