package decompose_test

import (
	"strings"
	"testing"

	"github.com/aretw0/radiolab/pkg/decompose"
	"github.com/aretw0/radiolab/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		text string
		want domain.TaskType
	}{
		{"Find the optimal placement of 4 transmitters", domain.TaskMultiTX},
		{"compare 2x2 vs 4x4 mimo antennas", domain.TaskMIMO},
		{"Compare antenna setups", domain.TaskMIMO},
		{"show coverage for 2x2 antenna layout", domain.TaskRadioMap},
		{"Plot the SINR radio map", domain.TaskRadioMap},
		{"BER curve for 16-QAM", domain.TaskBER},
		{"Show a QPSK constellation at 10 dB", domain.TaskConstellation},
		{"What does modulation mean?", domain.TaskConstellation},
		{"Explain Shannon capacity", domain.TaskGeneral},
		{"optimize the antenna tilt", domain.TaskGeneral},
	}
	d := decompose.New()
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Classify(tt.text))
		})
	}
}

func TestClassify_CustomRules(t *testing.T) {
	d := decompose.New(decompose.WithRules([]decompose.Rule{
		{Task: domain.TaskBER, Match: func(text string) bool { return strings.Contains(text, "error") }},
	}))
	assert.Equal(t, domain.TaskBER, d.Classify("Error rates please"))
	assert.Equal(t, domain.TaskGeneral, d.Classify("BER please"))
}

func TestExtractSNR(t *testing.T) {
	snr := decompose.ExtractSNR(strings.ToLower("15 dB, -5 dB, 15 dB"))
	require.True(t, snr.Found)
	assert.Equal(t, []int{-5, 15}, snr.Value)

	snr = decompose.ExtractSNR("at 7.9 db and 0db")
	assert.Equal(t, []int{0, 7}, snr.Value)

	assert.False(t, decompose.ExtractSNR("no numbers here").Found)
}

func TestExtractModulation(t *testing.T) {
	tests := []struct {
		text   string
		found  bool
		scheme string
		bits   int
	}{
		{"qpsk", true, "qam", 2},
		{"bpsk", true, "pam", 1},
		{"64-qam", true, "qam", 6},
		{"16 qam", true, "qam", 4},
		{"256qam", true, "qam", 8},
		{"8-psk", true, "qam", 2},
		{"ofdm", false, "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			m := decompose.ExtractModulation(tt.text)
			assert.Equal(t, tt.found, m.Found)
			assert.Equal(t, tt.scheme, m.Value.Scheme)
			assert.Equal(t, tt.bits, m.Value.BitsPerSymbol)
		})
	}
}

func TestExtractAntennaConfigs(t *testing.T) {
	tests := []struct {
		text string
		siso *domain.AntennaConfig
		mimo *domain.AntennaConfig
	}{
		{"compare 1x1 and 2x2", &domain.AntennaConfig{1, 1}, &domain.AntennaConfig{2, 2}},
		{"3x3", &domain.AntennaConfig{3, 3}, &domain.AntennaConfig{3, 3}},
		{"1x3", &domain.AntennaConfig{1, 3}, &domain.AntennaConfig{2, 3}},
		{"2x2", &domain.AntennaConfig{2, 2}, nil},
		{"4x4 then 4x4 then 8x8", &domain.AntennaConfig{4, 4}, &domain.AntennaConfig{8, 8}},
		{"no pairs", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			cfg := decompose.ExtractAntennaConfigs(tt.text)
			assert.Equal(t, tt.siso, cfg.SISO.Ptr())
			assert.Equal(t, tt.mimo, cfg.MIMO.Ptr())
		})
	}
}

func TestExtractPositionsAndCount(t *testing.T) {
	positions := decompose.ExtractPositions("tx at (0, 0, 10) and rx at (-20.5,3,1.5)")
	assert.Equal(t, []domain.Position{{0, 0, 10}, {-20.5, 3, 1.5}}, positions)

	n := decompose.ExtractTransmitterCount("place 3 base stations")
	require.True(t, n.Found)
	assert.Equal(t, 3, n.Value)
	assert.Equal(t, 2, decompose.ExtractTransmitterCount("with 2 tx").Value)
	assert.False(t, decompose.ExtractTransmitterCount("one transmitter").Found)
}

func TestDecompose(t *testing.T) {
	t.Run("ber attaches snr and modulation", func(t *testing.T) {
		d := decompose.Decompose("Plot BER for QPSK at 15 dB, -5 dB, 15 dB")
		assert.Equal(t, domain.TaskBER, d.TaskType)
		assert.Equal(t, []int{-5, 15}, d.Parameters.SNRList)
		assert.Equal(t, "qam", d.Parameters.Modulation)
		require.NotNil(t, d.Parameters.BitsPerSymbol)
		assert.Equal(t, 2, *d.Parameters.BitsPerSymbol)
		assert.Len(t, d.ExtraInstructions, 2)
	})

	t.Run("mimo fills the missing side", func(t *testing.T) {
		d := decompose.Decompose("compare 2x2 mimo at 10 dB")
		assert.Equal(t, domain.TaskMIMO, d.TaskType)
		assert.Equal(t, &domain.AntennaConfig{2, 2}, d.Parameters.SISOConfig)
		assert.Equal(t, &domain.AntennaConfig{2, 2}, d.Parameters.MIMOConfig)
		assert.Empty(t, d.Parameters.SNRList, "snr is only attached to link tasks")
	})

	t.Run("radiomap positions", func(t *testing.T) {
		d := decompose.Decompose("coverage with tx (0,0,10) and rx (50,0,1.5)")
		assert.Equal(t, domain.TaskRadioMap, d.TaskType)
		assert.Equal(t, &domain.Position{0, 0, 10}, d.Parameters.TXPosition)
		assert.Equal(t, &domain.Position{50, 0, 1.5}, d.Parameters.RXPosition)
	})

	t.Run("general task has one instruction and no parameters", func(t *testing.T) {
		d := decompose.Decompose("hello")
		assert.Equal(t, domain.TaskGeneral, d.TaskType)
		assert.True(t, d.Parameters.IsEmpty())
		assert.Len(t, d.ExtraInstructions, 1)
	})

	t.Run("deterministic", func(t *testing.T) {
		text := "Optimal placement of 3 transmitters, user at (10, 20, 1.5) and (5, 5, 1.5)"
		assert.Equal(t, decompose.Decompose(text), decompose.Decompose(text))
	})
}

func TestFormatForPrompt(t *testing.T) {
	d := decompose.Decompose("Optimal placement of 3 transmitters with tx (0, 0, 10) and user (100, 50, 1.5)")
	out := decompose.FormatForPrompt(d)

	assert.Equal(t, []string{
		"Auto-generated task guidance:",
		"- Task type: multi_tx_optimization",
		"- Suggested parameters: tx_position=[0, 0, 10], rx_position=[100, 50, 1.5]",
		"- Target number of transmitters: 3",
		"- Detailed instructions:",
		"  * This is an optimization problem: propose several 3-transmitter layouts before running simulations.",
		"  * Call `simulate_multi_radio_map` with a list of transmitter coordinates (e.g., [[x1,y1,z1], ...]) and representative receiver/user points to evaluate SINR/coverage.",
		"  * If needed, run additional single-transmitter maps to gain intuition before refining the multi-TX layout.",
		"  * Summarize the trade-offs and recommend the configuration that maximizes average throughput/coverage.",
		"- TOOL: Use simulate_multi_radio_map with the transmitter list above.",
		"- RECEIVER_HINT: Use receiver position [100, 50, 1.5] unless user specifies otherwise.",
	}, strings.Split(out, "\n"))
}

func TestFormatForPrompt_Constellation(t *testing.T) {
	out := decompose.FormatForPrompt(decompose.Decompose("16-QAM constellation at 20 dB"))
	assert.Contains(t, out, "- Suggested parameters: snr_db_list=[20], modulation=qam, bits_per_symbol=4")
	assert.NotContains(t, out, "Target number of transmitters")
	assert.NotContains(t, out, "TOOL:")
}
