package decompose

import (
	"strings"

	"github.com/aretw0/radiolab/pkg/domain"
)

// Rule assigns Task when Match accepts the lower-cased text.
type Rule struct {
	Task  domain.TaskType
	Match func(text string) bool
}

// DefaultRules is the classification table, highest priority first.
// Text that matches no rule is domain.TaskGeneral.
var DefaultRules = []Rule{
	{
		Task: domain.TaskMultiTX,
		Match: func(text string) bool {
			return containsAny(text, "optimize", "optimal", "placement") && strings.Contains(text, "transmit")
		},
	},
	{
		Task: domain.TaskMIMO,
		Match: func(text string) bool {
			return strings.Contains(text, "mimo") || containsAll(text, "antenna", "compare")
		},
	},
	{
		Task: domain.TaskRadioMap,
		Match: func(text string) bool {
			return containsAny(text, "coverage", "radio map", "radiomap", "path gain", "sinr")
		},
	},
	{
		Task: domain.TaskBER,
		Match: func(text string) bool {
			return strings.Contains(text, "ber")
		},
	},
	{
		Task: domain.TaskConstellation,
		Match: func(text string) bool {
			return containsAny(text, "constellation", "qam", "psk", "modulation")
		},
	},
}

// DefaultGuidance holds the instructions attached to each task type.
// {{num_transmitters}} is replaced by the requested transmitter count.
var DefaultGuidance = map[domain.TaskType][]string{
	domain.TaskConstellation: {
		"Call `simulate_constellation` with the suggested modulation and SNR values.",
		"Return at least one constellation plot and describe the noise impact at each SNR.",
	},
	domain.TaskBER: {
		"Use `simulate_ber` and ensure multiple SNR points form a smooth BER curve.",
		"Compare AWGN and Rayleigh channels when possible.",
	},
	domain.TaskRadioMap: {
		"Invoke `simulate_radio_map` with the provided TX/RX positions or reasonable defaults.",
		"Explain the selected metric (RSS/path_gain/SINR) and highlight TX/RX markers.",
	},
	domain.TaskMIMO: {
		"Use `compare_mimo_performance` to contrast SISO and MIMO BER trends.",
		"Discuss how antenna counts influence diversity gain.",
	},
	domain.TaskMultiTX: {
		"This is an optimization problem: propose several {{num_transmitters}}-transmitter layouts before running simulations.",
		"Call `simulate_multi_radio_map` with a list of transmitter coordinates (e.g., [[x1,y1,z1], ...]) and representative receiver/user points to evaluate SINR/coverage.",
		"If needed, run additional single-transmitter maps to gain intuition before refining the multi-TX layout.",
		"Summarize the trade-offs and recommend the configuration that maximizes average throughput/coverage.",
	},
	domain.TaskGeneral: {
		"Provide a clear explanation or choose the most relevant simulation tool if one applies.",
	},
}

// defaultTransmitterCount is used in guidance when the task does not name one.
const defaultTransmitterCount = 4

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func containsAll(text string, words ...string) bool {
	for _, w := range words {
		if !strings.Contains(text, w) {
			return false
		}
	}
	return true
}
