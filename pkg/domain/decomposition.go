package domain

// TaskType is the category assigned to a free-text task.
type TaskType string

const (
	TaskConstellation TaskType = "constellation"
	TaskBER           TaskType = "ber"
	TaskRadioMap      TaskType = "radiomap"
	TaskMIMO          TaskType = "mimo_comparison"
	TaskMultiTX       TaskType = "multi_tx_optimization"
	TaskGeneral       TaskType = "general"
)

// TaskTypes lists every category in classification priority order.
var TaskTypes = []TaskType{
	TaskMultiTX,
	TaskMIMO,
	TaskRadioMap,
	TaskBER,
	TaskConstellation,
	TaskGeneral,
}

// Position is a point in metres: x, y, z.
type Position [3]float64

// AntennaConfig is a (transmit, receive) antenna count pair.
type AntennaConfig [2]int

// SuggestedParams holds the parameters extracted from a task.
// Nil or empty fields were not found in the text.
type SuggestedParams struct {
	SNRList         []int          `json:"snr_db_list,omitempty" yaml:"snr_db_list,omitempty"`
	Modulation      string         `json:"modulation,omitempty" yaml:"modulation,omitempty"`
	BitsPerSymbol   *int           `json:"bits_per_symbol,omitempty" yaml:"bits_per_symbol,omitempty"`
	SISOConfig      *AntennaConfig `json:"siso_config,omitempty" yaml:"siso_config,omitempty"`
	MIMOConfig      *AntennaConfig `json:"mimo_config,omitempty" yaml:"mimo_config,omitempty"`
	TXPosition      *Position      `json:"tx_position,omitempty" yaml:"tx_position,omitempty"`
	RXPosition      *Position      `json:"rx_position,omitempty" yaml:"rx_position,omitempty"`
	NumTransmitters *int           `json:"num_transmitters,omitempty" yaml:"num_transmitters,omitempty"`
}

// IsEmpty reports whether nothing was extracted.
func (p SuggestedParams) IsEmpty() bool {
	return len(p.SNRList) == 0 && p.Modulation == "" && p.BitsPerSymbol == nil &&
		p.SISOConfig == nil && p.MIMOConfig == nil &&
		p.TXPosition == nil && p.RXPosition == nil && p.NumTransmitters == nil
}

// TaskDecomposition is the result of classifying one task.
type TaskDecomposition struct {
	TaskType          TaskType        `json:"task_type" yaml:"task_type"`
	Parameters        SuggestedParams `json:"parameters" yaml:"parameters"`
	ExtraInstructions []string        `json:"extra_instructions,omitempty" yaml:"extra_instructions,omitempty"`
}
