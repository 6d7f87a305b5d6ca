package decompose

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/aretw0/radiolab/pkg/domain"
)

// Decomposer turns a task description into a domain.TaskDecomposition.
// The zero value is not usable; call New.
type Decomposer struct {
	rules    []Rule
	guidance map[domain.TaskType][]string
}

// Option configures a Decomposer.
type Option func(*Decomposer)

// WithRules replaces the classification table.
func WithRules(rules []Rule) Option {
	return func(d *Decomposer) {
		d.rules = rules
	}
}

// WithGuidance replaces the instructions attached to each task type.
func WithGuidance(guidance map[domain.TaskType][]string) Option {
	return func(d *Decomposer) {
		d.guidance = guidance
	}
}

// New creates a Decomposer using DefaultRules and DefaultGuidance.
func New(opts ...Option) *Decomposer {
	d := &Decomposer{
		rules:    DefaultRules,
		guidance: DefaultGuidance,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Classify returns the task type of the first matching rule.
func (d *Decomposer) Classify(text string) domain.TaskType {
	lowered := strings.ToLower(text)
	for _, r := range d.rules {
		if r.Match(lowered) {
			return r.Task
		}
	}
	return domain.TaskGeneral
}

// Decompose classifies text and attaches the parameters relevant to its task type.
func (d *Decomposer) Decompose(text string) domain.TaskDecomposition {
	lowered := strings.ToLower(text)
	task := d.Classify(lowered)

	var params domain.SuggestedParams

	if task == domain.TaskConstellation || task == domain.TaskBER {
		if snr := ExtractSNR(lowered); snr.Found {
			params.SNRList = snr.Value
		}
		if mod := ExtractModulation(lowered); mod.Found {
			params.Modulation = mod.Value.Scheme
			params.BitsPerSymbol = &mod.Value.BitsPerSymbol
		}
	}

	if task == domain.TaskMIMO {
		cfg := ExtractAntennaConfigs(lowered)
		if cfg.SISO.Found || cfg.MIMO.Found {
			params.SISOConfig = orDefault(cfg.SISO, domain.AntennaConfig{1, 1})
			params.MIMOConfig = orDefault(cfg.MIMO, domain.AntennaConfig{2, 2})
		}
	}

	if task == domain.TaskRadioMap || task == domain.TaskMultiTX {
		positions := ExtractPositions(lowered)
		if len(positions) > 0 {
			params.TXPosition = &positions[0]
		}
		if len(positions) > 1 {
			params.RXPosition = &positions[1]
		}
	}

	params.NumTransmitters = ExtractTransmitterCount(lowered).Ptr()

	return domain.TaskDecomposition{
		TaskType:          task,
		Parameters:        params,
		ExtraInstructions: d.instructions(task, params),
	}
}

func (d *Decomposer) instructions(task domain.TaskType, params domain.SuggestedParams) []string {
	count := defaultTransmitterCount
	if params.NumTransmitters != nil {
		count = *params.NumTransmitters
	}
	out := slices.Clone(d.guidance[task])
	for i, line := range out {
		out[i] = strings.ReplaceAll(line, "{{num_transmitters}}", strconv.Itoa(count))
	}
	return out
}

func orDefault(o Optional[domain.AntennaConfig], def domain.AntennaConfig) *domain.AntennaConfig {
	if o.Found {
		return o.Ptr()
	}
	return &def
}

// FormatForPrompt renders a decomposition as the guidance block appended to
// the planner prompt.
func FormatForPrompt(d domain.TaskDecomposition) string {
	p := d.Parameters
	lines := []string{
		"Auto-generated task guidance:",
		"- Task type: " + string(d.TaskType),
	}

	if parts := suggestedParts(p); len(parts) > 0 {
		lines = append(lines, "- Suggested parameters: "+strings.Join(parts, ", "))
	}
	if p.NumTransmitters != nil {
		lines = append(lines, fmt.Sprintf("- Target number of transmitters: %d", *p.NumTransmitters))
	}
	if len(d.ExtraInstructions) > 0 {
		lines = append(lines, "- Detailed instructions:")
		for _, inst := range d.ExtraInstructions {
			lines = append(lines, "  * "+inst)
		}
	}
	if d.TaskType == domain.TaskMultiTX {
		lines = append(lines, "- TOOL: Use simulate_multi_radio_map with the transmitter list above.")
		if p.RXPosition != nil {
			lines = append(lines, fmt.Sprintf("- RECEIVER_HINT: Use receiver position %s unless user specifies otherwise.", formatFloats(p.RXPosition[:])))
		}
	}
	return strings.Join(lines, "\n")
}

func suggestedParts(p domain.SuggestedParams) []string {
	var parts []string
	if len(p.SNRList) > 0 {
		parts = append(parts, "snr_db_list="+formatInts(p.SNRList))
	}
	if p.Modulation != "" {
		parts = append(parts, "modulation="+p.Modulation)
	}
	if p.BitsPerSymbol != nil {
		parts = append(parts, "bits_per_symbol="+strconv.Itoa(*p.BitsPerSymbol))
	}
	if p.SISOConfig != nil {
		parts = append(parts, "siso_config="+formatInts(p.SISOConfig[:]))
	}
	if p.MIMOConfig != nil {
		parts = append(parts, "mimo_config="+formatInts(p.MIMOConfig[:]))
	}
	if p.TXPosition != nil {
		parts = append(parts, "tx_position="+formatFloats(p.TXPosition[:]))
	}
	if p.RXPosition != nil {
		parts = append(parts, "rx_position="+formatFloats(p.RXPosition[:]))
	}
	return parts
}

func formatInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatFloats(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

var defaultDecomposer = New()

// Decompose runs the default Decomposer.
func Decompose(text string) domain.TaskDecomposition {
	return defaultDecomposer.Decompose(text)
}
