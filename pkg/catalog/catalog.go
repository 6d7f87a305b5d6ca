// Package catalog declares the built-in simulation tools and binds them to a
// sim.Simulator.
package catalog

import (
	"context"
	"fmt"

	"github.com/aretw0/radiolab/pkg/domain"
	"github.com/aretw0/radiolab/pkg/registry"
	"github.com/aretw0/radiolab/pkg/sim"
	"github.com/mitchellh/mapstructure"
)

// Tool names.
const (
	SimulateConstellation  = "simulate_constellation"
	SimulateBER            = "simulate_ber"
	SimulateRadioMap       = "simulate_radio_map"
	SimulateMultiRadioMap  = "simulate_multi_radio_map"
	SimulateBERMIMO        = "simulate_ber_mimo"
	CompareMIMOPerformance = "compare_mimo_performance"
	ListAvailableTools     = "list_available_tools"
	ListModulations        = "list_modulations"
	GetModulationInfo      = "get_modulation_info"
)

// Tools returns the built-in tools in catalog order.
// list_available_tools comes last and describes every tool, itself included.
func Tools(s *sim.Simulator) []registry.Tool {
	tools := []registry.Tool{
		{
			Spec: domain.ToolSpec{
				Name:        SimulateConstellation,
				Description: "Simulate a constellation diagram with AWGN at different SNR levels. Returns constellation points and received symbols.",
				Params: []domain.ParamSpec{
					modulationParam(),
					bitsPerSymbolParam(),
					{
						Name:        "num_symbols",
						Type:        domain.TypeInteger,
						Description: "Number of transmitted symbols per SNR level.",
						Minimum:     ptr(1.0),
						Maximum:     ptr(100000.0),
						Default:     2000,
					},
					snrListParam([]any{-5.0, 15.0}),
				},
			},
			Fn: bind(s.Constellation),
		},
		{
			Spec: domain.ToolSpec{
				Name:        SimulateBER,
				Description: "Simulate Bit Error Rate (BER) for different channels (AWGN, Rayleigh fading) at various SNR levels.",
				Params: []domain.ParamSpec{
					modulationParam(),
					bitsPerSymbolParam(),
					snrListParam([]any{-5.0, 15.0}),
					numBitsParam(2000000),
					{
						Name:        "channels",
						Type:        domain.TypeArray,
						Description: "Channel models to simulate.",
						Items:       &domain.ParamSpec{Type: domain.TypeString, Enum: []any{sim.ChannelAWGN, sim.ChannelRayleigh}},
						MinItems:    ptr(1),
						Default:     []any{sim.ChannelAWGN, sim.ChannelRayleigh},
					},
				},
			},
			Fn: bind(s.BER),
		},
		{
			Spec: domain.ToolSpec{
				Name:        SimulateRadioMap,
				Description: "Generate a radio coverage map for one transmitter and report the link at the receiver.",
				Params: []domain.ParamSpec{
					positionParam("tx_position", "Transmitter [x, y, z] in metres.", []any{0.0, 0.0, 0.0}),
					positionParam("rx_position", "Receiver [x, y, z] in metres.", []any{100.0, 0.0, 0.0}),
					metricParam(sim.MetricRSS),
				},
			},
			Fn: bind(s.RadioMap),
		},
		{
			Spec: domain.ToolSpec{
				Name:        SimulateMultiRadioMap,
				Description: "Generate a coverage map for several co-channel transmitters. Reports SINR, serving transmitter and coverage statistics for candidate layouts.",
				Params: []domain.ParamSpec{
					positionListParam("tx_positions", "Transmitter positions as [[x1, y1, z1], ...].", []any{[]any{0.0, 0.0, 10.0}}),
					positionListParam("rx_positions", "Receiver or user positions as [[x1, y1, z1], ...].", []any{[]any{100.0, 0.0, 1.5}}),
					metricParam(sim.MetricSINR),
				},
			},
			Fn: bind(s.MultiRadioMap),
		},
		{
			Spec: domain.ToolSpec{
				Name:        SimulateBERMIMO,
				Description: "Simulate the QPSK BER of a multi-antenna Rayleigh link with maximum ratio combining.",
				Params: []domain.ParamSpec{
					antennaCountParam("num_tx_ant", "Number of transmit antennas."),
					antennaCountParam("num_rx_ant", "Number of receive antennas."),
					numBitsParam(500000),
					snrListParam(mimoSNRDefault()),
				},
			},
			Fn: bind(s.BERMIMO),
		},
		{
			Spec: domain.ToolSpec{
				Name:        CompareMIMOPerformance,
				Description: "Compare the BER of a SISO and a MIMO antenna configuration over the same SNR range.",
				Params: []domain.ParamSpec{
					antennaConfigParam("siso_config", "Reference [tx, rx] antenna counts.", []any{1, 1}),
					antennaConfigParam("mimo_config", "Compared [tx, rx] antenna counts.", []any{2, 2}),
					numBitsParam(500000),
					snrListParam(mimoSNRDefault()),
				},
			},
			Fn: bind(s.CompareMIMO),
		},
		{
			Spec: domain.ToolSpec{
				Name:        ListModulations,
				Description: "List all available modulation schemes.",
			},
			Fn: func(ctx context.Context, args map[string]any) (any, error) {
				return sim.Modulations(), nil
			},
		},
		{
			Spec: domain.ToolSpec{
				Name:        GetModulationInfo,
				Description: "Get detailed information about a modulation scheme including constellation points.",
				Params: []domain.ParamSpec{
					modulationParam(),
					bitsPerSymbolParam(),
				},
			},
			Fn: func(ctx context.Context, args map[string]any) (any, error) {
				var p struct {
					Modulation    string `mapstructure:"modulation"`
					BitsPerSymbol int    `mapstructure:"bits_per_symbol"`
				}
				if err := Decode(args, &p); err != nil {
					return nil, err
				}
				return sim.Info(p.Modulation, p.BitsPerSymbol)
			},
		},
	}

	listing := registry.Tool{
		Spec: domain.ToolSpec{
			Name:        ListAvailableTools,
			Description: "List all available simulation tools with a short description.",
		},
	}
	listing.Fn = func(ctx context.Context, args map[string]any) (any, error) {
		out := make(map[string]string, len(tools)+1)
		out[listing.Spec.Name] = listing.Spec.Description
		for _, t := range tools {
			out[t.Spec.Name] = t.Spec.Description
		}
		return out, nil
	}

	return append(tools, listing)
}

// NewRegistry builds the registry of built-in tools.
func NewRegistry(s *sim.Simulator) (*registry.Registry, error) {
	return registry.New(Tools(s)...)
}

// Decode copies tool arguments into a parameter struct.
// Whole JSON numbers decode into integer fields; unknown keys are an error.
func Decode(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(args); err != nil {
		return fmt.Errorf("decode arguments: %w", err)
	}
	return nil
}

// bind adapts a typed simulation to a registry.ToolFunction.
func bind[P, R any](run func(context.Context, P) (R, error)) registry.ToolFunction {
	return func(ctx context.Context, args map[string]any) (any, error) {
		var p P
		if err := Decode(args, &p); err != nil {
			return nil, err
		}
		return run(ctx, p)
	}
}
