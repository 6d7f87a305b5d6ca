package catalog

import (
	"github.com/aretw0/radiolab/pkg/domain"
)

func ptr[T any](v T) *T { return &v }

func modulationParam() domain.ParamSpec {
	return domain.ParamSpec{
		Name:        "modulation",
		Type:        domain.TypeString,
		Description: "Modulation scheme. qpsk and bpsk are aliases for 4-QAM and 2-PAM.",
		Enum:        []any{"qam", "pam", "psk", "qpsk", "bpsk"},
		Default:     "qam",
	}
}

func bitsPerSymbolParam() domain.ParamSpec {
	return domain.ParamSpec{
		Name:        "bits_per_symbol",
		Type:        domain.TypeInteger,
		Description: "Bits carried by each symbol. QAM needs an even value.",
		Minimum:     ptr(1.0),
		Maximum:     ptr(8.0),
		Default:     2,
	}
}

func snrListParam(def []any) domain.ParamSpec {
	return domain.ParamSpec{
		Name:        "snr_db_list",
		Type:        domain.TypeArray,
		Description: "Signal-to-noise ratios in dB.",
		Items:       &domain.ParamSpec{Type: domain.TypeNumber, Minimum: ptr(-50.0), Maximum: ptr(60.0)},
		MinItems:    ptr(1),
		MaxItems:    ptr(64),
		Default:     def,
	}
}

func numBitsParam(maximum float64) domain.ParamSpec {
	return domain.ParamSpec{
		Name:        "num_bits",
		Type:        domain.TypeInteger,
		Description: "Number of simulated bits per SNR point.",
		Minimum:     ptr(1.0),
		Maximum:     ptr(maximum),
		Default:     100000,
	}
}

func positionSpec(description string) domain.ParamSpec {
	return domain.ParamSpec{
		Type:        domain.TypeArray,
		Description: description,
		Items:       &domain.ParamSpec{Type: domain.TypeNumber},
		MinItems:    ptr(3),
		MaxItems:    ptr(3),
	}
}

func positionParam(name, description string, def []any) domain.ParamSpec {
	p := positionSpec(description)
	p.Name = name
	p.Default = def
	return p
}

func positionListParam(name, description string, def []any) domain.ParamSpec {
	item := positionSpec("[x, y, z] in metres.")
	return domain.ParamSpec{
		Name:        name,
		Type:        domain.TypeArray,
		Description: description,
		Items:       &item,
		MinItems:    ptr(1),
		MaxItems:    ptr(16),
		Default:     def,
	}
}

func metricParam(def string) domain.ParamSpec {
	return domain.ParamSpec{
		Name:        "metric",
		Type:        domain.TypeString,
		Description: "Map metric: received signal strength (dBm), path gain (dB) or SINR (dB).",
		Enum:        []any{"rss", "path_gain", "sinr"},
		Default:     def,
	}
}

func antennaConfigParam(name, description string, def []any) domain.ParamSpec {
	return domain.ParamSpec{
		Name:        name,
		Type:        domain.TypeArray,
		Description: description,
		Items:       &domain.ParamSpec{Type: domain.TypeInteger, Minimum: ptr(1.0), Maximum: ptr(16.0)},
		MinItems:    ptr(2),
		MaxItems:    ptr(2),
		Default:     def,
	}
}

func antennaCountParam(name, description string) domain.ParamSpec {
	return domain.ParamSpec{
		Name:        name,
		Type:        domain.TypeInteger,
		Description: description,
		Minimum:     ptr(1.0),
		Maximum:     ptr(16.0),
		Default:     1,
	}
}

// mimoSNRDefault is 0 to 20 dB in 2 dB steps.
func mimoSNRDefault() []any {
	out := make([]any, 0, 11)
	for snr := 0; snr <= 20; snr += 2 {
		out = append(out, float64(snr))
	}
	return out
}
