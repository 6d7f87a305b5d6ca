package sim

import (
	"context"
	"fmt"
	"math"
)

// Channel models for BER simulations.
const (
	ChannelAWGN     = "awgn"
	ChannelRayleigh = "rayleigh"
)

// ConstellationParams are the inputs of a constellation simulation.
type ConstellationParams struct {
	Modulation    string    `mapstructure:"modulation"`
	BitsPerSymbol int       `mapstructure:"bits_per_symbol"`
	NumSymbols    int       `mapstructure:"num_symbols"`
	SNRList       []float64 `mapstructure:"snr_db_list"`
}

// ConstellationResult holds the ideal points and the received samples per SNR.
type ConstellationResult struct {
	Modulation    string                   `json:"modulation"`
	Constellation []complex128             `json:"constellation"`
	SNRLevels     map[float64][]complex128 `json:"snr_levels"`
}

// BERParams are the inputs of a bit error rate simulation.
type BERParams struct {
	Modulation    string    `mapstructure:"modulation"`
	BitsPerSymbol int       `mapstructure:"bits_per_symbol"`
	SNRList       []float64 `mapstructure:"snr_db_list"`
	NumBits       int       `mapstructure:"num_bits"`
	Channels      []string  `mapstructure:"channels"`
}

// BERResult maps SNR (dB) to channel name to bit error rate.
type BERResult struct {
	Modulation string                         `json:"modulation"`
	NumBits    int                            `json:"num_bits"`
	BER        map[float64]map[string]float64 `json:"ber"`
}

// NoiseVariance converts an Es/N0 in dB into the noise variance seen by unit-energy symbols.
func NoiseVariance(snrDB float64) float64 {
	return 1 / math.Pow(10, snrDB/10)
}

// Constellation transmits random symbols through AWGN at every SNR.
func (s *Simulator) Constellation(ctx context.Context, p ConstellationParams) (*ConstellationResult, error) {
	c, err := NewConstellation(p.Modulation, p.BitsPerSymbol)
	if err != nil {
		return nil, err
	}
	r := s.newRNG()
	tx := c.Map(r.symbols(p.NumSymbols, c.Size()))

	res := &ConstellationResult{
		Modulation:    c.Label(),
		Constellation: c.Points,
		SNRLevels:     make(map[float64][]complex128, len(p.SNRList)),
	}
	for _, snr := range p.SNRList {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		noise := r.complexGaussian(len(tx), NoiseVariance(snr))
		rx := make([]complex128, len(tx))
		for i := range tx {
			rx[i] = tx[i] + noise[i]
		}
		res.SNRLevels[snr] = rx
	}
	return res, nil
}

// BER estimates the bit error rate of a constellation over the requested channels.
// Rayleigh fading is flat, independent per symbol, and equalized with perfect channel knowledge.
func (s *Simulator) BER(ctx context.Context, p BERParams) (*BERResult, error) {
	c, err := NewConstellation(p.Modulation, p.BitsPerSymbol)
	if err != nil {
		return nil, err
	}
	for _, ch := range p.Channels {
		if ch != ChannelAWGN && ch != ChannelRayleigh {
			return nil, fmt.Errorf("unknown channel %q", ch)
		}
	}
	numSymbols := p.NumBits / c.BitsPerSymbol
	if numSymbols < 1 {
		return nil, fmt.Errorf("num_bits %d is smaller than one %s symbol", p.NumBits, c.Label())
	}

	r := s.newRNG()
	res := &BERResult{
		Modulation: c.Label(),
		NumBits:    numSymbols * c.BitsPerSymbol,
		BER:        make(map[float64]map[string]float64, len(p.SNRList)),
	}
	for _, snr := range p.SNRList {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		labels := r.symbols(numSymbols, c.Size())
		tx := c.Map(labels)
		n0 := NoiseVariance(snr)

		res.BER[snr] = make(map[string]float64, len(p.Channels))
		for _, ch := range p.Channels {
			noise := r.complexGaussian(numSymbols, n0)
			var fading []complex128
			if ch == ChannelRayleigh {
				fading = r.complexGaussian(numSymbols, 1)
			}

			errs := 0
			for i, x := range tx {
				y := x + noise[i]
				if fading != nil {
					h := fading[i]
					y = (h*x + noise[i]) / h
				}
				errs += BitErrors(labels[i], c.Demap(y))
			}
			res.BER[snr][ch] = float64(errs) / float64(res.NumBits)
		}
	}
	return res, nil
}
