package sim

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"
)

// MaxAntennas bounds either side of an antenna configuration.
const MaxAntennas = 16

// MIMOParams are the inputs of a multi-antenna BER simulation.
type MIMOParams struct {
	NumTxAnt int       `mapstructure:"num_tx_ant"`
	NumRxAnt int       `mapstructure:"num_rx_ant"`
	NumBits  int       `mapstructure:"num_bits"`
	SNRList  []float64 `mapstructure:"snr_db_list"`
}

// MIMOResult is a QPSK BER curve for one antenna configuration.
type MIMOResult struct {
	NumTxAnt int       `json:"num_tx_ant"`
	NumRxAnt int       `json:"num_rx_ant"`
	SNRList  []float64 `json:"snr_db_list"`
	BER      []float64 `json:"ber"`
}

// CompareParams are the inputs of a SISO versus MIMO comparison.
type CompareParams struct {
	SISOConfig []int     `mapstructure:"siso_config"`
	MIMOConfig []int     `mapstructure:"mimo_config"`
	NumBits    int       `mapstructure:"num_bits"`
	SNRList    []float64 `mapstructure:"snr_db_list"`
}

// CompareResult holds both curves and the BER ratio (SISO over MIMO) per SNR.
// A ratio is NaN when the MIMO link made no errors.
type CompareResult struct {
	SISO     *MIMOResult `json:"siso"`
	MIMO     *MIMOResult `json:"mimo"`
	BERRatio []float64   `json:"ber_ratio"`
}

// BERMIMO simulates QPSK over an i.i.d. Rayleigh channel with NumTxAnt
// transmit and NumRxAnt receive antennas. The symbol is repeated on every
// transmit antenna at 1/NumTxAnt power and the receiver applies maximum ratio
// combining on the effective channel.
func (s *Simulator) BERMIMO(ctx context.Context, p MIMOParams) (*MIMOResult, error) {
	if p.NumTxAnt < 1 || p.NumTxAnt > MaxAntennas || p.NumRxAnt < 1 || p.NumRxAnt > MaxAntennas {
		return nil, fmt.Errorf("antenna counts must be within [1, %d], got %dx%d", MaxAntennas, p.NumTxAnt, p.NumRxAnt)
	}
	c, err := NewConstellation(QAM, 2)
	if err != nil {
		return nil, err
	}
	numSymbols := p.NumBits / c.BitsPerSymbol
	if numSymbols < 1 {
		return nil, fmt.Errorf("num_bits %d is smaller than one symbol", p.NumBits)
	}

	r := s.newRNG()
	res := &MIMOResult{
		NumTxAnt: p.NumTxAnt,
		NumRxAnt: p.NumRxAnt,
		SNRList:  append([]float64(nil), p.SNRList...),
		BER:      make([]float64, len(p.SNRList)),
	}
	txScale := complex(1/math.Sqrt(float64(p.NumTxAnt)), 0)

	for k, snr := range p.SNRList {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		noise := r.normal(NoiseVariance(snr))
		fading := r.normal(1)
		labels := r.symbols(numSymbols, c.Size())
		errs := 0
		for _, l := range labels {
			x := c.Points[l]
			var num complex128
			var gain float64
			for rx := 0; rx < p.NumRxAnt; rx++ {
				var heff complex128
				for tx := 0; tx < p.NumTxAnt; tx++ {
					heff += complex(fading.Rand(), fading.Rand())
				}
				heff *= txScale
				y := heff*x + complex(noise.Rand(), noise.Rand())
				num += cmplx.Conj(heff) * y
				gain += sqAbs(heff)
			}
			errs += BitErrors(l, c.Demap(num/complex(gain, 0)))
		}
		res.BER[k] = float64(errs) / float64(numSymbols*c.BitsPerSymbol)
	}
	return res, nil
}

// CompareMIMO runs BERMIMO for both configurations on the same SNR grid.
func (s *Simulator) CompareMIMO(ctx context.Context, p CompareParams) (*CompareResult, error) {
	siso, err := antennaPair("siso_config", p.SISOConfig)
	if err != nil {
		return nil, err
	}
	mimo, err := antennaPair("mimo_config", p.MIMOConfig)
	if err != nil {
		return nil, err
	}

	sisoRes, err := s.BERMIMO(ctx, MIMOParams{NumTxAnt: siso[0], NumRxAnt: siso[1], NumBits: p.NumBits, SNRList: p.SNRList})
	if err != nil {
		return nil, fmt.Errorf("siso: %w", err)
	}
	mimoRes, err := s.BERMIMO(ctx, MIMOParams{NumTxAnt: mimo[0], NumRxAnt: mimo[1], NumBits: p.NumBits, SNRList: p.SNRList})
	if err != nil {
		return nil, fmt.Errorf("mimo: %w", err)
	}

	ratio := make([]float64, len(p.SNRList))
	for i := range ratio {
		if mimoRes.BER[i] == 0 {
			ratio[i] = math.NaN()
			continue
		}
		ratio[i] = sisoRes.BER[i] / mimoRes.BER[i]
	}
	return &CompareResult{SISO: sisoRes, MIMO: mimoRes, BERRatio: ratio}, nil
}

func antennaPair(name string, cfg []int) ([2]int, error) {
	if len(cfg) != 2 {
		return [2]int{}, fmt.Errorf("%s must hold two antenna counts, got %d", name, len(cfg))
	}
	return [2]int{cfg[0], cfg[1]}, nil
}
