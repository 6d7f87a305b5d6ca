package sim

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"math/cmplx"
	"strings"
)

// Modulation schemes.
const (
	QAM = "qam"
	PAM = "pam"
	PSK = "psk"
)

// ErrUnsupportedModulation is returned for unknown schemes and invalid symbol sizes.
var ErrUnsupportedModulation = errors.New("unsupported modulation")

// Modulations lists the supported schemes.
func Modulations() []string {
	return []string{QAM, PAM, PSK}
}

// ResolveModulation maps aliases onto a scheme and symbol size.
// "qpsk" is 4-QAM and "bpsk" is 2-PAM regardless of bitsPerSymbol.
func ResolveModulation(name string, bitsPerSymbol int) (string, int) {
	switch strings.ToLower(name) {
	case "qpsk":
		return QAM, 2
	case "bpsk":
		return PAM, 1
	default:
		return strings.ToLower(name), bitsPerSymbol
	}
}

// Constellation is a Gray-labelled, unit average energy symbol alphabet.
// Points[l] is the symbol carrying bit label l.
type Constellation struct {
	Scheme        string
	BitsPerSymbol int
	Points        []complex128
}

// NewConstellation builds the constellation for a scheme (aliases allowed).
func NewConstellation(name string, bitsPerSymbol int) (*Constellation, error) {
	scheme, k := ResolveModulation(name, bitsPerSymbol)
	if k < 1 || k > 8 {
		return nil, fmt.Errorf("%w: %d bits per symbol", ErrUnsupportedModulation, k)
	}

	var points []complex128
	switch scheme {
	case QAM:
		if k%2 != 0 {
			return nil, fmt.Errorf("%w: qam needs an even number of bits per symbol, got %d", ErrUnsupportedModulation, k)
		}
		points = qamPoints(k)
	case PAM:
		points = pamPoints(k)
	case PSK:
		points = pskPoints(k)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedModulation, name)
	}

	normalize(points)
	return &Constellation{Scheme: scheme, BitsPerSymbol: k, Points: points}, nil
}

// Size is the number of points.
func (c *Constellation) Size() int { return len(c.Points) }

// Label formats the constellation like "16-QAM".
func (c *Constellation) Label() string {
	return fmt.Sprintf("%d-%s", c.Size(), strings.ToUpper(c.Scheme))
}

// Map returns the symbols for the given labels.
func (c *Constellation) Map(labels []int) []complex128 {
	out := make([]complex128, len(labels))
	for i, l := range labels {
		out[i] = c.Points[l]
	}
	return out
}

// Demap returns the label of the nearest point (hard decision).
func (c *Constellation) Demap(y complex128) int {
	best, bestDist := 0, math.Inf(1)
	for l, p := range c.Points {
		d := sqAbs(y - p)
		if d < bestDist {
			best, bestDist = l, d
		}
	}
	return best
}

// BitErrors counts differing bits between two labels.
func BitErrors(a, b int) int {
	return bits.OnesCount(uint(a ^ b))
}

func gray(i int) int { return i ^ (i >> 1) }

// pamLevels returns Gray-labelled amplitudes: levels[l] is the amplitude for label l.
func pamLevels(k int) []float64 {
	m := 1 << k
	levels := make([]float64, m)
	for i := 0; i < m; i++ {
		levels[gray(i)] = float64(2*i - (m - 1))
	}
	return levels
}

func pamPoints(k int) []complex128 {
	levels := pamLevels(k)
	points := make([]complex128, len(levels))
	for l, a := range levels {
		points[l] = complex(a, 0)
	}
	return points
}

// qamPoints is the product of two Gray PAMs; the upper half of the label selects the in-phase level.
func qamPoints(k int) []complex128 {
	half := k / 2
	levels := pamLevels(half)
	side := 1 << half
	points := make([]complex128, side*side)
	for li := 0; li < side; li++ {
		for lq := 0; lq < side; lq++ {
			points[li<<half|lq] = complex(levels[li], levels[lq])
		}
	}
	return points
}

func pskPoints(k int) []complex128 {
	m := 1 << k
	points := make([]complex128, m)
	for i := 0; i < m; i++ {
		points[gray(i)] = cmplx.Rect(1, 2*math.Pi*float64(i)/float64(m))
	}
	return points
}

func normalize(points []complex128) {
	var energy float64
	for _, p := range points {
		energy += sqAbs(p)
	}
	scale := complex(1/math.Sqrt(energy/float64(len(points))), 0)
	for i := range points {
		points[i] *= scale
	}
}

func sqAbs(z complex128) float64 {
	return real(z)*real(z) + imag(z)*imag(z)
}

// ModulationInfo describes a constellation.
type ModulationInfo struct {
	Modulation    string       `json:"modulation"`
	NumPoints     int          `json:"num_points"`
	BitsPerSymbol int          `json:"bits_per_symbol"`
	Points        []complex128 `json:"points"`
}

// Info returns the description of a constellation.
func Info(name string, bitsPerSymbol int) (*ModulationInfo, error) {
	c, err := NewConstellation(name, bitsPerSymbol)
	if err != nil {
		return nil, err
	}
	return &ModulationInfo{
		Modulation:    c.Label(),
		NumPoints:     c.Size(),
		BitsPerSymbol: c.BitsPerSymbol,
		Points:        c.Points,
	}, nil
}
