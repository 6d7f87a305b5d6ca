package decompose

import (
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/aretw0/radiolab/pkg/domain"
)

var (
	snrPattern      = regexp.MustCompile(`(-?\d+(?:\.\d+)?)\s*db`)
	qamPattern      = regexp.MustCompile(`(\d+)\s*[- ]?\s*qam`)
	antennaPattern  = regexp.MustCompile(`(\d+)\s*x\s*(\d+)`)
	positionPattern = regexp.MustCompile(`\(\s*(-?\d+(?:\.\d+)?)\s*,\s*(-?\d+(?:\.\d+)?)\s*,\s*(-?\d+(?:\.\d+)?)\s*\)`)
	txCountPattern  = regexp.MustCompile(`(\d+)\s+(?:transmitters?|tx|base stations?)`)
)

// Modulation is an extracted scheme and symbol size.
type Modulation struct {
	Scheme        string
	BitsPerSymbol int
}

// AntennaConfigs are the extracted SISO (reference) and MIMO configurations.
type AntennaConfigs struct {
	SISO Optional[domain.AntennaConfig]
	MIMO Optional[domain.AntennaConfig]
}

// ExtractSNR returns every "<n> db" value truncated to an integer,
// de-duplicated and sorted ascending.
func ExtractSNR(text string) Optional[[]int] {
	var values []int
	for _, m := range snrPattern.FindAllStringSubmatch(text, -1) {
		f, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		values = append(values, int(f))
	}
	if len(values) == 0 {
		return None[[]int]()
	}
	slices.Sort(values)
	return Some(slices.Compact(values))
}

// ExtractModulation recognises qpsk, bpsk, "<order>-qam" and bare psk.
// qpsk and bare psk map to 4-QAM, bpsk to 2-PAM.
func ExtractModulation(text string) Optional[Modulation] {
	switch {
	case strings.Contains(text, "qpsk"):
		return Some(Modulation{Scheme: "qam", BitsPerSymbol: 2})
	case strings.Contains(text, "bpsk"):
		return Some(Modulation{Scheme: "pam", BitsPerSymbol: 1})
	}
	if m := qamPattern.FindStringSubmatch(text); m != nil {
		bits := 2
		if order, err := strconv.Atoi(m[1]); err == nil && order > 0 {
			bits = int(math.Log2(float64(order)))
		}
		return Some(Modulation{Scheme: "qam", BitsPerSymbol: bits})
	}
	if strings.Contains(text, "psk") {
		return Some(Modulation{Scheme: "qam", BitsPerSymbol: 2})
	}
	return None[Modulation]()
}

// ExtractAntennaConfigs reads "<tx>x<rx>" pairs in order of first appearance.
// The first pair is the SISO reference and the second the MIMO configuration.
// A lone pair other than 2x2 also yields a MIMO configuration with at least
// two antennas on each side.
func ExtractAntennaConfigs(text string) AntennaConfigs {
	var pairs []domain.AntennaConfig
	for _, m := range antennaPattern.FindAllStringSubmatch(text, -1) {
		tx, errTx := strconv.Atoi(m[1])
		rx, errRx := strconv.Atoi(m[2])
		if errTx != nil || errRx != nil {
			continue
		}
		pair := domain.AntennaConfig{tx, rx}
		if !slices.Contains(pairs, pair) {
			pairs = append(pairs, pair)
		}
	}

	var out AntennaConfigs
	switch {
	case len(pairs) == 0:
	case len(pairs) > 1:
		out.SISO = Some(pairs[0])
		out.MIMO = Some(pairs[1])
	default:
		first := pairs[0]
		out.SISO = Some(first)
		if first != (domain.AntennaConfig{2, 2}) {
			out.MIMO = Some(domain.AntennaConfig{max(2, first[0]), max(2, first[1])})
		}
	}
	return out
}

// ExtractPositions returns every "(x, y, z)" triple in order.
func ExtractPositions(text string) []domain.Position {
	var out []domain.Position
	for _, m := range positionPattern.FindAllStringSubmatch(text, -1) {
		var p domain.Position
		ok := true
		for i := range p {
			v, err := strconv.ParseFloat(m[i+1], 64)
			if err != nil {
				ok = false
				break
			}
			p[i] = v
		}
		if ok {
			out = append(out, p)
		}
	}
	return out
}

// ExtractTransmitterCount reads "<n> transmitters", "<n> tx" or "<n> base stations".
func ExtractTransmitterCount(text string) Optional[int] {
	m := txCountPattern.FindStringSubmatch(text)
	if m == nil {
		return None[int]()
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n == 0 {
		return None[int]()
	}
	return Some(n)
}
