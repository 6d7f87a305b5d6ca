package normalize_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/aretw0/radiolab/pkg/normalize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Label   string                   `json:"label"`
	Points  []complex128             `json:"points"`
	Levels  map[float64][]complex128 `json:"levels"`
	Ratio   []float64                `json:"ratio"`
	Skipped string                   `json:"-"`
	Empty   string                   `json:"empty,omitempty"`
	hidden  int
}

func TestValue(t *testing.T) {
	in := &sample{
		Label:   "4-QAM",
		Points:  []complex128{complex(1, -1)},
		Levels:  map[float64][]complex128{-5: {complex(0.5, 0)}, 2.5: nil},
		Ratio:   []float64{1.5, math.NaN(), math.Inf(1)},
		Skipped: "x",
		hidden:  3,
	}

	out := normalize.Value(in)

	assert.Equal(t, map[string]any{
		"label":  "4-QAM",
		"points": []any{[]any{1.0, -1.0}},
		"levels": map[string]any{
			"-5":  []any{[]any{0.5, 0.0}},
			"2.5": []any{},
		},
		"ratio": []any{1.5, nil, nil},
	}, out)

	_, err := json.Marshal(out)
	require.NoError(t, err)
}

func TestValue_Scalars(t *testing.T) {
	assert.Nil(t, normalize.Value(nil))
	assert.Equal(t, int64(3), normalize.Value(3))
	assert.Equal(t, "x", normalize.Value("x"))
	assert.Equal(t, []any{int64(1), int64(2)}, normalize.Value([2]int{1, 2}))
	assert.Equal(t, []any{1.0, 2.0}, normalize.Value(complex64(complex(1, 2))))
}

func TestMap(t *testing.T) {
	assert.Equal(t, map[string]any{"value": []any{"qam", "pam"}}, normalize.Map([]string{"qam", "pam"}))
	assert.Equal(t, map[string]any{"10": 0.5}, normalize.Map(map[int]float64{10: 0.5}))
}
