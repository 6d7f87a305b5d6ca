package sim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Coverage map metrics.
const (
	MetricRSS      = "rss"
	MetricPathGain = "path_gain"
	MetricSINR     = "sinr"
)

// RadioConfig holds the propagation and receiver parameters of coverage maps.
type RadioConfig struct {
	FrequencyHz   float64 `mapstructure:"frequency_hz"`
	TxPowerDBm    float64 `mapstructure:"tx_power_dbm"`
	BandwidthHz   float64 `mapstructure:"bandwidth_hz"`
	NoiseFigureDB float64 `mapstructure:"noise_figure_db"`
	CellSize      float64 `mapstructure:"cell_size"`
	Margin        float64 `mapstructure:"margin"`
	MaxCells      int     `mapstructure:"max_cells"`
	MapHeight     float64 `mapstructure:"map_height"`
	MinSINRDB     float64 `mapstructure:"min_sinr_db"`
}

// DefaultRadioConfig is a 3.5 GHz, 20 MHz carrier with 2 m cells.
func DefaultRadioConfig() RadioConfig {
	return RadioConfig{
		FrequencyHz:   3.5e9,
		TxPowerDBm:    30,
		BandwidthHz:   20e6,
		NoiseFigureDB: 7,
		CellSize:      2,
		Margin:        50,
		MaxCells:      200,
		MapHeight:     1.5,
		MinSINRDB:     0,
	}
}

// NoiseDBm is the thermal noise power over the configured bandwidth.
func (c RadioConfig) NoiseDBm() float64 {
	return -174 + 10*math.Log10(c.BandwidthHz) + c.NoiseFigureDB
}

// PathGainDB is the free-space gain (negative loss) between two points.
// Distances below one metre are clamped.
func (c RadioConfig) PathGainDB(a, b [3]float64) float64 {
	d := math.Max(distance(a, b), 1)
	return -(20*math.Log10(d) + 20*math.Log10(c.FrequencyHz) - 147.55)
}

// RadioMapParams are the inputs of a single transmitter map.
type RadioMapParams struct {
	TXPosition []float64 `mapstructure:"tx_position"`
	RXPosition []float64 `mapstructure:"rx_position"`
	Metric     string    `mapstructure:"metric"`
}

// MultiRadioMapParams are the inputs of a multi transmitter map.
type MultiRadioMapParams struct {
	TXPositions [][]float64 `mapstructure:"tx_positions"`
	RXPositions [][]float64 `mapstructure:"rx_positions"`
	Metric      string      `mapstructure:"metric"`
}

// RadioGrid is a regular grid of metric values at MapHeight.
// Values[row][col] is the cell centred at
// (OriginX + (col+0.5)*CellSize, OriginY + (row+0.5)*CellSize).
type RadioGrid struct {
	OriginX  float64     `json:"origin_x"`
	OriginY  float64     `json:"origin_y"`
	CellSize float64     `json:"cell_size"`
	Height   float64     `json:"height"`
	Cols     int         `json:"cols"`
	Rows     int         `json:"rows"`
	Values   [][]float64 `json:"values"`
}

// ReceiverReport is the link seen by one receiver.
type ReceiverReport struct {
	Position  [3]float64 `json:"position"`
	Value     float64    `json:"value"`
	ServingTX int        `json:"serving_tx"`
	SINRDB    float64    `json:"sinr_db"`
}

// MapStats summarises a grid.
type MapStats struct {
	Min                    float64 `json:"min"`
	Max                    float64 `json:"max"`
	Mean                   float64 `json:"mean"`
	Coverage               float64 `json:"coverage"`
	MeanSpectralEfficiency float64 `json:"mean_spectral_efficiency"`
}

// RadioMapResult is a coverage map plus receiver reports.
type RadioMapResult struct {
	Metric      string           `json:"metric"`
	Unit        string           `json:"unit"`
	TXPositions [][3]float64     `json:"tx_positions"`
	RXPositions [][3]float64     `json:"rx_positions"`
	Grid        RadioGrid        `json:"grid"`
	Receivers   []ReceiverReport `json:"receivers"`
	Stats       MapStats         `json:"stats"`
}

// RadioMap computes a single transmitter coverage map.
func (s *Simulator) RadioMap(ctx context.Context, p RadioMapParams) (*RadioMapResult, error) {
	multi := MultiRadioMapParams{Metric: p.Metric, TXPositions: [][]float64{p.TXPosition}}
	if p.RXPosition != nil {
		multi.RXPositions = [][]float64{p.RXPosition}
	}
	return s.MultiRadioMap(ctx, multi)
}

// MultiRadioMap computes a coverage map for several transmitters sharing one
// carrier. Every point is served by the strongest transmitter; the others
// count as interference for SINR.
func (s *Simulator) MultiRadioMap(ctx context.Context, p MultiRadioMapParams) (*RadioMapResult, error) {
	unit, err := metricUnit(p.Metric)
	if err != nil {
		return nil, err
	}
	if len(p.TXPositions) == 0 {
		return nil, errors.New("at least one transmitter position is required")
	}
	txs, err := toPositions("tx", p.TXPositions)
	if err != nil {
		return nil, err
	}
	rxs, err := toPositions("rx", p.RXPositions)
	if err != nil {
		return nil, err
	}

	cfg := s.radio
	grid := layoutGrid(cfg, append(append([][3]float64{}, txs...), rxs...))

	flat := make([]float64, 0, grid.Rows*grid.Cols)
	efficiency := make([]float64, 0, grid.Rows*grid.Cols)
	covered := 0
	for row := 0; row < grid.Rows; row++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		values := make([]float64, grid.Cols)
		for col := 0; col < grid.Cols; col++ {
			pt := [3]float64{
				grid.OriginX + (float64(col)+0.5)*grid.CellSize,
				grid.OriginY + (float64(row)+0.5)*grid.CellSize,
				grid.Height,
			}
			l := cfg.linkAt(txs, pt)
			values[col] = l.metric(p.Metric)
			flat = append(flat, values[col])
			efficiency = append(efficiency, math.Log2(1+dbToLinear(l.sinrDB)))
			if l.sinrDB >= cfg.MinSINRDB {
				covered++
			}
		}
		grid.Values = append(grid.Values, values)
	}

	reports := make([]ReceiverReport, len(rxs))
	for i, rx := range rxs {
		l := cfg.linkAt(txs, rx)
		reports[i] = ReceiverReport{Position: rx, Value: l.metric(p.Metric), ServingTX: l.serving, SINRDB: l.sinrDB}
	}

	return &RadioMapResult{
		Metric:      p.Metric,
		Unit:        unit,
		TXPositions: txs,
		RXPositions: rxs,
		Grid:        grid,
		Receivers:   reports,
		Stats: MapStats{
			Min:                    floats.Min(flat),
			Max:                    floats.Max(flat),
			Mean:                   stat.Mean(flat, nil),
			Coverage:               float64(covered) / float64(len(flat)),
			MeanSpectralEfficiency: stat.Mean(efficiency, nil),
		},
	}, nil
}

// link is the view of all transmitters from one point.
type link struct {
	serving    int
	pathGainDB float64
	rssDBm     float64
	sinrDB     float64
}

func (l link) metric(name string) float64 {
	switch name {
	case MetricPathGain:
		return l.pathGainDB
	case MetricSINR:
		return l.sinrDB
	default:
		return l.rssDBm
	}
}

func (c RadioConfig) linkAt(txs [][3]float64, pt [3]float64) link {
	gains := make([]float64, len(txs))
	var total float64
	for i, tx := range txs {
		gains[i] = c.PathGainDB(tx, pt)
		total += dbToLinear(c.TxPowerDBm + gains[i])
	}
	best := floats.MaxIdx(gains)
	signal := dbToLinear(c.TxPowerDBm + gains[best])
	interference := total - signal
	return link{
		serving:    best,
		pathGainDB: gains[best],
		rssDBm:     c.TxPowerDBm + gains[best],
		sinrDB:     linearToDB(signal / (interference + dbToLinear(c.NoiseDBm()))),
	}
}

func layoutGrid(cfg RadioConfig, points [][3]float64) RadioGrid {
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p[0], p[1]
	}
	minX, maxX := floats.Min(xs)-cfg.Margin, floats.Max(xs)+cfg.Margin
	minY, maxY := floats.Min(ys)-cfg.Margin, floats.Max(ys)+cfg.Margin

	cell := cfg.CellSize
	if span := math.Max(maxX-minX, maxY-minY); cfg.MaxCells > 0 && span/cell > float64(cfg.MaxCells) {
		cell = span / float64(cfg.MaxCells)
	}
	return RadioGrid{
		OriginX:  minX,
		OriginY:  minY,
		CellSize: cell,
		Height:   cfg.MapHeight,
		Cols:     max(1, int(math.Ceil((maxX-minX)/cell))),
		Rows:     max(1, int(math.Ceil((maxY-minY)/cell))),
	}
}

func metricUnit(metric string) (string, error) {
	switch metric {
	case MetricRSS:
		return "dBm", nil
	case MetricPathGain, MetricSINR:
		return "dB", nil
	default:
		return "", fmt.Errorf("unknown metric %q", metric)
	}
}

func toPositions(kind string, raw [][]float64) ([][3]float64, error) {
	out := make([][3]float64, len(raw))
	for i, p := range raw {
		if len(p) != 3 {
			return nil, fmt.Errorf("%s position %d must have 3 coordinates, got %d", kind, i, len(p))
		}
		out[i] = [3]float64{p[0], p[1], p[2]}
	}
	return out, nil
}

func distance(a, b [3]float64) float64 {
	dx, dy, dz := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func dbToLinear(db float64) float64 { return math.Pow(10, db/10) }

func linearToDB(v float64) float64 { return 10 * math.Log10(v) }
