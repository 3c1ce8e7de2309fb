// Package export transforms heterogeneous per-analysis-type results into a
// tabular workbook and a printable report.
package export

import (
	"encoding/json"
	"sort"

	"statflow/domain/analysis"
)

// Known per-type payload shapes. Anything that does not unmarshal into its
// known shape falls back to a raw structured dump.

type descriptiveRow struct {
	Variable string  `json:"variable"`
	N        int     `json:"n"`
	Mean     float64 `json:"mean"`
	SD       float64 `json:"sd"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"`
}

type descriptivePayload struct {
	Variables []descriptiveRow `json:"variables"`
}

type reliabilityItem struct {
	Item      string  `json:"item"`
	ItemTotal float64 `json:"item_total"`
}

type reliabilityGroup struct {
	Group string            `json:"group"`
	Alpha float64           `json:"alpha"`
	Items []reliabilityItem `json:"items"`
}

type reliabilityPayload struct {
	Groups []reliabilityGroup `json:"groups"`
}

type correlationPayload struct {
	Matrix map[string]map[string]float64 `json:"matrix"`
}

// correlationPair is one flattened matrix cell
type correlationPair struct {
	X, Y string
	R    float64
}

func parseDescriptive(r analysis.Result) (*descriptivePayload, bool) {
	var p descriptivePayload
	if err := json.Unmarshal(r.Payload(), &p); err != nil || len(p.Variables) == 0 {
		return nil, false
	}
	return &p, true
}

func parseReliability(r analysis.Result) (*reliabilityPayload, bool) {
	var p reliabilityPayload
	if err := json.Unmarshal(r.Payload(), &p); err != nil || len(p.Groups) == 0 {
		return nil, false
	}
	return &p, true
}

// parseCorrelation flattens the pairwise matrix into deterministic row order
func parseCorrelation(r analysis.Result) ([]correlationPair, bool) {
	var p correlationPayload
	if err := json.Unmarshal(r.Payload(), &p); err != nil || len(p.Matrix) == 0 {
		return nil, false
	}

	xs := make([]string, 0, len(p.Matrix))
	for x := range p.Matrix {
		xs = append(xs, x)
	}
	sort.Strings(xs)

	var pairs []correlationPair
	for _, x := range xs {
		ys := make([]string, 0, len(p.Matrix[x]))
		for y := range p.Matrix[x] {
			ys = append(ys, y)
		}
		sort.Strings(ys)
		for _, y := range ys {
			pairs = append(pairs, correlationPair{X: x, Y: y, R: p.Matrix[x][y]})
		}
	}
	return pairs, true
}

// rawDump pretty-prints an arbitrary payload for the fallback path
func rawDump(payload json.RawMessage) string {
	var v interface{}
	if err := json.Unmarshal(payload, &v); err != nil {
		return string(payload)
	}
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return string(payload)
	}
	return string(pretty)
}
