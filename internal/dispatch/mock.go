package dispatch

import (
	"encoding/json"

	"statflow/domain/analysis"
)

// mockMessage marks degraded payloads so callers can tell a placeholder
// from a real computation. It is the only field distinguishing the two.
const mockMessage = "computation service unavailable - placeholder result"

// MockPayload builds a per-type placeholder result used when the external
// service is unhealthy. The batch still completes: degraded, not failed.
func MockPayload(t analysis.Type) json.RawMessage {
	base := map[string]interface{}{
		"message": mockMessage,
		"mock":    true,
	}

	switch t {
	case analysis.TypeDescriptive:
		base["variables"] = []interface{}{}
	case analysis.TypeReliability:
		base["cronbach_alpha"] = map[string]interface{}{}
	case analysis.TypeEFA:
		base["factors"] = []interface{}{}
		base["loadings"] = map[string]interface{}{}
	case analysis.TypeCFA:
		base["fit_indices"] = map[string]interface{}{}
	case analysis.TypeCorrelation:
		base["matrix"] = map[string]interface{}{}
	case analysis.TypeTTest:
		base["comparisons"] = []interface{}{}
	case analysis.TypeANOVA:
		base["effects"] = []interface{}{}
	case analysis.TypeRegression:
		base["coefficients"] = []interface{}{}
	case analysis.TypeSEM:
		base["paths"] = []interface{}{}
		base["fit_indices"] = map[string]interface{}{}
	}

	payload, err := json.Marshal(base)
	if err != nil {
		// map[string]interface{} of plain values cannot fail to marshal
		return json.RawMessage(`{"message":"` + mockMessage + `","mock":true}`)
	}
	return payload
}
