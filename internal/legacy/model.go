package legacy

import "fmt"

// LinearRegressor is the persisted form of the legacy crowd model: a plain
// linear fit over the three encoded inputs (day, festival, weather).
type LinearRegressor struct {
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

// Predict evaluates the regressor on the encoded feature row.
func (m *LinearRegressor) Predict(features []float64) (float64, error) {
	if len(features) != len(m.Coefficients) {
		return 0, fmt.Errorf("%w: got %d features, model has %d coefficients",
			ErrBundleMalformed, len(features), len(m.Coefficients))
	}
	out := m.Intercept
	for i, f := range features {
		out += m.Coefficients[i] * f
	}
	return out, nil
}
