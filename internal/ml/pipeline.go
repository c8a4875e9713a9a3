package ml

import "github.com/yourusername/temple-crowd/internal/models"

// Pipeline couples the fitted preprocessor and regressor. The column layout
// produced by Pre is the one Model was trained on; the pair is persisted and
// loaded together so the training/serving contract cannot drift.
type Pipeline struct {
	Pre   *Preprocessor
	Model *GBTRegressor
}

// Predict runs one feature vector through the pipeline. The returned slice
// names categorical columns that fell back to the unknown (all-zero) encoding.
func (p *Pipeline) Predict(v models.FeatureVector) (float64, []string, error) {
	row, unknown := p.Pre.Transform(v)
	out, err := p.Model.Predict(row)
	if err != nil {
		return 0, nil, err
	}
	return out, unknown, nil
}

// PredictBatch runs many feature vectors through the pipeline in a single
// model invocation.
func (p *Pipeline) PredictBatch(vectors []models.FeatureVector) ([]float64, []string, error) {
	rows, unknown := p.Pre.TransformBatch(vectors)
	out, err := p.Model.PredictBatch(rows)
	if err != nil {
		return nil, nil, err
	}
	return out, unknown, nil
}
