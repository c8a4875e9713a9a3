package predictor

import "errors"

// ErrModelNotLoaded is returned when a prediction is requested before
// LoadOrTrain has completed successfully.
var ErrModelNotLoaded = errors.New("model not loaded")
