package legacy

// LabelEncoder maps a categorical value to the integer index it was trained
// with. The class list is ordered exactly as persisted in the bundle.
type LabelEncoder struct {
	Classes []string `json:"classes"`
}

// Transform returns the index of value among the known classes. Unknown
// values map to len(Classes), the dedicated out-of-vocabulary bucket.
func (e *LabelEncoder) Transform(value string) int {
	for i, class := range e.Classes {
		if class == value {
			return i
		}
	}
	return len(e.Classes)
}

// Known reports whether value is one of the trained classes.
func (e *LabelEncoder) Known(value string) bool {
	return e.Transform(value) < len(e.Classes)
}
