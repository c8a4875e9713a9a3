package ml

import (
	"sort"
	"strconv"

	"github.com/yourusername/temple-crowd/internal/models"
)

// Column split used by the pipeline. Categorical columns are one-hot encoded;
// numeric columns pass through unchanged. Order here fixes the layout of the
// encoded matrix, which must match between training and inference.
var (
	CategoricalColumns = []string{"day_of_week", "month", "hour", "weather"}
	NumericColumns     = []string{"is_weekend", "is_holiday", "is_festival_day"}
)

// categoricalValues extracts the categorical column values of a vector, in
// CategoricalColumns order.
func categoricalValues(v models.FeatureVector) []string {
	return []string{
		strconv.Itoa(v.DayOfWeek),
		strconv.Itoa(v.Month),
		strconv.Itoa(v.Hour),
		v.Weather,
	}
}

// numericValues extracts the numeric column values of a vector, in
// NumericColumns order.
func numericValues(v models.FeatureVector) []float64 {
	return []float64{
		float64(v.IsWeekend),
		float64(v.IsHoliday),
		float64(v.IsFestivalDay),
	}
}

// CategoryColumn holds the known categories of one categorical column, in the
// canonical sorted order established at fit time.
type CategoryColumn struct {
	Name       string
	Categories []string
}

// Lookup returns the one-hot slot of value within the column. Unknown values
// return ok=false; the caller encodes them as an all-zero block.
func (c *CategoryColumn) Lookup(value string) (int, bool) {
	for i, cat := range c.Categories {
		if cat == value {
			return i, true
		}
	}
	return 0, false
}

// Preprocessor one-hot encodes the categorical columns and passes the numeric
// columns through. Unknown categories at inference time map to an all-zero
// encoding rather than failing.
type Preprocessor struct {
	Columns []CategoryColumn
}

// FitPreprocessor learns the category sets from the training vectors.
func FitPreprocessor(vectors []models.FeatureVector) *Preprocessor {
	seen := make([]map[string]struct{}, len(CategoricalColumns))
	for i := range seen {
		seen[i] = make(map[string]struct{})
	}
	for _, v := range vectors {
		for i, value := range categoricalValues(v) {
			seen[i][value] = struct{}{}
		}
	}

	columns := make([]CategoryColumn, len(CategoricalColumns))
	for i, name := range CategoricalColumns {
		cats := make([]string, 0, len(seen[i]))
		for value := range seen[i] {
			cats = append(cats, value)
		}
		sortCategories(cats)
		columns[i] = CategoryColumn{Name: name, Categories: cats}
	}

	return &Preprocessor{Columns: columns}
}

// Width returns the number of encoded feature columns.
func (p *Preprocessor) Width() int {
	width := len(NumericColumns)
	for _, c := range p.Columns {
		width += len(c.Categories)
	}
	return width
}

// Transform encodes a feature vector into the model input row. The second
// return value names the categorical columns whose value was unknown; those
// blocks are all-zero in the row.
func (p *Preprocessor) Transform(v models.FeatureVector) ([]float64, []string) {
	row := make([]float64, p.Width())

	var unknown []string
	offset := 0
	for i, value := range categoricalValues(v) {
		col := &p.Columns[i]
		if slot, ok := col.Lookup(value); ok {
			row[offset+slot] = 1
		} else {
			unknown = append(unknown, col.Name)
		}
		offset += len(col.Categories)
	}

	copy(row[offset:], numericValues(v))
	return row, unknown
}

// TransformBatch encodes many vectors at once, collecting the distinct
// unknown column names across the batch.
func (p *Preprocessor) TransformBatch(vectors []models.FeatureVector) ([][]float64, []string) {
	rows := make([][]float64, len(vectors))
	unknownSet := make(map[string]struct{})
	for i, v := range vectors {
		row, unknown := p.Transform(v)
		rows[i] = row
		for _, name := range unknown {
			unknownSet[name] = struct{}{}
		}
	}

	unknown := make([]string, 0, len(unknownSet))
	for name := range unknownSet {
		unknown = append(unknown, name)
	}
	sort.Strings(unknown)
	return rows, unknown
}

// sortCategories orders category values numerically where possible so
// integer-backed columns (day, month, hour) keep their natural order, and
// lexically otherwise.
func sortCategories(cats []string) {
	sort.Slice(cats, func(i, j int) bool {
		a, aErr := strconv.Atoi(cats[i])
		b, bErr := strconv.Atoi(cats[j])
		if aErr == nil && bErr == nil {
			return a < b
		}
		if aErr == nil {
			return true
		}
		if bErr == nil {
			return false
		}
		return cats[i] < cats[j]
	})
}
