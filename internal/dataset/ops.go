package dataset

import (
	"fmt"
	"math"
	"math/rand/v2"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonWordRE    = regexp.MustCompile(`[^\w\s]`)
	whitespaceRE = regexp.MustCompile(`\s+`)
)

// foldAccents decomposes s and drops combining marks, so "Prénom" becomes
// "Prenom". Characters without an ASCII base are left for the punctuation
// filter to remove.
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// CleanColumnNames trims, lower-cases, folds accents and strips punctuation
// from column names, joining words with underscores.
func CleanColumnNames(t *Table) *Table {
	out := t.Clone()
	for i, name := range out.Columns {
		name = strings.ToLower(strings.TrimSpace(foldAccents(name)))
		name = nonWordRE.ReplaceAllString(name, "")
		out.Columns[i] = whitespaceRE.ReplaceAllString(name, "_")
	}
	return out
}

// Missing-value strategies.
const (
	StrategyDrop        = "drop"
	StrategyMean        = "mean"
	StrategyMedian      = "median"
	StrategyMode        = "mode"
	StrategyForwardFill = "forward_fill"
	StrategyBackFill    = "back_fill"
	StrategyCustom      = "custom"
)

// MissingOptions configures HandleMissing. Empty Columns selects all.
type MissingOptions struct {
	Strategy  string
	Columns   []string
	FillValue string
}

// HandleMissing fills or drops missing cells. Mean and median only touch
// numeric columns; other strategies apply to any column.
func HandleMissing(t *Table, opts MissingOptions) (*Table, error) {
	if opts.Strategy == "" {
		opts.Strategy = StrategyDrop
	}
	idx, _, err := t.resolveColumns(opts.Columns, func() []string { return t.Columns })
	if err != nil {
		return nil, err
	}

	out := t.Clone()
	switch opts.Strategy {
	case StrategyDrop:
		out.Rows = slices.DeleteFunc(out.Rows, func(row []string) bool {
			return slices.ContainsFunc(idx, func(i int) bool { return IsMissing(cell(row, i)) })
		})
	case StrategyMean, StrategyMedian:
		for _, i := range idx {
			if !t.IsNumeric(i) {
				continue
			}
			xs := t.numbers(i)
			v := mean(xs)
			if opts.Strategy == StrategyMedian {
				v = median(xs)
			}
			fillColumn(out, i, formatFloat(v))
		}
	case StrategyMode:
		for _, i := range idx {
			var present []string
			for _, row := range t.Rows {
				if v := cell(row, i); !IsMissing(v) {
					present = append(present, v)
				}
			}
			if len(present) == 0 {
				continue
			}
			m, _ := mode(present)
			fillColumn(out, i, m)
		}
	case StrategyForwardFill, StrategyBackFill:
		for _, i := range idx {
			propagate(out, i, opts.Strategy == StrategyBackFill)
		}
	case StrategyCustom:
		for _, i := range idx {
			fillColumn(out, i, opts.FillValue)
		}
	default:
		return nil, fmt.Errorf("unknown missing-value strategy %q", opts.Strategy)
	}
	return out, nil
}

func fillColumn(t *Table, idx int, v string) {
	for r, row := range t.Rows {
		if IsMissing(cell(row, idx)) {
			t.Rows[r] = setCell(row, idx, v)
		}
	}
}

// propagate copies the last seen value into following missing cells, or
// the next seen value into preceding cells when backward is set. Leading
// (or trailing) gaps with nothing to copy stay missing.
func propagate(t *Table, idx int, backward bool) {
	n := len(t.Rows)
	last := ""
	have := false
	for k := range n {
		r := k
		if backward {
			r = n - 1 - k
		}
		v := cell(t.Rows[r], idx)
		if !IsMissing(v) {
			last, have = v, true
			continue
		}
		if have {
			t.Rows[r] = setCell(t.Rows[r], idx, last)
		}
	}
}

// Encoding methods.
const (
	EncodeLabel  = "label"
	EncodeOneHot = "onehot"
)

// EncodeOptions configures EncodeCategorical. Empty Columns selects the
// categorical columns.
type EncodeOptions struct {
	Method  string
	Columns []string
}

// Encoders records how each column was encoded. For label encoding the
// class at index i was replaced by i. For one-hot encoding the classes are
// the generated column suffixes.
type Encoders map[string][]string

// EncodeCategorical replaces categorical values with numbers. Label
// encoding maps sorted distinct values to 0..n-1 in place. One-hot
// encoding removes each column and appends <col>_<value> indicator columns.
// Missing cells are encoded as the empty-string class for label encoding
// and as all zeros for one-hot encoding.
func EncodeCategorical(t *Table, opts EncodeOptions) (*Table, Encoders, error) {
	if opts.Method == "" {
		opts.Method = EncodeLabel
	}
	if opts.Method != EncodeLabel && opts.Method != EncodeOneHot {
		return nil, nil, fmt.Errorf("unknown encoding method %q", opts.Method)
	}
	idx, names, err := t.resolveColumns(opts.Columns, t.CategoricalColumns)
	if err != nil {
		return nil, nil, err
	}

	encoders := make(Encoders, len(idx))
	out := t.Clone()

	if opts.Method == EncodeLabel {
		for k, i := range idx {
			classes := distinct(t, i, true)
			codes := make(map[string]int, len(classes))
			for code, c := range classes {
				codes[c] = code
			}
			for r, row := range out.Rows {
				v := cell(row, i)
				if IsMissing(v) {
					v = ""
				}
				out.Rows[r] = setCell(row, i, strconv.Itoa(codes[v]))
			}
			encoders[names[k]] = classes
		}
		return out, encoders, nil
	}

	drop := make(map[int]bool, len(idx))
	var extraCols []string
	extraVals := make([][]string, len(t.Rows))
	for k, i := range idx {
		drop[i] = true
		classes := distinct(t, i, false)
		encoders[names[k]] = classes
		for _, c := range classes {
			extraCols = append(extraCols, names[k]+"_"+c)
		}
		for r, row := range t.Rows {
			v := cell(row, i)
			for _, c := range classes {
				bit := "0"
				if v == c {
					bit = "1"
				}
				extraVals[r] = append(extraVals[r], bit)
			}
		}
	}

	out = &Table{}
	for i, name := range t.Columns {
		if !drop[i] {
			out.Columns = append(out.Columns, name)
		}
	}
	out.Columns = append(out.Columns, extraCols...)
	out.Rows = make([][]string, len(t.Rows))
	for r, row := range t.Rows {
		var nr []string
		for i := range t.Columns {
			if !drop[i] {
				nr = append(nr, cell(row, i))
			}
		}
		out.Rows[r] = append(nr, extraVals[r]...)
	}
	return out, encoders, nil
}

// distinct returns the sorted distinct values of column idx. Missing cells
// are reported as "" when includeMissing is set and skipped otherwise.
func distinct(t *Table, idx int, includeMissing bool) []string {
	seen := make(map[string]struct{})
	for _, row := range t.Rows {
		v := cell(row, idx)
		if IsMissing(v) {
			if !includeMissing {
				continue
			}
			v = ""
		}
		seen[v] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// Scaling methods.
const (
	ScaleStandard = "standard"
	ScaleMinMax   = "minmax"
)

// ScaleOptions configures ScaleFeatures. Empty Columns selects the numeric
// columns.
type ScaleOptions struct {
	Method  string
	Columns []string
}

// ScaleParams holds the per-column transform x' = (x - Offset) / Scale.
type ScaleParams struct {
	Offset float64
	Scale  float64
}

// Scaler records the fitted parameters so they can be reapplied.
type Scaler struct {
	Method string
	Params map[string]ScaleParams
}

// ScaleFeatures standardizes (zero mean, unit population variance) or
// min-max scales numeric columns into [0, 1]. Constant columns get a scale
// of 1. Missing cells are left missing.
func ScaleFeatures(t *Table, opts ScaleOptions) (*Table, *Scaler, error) {
	if opts.Method == "" {
		opts.Method = ScaleStandard
	}
	if opts.Method != ScaleStandard && opts.Method != ScaleMinMax {
		return nil, nil, fmt.Errorf("scaling method must be %q or %q, got %q", ScaleStandard, ScaleMinMax, opts.Method)
	}
	idx, names, err := t.resolveColumns(opts.Columns, t.NumericColumns)
	if err != nil {
		return nil, nil, err
	}

	scaler := &Scaler{Method: opts.Method, Params: make(map[string]ScaleParams, len(idx))}
	out := t.Clone()
	for k, i := range idx {
		if !t.IsNumeric(i) {
			return nil, nil, fmt.Errorf("column %s is not numeric", names[k])
		}
		xs := t.numbers(i)

		var p ScaleParams
		if opts.Method == ScaleStandard {
			p = ScaleParams{Offset: mean(xs), Scale: stddev(xs, 0)}
		} else {
			lo, hi := slices.Min(xs), slices.Max(xs)
			p = ScaleParams{Offset: lo, Scale: hi - lo}
		}
		if p.Scale == 0 || math.IsNaN(p.Scale) {
			p.Scale = 1
		}
		scaler.Params[names[k]] = p

		for r, row := range out.Rows {
			v := cell(row, i)
			if IsMissing(v) {
				continue
			}
			f, _ := parseFloat(v)
			out.Rows[r] = setCell(row, i, formatFloat((f-p.Offset)/p.Scale))
		}
	}
	return out, scaler, nil
}

// Outlier detection methods.
const (
	OutlierIQR    = "iqr"
	OutlierZScore = "zscore"
)

// zScoreThreshold is the absolute z-score above which a value is an outlier.
const zScoreThreshold = 3.0

// OutlierOptions configures DetectOutliers. Empty Columns selects the
// numeric columns.
type OutlierOptions struct {
	Method  string
	Columns []string
}

// DetectOutliers returns a table with one <col>_outlier column per input
// column holding "true" or "false" per row. IQR flags values outside
// [Q1 - 1.5·IQR, Q3 + 1.5·IQR]; zscore flags |z| > 3. Missing cells are
// never outliers.
func DetectOutliers(t *Table, opts OutlierOptions) (*Table, error) {
	if opts.Method == "" {
		opts.Method = OutlierIQR
	}
	if opts.Method != OutlierIQR && opts.Method != OutlierZScore {
		return nil, fmt.Errorf("unknown outlier method %q", opts.Method)
	}
	idx, names, err := t.resolveColumns(opts.Columns, t.NumericColumns)
	if err != nil {
		return nil, err
	}

	out := &Table{Rows: make([][]string, len(t.Rows))}
	for k, i := range idx {
		if !t.IsNumeric(i) {
			return nil, fmt.Errorf("column %s is not numeric", names[k])
		}
		out.Columns = append(out.Columns, names[k]+"_outlier")

		xs := t.numbers(i)
		var isOutlier func(float64) bool
		if opts.Method == OutlierIQR {
			q1, q3 := quantile(xs, 0.25), quantile(xs, 0.75)
			iqr := q3 - q1
			lo, hi := q1-1.5*iqr, q3+1.5*iqr
			isOutlier = func(x float64) bool { return x < lo || x > hi }
		} else {
			m, sd := mean(xs), stddev(xs, 0)
			isOutlier = func(x float64) bool { return sd > 0 && math.Abs((x-m)/sd) > zScoreThreshold }
		}

		for r, row := range t.Rows {
			flag := false
			if v := cell(row, i); !IsMissing(v) {
				f, _ := parseFloat(v)
				flag = isOutlier(f)
			}
			out.Rows[r] = append(out.Rows[r], strconv.FormatBool(flag))
		}
	}
	return out, nil
}

// SplitOptions configures Split.
type SplitOptions struct {
	Target         string
	TestSize       float64
	ValidationSize float64
	Seed           uint64
}

// DefaultSplitOptions returns test 0.2, validation 0.1, seed 42.
func DefaultSplitOptions(target string) SplitOptions {
	return SplitOptions{Target: target, TestSize: 0.2, ValidationSize: 0.1, Seed: 42}
}

// Splits holds the three partitions. Each keeps every column, target included.
type Splits struct {
	Train      *Table
	Validation *Table
	Test       *Table
}

// Split shuffles rows deterministically by Seed and partitions them into
// train, validation and test sets. Test gets ceil(n·TestSize) rows;
// validation gets ceil of its share of the remainder.
func Split(t *Table, opts SplitOptions) (*Splits, error) {
	if opts.Target == "" || t.Index(opts.Target) < 0 {
		return nil, fmt.Errorf("%w: target %q", ErrUnknownColumn, opts.Target)
	}
	// Written as negated ranges so NaN fails both checks.
	if !(opts.TestSize > 0 && opts.TestSize < 1) {
		return nil, fmt.Errorf("test size must be in (0, 1), got %g", opts.TestSize)
	}
	if !(opts.ValidationSize >= 0 && opts.TestSize+opts.ValidationSize < 1) {
		return nil, fmt.Errorf("validation size must be >= 0 and leave room for training, got %g", opts.ValidationSize)
	}
	n := t.Len()
	if n < 3 {
		return nil, fmt.Errorf("need at least 3 rows to split, have %d", n)
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })

	nTest := ceilCount(float64(n) * opts.TestSize)
	nVal := ceilCount(float64(n-nTest) * opts.ValidationSize / (1 - opts.TestSize))
	if nTest+nVal >= n {
		return nil, fmt.Errorf("split leaves no training rows for %d rows", n)
	}

	pick := func(ids []int) *Table {
		p := &Table{Columns: slices.Clone(t.Columns), Rows: make([][]string, len(ids))}
		for k, id := range ids {
			p.Rows[k] = slices.Clone(t.Rows[id])
		}
		return p
	}
	return &Splits{
		Test:       pick(order[:nTest]),
		Validation: pick(order[nTest : nTest+nVal]),
		Train:      pick(order[nTest+nVal:]),
	}, nil
}

// ceilCount rounds a fractional row count up, ignoring float noise just
// above a whole number.
func ceilCount(x float64) int {
	return int(math.Ceil(x - 1e-9))
}

// ColumnSummary describes one column.
type ColumnSummary struct {
	Column         string
	Kind           string // "numeric" or "categorical"
	NullCount      int
	NullPercent    float64
	UniqueCount    int
	UniquePercent  float64
	Mean           float64
	Std            float64
	Min            float64
	Max            float64
	MostCommon     string
	MostCommonFreq int
}

// FeatureSummary computes per-column statistics. Std is the sample
// standard deviation. Numeric statistics are zero for categorical columns.
func FeatureSummary(t *Table) []ColumnSummary {
	n := float64(t.Len())
	pct := func(k int) float64 {
		if n == 0 {
			return 0
		}
		return round(float64(k)/n*100, 2)
	}

	out := make([]ColumnSummary, len(t.Columns))
	for i, name := range t.Columns {
		var present []string
		nulls := 0
		for _, row := range t.Rows {
			v := cell(row, i)
			if IsMissing(v) {
				nulls++
				continue
			}
			present = append(present, v)
		}
		unique := len(distinct(t, i, false))

		s := ColumnSummary{
			Column:        name,
			NullCount:     nulls,
			NullPercent:   pct(nulls),
			UniqueCount:   unique,
			UniquePercent: pct(unique),
		}
		if t.IsNumeric(i) {
			xs := t.numbers(i)
			s.Kind = "numeric"
			s.Mean = round(mean(xs), 4)
			if len(xs) > 1 {
				s.Std = round(stddev(xs, 1), 4)
			}
			s.Min, s.Max = slices.Min(xs), slices.Max(xs)
		} else {
			s.Kind = "categorical"
			if len(present) > 0 {
				s.MostCommon, s.MostCommonFreq = mode(present)
			}
		}
		out[i] = s
	}
	return out
}

// SummaryTable renders summaries as a Table for CSV output.
func SummaryTable(summaries []ColumnSummary) *Table {
	t := &Table{Columns: []string{
		"column", "kind", "null_count", "null_percentage", "unique_count", "unique_percentage",
		"mean", "std", "min", "max", "most_common", "most_common_freq",
	}}
	for _, s := range summaries {
		row := []string{
			s.Column, s.Kind,
			strconv.Itoa(s.NullCount), formatFloat(s.NullPercent),
			strconv.Itoa(s.UniqueCount), formatFloat(s.UniquePercent),
			"", "", "", "", "", "",
		}
		if s.Kind == "numeric" {
			row[6], row[7], row[8], row[9] = formatFloat(s.Mean), formatFloat(s.Std), formatFloat(s.Min), formatFloat(s.Max)
		} else {
			row[10], row[11] = s.MostCommon, strconv.Itoa(s.MostCommonFreq)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
