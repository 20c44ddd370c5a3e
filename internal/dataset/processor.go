package dataset

import (
	"fmt"
	"os"

	"github.com/xdg/labguard/internal/access"
	"github.com/xdg/labguard/internal/clog"
	"github.com/xdg/labguard/internal/safepath"
)

// Operation names as they appear in the audit trail.
const (
	OpCleanColumnNames  = "clean_column_names"
	OpHandleMissing     = "handle_missing_values"
	OpEncodeCategorical = "encode_categorical_variables"
	OpScaleFeatures     = "scale_features"
	OpDetectOutliers    = "detect_outliers"
	OpSplit             = "split_data"
	OpFeatureSummary    = "create_feature_summary"
	OpLoad              = "load_dataset"
	OpSave              = "save_dataset"
	OpDelete            = "delete_dataset"
)

type fileRef struct {
	name     string
	category string
}

type saveRequest struct {
	table *Table
	file  fileRef
}

type encoded struct {
	table    *Table
	encoders Encoders
}

type scaled struct {
	table  *Table
	scaler *Scaler
}

// Processor exposes the dataset operations behind an access guard. Every
// method takes the caller's session token first. File access goes through
// the path resolver so names cannot escape their category directory.
type Processor struct {
	resolver *safepath.Resolver

	clean     access.Func[*Table, *Table]
	missing   access.Func[withOpts[MissingOptions], *Table]
	encode    access.Func[withOpts[EncodeOptions], encoded]
	scale     access.Func[withOpts[ScaleOptions], scaled]
	outliers  access.Func[withOpts[OutlierOptions], *Table]
	split     access.Func[withOpts[SplitOptions], *Splits]
	summary   access.Func[*Table, []ColumnSummary]
	load      access.Func[fileRef, *Table]
	save      access.Func[saveRequest, string]
	deleteOne access.Func[fileRef, string]
}

type withOpts[O any] struct {
	table *Table
	opts  O
}

// NewProcessor binds the operations to guard and resolver.
func NewProcessor(guard *access.Guard, resolver *safepath.Resolver) *Processor {
	p := &Processor{resolver: resolver}

	p.clean = access.RequirePermission(guard, access.PermRead, OpCleanColumnNames,
		func(_ access.Session, t *Table) (*Table, error) {
			return CleanColumnNames(t), nil
		})
	p.missing = access.RequirePermission(guard, access.PermProcess, OpHandleMissing,
		func(_ access.Session, in withOpts[MissingOptions]) (*Table, error) {
			return HandleMissing(in.table, in.opts)
		})
	p.encode = access.RequirePermission(guard, access.PermEncode, OpEncodeCategorical,
		func(_ access.Session, in withOpts[EncodeOptions]) (encoded, error) {
			t, enc, err := EncodeCategorical(in.table, in.opts)
			return encoded{t, enc}, err
		})
	p.scale = access.RequirePermission(guard, access.PermScale, OpScaleFeatures,
		func(_ access.Session, in withOpts[ScaleOptions]) (scaled, error) {
			t, s, err := ScaleFeatures(in.table, in.opts)
			return scaled{t, s}, err
		})
	p.outliers = access.RequirePermission(guard, access.PermRead, OpDetectOutliers,
		func(_ access.Session, in withOpts[OutlierOptions]) (*Table, error) {
			return DetectOutliers(in.table, in.opts)
		})
	p.split = access.RequirePermission(guard, access.PermSplit, OpSplit,
		func(_ access.Session, in withOpts[SplitOptions]) (*Splits, error) {
			return Split(in.table, in.opts)
		})
	p.summary = access.RequirePermission(guard, access.PermRead, OpFeatureSummary,
		func(_ access.Session, t *Table) ([]ColumnSummary, error) {
			return FeatureSummary(t), nil
		})
	p.load = access.RequirePermission(guard, access.PermRead, OpLoad, p.loadFile)
	p.save = access.RequirePermission(guard, access.PermWrite, OpSave, p.saveFile)
	p.deleteOne = access.RequireRole(guard, access.RoleAdmin, OpDelete, p.deleteFile)

	return p
}

// CleanColumnNames requires read.
func (p *Processor) CleanColumnNames(tok string, t *Table) (*Table, error) {
	return p.clean(tok, t)
}

// HandleMissing requires process.
func (p *Processor) HandleMissing(tok string, t *Table, opts MissingOptions) (*Table, error) {
	return p.missing(tok, withOpts[MissingOptions]{t, opts})
}

// EncodeCategorical requires encode.
func (p *Processor) EncodeCategorical(tok string, t *Table, opts EncodeOptions) (*Table, Encoders, error) {
	out, err := p.encode(tok, withOpts[EncodeOptions]{t, opts})
	return out.table, out.encoders, err
}

// ScaleFeatures requires scale.
func (p *Processor) ScaleFeatures(tok string, t *Table, opts ScaleOptions) (*Table, *Scaler, error) {
	out, err := p.scale(tok, withOpts[ScaleOptions]{t, opts})
	return out.table, out.scaler, err
}

// DetectOutliers requires read.
func (p *Processor) DetectOutliers(tok string, t *Table, opts OutlierOptions) (*Table, error) {
	return p.outliers(tok, withOpts[OutlierOptions]{t, opts})
}

// Split requires split.
func (p *Processor) Split(tok string, t *Table, opts SplitOptions) (*Splits, error) {
	return p.split(tok, withOpts[SplitOptions]{t, opts})
}

// FeatureSummary requires read.
func (p *Processor) FeatureSummary(tok string, t *Table) ([]ColumnSummary, error) {
	return p.summary(tok, t)
}

// Load reads a CSV from the category directory. Requires read.
func (p *Processor) Load(tok, name, category string) (*Table, error) {
	return p.load(tok, fileRef{name, category})
}

// Save writes t as CSV into the category directory, creating it if needed,
// and returns the path written. Requires write.
func (p *Processor) Save(tok string, t *Table, name, category string) (string, error) {
	return p.save(tok, saveRequest{t, fileRef{name, category}})
}

// Delete removes a dataset file and returns its path. Requires the admin role.
func (p *Processor) Delete(tok, name, category string) (string, error) {
	return p.deleteOne(tok, fileRef{name, category})
}

func (p *Processor) loadFile(s access.Session, ref fileRef) (*Table, error) {
	path, err := p.resolver.Resolve(ref.name, ref.category)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path) //nolint:gosec // path is contained by the resolver
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer func() { _ = f.Close() }()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ref.name, err)
	}
	clog.Debug("user %s loaded %s (%d rows)", s.User, path, t.Len())
	return t, nil
}

func (p *Processor) saveFile(s access.Session, req saveRequest) (string, error) {
	path, err := p.resolver.Resolve(req.file.name, req.file.category)
	if err != nil {
		return "", err
	}
	if _, err := p.resolver.EnsureDir(req.file.category); err != nil {
		return "", err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o640) //nolint:gosec // path is contained by the resolver
	if err != nil {
		return "", fmt.Errorf("create dataset: %w", err)
	}
	if err := req.table.WriteCSV(f); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close dataset: %w", err)
	}
	clog.Info("user %s wrote %s (%d rows)", s.User, path, req.table.Len())
	return path, nil
}

func (p *Processor) deleteFile(s access.Session, ref fileRef) (string, error) {
	path, err := p.resolver.Resolve(ref.name, ref.category)
	if err != nil {
		return "", err
	}
	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("delete dataset: %w", err)
	}
	clog.Info("user %s deleted %s", s.User, path)
	return path, nil
}
