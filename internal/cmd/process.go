package cmd

import (
	"fmt"
	"maps"
	"os"
	"path"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xdg/labguard/internal/clog"
	"github.com/xdg/labguard/internal/dataset"
	"github.com/xdg/labguard/internal/prompt"
	"github.com/xdg/labguard/internal/safepath"
	"github.com/xdg/labguard/internal/term"
)

// processOptions holds the flags of the process command.
type processOptions struct {
	user           string
	role           string
	inCategory     string
	outCategory    string
	output         string
	columns        []string
	strategy       string
	fillValue      string
	method         string
	target         string
	testSize       float64
	validationSize float64
	seed           uint64
	yes            bool
}

var processOpts processOptions

// deleteConfirmer asks before process delete removes a file.
var deleteConfirmer prompt.Confirmer = prompt.NewTerminal(os.Stderr)

// Operations accepted by the process command.
const (
	procClean    = "clean"
	procMissing  = "missing"
	procEncode   = "encode"
	procScale    = "scale"
	procOutliers = "outliers"
	procSplit    = "split"
	procSummary  = "summary"
	procDelete   = "delete"
)

var processOperations = []string{
	procClean, procMissing, procEncode, procScale, procOutliers, procSplit, procSummary, procDelete,
}

var processCmd = &cobra.Command{
	Use:   "process <operation> <file>",
	Short: "Run a guarded dataset operation on a CSV file",
	Long: `Run one dataset operation on a CSV file as a user with a role.

A session is opened for --user with --role, every step is authorized and
audited, and the session is revoked when the command finishes. Files are
read from --in (default raw) and written to --out (default processed).

Operations and the permission they require:
  clean     read     normalize column names
  missing   process  handle missing values (--strategy, --fill-value)
  encode    encode   encode categorical columns (--method label|onehot)
  scale     scale    scale numeric columns (--method standard|minmax)
  outliers  read     flag outliers (--method iqr|zscore)
  split     split    train/validation/test split (--target, --test-size, ...)
  summary   read     per-column statistics, written to --out reports
  delete    role admin, removes the file after confirmation (--yes to skip)`,
	Example: `  labguard process clean customers.csv --role data_scientist
  labguard process missing customers.csv --role data_scientist --strategy median
  labguard process split customers.csv --role data_scientist --target churn
  labguard process delete old.csv --role admin --in processed --yes`,
	Args: cobra.ExactArgs(2),
	RunE: runProcess,
}

func init() {
	f := processCmd.Flags()
	f.StringVar(&processOpts.user, "user", "", "user id recorded in the audit trail (default current user)")
	f.StringVar(&processOpts.role, "role", "", "role for the session")
	f.StringVar(&processOpts.inCategory, "in", safepath.CategoryRaw, "category to read from")
	f.StringVar(&processOpts.outCategory, "out", "", "category to write to (default processed, reports for summary)")
	f.StringVarP(&processOpts.output, "output", "o", "", "output file name (default derived from the input)")
	f.StringSliceVar(&processOpts.columns, "columns", nil, "columns to operate on (default depends on the operation)")
	f.StringVar(&processOpts.strategy, "strategy", "drop", "missing-value strategy: drop, mean, median, mode, forward_fill, back_fill, custom")
	f.StringVar(&processOpts.fillValue, "fill-value", "", "value for --strategy custom")
	f.StringVar(&processOpts.method, "method", "", "encoding, scaling or outlier method")
	f.StringVar(&processOpts.target, "target", "", "target column for split")
	split := dataset.DefaultSplitOptions("")
	f.Float64Var(&processOpts.testSize, "test-size", split.TestSize, "test fraction for split")
	f.Float64Var(&processOpts.validationSize, "validation-size", split.ValidationSize, "validation fraction for split")
	f.Uint64Var(&processOpts.seed, "seed", split.Seed, "shuffle seed for split")
	f.BoolVarP(&processOpts.yes, "yes", "y", false, "delete without asking")
	_ = processCmd.MarkFlagRequired("role")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	op, input := args[0], args[1]
	if !slices.Contains(processOperations, op) {
		return fmt.Errorf("unknown operation %q; choose one of: %s", op, strings.Join(processOperations, ", "))
	}

	user := processOpts.user
	if user == "" {
		user = currentUser()
	}

	a, err := newApp(user)
	if err != nil {
		return err
	}
	defer a.Close()

	tok, err := a.guard.CreateSession(user, processOpts.role)
	if err != nil {
		return err
	}
	defer a.guard.RevokeSession(tok)
	clog.Debug("process: %s as %s (grants %s)", op, processOpts.role, strings.Join(a.guard.Permissions(processOpts.role), ", "))

	proc := dataset.NewProcessor(a.guard, a.resolver)

	if op == procDelete {
		if !processOpts.yes {
			ok, err := deleteConfirmer.Confirm(fmt.Sprintf("Delete %s from %s?", input, processOpts.inCategory), false)
			if err != nil {
				return fmt.Errorf("%w; pass --yes to delete non-interactively", err)
			}
			if !ok {
				term.Println("Aborted.")
				return nil
			}
		}
		p, err := proc.Delete(tok, input, processOpts.inCategory)
		if err != nil {
			return err
		}
		term.Printf("Deleted %s\n", p)
		return nil
	}

	table, err := proc.Load(tok, input, processOpts.inCategory)
	if err != nil {
		return err
	}

	outputs, err := applyOperation(proc, tok, op, table)
	if err != nil {
		return err
	}

	outCategory := processOpts.outCategory
	if outCategory == "" {
		outCategory = safepath.CategoryProcessed
		if op == procSummary {
			outCategory = safepath.CategoryReports
		}
	}

	for _, out := range outputs {
		name := outputName(input, processOpts.output, out.suffix)
		p, err := proc.Save(tok, out.table, name, outCategory)
		if err != nil {
			return err
		}
		term.Printf("Wrote %d rows to %s\n", out.table.Len(), p)
	}
	return nil
}

// processOutput is one table produced by an operation. suffix
// distinguishes the files of multi-output operations such as split.
type processOutput struct {
	suffix string
	table  *dataset.Table
}

func applyOperation(proc *dataset.Processor, tok, op string, t *dataset.Table) ([]processOutput, error) {
	o := processOpts
	single := func(t *dataset.Table, err error) ([]processOutput, error) {
		if err != nil {
			return nil, err
		}
		return []processOutput{{suffix: op, table: t}}, nil
	}

	switch op {
	case procClean:
		return single(proc.CleanColumnNames(tok, t))
	case procMissing:
		return single(proc.HandleMissing(tok, t, dataset.MissingOptions{
			Strategy: o.strategy, Columns: o.columns, FillValue: o.fillValue,
		}))
	case procEncode:
		out, encoders, err := proc.EncodeCategorical(tok, t, dataset.EncodeOptions{Method: o.method, Columns: o.columns})
		if err == nil {
			for _, col := range slices.Sorted(maps.Keys(encoders)) {
				term.Printf("  %s: %s\n", col, strings.Join(encoders[col], ", "))
			}
		}
		return single(out, err)
	case procScale:
		out, _, err := proc.ScaleFeatures(tok, t, dataset.ScaleOptions{Method: o.method, Columns: o.columns})
		return single(out, err)
	case procOutliers:
		out, err := proc.DetectOutliers(tok, t, dataset.OutlierOptions{Method: o.method, Columns: o.columns})
		if err == nil {
			reportOutliers(out)
		}
		return single(out, err)
	case procSplit:
		opts := dataset.DefaultSplitOptions(o.target)
		opts.TestSize, opts.ValidationSize, opts.Seed = o.testSize, o.validationSize, o.seed
		splits, err := proc.Split(tok, t, opts)
		if err != nil {
			return nil, err
		}
		return []processOutput{
			{suffix: "train", table: splits.Train},
			{suffix: "validation", table: splits.Validation},
			{suffix: "test", table: splits.Test},
		}, nil
	case procSummary:
		summaries, err := proc.FeatureSummary(tok, t)
		if err != nil {
			return nil, err
		}
		return single(dataset.SummaryTable(summaries), nil)
	}
	return nil, fmt.Errorf("unknown operation %q", op)
}

// reportOutliers prints the number of flagged rows per column.
func reportOutliers(t *dataset.Table) {
	for _, col := range t.Columns {
		values, err := t.Column(col)
		if err != nil {
			continue
		}
		n := 0
		for _, v := range values {
			if v == "true" {
				n++
			}
		}
		term.Printf("  %s: %d\n", strings.TrimSuffix(col, "_outlier"), n)
	}
}

// outputName returns the file name for an output. An explicit name is
// used as-is for single outputs and gets the suffix inserted before the
// extension otherwise.
func outputName(input, explicit, suffix string) string {
	base := explicit
	if base == "" {
		base = input
	} else if !slices.Contains([]string{"train", "validation", "test"}, suffix) {
		return explicit
	}
	ext := path.Ext(base)
	if ext == "" {
		ext = ".csv"
	}
	return strings.TrimSuffix(base, path.Ext(base)) + "_" + suffix + ext
}
