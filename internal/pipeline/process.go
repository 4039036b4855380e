package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"recipediff/internal"
	"recipediff/internal/config"
)

var ErrMissingSide = errors.New("message does not carry one restaurant and one supplier workbook")

type CompareOptions struct {
	Tolerance  float64
	OutputPath string
}

type Counts struct {
	Total            int
	Matched          int
	LeftOnly         int
	RightOnly        int
	Consistent       int
	QuantityMismatch int
	UnitMismatch     int
}

type CompareResult struct {
	RunID      string
	Left       internal.CanonicalTable
	Right      internal.CanonicalTable
	Records    []internal.ReconciledRecord
	Report     Report
	Counts     Counts
	OutputPath string
}

type ComparisonService struct {
	cfg    config.Config
	log    *zap.Logger
	labels LabelSet
}

func NewComparisonService(cfg config.Config, log *zap.Logger) (*ComparisonService, error) {
	labels, err := LabelsFor(cfg.ReportLang)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ComparisonService{cfg: cfg, log: log, labels: labels}, nil
}

func (s *ComparisonService) Labels() LabelSet {
	return s.labels
}

func (s *ComparisonService) DefaultOptions() CompareOptions {
	return CompareOptions{Tolerance: s.cfg.Tolerance}
}

// Inspect decodes and normalizes a single input without reconciling it.
func (s *ComparisonService) Inspect(in Input) (internal.CanonicalTable, error) {
	sheet, err := ReadSheet(in.Name, in.Content)
	if err != nil {
		return internal.CanonicalTable{}, fmt.Errorf("read %s: %w", in.Name, err)
	}
	table, err := Normalize(sheet)
	if err != nil {
		return internal.CanonicalTable{}, fmt.Errorf("%s: %w", in.Name, err)
	}
	s.logTable(in.Name, table)
	return table, nil
}

func (s *ComparisonService) Compare(ctx context.Context, left, right Input, opts CompareOptions) (CompareResult, error) {
	leftTable, err := s.Inspect(left)
	if err != nil {
		return CompareResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return CompareResult{}, err
	}
	rightTable, err := s.Inspect(right)
	if err != nil {
		return CompareResult{}, err
	}
	return s.reconcileTables(ctx, leftTable, rightTable, opts)
}

func (s *ComparisonService) CompareFiles(ctx context.Context, leftPath, rightPath string, opts CompareOptions) (CompareResult, error) {
	left, err := InputFromFile(leftPath)
	if err != nil {
		return CompareResult{}, err
	}
	right, err := InputFromFile(rightPath)
	if err != nil {
		return CompareResult{}, err
	}
	return s.Compare(ctx, left, right, opts)
}

// CompareEmail takes both workbooks from the attachments of one message.
// Each attachment is sorted to the left or right side by its detected
// layout: restaurant on the left, supplier on the right.
func (s *ComparisonService) CompareEmail(ctx context.Context, raw []byte, opts CompareOptions) (CompareResult, error) {
	subject, attachments, err := ReadEmailAttachments(raw)
	if err != nil {
		return CompareResult{}, err
	}
	s.log.Info("email loaded", zap.String("subject", subject), zap.Int("workbooks", len(attachments)))

	var left, right *internal.CanonicalTable
	var skipped []error
	for _, att := range attachments {
		table, err := s.Inspect(Input(att))
		if err != nil {
			s.log.Warn("attachment skipped", zap.String("file", att.Name), zap.Error(err))
			skipped = append(skipped, err)
			continue
		}
		switch table.Layout {
		case internal.LayoutRestaurant:
			if left != nil {
				return CompareResult{}, fmt.Errorf("%w: more than one restaurant workbook (%s)", ErrMissingSide, att.Name)
			}
			left = &table
		case internal.LayoutSupplier:
			if right != nil {
				return CompareResult{}, fmt.Errorf("%w: more than one supplier workbook (%s)", ErrMissingSide, att.Name)
			}
			right = &table
		}
	}

	if left == nil || right == nil {
		return CompareResult{}, errors.Join(append([]error{ErrMissingSide}, skipped...)...)
	}
	return s.reconcileTables(ctx, *left, *right, opts)
}

func (s *ComparisonService) reconcileTables(ctx context.Context, left, right internal.CanonicalTable, opts CompareOptions) (CompareResult, error) {
	if err := ctx.Err(); err != nil {
		return CompareResult{}, err
	}

	runID := uuid.NewString()
	log := s.log.With(zap.String("runId", runID))

	records, err := Reconcile(left, right, opts.Tolerance)
	if err != nil {
		return CompareResult{}, err
	}

	res := CompareResult{
		RunID:   runID,
		Left:    left,
		Right:   right,
		Records: records,
		Report:  BuildReport(records, left, right, s.labels),
		Counts:  CountRecords(records),
	}

	if opts.OutputPath != "" {
		if err := ExportReportToXLSX(res.Report, opts.OutputPath); err != nil {
			return CompareResult{}, fmt.Errorf("export %s: %w", opts.OutputPath, err)
		}
		res.OutputPath = opts.OutputPath
	}

	log.Info("reconciliation done",
		zap.Float64("tolerance", opts.Tolerance),
		zap.Int("rows", res.Counts.Total),
		zap.Int("matched", res.Counts.Matched),
		zap.Int("leftOnly", res.Counts.LeftOnly),
		zap.Int("rightOnly", res.Counts.RightOnly),
		zap.Int("quantityMismatch", res.Counts.QuantityMismatch),
		zap.Int("unitMismatch", res.Counts.UnitMismatch),
		zap.String("output", res.OutputPath),
	)
	return res, nil
}

func (s *ComparisonService) logTable(name string, table internal.CanonicalTable) {
	fields := []zap.Field{
		zap.String("file", name),
		zap.String("layout", string(table.Layout)),
		zap.Int("rowsRead", table.Stats.RowsRead),
		zap.Int("kept", table.Stats.Kept),
	}
	if table.AmbiguousLayout {
		s.log.Warn("headers match more than one layout, using the first", fields...)
	}
	if table.Stats.Dropped() > 0 {
		s.log.Warn("rows dropped during normalization", append(fields,
			zap.Int("missingKey", table.Stats.DroppedMissingKey),
			zap.Int("badDosage", table.Stats.DroppedBadDosage),
			zap.Int("duplicate", table.Stats.DroppedDuplicate),
		)...)
		return
	}
	s.log.Info("workbook normalized", fields...)
}

func CountRecords(records []internal.ReconciledRecord) Counts {
	c := Counts{Total: len(records)}
	for _, r := range records {
		switch r.Provenance {
		case internal.LeftOnly:
			c.LeftOnly++
		case internal.RightOnly:
			c.RightOnly++
		case internal.Matched:
			c.Matched++
			if len(r.Differences) == 0 {
				c.Consistent++
			}
			if !r.QuantityMatch {
				c.QuantityMismatch++
			}
			if !r.UnitMatch {
				c.UnitMismatch++
			}
		}
	}
	return c
}
