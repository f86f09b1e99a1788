// Package export serializes the gateway's bulk listing into a spreadsheet:
// one sheet per entity, header row in declared field order, columns sized to
// their content. Which entities may be exported is the gateway's decision,
// not this package's.
package export

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/clinisys/backoffice/internal/gateway"
	"github.com/clinisys/backoffice/internal/policy"
	"github.com/clinisys/backoffice/pkg/errors"
	"github.com/clinisys/backoffice/pkg/metrics"
)

// Lister is the slice of the gateway the exporter consumes.
type Lister interface {
	ListAll(ctx context.Context, entities []string, scope *policy.AccessScope) ([]*gateway.ResultSet, error)
}

type Service struct {
	lister  Lister
	metrics *metrics.Metrics
}

func NewService(lister Lister, m *metrics.Metrics) *Service {
	return &Service{lister: lister, metrics: m}
}

// Workbook renders every entity visible to the scope into an xlsx workbook.
func (s *Service) Workbook(ctx context.Context, scope *policy.AccessScope) (*excelize.File, error) {
	results, err := s.lister.ListAll(ctx, scope.VisibleEntities, scope)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defaultSheet := f.GetSheetName(0)

	for _, rs := range results {
		if _, err := f.NewSheet(rs.Entity); err != nil {
			return nil, errors.Internal(err)
		}
		if err := s.writeSheet(f, rs); err != nil {
			return nil, err
		}
	}

	if len(results) > 0 {
		f.DeleteSheet(defaultSheet)
	}
	return f, nil
}

func (s *Service) writeSheet(f *excelize.File, rs *gateway.ResultSet) error {
	widths := make([]int, len(rs.Columns))

	for col, name := range rs.Columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return errors.Internal(err)
		}
		if err := f.SetCellValue(rs.Entity, cell, name); err != nil {
			return errors.Internal(err)
		}
		widths[col] = len(name)
	}

	for row, rec := range rs.Rows {
		for col, name := range rs.Columns {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return errors.Internal(err)
			}

			value := rec[name]
			if err := f.SetCellValue(rs.Entity, cell, value); err != nil {
				return errors.Internal(err)
			}
			if n := len(fmt.Sprint(value)); n > widths[col] {
				widths[col] = n
			}
		}
		if s.metrics != nil {
			s.metrics.ExportedRows.Inc()
		}
	}

	for col, w := range widths {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return errors.Internal(err)
		}
		if err := f.SetColWidth(rs.Entity, name, name, float64(w+2)); err != nil {
			return errors.Internal(err)
		}
	}
	return nil
}
