package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/uptpik/amanat/internal/application/port"
	"github.com/uptpik/amanat/internal/domain/entity"
)

// RegisterExporter renders the monthly agenda books (buku agenda surat masuk
// dan keluar) as an Excel workbook with one sheet per register.
type RegisterExporter struct {
	incomingRepo port.IncomingLetterRepository
	outgoingRepo port.OutgoingLetterRepository
	orgName      string
	logger       *zap.Logger
}

// NewRegisterExporter creates a new register exporter
func NewRegisterExporter(
	incomingRepo port.IncomingLetterRepository,
	outgoingRepo port.OutgoingLetterRepository,
	orgName string,
	logger *zap.Logger,
) *RegisterExporter {
	return &RegisterExporter{
		incomingRepo: incomingRepo,
		outgoingRepo: outgoingRepo,
		orgName:      orgName,
		logger:       logger,
	}
}

const (
	incomingSheet = "Surat Masuk"
	outgoingSheet = "Surat Keluar"
)

// ExportMonth writes the workbook for one calendar month to w
func (e *RegisterExporter) ExportMonth(ctx context.Context, year int, month time.Month, w io.Writer) error {
	e.logger.Info("Exporting agenda register",
		zap.Int("year", year),
		zap.Int("month", int(month)))

	incoming, err := e.incomingRepo.ListByMonth(ctx, year, month)
	if err != nil {
		return fmt.Errorf("failed to load incoming register: %w", err)
	}
	outgoing, err := e.outgoingRepo.ListByMonth(ctx, year, month)
	if err != nil {
		return fmt.Errorf("failed to load outgoing register: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", incomingSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(outgoingSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	period := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
	e.fillIncoming(f, period, incoming)
	e.fillOutgoing(f, period, outgoing)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Info("Agenda register exported",
		zap.Int("incoming", len(incoming)),
		zap.Int("outgoing", len(outgoing)))
	return nil
}

func (e *RegisterExporter) fillIncoming(f *excelize.File, period string, letters []*entity.IncomingLetter) {
	e.setCell(f, incomingSheet, "A1", fmt.Sprintf("Buku Agenda Surat Masuk - %s", e.orgName))
	e.setCell(f, incomingSheet, "A2", period)

	headers := []string{"No. Agenda", "No. Surat", "Perihal", "Pengirim", "Kategori", "Tanggal Surat", "Tanggal Diterima", "Status"}
	for i, h := range headers {
		e.setCell(f, incomingSheet, cellRef(i, 4), h)
	}

	for row, l := range letters {
		values := []string{
			l.AgendaNumber,
			l.LetterNumber,
			l.Subject,
			l.Sender,
			l.Category,
			l.LetterDate.Format("2006-01-02"),
			l.ReceivedDate.Format("2006-01-02"),
			string(l.Status),
		}
		for col, v := range values {
			e.setCell(f, incomingSheet, cellRef(col, 5+row), v)
		}
	}
}

func (e *RegisterExporter) fillOutgoing(f *excelize.File, period string, letters []*entity.OutgoingLetter) {
	e.setCell(f, outgoingSheet, "A1", fmt.Sprintf("Buku Agenda Surat Keluar - %s", e.orgName))
	e.setCell(f, outgoingSheet, "A2", period)

	headers := []string{"No. Agenda", "No. Surat", "Perihal", "Tujuan", "Kategori", "Tanggal Surat", "Tanggal Kirim", "Status"}
	for i, h := range headers {
		e.setCell(f, outgoingSheet, cellRef(i, 4), h)
	}

	for row, l := range letters {
		sentAt := ""
		if l.SentAt != nil {
			sentAt = l.SentAt.Format("2006-01-02")
		}
		values := []string{
			l.AgendaNumber,
			l.LetterNumber,
			l.Subject,
			l.Recipient,
			l.Category,
			l.LetterDate.Format("2006-01-02"),
			sentAt,
			string(l.Status),
		}
		for col, v := range values {
			e.setCell(f, outgoingSheet, cellRef(col, 5+row), v)
		}
	}
}

// setCell sets a cell value, logging instead of failing on bad coordinates
func (e *RegisterExporter) setCell(f *excelize.File, sheet, cell, value string) {
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		e.logger.Warn("Failed to set cell value",
			zap.String("sheet", sheet),
			zap.String("cell", cell),
			zap.Error(err))
	}
}

// cellRef builds an A1-style reference from zero-based column and one-based row
func cellRef(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col+1, row)
	return name
}
