package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/uptpik/amanat/internal/application/port"
	"github.com/uptpik/amanat/internal/domain/entity"
	"github.com/uptpik/amanat/internal/domain/workflow"
)

type stubIncomingRepo struct {
	port.IncomingLetterRepository
	letters []*entity.IncomingLetter
}

func (s *stubIncomingRepo) ListByMonth(ctx context.Context, year int, month time.Month) ([]*entity.IncomingLetter, error) {
	return s.letters, nil
}

type stubOutgoingRepo struct {
	port.OutgoingLetterRepository
	letters []*entity.OutgoingLetter
}

func (s *stubOutgoingRepo) ListByMonth(ctx context.Context, year int, month time.Month) ([]*entity.OutgoingLetter, error) {
	return s.letters, nil
}

func TestRegisterExporter_ExportMonth(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	date := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	sent := time.Date(2025, time.March, 18, 9, 30, 0, 0, time.UTC)

	incoming := &stubIncomingRepo{letters: []*entity.IncomingLetter{
		{
			AgendaNumber: "SM-202503-0001",
			LetterNumber: "123/EXT/2025",
			Subject:      "Permohonan audiensi",
			Sender:       "Dinas Pendidikan",
			Category:     "UNDANGAN",
			LetterDate:   date,
			ReceivedDate: date.AddDate(0, 0, 2),
			Status:       workflow.StateUnderReview,
		},
	}}
	outgoing := &stubOutgoingRepo{letters: []*entity.OutgoingLetter{
		{
			AgendaNumber: "SK-202503-0001",
			LetterNumber: "05/UPT-PIK/III/2025",
			Subject:      "Balasan audiensi",
			Recipient:    "Dinas Pendidikan",
			Category:     "RESMI",
			LetterDate:   date.AddDate(0, 0, 5),
			Status:       workflow.StateSent,
			SentAt:       &sent,
		},
	}}

	exporter := NewRegisterExporter(incoming, outgoing, "UPT-PIK", logger)

	var buf bytes.Buffer
	err := exporter.ExportMonth(context.Background(), 2025, time.March, &buf)
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Surat Masuk", "Surat Keluar"}, f.GetSheetList())

	title, err := f.GetCellValue("Surat Masuk", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Buku Agenda Surat Masuk - UPT-PIK", title)

	period, _ := f.GetCellValue("Surat Masuk", "A2")
	assert.Equal(t, "March 2025", period)

	agenda, _ := f.GetCellValue("Surat Masuk", "A5")
	assert.Equal(t, "SM-202503-0001", agenda)
	status, _ := f.GetCellValue("Surat Masuk", "H5")
	assert.Equal(t, "UNDER_REVIEW", status)

	recipient, _ := f.GetCellValue("Surat Keluar", "D5")
	assert.Equal(t, "Dinas Pendidikan", recipient)
	sentCell, _ := f.GetCellValue("Surat Keluar", "G5")
	assert.Equal(t, "2025-03-18", sentCell)
}

func TestRegisterExporter_EmptyMonth(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	exporter := NewRegisterExporter(&stubIncomingRepo{}, &stubOutgoingRepo{}, "UPT-PIK", logger)

	var buf bytes.Buffer
	err := exporter.ExportMonth(context.Background(), 2025, time.January, &buf)
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	// headers still present, no data rows
	h, _ := f.GetCellValue("Surat Masuk", "A4")
	assert.Equal(t, "No. Agenda", h)
	empty, _ := f.GetCellValue("Surat Masuk", "A5")
	assert.Empty(t, empty)
}
