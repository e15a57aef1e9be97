package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/darab-cement/cms-service/internal/models"
)

const exportSheet = "Responses"

var exportFixedColumns = []string{"Response ID", "User", "Email", "Company", "Supplier Type", "Submitted At"}

func (s *pollService) Export(ctx context.Context, pollID uint, format models.ExportFormat, actor *models.User) (*models.PollExport, error) {
	poll, err := s.getPoll(ctx, pollID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, pollResource(poll), ActionExport); err != nil {
		return nil, err
	}

	switch format {
	case models.ExportJSON, models.ExportCSV, models.ExportXLSX:
	default:
		return nil, ErrUnsupportedExport
	}

	responses, err := s.repo.PollResponse().ListByPoll(ctx, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to list poll responses: %w", err)
	}

	s.logger.Info("Exporting poll responses", "poll_id", pollID, "format", format, "responses", len(responses))

	if format == models.ExportJSON {
		return &models.PollExport{Format: format, Responses: responses}, nil
	}
	return &models.PollExport{Format: format, Rows: exportRows(poll, responses)}, nil
}

// exportRows renders the header row followed by one row per response
func exportRows(poll *models.Poll, responses []models.PollResponse) [][]string {
	questions := make([]models.PollQuestion, len(poll.Questions))
	copy(questions, poll.Questions)
	sort.SliceStable(questions, func(i, j int) bool { return questions[i].Order < questions[j].Order })

	header := append([]string{}, exportFixedColumns...)
	for _, q := range questions {
		header = append(header, q.Question)
	}

	rows := make([][]string, 0, len(responses)+1)
	rows = append(rows, header)
	for i := range responses {
		r := &responses[i]

		answers := make(map[uint]*models.PollAnswer, len(r.Answers))
		for j := range r.Answers {
			answers[r.Answers[j].QuestionID] = &r.Answers[j]
		}

		row := []string{
			strconv.FormatUint(uint64(r.ID), 10),
			r.RespondentLabel(),
			respondentEmail(r),
			deref(r.RespondentCompany, ""),
			string(deref(r.SupplierType, "")),
			formatTime(r.CompletedAt),
		}
		for _, q := range questions {
			cell := ""
			if a, ok := answers[q.ID]; ok {
				cell = a.ExportCell()
			}
			row = append(row, cell)
		}
		rows = append(rows, row)
	}
	return rows
}

func respondentEmail(r *models.PollResponse) string {
	if r.RespondentEmail != nil && *r.RespondentEmail != "" {
		return *r.RespondentEmail
	}
	if r.User != nil {
		return r.User.Email
	}
	return ""
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// EncodeExport serializes an export into the downloadable file for its format
func EncodeExport(export *models.PollExport, pollID uint) (*ExportFile, error) {
	name := fmt.Sprintf("poll-%d-responses.%s", pollID, export.Format)

	switch export.Format {
	case models.ExportJSON:
		body, err := json.MarshalIndent(export.Responses, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode json export: %w", err)
		}
		return &ExportFile{ContentType: "application/json", Filename: name, Body: body}, nil

	case models.ExportCSV:
		var buf bytes.Buffer
		// UTF-8 BOM so spreadsheet tools render Persian text
		buf.WriteString("\ufeff")
		w := csv.NewWriter(&buf)
		if err := w.WriteAll(export.Rows); err != nil {
			return nil, fmt.Errorf("failed to encode csv export: %w", err)
		}
		return &ExportFile{ContentType: "text/csv; charset=utf-8", Filename: name, Body: buf.Bytes()}, nil

	case models.ExportXLSX:
		body, err := encodeWorkbook(export.Rows)
		if err != nil {
			return nil, err
		}
		return &ExportFile{
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Filename:    name,
			Body:        body,
		}, nil
	}

	return nil, ErrUnsupportedExport
}

func encodeWorkbook(rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("failed to prepare workbook: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write workbook row: %w", err)
		}
	}

	if len(rows) > 0 {
		style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err == nil {
			_ = f.SetRowStyle(exportSheet, 1, 1, style)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to encode xlsx export: %w", err)
	}
	return buf.Bytes(), nil
}
