package service

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	domainauth "github.com/placementhub/placement-engine/internal/domain/auth"
	"github.com/placementhub/placement-engine/internal/domain/model"
)

const (
	exportSheet    = "Applications"
	exportPageSize = 200
)

var exportHeader = []any{
	"Application ID", "Applicant ID", "Status", "Profile score", "Applied at",
	"Shortlisted at", "On hold at", "Rejected at", "Selected at", "Recruiter notes", "Cover letter",
}

// Export is a rendered workbook.
type Export struct {
	Filename string
	Data     []byte
}

// ExportForJob renders every application to a posting the recruiter owns as an XLSX workbook.
func (s *ApplicationService) ExportForJob(ctx context.Context, recruiter domainauth.Actor, jobID string) (*Export, error) {
	if err := s.ownJob(ctx, recruiter, jobID); err != nil {
		return nil, err
	}

	// Keyset paging: rows inserted mid-export cannot shift later pages.
	var apps []*model.Application
	opts := model.ApplicationListOptions{JobID: &jobID, Limit: exportPageSize}
	for {
		page, err := s.list(ctx, opts)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		apps = append(apps, page...)
		opts.After = model.CursorOf(page[len(page)-1])
	}

	data, err := renderApplicationsWorkbook(apps)
	if err != nil {
		return nil, fmt.Errorf("render applications workbook: %w", err)
	}
	s.logger.InfoContext(ctx, "applications exported", "job_id", jobID, "rows", len(apps))
	return &Export{Filename: fmt.Sprintf("applications-%s.xlsx", jobID), Data: data}, nil
}

func renderApplicationsWorkbook(apps []*model.Application) (data []byte, err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	last, err := excelize.CoordinatesToCellName(len(exportHeader), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(exportSheet, "A1", last, bold); err != nil {
		return nil, err
	}
	if err := f.SetPanes(exportSheet, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	}); err != nil {
		return nil, err
	}

	for i, a := range apps {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{
			a.ID, a.ApplicantID, string(a.Status), intCell(a.ScoreSnapshot), a.AppliedAt.UTC().Format(time.RFC3339),
			timeCell(a.ShortlistedAt), timeCell(a.OnHoldAt), timeCell(a.RejectedAt), timeCell(a.SelectedAt),
			strCell(a.RecruiterNotes), strCell(a.CoverLetter),
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func timeCell(t *time.Time) any {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func strCell(s *string) any {
	if s == nil {
		return ""
	}
	return *s
}

func intCell(n *int) any {
	if n == nil {
		return ""
	}
	return *n
}
