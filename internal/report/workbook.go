// Package report renders a user's progress as an Excel workbook.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"progressive-quiz/internal/app"
	"progressive-quiz/internal/domain"
)

const (
	ProgressSheet = "Progress"
	SummarySheet  = "Summary"
)

var progressHeader = []any{"Level", "Status", "Q1", "Q2", "Q3", "Q4", "Q5", "Correct", "Percent"}

// Workbook builds a two-sheet workbook: one row per level, then a summary.
// The caller owns the returned file and must Close it.
func Workbook(p domain.UserProgress) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", ProgressSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := fillProgress(f, p); err != nil {
		f.Close()
		return nil, err
	}
	if err := fillSummary(f, p); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// Write streams the workbook for p to w.
func Write(w io.Writer, p domain.UserProgress) error {
	f, err := Workbook(p)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func fillProgress(f *excelize.File, p domain.UserProgress) error {
	if err := f.SetSheetRow(ProgressSheet, "A1", &progressHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, level := range domain.Levels() {
		outcome := app.Evaluate(p, level)
		row := []any{level.Title(), string(outcome.Status)}
		answers := p.LevelProgress[level]
		for q := 0; q < domain.QuestionsPerLevel; q++ {
			row = append(row, answerCell(answers.At(q)))
		}
		row = append(row, outcome.CorrectCount, outcome.CorrectCount*100/domain.QuestionsPerLevel)

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(ProgressSheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row: %w", level, err)
		}
	}
	return nil
}

func fillSummary(f *excelize.File, p domain.UserProgress) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("add summary sheet: %w", err)
	}
	rows := [][]any{
		{"Username", p.Username},
		{"Current level", p.CurrentLevel.Title()},
		{"Total score", p.TotalScore},
	}
	if p.TotalScore > 0 {
		rating := app.RateScore(p.TotalScore, p.Username)
		rows = append(rows,
			[]any{"Rating", rating.Title},
			[]any{"Correct answers", app.CorrectOutOf(p.TotalScore)},
		)
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
	return nil
}

func answerCell(a domain.Answer) string {
	switch a {
	case domain.Correct:
		return "correct"
	case domain.Incorrect:
		return "incorrect"
	default:
		return ""
	}
}
