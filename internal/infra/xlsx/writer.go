package xlsx

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"wordmatch-service/internal/domain"
)

// WriteSet writes set as an id|word|meaning sheet that ReadSet reads back.
func WriteSet(w io.Writer, set domain.MatchingSet) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Items"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	if err := f.SetSheetRow(sheetName, "A1", &[]string{"id", "word", "meaning"}); err != nil {
		return err
	}
	for i, item := range set.Items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &[]string{item.ID, item.LeftText, item.RightText}); err != nil {
			return err
		}
	}
	_, err = f.WriteTo(w)
	return err
}
