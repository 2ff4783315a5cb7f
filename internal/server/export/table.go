package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"golf/internal/server/golf"
)

// Sheet names of the bound table workbook
const (
	GridSheet      = "Bounds"
	InstancesSheet = "Instances"
)

// WriteTable writes an XLSX workbook with a grid of bound ranges, rows
// indexed by group count and columns by group size, plus a flat listing
func WriteTable(w io.Writer, states []golf.State) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", GridSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if _, err := f.NewSheet(InstancesSheet); err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}

	closedStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C6EFCE"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	if err := writeGrid(f, states, closedStyle, headerStyle); err != nil {
		return err
	}
	if err := writeListing(f, states, headerStyle); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeGrid(f *excelize.File, states []golf.State, closedStyle, headerStyle int) error {
	maxGroups, maxSize := 0, 0
	for _, st := range states {
		maxGroups = max(maxGroups, st.Instance.NumGroups)
		maxSize = max(maxSize, st.Instance.GroupSize)
	}

	if err := f.SetCellValue(GridSheet, "A1", "groups \\ size"); err != nil {
		return err
	}
	// Row 1 holds sizes from column B, column A holds group counts from row 2
	for s := 2; s <= maxSize; s++ {
		cell, _ := excelize.CoordinatesToCellName(s, 1)
		if err := f.SetCellValue(GridSheet, cell, s); err != nil {
			return err
		}
	}
	for g := 2; g <= maxGroups; g++ {
		cell, _ := excelize.CoordinatesToCellName(1, g)
		if err := f.SetCellValue(GridSheet, cell, g); err != nil {
			return err
		}
	}
	if maxGroups >= 2 {
		if err := f.SetCellStyle(GridSheet, "A1", "A1", headerStyle); err != nil {
			return err
		}
	}

	for _, st := range states {
		cell, err := excelize.CoordinatesToCellName(st.Instance.GroupSize, st.Instance.NumGroups)
		if err != nil {
			return fmt.Errorf("instance %s: %w", st.Instance.Name(), err)
		}
		if err := f.SetCellValue(GridSheet, cell, st.Resolution.Range()); err != nil {
			return err
		}
		if st.Resolution.IsClosed() {
			if err := f.SetCellStyle(GridSheet, cell, cell, closedStyle); err != nil {
				return err
			}
		}
	}
	return nil
}

var listingHeader = []any{"Instance", "Groups", "Group size", "Players", "Lower", "Upper", "Range", "Closed", "Solution"}

func writeListing(f *excelize.File, states []golf.State, headerStyle int) error {
	if err := f.SetSheetRow(InstancesSheet, "A1", &listingHeader); err != nil {
		return err
	}
	if err := f.SetRowStyle(InstancesSheet, 1, 1, headerStyle); err != nil {
		return err
	}

	for i, st := range states {
		r := st.Resolution
		row := []any{
			st.Instance.Name(),
			st.Instance.NumGroups,
			st.Instance.GroupSize,
			st.Instance.NumPlayers(),
			roundsOrBlank(r.Lower),
			roundsOrBlank(r.Upper),
			r.Range(),
			r.IsClosed(),
			r.Solution() != nil,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(InstancesSheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func roundsOrBlank(b *golf.Bound) any {
	if b == nil {
		return ""
	}
	return b.NumRounds
}
