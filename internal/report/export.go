package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/parquet-go/parquet-go"
	"github.com/xuri/excelize/v2"
)

// Columns is the header of tabular exports.
var Columns = []string{
	"batch",
	"title_edition",
	"source_id",
	"metadata_date",
	"ocr_date",
	"distance_score",
	"density_score",
	"position_score",
	"combined_score",
	"vpos",
	"hpos",
	"access_file",
}

func formatScore(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func (r Row) values() []string {
	return []string{
		r.Batch,
		r.TitleEdition,
		r.SourceID,
		r.MetadataDate,
		r.OcrDate,
		strconv.Itoa(r.DistanceScore),
		formatScore(r.DensityScore),
		formatScore(r.PositionScore),
		formatScore(r.CombinedScore),
		strconv.Itoa(r.VPos),
		strconv.Itoa(r.HPos),
		r.AccessFile,
	}
}

// WriteCSV writes rows with a header line.
func WriteCSV(w io.Writer, rows []Row) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Columns); err != nil {
		return err
	}
	for _, r := range rows {
		if err := writer.Write(r.values()); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteJSON writes rows as an indented JSON array.
func WriteJSON(w io.Writer, rows []Row) error {
	if rows == nil {
		rows = []Row{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(rows)
}

const xlsxSheet = "Discrepancies"

// WriteXLSX writes rows to a single-sheet workbook at path.
func WriteXLSX(path string, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{
			r.Batch,
			r.TitleEdition,
			r.SourceID,
			r.MetadataDate,
			r.OcrDate,
			r.DistanceScore,
			r.DensityScore,
			r.PositionScore,
			r.CombinedScore,
			r.VPos,
			r.HPos,
			r.AccessFile,
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// WriteParquet writes rows to a parquet file at path.
func WriteParquet(path string, rows []Row) error {
	if err := parquet.WriteFile(path, rows); err != nil {
		return fmt.Errorf("failed to write parquet file: %w", err)
	}
	return nil
}
