package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"image"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/lehigh-university-libraries/pubdatecheck/internal/batch"
	"github.com/lehigh-university-libraries/pubdatecheck/internal/config"
	"github.com/lehigh-university-libraries/pubdatecheck/internal/models"
)

var fixedNow = time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)

func scored(id, date string, h, v int, score float64) models.ScoredCandidate {
	return models.ScoredCandidate{
		DateCandidate: models.DateCandidate{SourceID: id, ISODate: date, HPos: h, VPos: v},
		DensityScore:  score,
		PositionScore: score,
		CombinedScore: score,
	}
}

func fixtureResult(t *testing.T) *batch.Result {
	t.Helper()
	batchDir := filepath.Join(t.TempDir(), "batch_001")
	access := filepath.Join(batchDir, "b", "access")
	require.NoError(t, os.MkdirAll(access, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(access, "b_00001_access.jp2"), []byte("jp2"), 0644))

	a := scored("a", "1990-01-03", 1500, 200, 0.9)
	b := scored("b", "1990-01-04", 1520, 230, 0.85)
	c := scored("c", "1990-01-05", 1700, 900, 0.2)

	discrepancy := models.ComparisonResult{
		ScoredCandidate: b,
		MetadataDate:    models.StringPtr("1990-01-06"),
		DistanceScore:   2,
	}

	return &batch.Result{
		BatchID:    "batch_001",
		Path:       batchDir,
		AltoFiles:  4,
		MetsFiles:  3,
		Candidates: 3,
		Groups: []batch.GroupResult{
			{
				TitleEdition:  "De Krant van Toen_Ochtend",
				Population:    []models.ScoredCandidate{a, b, c},
				Kept:          []models.ScoredCandidate{a, b},
				Discrepancies: []models.ComparisonResult{discrepancy},
				Compared: []models.ComparisonResult{
					{ScoredCandidate: a, MetadataDate: models.StringPtr("1990-01-03")},
					discrepancy,
				},
				PagesWithoutDate:    2,
				PagesWithoutDatePct: 50.0,
			},
			{
				TitleEdition: "Ander Blad_Avond",
			},
		},
		StartedAt:  fixedNow,
		FinishedAt: fixedNow,
	}
}

func testConfig(t *testing.T, formats ...string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Output = t.TempDir()
	cfg.Formats = formats
	return cfg
}

func TestReportName(t *testing.T) {
	tests := []struct {
		title     string
		threshold float64
		expected  string
	}{
		{"De Krant van Toen_Ochtend", 0.8, "publicatiedatumcontrole-report_DeKran_thr0_8_20240305_1407.html"},
		{"Blad_1", 1, "publicatiedatumcontrole-report_Blad_1_thr1_0_20240305_1407.html"},
		{"Één Krant", 0.75, "publicatiedatumcontrole-report_ÉénKra_thr0_75_20240305_1407.html"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.expected, ReportName(tt.title, tt.threshold, fixedNow))
		})
	}
}

func TestNewRun(t *testing.T) {
	res := fixtureResult(t)
	cfg := testConfig(t)

	run := NewRun(res, cfg, fixedNow)

	require.NotEmpty(t, run.ID)
	assert.Equal(t, "batch_001", run.Batch.ID)
	assert.Equal(t, 2, run.Batch.Kept)
	assert.Equal(t, 1, run.Batch.Discrepancies)
	assert.Equal(t, 0.8, run.Config.ScoreThreshold)
	require.Len(t, run.Groups, 2)

	rows := run.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "b", rows[0].SourceID)
	assert.Equal(t, "1990-01-06", rows[0].MetadataDate)
	assert.Equal(t, "1990-01-04", rows[0].OcrDate)
	assert.Equal(t, 2, rows[0].DistanceScore)
	assert.Equal(t, filepath.Join(res.Path, "b", "access", "b_00001_access.jp2"), rows[0].AccessFile)
}

func TestNewRunRecordsBatchError(t *testing.T) {
	res := &batch.Result{BatchID: "broken", Err: errors.New("no such directory")}

	run := NewRun(res, testConfig(t), fixedNow)

	assert.Equal(t, "no such directory", run.Batch.Error)
	assert.Empty(t, run.Groups)
}

func TestAccessFileMissing(t *testing.T) {
	assert.Empty(t, AccessFile(t.TempDir(), "x"))
}

func TestSaveAndLoadRuns(t *testing.T) {
	res := fixtureResult(t)
	cfg := testConfig(t, config.FormatHTML, config.FormatYAML)

	run, err := Save(res, cfg, fixedNow, nil)
	require.NoError(t, err)

	require.NotEmpty(t, run.Groups[0].HTMLReport)
	assert.Empty(t, run.Groups[1].HTMLReport, "groups without discrepancies get no report")

	html, err := os.ReadFile(run.Groups[0].HTMLReport)
	require.NoError(t, err)
	page := string(html)
	assert.Contains(t, page, "Batch: batch_001")
	assert.Contains(t, page, "Threshold gebruikt: 0.8")
	assert.Contains(t, page, "1990-01-06")
	assert.Contains(t, page, "b_00001_access.jp2")
	assert.Contains(t, page, "(geen snippet)", "JPEG 2000 access images get no snippet")
	assert.NotContains(t, page, "<image ")
	assert.Equal(t, 3, strings.Count(page, "<circle"))
	assert.Equal(t, 1, strings.Count(page, `stroke="red"`))

	runs, err := LoadRuns(cfg.Output)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.Equal(t, run.Batch, runs[0].Batch)
	assert.Equal(t, run.Rows(), runs[0].Rows())
}

func TestSaveWithoutHTML(t *testing.T) {
	res := fixtureResult(t)
	cfg := testConfig(t, config.FormatYAML)

	run, err := Save(res, cfg, fixedNow, nil)
	require.NoError(t, err)

	assert.Empty(t, run.Groups[0].HTMLReport)
	matches, err := filepath.Glob(filepath.Join(cfg.Output, "batch_001", "*.html"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestSaveExports(t *testing.T) {
	res := fixtureResult(t)
	cfg := testConfig(t, config.FormatCSV, config.FormatJSON, config.FormatXLSX, config.FormatParquet)

	_, err := Save(res, cfg, fixedNow, nil)
	require.NoError(t, err)

	base := filepath.Join(cfg.Output, "batch_001", "discrepancies_2024-03-05_14-07-09")

	t.Run("csv", func(t *testing.T) {
		f, err := os.Open(base + ".csv")
		require.NoError(t, err)
		defer f.Close()
		records, err := csv.NewReader(f).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, Columns, records[0])
		assert.Equal(t, "b", records[1][2])
		assert.Equal(t, "2", records[1][5])
		assert.Equal(t, "0.85", records[1][8])
	})

	t.Run("json", func(t *testing.T) {
		data, err := os.ReadFile(base + ".json")
		require.NoError(t, err)
		var rows []Row
		require.NoError(t, json.Unmarshal(data, &rows))
		require.Len(t, rows, 1)
		assert.Equal(t, "1990-01-04", rows[0].OcrDate)
	})

	t.Run("xlsx", func(t *testing.T) {
		f, err := excelize.OpenFile(base + ".xlsx")
		require.NoError(t, err)
		defer f.Close()
		rows, err := f.GetRows(xlsxSheet)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, Columns[0], rows[0][0])
		assert.Equal(t, "batch_001", rows[1][0])
		assert.Equal(t, "1990-01-06", rows[1][3])
	})

	t.Run("parquet", func(t *testing.T) {
		rows, err := parquet.ReadFile[Row](base + ".parquet")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "b", rows[0].SourceID)
		assert.Equal(t, 1520, rows[0].HPos)
	})
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteFileUnknownFormat(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "x.txt"), "txt", nil)
	assert.ErrorContains(t, err, "unsupported format")
}

func TestLoadRunsMissingDir(t *testing.T) {
	_, err := LoadRuns(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestPrintSummary(t *testing.T) {
	res := fixtureResult(t)
	cfg := testConfig(t)
	runs := []*Run{
		NewRun(res, cfg, fixedNow),
		NewRun(&batch.Result{BatchID: "broken", Err: errors.New("boom")}, cfg, fixedNow),
	}

	var buf bytes.Buffer
	PrintSummary(&buf, runs)
	out := buf.String()

	assert.Contains(t, out, "Runs:               2")
	assert.Contains(t, out, "Failed Batches:     1")
	assert.Contains(t, out, "Discrepancies:      1")
	assert.Contains(t, out, "[broken]")
	assert.Contains(t, out, "Error: boom")
	assert.Contains(t, out, "b: metadata 1990-01-06, ocr 1990-01-04 (distance 2, score 0.85)")
	assert.Contains(t, out, "2 pages without date (50.0%)")
}

func writePNG(t *testing.T, path string, width, height int) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestWriteHTMLSnippetAndBackground(t *testing.T) {
	res := fixtureResult(t)
	writePNG(t, filepath.Join(res.Path, "b", "access", "b_00001_access.png"), 1800, 1000)
	dir := t.TempDir()

	path, err := WriteHTML(dir, res, res.Groups[0], 0.8, fixedNow, nil)
	require.NoError(t, err)

	html, err := os.ReadFile(path)
	require.NoError(t, err)
	page := string(html)
	assert.Contains(t, page, `<img src="images/b_date.jpg" alt="snippet">`)
	assert.Contains(t, page, `<image href="images/fig_DeKran.jpg"`)

	f, err := os.Open(filepath.Join(dir, "images", "b_date.jpg"))
	require.NoError(t, err)
	defer f.Close()
	snippet, err := jpeg.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(252, 30), snippet.Bounds().Size())

	bg, err := os.Open(filepath.Join(dir, "images", "fig_DeKran.jpg"))
	require.NoError(t, err)
	defer bg.Close()
	cfg, err := jpeg.DecodeConfig(bg)
	require.NoError(t, err)
	assert.Equal(t, int(plotWidth), cfg.Width)
}

func TestCropSnippetPadsOutsideImage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 100, 100))
	for i := range img.Pix {
		img.Pix[i] = 255
	}

	out := cropSnippet(img, 10, 10)

	assert.Equal(t, image.Pt(252, 30), out.Bounds().Size())
	r, g, b, _ := out.At(out.Bounds().Dx()-1, out.Bounds().Dy()-1).RGBA()
	assert.Zero(t, r+g+b, "area beyond the page is black")
}

func TestSaveLogsWithBatch(t *testing.T) {
	res := fixtureResult(t)
	cfg := testConfig(t, config.FormatHTML, config.FormatYAML, config.FormatCSV)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	_, err := Save(res, cfg, fixedNow, logger)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	for _, line := range lines {
		assert.Contains(t, line, "batch=batch_001")
	}
}
