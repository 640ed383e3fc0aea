package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lehigh-university-libraries/pubdatecheck/internal/compare"
	"github.com/lehigh-university-libraries/pubdatecheck/internal/config"
)

type word struct {
	text string
	v, h int
}

func writeAlto(t *testing.T, dir, id string, words ...word) {
	t.Helper()
	var b strings.Builder
	b.WriteString(`<alto xmlns="http://www.loc.gov/standards/alto/ns-v3#"><Layout><Page><TextBlock><TextLine>`)
	for _, w := range words {
		fmt.Fprintf(&b, `<String CONTENT=%q VPOS="%d" HPOS="%d"/>`, w.text, w.v, w.h)
	}
	b.WriteString(`</TextLine></TextBlock></Page></Layout></alto>`)

	itemDir := filepath.Join(dir, id, "alto")
	require.NoError(t, os.MkdirAll(itemDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(itemDir, id+"_00001_alto.xml"), []byte(b.String()), 0644))
}

func writeMets(t *testing.T, dir, id, title, edition, date string) {
	t.Helper()
	doc := fmt.Sprintf(`<mets:mets xmlns:mets="http://www.loc.gov/METS/" xmlns:mods="http://www.loc.gov/mods/v3">
<mods:mods><mods:relatedItem>
<mods:titleInfo><mods:title>%s</mods:title></mods:titleInfo>
<mods:originInfo><mods:edition>%s</mods:edition></mods:originInfo>
<mods:part><mods:date>%s</mods:date></mods:part>
</mods:relatedItem></mods:mods></mets:mets>`, title, edition, date)

	itemDir := filepath.Join(dir, id)
	require.NoError(t, os.MkdirAll(itemDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(itemDir, id+"_mets.xml"), []byte(doc), 0644))
}

func dated(day, month, year string, v, h int) []word {
	return []word{
		{"Amsterdam,", v, h - 300},
		{day, v, h - 60},
		{month, v, h},
		{year, v, h + 200},
		{"Prijs", v + 900, h},
	}
}

func fixtureBatch(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "batch_001")

	writeAlto(t, dir, "a", dated("3", "januari", "1990", 200, 1500)...)
	writeMets(t, dir, "a", "De Krant", "Dag", "1990-01-03")

	writeAlto(t, dir, "b", dated("4", "januari", "1990", 230, 1520)...)
	writeMets(t, dir, "b", "De Krant", "Dag", "1990-01-06")

	writeAlto(t, dir, "c", dated("5", "januari", "1990", 215, 1700)...)
	writeMets(t, dir, "c", "De Krant", "Dag", "1991-05-05")

	writeAlto(t, dir, "d", word{"geen", 10, 10}, word{"datum", 10, 80})
	writeMets(t, dir, "d", "De Krant", "Dag", "1990-01-08")

	writeAlto(t, dir, "e", dated("9", "januari", "1990", 220, 1500)...)

	return dir
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.ScoreThreshold = 0
	cfg.DateTolerance = 2
	return cfg
}

func TestDiscover(t *testing.T) {
	dir := fixtureBatch(t)

	files, err := Discover(dir, "_00001_alto.xml", "_mets.xml")
	require.NoError(t, err)

	assert.Len(t, files.Alto, 5)
	assert.Len(t, files.Mets, 4)
	assert.Equal(t, "a", SourceID(files.Alto[0], "_00001_alto.xml"))
}

func TestDiscoverMissingDir(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "nope"), "_00001_alto.xml", "_mets.xml")
	assert.Error(t, err)
}

func TestProcess(t *testing.T) {
	dir := fixtureBatch(t)
	p, err := NewProcessor(testConfig(t), nil)
	require.NoError(t, err)

	res, err := p.Process(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, "batch_001", res.BatchID)
	assert.Equal(t, 5, res.AltoFiles)
	assert.Equal(t, 4, res.MetsFiles)
	assert.Equal(t, 4, res.Candidates)
	assert.Equal(t, 1, res.CandidatesWithoutMetadata)
	assert.Equal(t, 1, res.MetadataWithoutCandidates)

	require.Len(t, res.Groups, 1)
	g := res.Groups[0]
	assert.Equal(t, "De Krant_Dag", g.TitleEdition)
	assert.Len(t, g.Population, 3)
	assert.Len(t, g.Kept, 3)
	assert.Equal(t, 2, g.PagesWithoutDate)
	assert.Equal(t, 40.0, g.PagesWithoutDatePct)

	distances := map[string]int{}
	for _, r := range g.Compared {
		distances[r.SourceID] = r.DistanceScore
	}
	assert.Equal(t, map[string]int{"a": 0, "b": 2, "c": 5}, distances)

	require.Len(t, g.Discrepancies, 1)
	assert.Equal(t, "b", g.Discrepancies[0].SourceID)
	assert.Equal(t, "1990-01-04", g.Discrepancies[0].ISODate)
	assert.Equal(t, 1, res.DiscrepancyCount())
}

func TestProcessThresholdFiltersAll(t *testing.T) {
	cfg := testConfig(t)
	cfg.ScoreThreshold = 1

	p, err := NewProcessor(cfg, nil)
	require.NoError(t, err)

	res, err := p.Process(context.Background(), fixtureBatch(t))
	require.NoError(t, err)
	require.Len(t, res.Groups, 1)
	assert.LessOrEqual(t, len(res.Groups[0].Kept), 1)
}

func TestProcessMissingMetadataDate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "batch_002")
	writeAlto(t, dir, "x", dated("3", "januari", "1990", 200, 1500)...)
	writeMets(t, dir, "x", "De Krant", "Dag", "")

	p, err := NewProcessor(testConfig(t), nil)
	require.NoError(t, err)

	res, err := p.Process(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, res.Groups, 1)
	require.Len(t, res.Groups[0].Compared, 1)
	assert.Equal(t, compare.Unparseable, res.Groups[0].Compared[0].DistanceScore)
	assert.Empty(t, res.Groups[0].Discrepancies)
}

func TestProcessBrokenFiles(t *testing.T) {
	dir := fixtureBatch(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a", "alto", "a_00001_alto.xml"), []byte("<alto><String"), 0644))

	p, err := NewProcessor(testConfig(t), nil)
	require.NoError(t, err)

	res, err := p.Process(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 1, res.FailedFiles)
	assert.Equal(t, 3, res.Candidates)
}

func TestProcessCancelled(t *testing.T) {
	p, err := NewProcessor(testConfig(t), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = p.Process(ctx, fixtureBatch(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunAll(t *testing.T) {
	first := fixtureBatch(t)
	second := fixtureBatch(t)
	missing := filepath.Join(t.TempDir(), "missing")

	p, err := NewProcessor(testConfig(t), nil)
	require.NoError(t, err)

	results, err := p.RunAll(context.Background(), []string{first, missing, second}, 2)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.Equal(t, "missing", results[1].BatchID)
	assert.NoError(t, results[2].Err)
	assert.Equal(t, results[0].DiscrepancyCount(), results[2].DiscrepancyCount())
}

func TestNewProcessorRejectsConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.DateTolerance = -1

	_, err := NewProcessor(cfg, nil)
	assert.Error(t, err)
}

func TestPercentageRoundsHalfToEven(t *testing.T) {
	tests := []struct {
		n, total int
		expected float64
	}{
		{2, 5, 40.0},
		{1, 3, 33.3},
		{1, 16, 6.2},  // 6.25 rounds down to the even digit
		{3, 16, 18.8}, // 18.75 rounds up to the even digit
		{5, 5, 100.0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, percentage(tt.n, tt.total), "%d/%d", tt.n, tt.total)
	}
}
