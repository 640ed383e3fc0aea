package report

import (
	"fmt"
	"html/template"
	"image"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/pubdatecheck/internal/batch"
)

const (
	plotWidth   = 640.0
	plotHeight  = 800.0
	plotPadding = 40.0
)

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>publicatiedatumcontrole-report</title>
    <style>
        body { font-family: "Trebuchet MS", Arial, Helvetica, sans-serif; margin: 20px; }
        table { border-collapse: collapse; width: 100%; }
        td, th { border: 1px solid #ddd; padding: 8px; }
        tr:nth-child(even) { background-color: #f9f9f9; }
        tr:hover { background-color: #f1f1f1; }
        th { padding-top: 12px; padding-bottom: 12px; text-align: left; background-color: #4CAF50; color: white; }
        svg { border: 1px solid #888; background-color: #fafafa; }
    </style>
</head>
<body>
    <h1>publicatiedatumcontrole-report</h1>
    <h2>Batch: {{.Batch}}</h2>
    <h3>Krant: {{.TitleEdition}}</h3>
    <p>Threshold gebruikt: {{.Threshold}}</p>
    <p>Pagina's zonder datum: {{.PagesWithoutDate}} ({{printf "%.1f" .PagesWithoutDatePct}}%)</p>
    <table>
        <tr>
            <th>Issue ID</th>
            <th>Publicatiedatum Metadata</th>
            <th>Datum ALTO</th>
            <th>Afstand</th>
            <th>Score</th>
            <th>HPOS</th>
            <th>VPOS</th>
            <th>Datum scan</th>
            <th>Access bestand</th>
        </tr>
        {{- range .Rows}}
        <tr>
            <td>{{.SourceID}}</td>
            <td>{{.MetadataDate}}</td>
            <td>{{.OcrDate}}</td>
            <td>{{.DistanceScore}}</td>
            <td>{{printf "%.2f" .CombinedScore}}</td>
            <td>{{.HPos}}</td>
            <td>{{.VPos}}</td>
            <td>{{if .Snippet}}<img src="{{.Snippet}}" alt="snippet">{{else}}(geen snippet){{end}}</td>
            <td>{{if .AccessFile}}<a target="_blank" href="{{.AccessFile}}">{{.AccessName}}</a>{{else}}(geen access-bestand){{end}}</td>
        </tr>
        {{- end}}
    </table>
    <h3>Locatie van datums in pagina's</h3>
    <svg xmlns="http://www.w3.org/2000/svg" width="{{.Plot.Width}}" height="{{.Plot.Height}}" viewBox="0 0 {{.Plot.Width}} {{.Plot.Height}}">
        {{- with .Plot.Background}}
        <image href="{{.Href}}" x="{{.X}}" y="{{.Y}}" width="{{.Width}}" height="{{.Height}}" opacity="0.7" preserveAspectRatio="none"/>
        {{- end}}
        {{- range .Plot.Points}}
        <circle cx="{{.X}}" cy="{{.Y}}" r="5" fill="{{.Fill}}" fill-opacity="0.5"><title>{{.Label}}</title></circle>
        {{- end}}
        {{- range .Plot.Marks}}
        <path d="M{{.X0}},{{.Y0}} L{{.X1}},{{.Y1}} M{{.X0}},{{.Y1}} L{{.X1}},{{.Y0}}" stroke="red" stroke-width="2"><title>{{.Label}}</title></path>
        {{- end}}
        <text x="{{.Plot.Padding}}" y="20" font-size="12">HPOS 0 - {{.Plot.MaxH}}</text>
        <text x="{{.Plot.Padding}}" y="{{.Plot.Bottom}}" font-size="12">VPOS 0 - {{.Plot.MaxV}}</text>
    </svg>
</body>
</html>
`))

type htmlRow struct {
	Row
	AccessName string
	// Snippet is the crop of the access image around the date, relative to the report.
	Snippet string
}

type plotPoint struct {
	X, Y  string
	Fill  string
	Label string
}

type plotMark struct {
	X0, Y0, X1, Y1 string
	Label          string
}

type plotBackground struct {
	Href                string
	X, Y, Width, Height string
}

type plot struct {
	Width, Height string
	Padding       string
	Bottom        string
	MaxH, MaxV    int
	Background    *plotBackground
	Points        []plotPoint
	Marks         []plotMark
}

type reportPage struct {
	Batch               string
	TitleEdition        string
	Threshold           string
	PagesWithoutDate    int
	PagesWithoutDatePct float64
	Rows                []htmlRow
	Plot                plot
}

func coord(f float64) string {
	return strconv.FormatFloat(f, 'f', 1, 64)
}

// scoreColor maps a score in [0,1] from dark purple to yellow.
func scoreColor(score float64) string {
	score = max(0, min(score, 1))
	hue := 280 - int(score*220)
	return fmt.Sprintf("hsl(%d, 85%%, %d%%)", hue, 25+int(score*35))
}

// buildPlot draws the population in page coordinates. When bgSize is non-zero
// the page image of that size is laid under the points.
func buildPlot(g batch.GroupResult, bgHref string, bgSize image.Point) plot {
	maxH, maxV := max(1, bgSize.X), max(1, bgSize.Y)
	for _, c := range g.Population {
		maxH = max(maxH, c.HPos)
		maxV = max(maxV, c.VPos)
	}
	sx := (plotWidth - 2*plotPadding) / float64(maxH)
	sy := (plotHeight - 2*plotPadding) / float64(maxV)
	x := func(h int) float64 { return plotPadding + float64(h)*sx }
	y := func(v int) float64 { return plotPadding + float64(v)*sy }

	p := plot{
		Width:   coord(plotWidth),
		Height:  coord(plotHeight),
		Padding: coord(plotPadding),
		Bottom:  coord(plotHeight - 10),
		MaxH:    maxH,
		MaxV:    maxV,
		Points:  make([]plotPoint, 0, len(g.Population)),
		Marks:   make([]plotMark, 0, len(g.Discrepancies)),
	}
	if bgHref != "" {
		p.Background = &plotBackground{
			Href:   bgHref,
			X:      coord(plotPadding),
			Y:      coord(plotPadding),
			Width:  coord(float64(bgSize.X) * sx),
			Height: coord(float64(bgSize.Y) * sy),
		}
	}
	for _, c := range g.Population {
		p.Points = append(p.Points, plotPoint{
			X:     coord(x(c.HPos)),
			Y:     coord(y(c.VPos)),
			Fill:  scoreColor(c.CombinedScore),
			Label: fmt.Sprintf("%s %s (%.2f)", c.SourceID, c.ISODate, c.CombinedScore),
		})
	}
	const arm = 6.0
	for _, d := range g.Discrepancies {
		cx, cy := x(d.HPos), y(d.VPos)
		p.Marks = append(p.Marks, plotMark{
			X0:    coord(cx - arm),
			Y0:    coord(cy - arm),
			X1:    coord(cx + arm),
			Y1:    coord(cy + arm),
			Label: fmt.Sprintf("%s %s", d.SourceID, d.ISODate),
		})
	}
	return p
}

// ThresholdLabel formats a threshold the way report names carry it, 0.8 as "0.8" and 1 as "1.0".
func ThresholdLabel(threshold float64) string {
	s := strconv.FormatFloat(threshold, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// ReportName returns the HTML file name for a title group.
func ReportName(titleEdition string, threshold float64, now time.Time) string {
	thr := strings.ReplaceAll(ThresholdLabel(threshold), ".", "_")
	return fmt.Sprintf("publicatiedatumcontrole-report_%s_thr%s_%s.html", shortTitle(titleEdition), thr, now.Format("20060102_1504"))
}

func shortTitle(titleEdition string) string {
	short := []rune(strings.Join(strings.Fields(titleEdition), ""))
	if len(short) > 6 {
		short = short[:6]
	}
	return string(short)
}

// WriteHTML renders the report of one title group into dir and returns its path.
// Snippets and the plot background are written to dir/images when the access
// image can be decoded; failures there are logged and leave them out.
func WriteHTML(dir string, res *batch.Result, g batch.GroupResult, threshold float64, now time.Time, logger *slog.Logger) (string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	page := reportPage{
		Batch:               res.BatchID,
		TitleEdition:        g.TitleEdition,
		Threshold:           ThresholdLabel(threshold),
		PagesWithoutDate:    g.PagesWithoutDate,
		PagesWithoutDatePct: g.PagesWithoutDatePct,
		Rows:                make([]htmlRow, 0, len(g.Discrepancies)),
	}

	var bgHref string
	var bgSize image.Point
	for i, d := range g.Discrepancies {
		row := htmlRow{Row: toRow(res, g.TitleEdition, d)}
		row.AccessName = filepath.Base(row.AccessFile)

		source := decodableAccessImage(res.Path, d.SourceID)
		if source == "" {
			page.Rows = append(page.Rows, row)
			continue
		}
		img, err := loadImage(source)
		if err != nil {
			logger.Error("Could not create snippet", "source_id", d.SourceID, "err", err)
			page.Rows = append(page.Rows, row)
			continue
		}

		rel := path.Join("images", d.SourceID+"_date.jpg")
		if err := writeJPEG(filepath.Join(dir, filepath.FromSlash(rel)), cropSnippet(img, d.HPos, d.VPos)); err != nil {
			logger.Error("Could not create snippet", "source_id", d.SourceID, "err", err)
		} else {
			row.Snippet = rel
		}

		// the first discrepancy's page is the plot background
		if i == 0 {
			rel := path.Join("images", "fig_"+shortTitle(g.TitleEdition)+".jpg")
			if err := writeJPEG(filepath.Join(dir, filepath.FromSlash(rel)), scaleTo(img, int(plotWidth))); err != nil {
				logger.Error("Could not create plot background", "source_id", d.SourceID, "err", err)
			} else {
				bgHref = rel
				bgSize = img.Bounds().Size()
			}
		}
		page.Rows = append(page.Rows, row)
	}
	page.Plot = buildPlot(g, bgHref, bgSize)

	out := filepath.Join(dir, ReportName(g.TitleEdition, threshold, now))
	f, err := os.Create(out)
	if err != nil {
		return "", fmt.Errorf("failed to create report: %w", err)
	}
	defer f.Close()

	if err := reportTemplate.Execute(f, page); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}

	return out, nil
}
