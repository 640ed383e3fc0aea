package alto

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/pubdatecheck/internal/models"
)

// Page is the word content of one ALTO file.
type Page struct {
	Tokens []models.OcrToken
	// Dropped counts String elements without usable CONTENT, VPOS or HPOS.
	Dropped int
}

// ReadFile reads all OCR tokens of an ALTO file.
func ReadFile(path string) (*Page, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ALTO file: %w", err)
	}
	defer f.Close()

	page, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ALTO %s: %w", path, err)
	}
	return page, nil
}

// Read streams String elements from r in document order. The namespace is ignored
// so ALTO v2, v3 and v4 files all work.
func Read(r io.Reader) (*Page, error) {
	dec := xml.NewDecoder(r)
	page := &Page{}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return page, nil
		}
		if err != nil {
			return nil, err
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "String" {
			continue
		}

		token, ok := parseString(start)
		if !ok {
			page.Dropped++
			continue
		}
		page.Tokens = append(page.Tokens, token)
	}
}

func parseString(el xml.StartElement) (models.OcrToken, bool) {
	var (
		token                  models.OcrToken
		hasContent, hasV, hasH bool
	)
	for _, attr := range el.Attr {
		switch attr.Name.Local {
		case "CONTENT":
			token.Text = attr.Value
			hasContent = attr.Value != ""
		case "VPOS":
			token.VPos, hasV = parseCoord(attr.Value)
		case "HPOS":
			token.HPos, hasH = parseCoord(attr.Value)
		}
	}
	return token, hasContent && hasV && hasH
}

// parseCoord accepts integer and decimal coordinates; decimals are truncated.
func parseCoord(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}
