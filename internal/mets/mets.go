package mets

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/pubdatecheck/internal/models"
)

// ModsNamespace is the MODS v3 namespace.
const ModsNamespace = "http://www.loc.gov/mods/v3"

// DefaultSuffix is the file name suffix of METS files in a batch.
const DefaultSuffix = "_mets.xml"

type modsRecord struct {
	RelatedItems []relatedItem `xml:"relatedItem"`
}

type relatedItem struct {
	TitleInfo []struct {
		Title []string `xml:"title"`
	} `xml:"titleInfo"`
	Part []struct {
		Date []string `xml:"date"`
	} `xml:"part"`
	OriginInfo []struct {
		Edition []string `xml:"edition"`
	} `xml:"originInfo"`
}

// Fields are the bibliographic values found in a METS document. Absent values are nil.
type Fields struct {
	Title   *string
	Edition *string
	Date    *string
}

// SourceIDFromPath derives the item id from a METS file name.
func SourceIDFromPath(path, suffix string) string {
	return strings.TrimSuffix(filepath.Base(path), suffix)
}

// ReadFile reads the metadata record of one METS file. On failure the record is
// still returned, with every field absent, next to the error.
func ReadFile(path, suffix string) (models.MetadataRecord, error) {
	record := models.MetadataRecord{SourceID: SourceIDFromPath(path, suffix)}

	f, err := os.Open(path)
	if err != nil {
		return record, fmt.Errorf("failed to open METS file: %w", err)
	}
	defer f.Close()

	fields, err := Read(f)
	if err != nil {
		return record, fmt.Errorf("failed to parse METS %s: %w", path, err)
	}

	record.Title = fields.Title
	record.Edition = fields.Edition
	record.Date = fields.Date
	return record, nil
}

// Read scans every mods:mods element and keeps the first non-empty title, part date
// and edition found below a relatedItem.
func Read(r io.Reader) (Fields, error) {
	var fields Fields
	dec := xml.NewDecoder(r)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return fields, nil
		}
		if err != nil {
			return Fields{}, err
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "mods" || start.Name.Space != ModsNamespace {
			continue
		}

		var rec modsRecord
		if err := dec.DecodeElement(&rec, &start); err != nil {
			return Fields{}, fmt.Errorf("failed to decode mods element: %w", err)
		}
		collect(&fields, rec)
	}
}

func collect(fields *Fields, rec modsRecord) {
	for _, item := range rec.RelatedItems {
		for _, ti := range item.TitleInfo {
			setFirst(&fields.Title, ti.Title)
		}
		for _, p := range item.Part {
			setFirst(&fields.Date, p.Date)
		}
		for _, oi := range item.OriginInfo {
			setFirst(&fields.Edition, oi.Edition)
		}
	}
}

func setFirst(dst **string, values []string) {
	if *dst != nil {
		return
	}
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			*dst = models.StringPtr(v)
			return
		}
	}
}
