package mets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/pubdatecheck/internal/models"
)

const sample = `<?xml version="1.0" encoding="UTF-8"?>
<mets:mets xmlns:mets="http://www.loc.gov/METS/" xmlns:mods="http://www.loc.gov/mods/v3">
  <mets:dmdSec ID="dmd1">
    <mets:mdWrap MDTYPE="MODS">
      <mets:xmlData>
        <mods:mods>
          <mods:titleInfo><mods:title>Not this one</mods:title></mods:titleInfo>
          <mods:relatedItem type="host">
            <mods:titleInfo>
              <mods:title>   </mods:title>
              <mods:title> De Krant </mods:title>
            </mods:titleInfo>
            <mods:originInfo><mods:edition>Dag</mods:edition></mods:originInfo>
            <mods:part><mods:date>1990-01-05</mods:date></mods:part>
          </mods:relatedItem>
        </mods:mods>
      </mets:xmlData>
    </mets:mdWrap>
  </mets:dmdSec>
  <mets:dmdSec ID="dmd2">
    <mets:mdWrap MDTYPE="MODS">
      <mets:xmlData>
        <mods:mods>
          <mods:relatedItem>
            <mods:part><mods:date>1999-09-09</mods:date></mods:part>
          </mods:relatedItem>
        </mods:mods>
      </mets:xmlData>
    </mets:mdWrap>
  </mets:dmdSec>
</mets:mets>`

func TestRead(t *testing.T) {
	fields, err := Read(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if got := models.Deref(fields.Title); got != "De Krant" {
		t.Errorf("Expected title De Krant, got %q", got)
	}
	if got := models.Deref(fields.Edition); got != "Dag" {
		t.Errorf("Expected edition Dag, got %q", got)
	}
	if got := models.Deref(fields.Date); got != "1990-01-05" {
		t.Errorf("Expected date 1990-01-05, got %q", got)
	}
}

func TestReadMissingFields(t *testing.T) {
	doc := `<mets xmlns:mods="http://www.loc.gov/mods/v3"><mods:mods><mods:relatedItem/></mods:mods></mets>`

	fields, err := Read(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if fields.Title != nil || fields.Edition != nil || fields.Date != nil {
		t.Errorf("Expected absent fields, got %+v", fields)
	}
}

func TestReadIgnoresOtherNamespaces(t *testing.T) {
	doc := `<mets><mods><relatedItem><part><date>1990-01-01</date></part></relatedItem></mods></mets>`

	fields, err := Read(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if fields.Date != nil {
		t.Errorf("Expected no date outside the MODS namespace, got %q", *fields.Date)
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ddd_010_mets.xml")
	if err := os.WriteFile(path, []byte(sample), 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	record, err := ReadFile(path, DefaultSuffix)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if record.SourceID != "ddd_010" {
		t.Errorf("Expected source id ddd_010, got %s", record.SourceID)
	}
	if key, ok := record.TitleEdition(); !ok || key != "De Krant_Dag" {
		t.Errorf("Expected title edition De Krant_Dag, got %q", key)
	}

	broken := filepath.Join(dir, "ddd_011_mets.xml")
	if err := os.WriteFile(broken, []byte("<mets><mods"), 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	record, err = ReadFile(broken, DefaultSuffix)
	if err == nil {
		t.Error("Expected parse error")
	}
	if record.SourceID != "ddd_011" || record.Date != nil {
		t.Errorf("Expected empty record for ddd_011, got %+v", record)
	}
}
