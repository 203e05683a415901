package extract

import (
	"context"
	"strings"
	"testing"
)

func TestReadabilityPlainText(t *testing.T) {
	got, err := Readability{}.Extract(context.Background(), []byte("  Plain regulatory text.  "))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != "Plain regulatory text." {
		t.Errorf("got %q", got)
	}
}

func TestReadabilityHTML(t *testing.T) {
	html := `<!doctype html><html><body><article><h1>Notice</h1><p>The reporting threshold changes on March 1st for all retail accounts. Institutions must update their onboarding flows accordingly.</p></article></body></html>`
	got, err := Readability{}.Extract(context.Background(), []byte(html))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !strings.Contains(got, "reporting threshold") {
		t.Errorf("expected article text, got %q", got)
	}
	if strings.Contains(got, "<p>") {
		t.Errorf("expected tags stripped, got %q", got)
	}
}

func TestReadabilityRejectsBinary(t *testing.T) {
	if _, err := (Readability{}).Extract(context.Background(), []byte{0xff, 0xfe, 0x00, 0x01}); err == nil {
		t.Fatal("expected an error for binary input")
	}
}

func TestPDFRejectsNonPDF(t *testing.T) {
	if _, err := (PDF{}).Extract(context.Background(), []byte("not a pdf")); err == nil {
		t.Fatal("expected an error for a non-pdf payload")
	}
}

func TestStrategiesOrder(t *testing.T) {
	chain := Strategies()
	if len(chain) != 2 {
		t.Fatalf("expected 2 strategies, got %d", len(chain))
	}
	if chain[0].Name() != "pdf" || chain[1].Name() != "readability" {
		t.Errorf("unexpected order: %s, %s", chain[0].Name(), chain[1].Name())
	}
}
