package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
)

// buildPDF writes an uncompressed PDF with one Helvetica text line per page.
func buildPDF(pages []string) []byte {
	objs := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"", // page tree, filled in below
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}
	kids := make([]string, len(pages))
	for i, text := range pages {
		pageNum := len(objs) + 1
		kids[i] = fmt.Sprintf("%d 0 R", pageNum)
		stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		objs = append(objs,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", pageNum+1),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		)
	}
	objs[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, body := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

func TestSetLicenseKey_Empty(t *testing.T) {
	if err := SetLicenseKey(""); err == nil {
		t.Error("SetLicenseKey(\"\") should fail")
	}
}

func TestPDFParser_Parse(t *testing.T) {
	key := os.Getenv("UNIDOC_LICENSE_KEY")
	if key == "" {
		t.Skip("UNIDOC_LICENSE_KEY not set")
	}
	if err := SetLicenseKey(key); err != nil {
		t.Fatalf("SetLicenseKey() error = %v", err)
	}

	data := buildPDF([]string{"Prime the pump before first use", "Replace the filter every season"})

	got, err := NewPDFParser().Parse(context.Background(), data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	first := strings.Index(got, "Prime the pump before first use")
	second := strings.Index(got, "Replace the filter every season")
	if first < 0 || second < 0 {
		t.Fatalf("Parse() = %q, want the text of both pages", got)
	}
	if first > second {
		t.Errorf("Parse() = %q, want page 1 before page 2", got)
	}
	if !strings.Contains(got[first:second], "\n") {
		t.Errorf("Parse() = %q, want a line break between pages", got)
	}

	corpus, err := New(WithoutParser(".md")).Extract(context.Background(), "Pump", []Document{{Name: "guide.PDF", Data: data}})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !strings.Contains(corpus, "Replace the filter every season") {
		t.Errorf("Extract() = %q, want the PDF text", corpus)
	}
}

func TestPDFParser_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewPDFParser().Parse(ctx, buildPDF([]string{"one"})); err == nil {
		t.Error("Parse() with a canceled context should fail")
	}
}
