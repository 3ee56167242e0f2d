package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:pPr><w:tabs><w:tab w:val="left" w:pos="720"/></w:tabs></w:pPr><w:r><w:t>Jane Doe</w:t></w:r></w:p>
    <w:p><w:r><w:t xml:space="preserve">Experienced </w:t></w:r><w:r><w:t>engineer</w:t></w:r></w:p>
    <w:p><w:r><w:t>Skills:</w:t><w:tab/><w:t>Go</w:t><w:br/><w:t>Kubernetes</w:t></w:r></w:p>
  </w:body>
</w:document>`

const documentRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`

func buildDocx(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// buildPDF writes a minimal PDF with one Helvetica text line per page.
func buildPDF(t *testing.T, pages ...string) []byte {
	t.Helper()
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"", // page tree, filled in below
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}
	var kids []string
	for _, text := range pages {
		pageNum := len(objects) + 1
		kids = append(kids, fmt.Sprintf("%d 0 R", pageNum))
		content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", pageNum+1),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
	}
	objects[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func TestClassify(t *testing.T) {
	tests := []struct {
		mediaType string
		want      Strategy
	}{
		{"text/plain", StrategyText},
		{"text/markdown", StrategyText},
		{"TEXT/PLAIN; charset=utf-8", StrategyText},
		{"application/json", StrategyText},
		{"application/pdf", StrategyPDF},
		{MimeDOCX, StrategyDOCX},
		{"application/msword", StrategyDOCX},
		{"application/x-resume.docx", StrategyDOCX},
		{"application/x-unknown", StrategyFallback},
		{"image/png", StrategyFallback},
		{"", StrategyFallback},
	}
	for _, tt := range tests {
		t.Run(tt.mediaType, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.mediaType))
		})
	}
}

func TestExtractTextIsIdentity(t *testing.T) {
	data := []byte("Experienced engineer\nLikes cloud computing.")
	got, err := Extract(context.Background(), RawDocument{Bytes: data, MediaType: "text/plain"})
	require.NoError(t, err)
	assert.Equal(t, string(data), got)
}

func TestExtractEmptyTextIsNotAnError(t *testing.T) {
	got, err := Extract(context.Background(), RawDocument{Bytes: nil, MediaType: "text/plain"})
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestExtractFallbackNeverFails(t *testing.T) {
	binary := []byte{0x00, 0xff, 0xfe, 0x89, 'P', 'N', 'G'}
	got, err := Extract(context.Background(), RawDocument{Bytes: binary, MediaType: "application/x-unknown"})
	require.NoError(t, err)
	assert.Equal(t, string(binary), got)
}

func TestExtractPDF(t *testing.T) {
	data := buildPDF(t, "Experienced engineer")
	got, err := Extract(context.Background(), RawDocument{Bytes: data, MediaType: MimePDF})
	require.NoError(t, err)
	assert.Equal(t, []string{"Experienced engineer"}, nonEmptyLines(got))
	assert.True(t, strings.HasSuffix(got, "\n"))
}

func TestExtractPDFJoinsPages(t *testing.T) {
	data := buildPDF(t, "Senior Go engineer", "Kubernetes and Postgres")
	got, err := Extract(context.Background(), RawDocument{Bytes: data, MediaType: "application/pdf; name=cv.pdf"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Senior Go engineer", "Kubernetes and Postgres"}, nonEmptyLines(got))
}

func TestExtractPDFFailure(t *testing.T) {
	_, err := Extract(context.Background(), RawDocument{Bytes: []byte("definitely not a pdf"), MediaType: MimePDF})
	var failed *ExtractionFailed
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, "pdf", failed.Format)
	assert.Contains(t, err.Error(), "failed to parse PDF")
}

func TestExtractDocx(t *testing.T) {
	data := buildDocx(t, map[string]string{
		"word/document.xml":            documentXML,
		"word/_rels/document.xml.rels": documentRels,
	})
	got, err := Extract(context.Background(), RawDocument{Bytes: data, MediaType: MimeDOCX})
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nExperienced engineer\nSkills:\tGo\nKubernetes", got)
}

func TestExtractDocxFailure(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"not a zip", []byte("plain bytes")},
		{"zip without document.xml", buildDocx(t, map[string]string{"word/_rels/document.xml.rels": documentRels})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(context.Background(), RawDocument{Bytes: tt.data, MediaType: MimeMSWord})
			var failed *ExtractionFailed
			require.ErrorAs(t, err, &failed)
			assert.Equal(t, "docx", failed.Format)
		})
	}
}

func TestExtractHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Extract(ctx, RawDocument{Bytes: []byte("x"), MediaType: "text/plain"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestMediaTypeFromName(t *testing.T) {
	tests := map[string]string{
		"cv.pdf":          MimePDF,
		"CV.DOCX":         MimeDOCX,
		"old.doc":         MimeMSWord,
		"cv.json":         MimeJSON,
		"notes.md":        MimeText,
		"dir/resume.txt":  MimeText,
		"cv":              "",
		"cv.rtf":          "",
		"archive.pdf.zip": "",
	}
	for name, want := range tests {
		assert.Equal(t, want, MediaTypeFromName(name), name)
	}
}
