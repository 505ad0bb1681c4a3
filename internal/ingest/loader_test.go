package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSupportedFile(t *testing.T) {
	assert.True(t, SupportedFile("notes.txt"))
	assert.True(t, SupportedFile("README.md"))
	assert.True(t, SupportedFile("UPPER.TXT"))
	assert.False(t, SupportedFile("report.pdf"))
	assert.False(t, SupportedFile("data.docx"))
	assert.False(t, SupportedFile("noextension"))
}

func TestLoadDocument(t *testing.T) {
	doc, err := LoadDocument("reports/q3-summary.txt", strings.NewReader("  Revenue was up.  \n"))

	require.NoError(t, err)
	assert.Equal(t, "q3-summary", doc.Name)
	assert.Equal(t, "Revenue was up.", doc.Text)
}

func TestLoadDocumentRejectsUnsupportedExtension(t *testing.T) {
	_, err := LoadDocument("report.pdf", strings.NewReader("content"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file type")
}

func TestLoadDocumentRejectsEmptyContent(t *testing.T) {
	_, err := LoadDocument("empty.txt", strings.NewReader("   \n  "))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}
