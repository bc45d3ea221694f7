package document

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestExtract_PlainText(t *testing.T) {
	path := writeFile(t, "notes.txt", "The project   started in 2019.\r\n\r\n\r\nSecond\tparagraph.")

	pages, err := Extract(path)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, 1, pages[0].Number)
	assert.Equal(t, "The project started in 2019.\n\nSecond paragraph.", pages[0].Text)
}

func TestExtract_HTMLSkipsScripts(t *testing.T) {
	path := writeFile(t, "page.html", `<html><head><title>t</title><script>var x = 1;</script></head>
<body><h1>Launch</h1><p>The project started in <b>2019</b>.</p><style>p{}</style></body></html>`)

	pages, err := Extract(path)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Contains(t, pages[0].Text, "Launch")
	assert.Contains(t, pages[0].Text, "The project started in 2019.")
	assert.NotContains(t, pages[0].Text, "var x")
	assert.NotContains(t, pages[0].Text, "p{}")
}

func TestExtract_DOCX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.docx")
	f, err := os.Create(path)
	require.NoError(t, err)

	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>
<w:p><w:r><w:t>First</w:t></w:r><w:r><w:t xml:space="preserve"> line</w:t></w:r></w:p>
<w:p><w:r><w:t>Second</w:t><w:tab/><w:t>line</w:t></w:r></w:p>
</w:body></w:document>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	pages, err := Extract(path)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, "First line\n\nSecond line", pages[0].Text)
}

func TestExtract_Unsupported(t *testing.T) {
	path := writeFile(t, "image.png", "\x89PNG")

	_, err := Extract(path)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestExtract_EmptyFileHasNoPages(t *testing.T) {
	pages, err := Extract(writeFile(t, "empty.md", "  \n\n "))
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestSupported(t *testing.T) {
	for _, name := range []string{"a.pdf", "b.DOCX", "c.txt", "d.md", "e.htm"} {
		assert.True(t, Supported(name), name)
	}
	assert.False(t, Supported("f.exe"))
	assert.False(t, Supported("noext"))
}

func TestNormalize(t *testing.T) {
	// NFKC folds the ligature and full-width digits.
	assert.Equal(t, "file 2019", Normalize("ﬁle  ２０１９"))
	assert.Equal(t, "a\n\nb", Normalize(" a \n \n\n b "))
	assert.Equal(t, strings.Repeat("x", 3), Normalize("xxx"))
}
