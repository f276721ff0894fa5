package diff_test

import (
	"testing"

	"github.com/silenceobjects/sentinel/internal/domain"
	"github.com/silenceobjects/sentinel/internal/domain/diff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoFileDiff = `diff --git a/src/a.ts b/src/a.ts
index 1111111..2222222 100644
--- a/src/a.ts
+++ b/src/a.ts
@@ -3,0 +4,2 @@ export function a() {
+const first = 1;
+const second = 2;
@@ -20 +22,3 @@ export function b() {
-const old = 0;
+const third = 3;
+const fourth = 4;
+const fifth = 5;
diff --git a/src/b.ts b/src/b.ts
new file mode 100644
index 0000000..3333333
--- /dev/null
+++ b/src/b.ts
@@ -0,0 +1,2 @@
+export const b = true;
+export const c = false;
`

func TestParseUnified_LineNumbersFollowHunkHeaders(t *testing.T) {
	p := diff.ParseUnified(twoFileDiff)
	lines := p.AddedLines()

	require.Len(t, lines, 7)
	want := []struct {
		file string
		line int
	}{
		{"src/a.ts", 4}, {"src/a.ts", 5},
		{"src/a.ts", 22}, {"src/a.ts", 23}, {"src/a.ts", 24},
		{"src/b.ts", 1}, {"src/b.ts", 2},
	}
	for i, w := range want {
		assert.Equal(t, w.file, lines[i].File, "line %d", i)
		assert.Equal(t, w.line, lines[i].LineNumber, "line %d", i)
	}
	assert.Equal(t, "const first = 1;", lines[0].Content)
}

func TestParseUnified_StrictlyIncreasingPerFile(t *testing.T) {
	lines := diff.ParseUnified(twoFileDiff).AddedLines()

	last := map[string]int{}
	for _, l := range lines {
		assert.Greater(t, l.LineNumber, last[l.File], "%s:%d", l.File, l.LineNumber)
		last[l.File] = l.LineNumber
	}
}

func TestParseUnified_RemovedLines(t *testing.T) {
	p := diff.ParseUnified(twoFileDiff)
	removed := p.RemovedLines()

	require.Len(t, removed, 1)
	assert.Equal(t, "src/a.ts", removed[0].File)
	assert.Equal(t, 20, removed[0].LineNumber)
	assert.Equal(t, "const old = 0;", removed[0].Content)
}

func TestParseUnified_ContextLinesAdvanceCounter(t *testing.T) {
	raw := `--- a/x.ts
+++ b/x.ts
@@ -1,3 +1,4 @@
 one
-two
+TWO
+three
 four
`
	p := diff.ParseUnified(raw)
	lines := p.AddedLines()

	require.Len(t, lines, 2)
	assert.Equal(t, 2, lines[0].LineNumber)
	assert.Equal(t, 3, lines[1].LineNumber)

	f := p.File("x.ts")
	require.NotNil(t, f)
	body := f.Lines()
	require.Len(t, body, 5)
	assert.Equal(t, diff.Context, body[0].Kind)
	assert.Equal(t, diff.Removed, body[1].Kind)
	assert.Equal(t, diff.Added, body[2].Kind)
	assert.Equal(t, "four", body[4].Content)
}

func TestParseUnified_HeaderLookalikeInsideHunk(t *testing.T) {
	raw := `--- a/notes.md
+++ b/notes.md
@@ -1,0 +1,2 @@
+++ b/not-a-header
+plain
`
	lines := diff.ParseUnified(raw).AddedLines()

	require.Len(t, lines, 2)
	assert.Equal(t, "notes.md", lines[0].File)
	assert.Equal(t, "++ b/not-a-header", lines[0].Content)
	assert.Equal(t, 2, lines[1].LineNumber)
}

func TestParseUnified_NoNewlineMarkerIgnored(t *testing.T) {
	raw := `--- a/x.ts
+++ b/x.ts
@@ -1 +1 @@
-a
\ No newline at end of file
+b
\ No newline at end of file
`
	lines := diff.ParseUnified(raw).AddedLines()

	require.Len(t, lines, 1)
	assert.Equal(t, 1, lines[0].LineNumber)
	assert.Equal(t, "b", lines[0].Content)
}

func TestParseUnified_DeletedFileKeepsOldPath(t *testing.T) {
	raw := `diff --git a/gone.ts b/gone.ts
deleted file mode 100644
--- a/gone.ts
+++ /dev/null
@@ -1,2 +0,0 @@
-export interface Gone {}
-export type G = string;
`
	p := diff.ParseUnified(raw)

	require.Len(t, p.Files, 1)
	assert.Equal(t, "gone.ts", p.Files[0].Path)
	assert.Len(t, p.RemovedLines(), 2)
	assert.Empty(t, p.AddedLines())
}

func TestParseUnified_Empty(t *testing.T) {
	p := diff.ParseUnified("")
	assert.Empty(t, p.Files)
	assert.Empty(t, p.AddedLines())
}

func TestParseNameStatus(t *testing.T) {
	raw := "A\tsrc/new.ts\nM\tsrc/mod.ts\nD\tsrc/del.ts\nR100\tsrc/old.ts\tsrc/renamed.ts\nC75\tsrc/a.ts\tsrc/copy.ts\n\n"

	files := diff.ParseNameStatus(raw)

	require.Len(t, files, 5)
	assert.Equal(t, domain.ChangedFile{Path: "src/new.ts", Status: domain.StatusAdded}, files[0])
	assert.Equal(t, domain.StatusModified, files[1].Status)
	assert.Equal(t, domain.StatusDeleted, files[2].Status)
	assert.Equal(t, domain.ChangedFile{Path: "src/renamed.ts", Status: domain.StatusRenamed}, files[3])
	assert.Equal(t, domain.StatusModified, files[4].Status, "unknown codes fall back to modified")
}

func TestParseNameStatus_SkipsMalformed(t *testing.T) {
	files := diff.ParseNameStatus("garbage\n\nM\tok.ts")
	require.Len(t, files, 1)
	assert.Equal(t, "ok.ts", files[0].Path)
}
