package guards_test

import (
	"context"
	"testing"

	"github.com/silenceobjects/sentinel/internal/domain"
	"github.com/silenceobjects/sentinel/internal/domain/guards"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func manifestDiff(path, entry string) string {
	return `diff --git a/` + path + ` b/` + path + `
--- a/` + path + `
+++ b/` + path + `
@@ -5,5 +5,7 @@
   "dependencies": {
     "next": "14.0.0",
+` + entry + `
     "react": "18.2.0"
   },
   "scripts": {
+    "lint": "eslint ."
`
}

func runDependency(files []domain.ChangedFile, diffs map[string]string) domain.GuardRun {
	src := &fakeSource{files: files, diffs: diffs}
	return guards.NewDependency(src, domain.DefaultPolicy()).Run(context.Background())
}

func TestDependency_NewExternalDependency(t *testing.T) {
	path := "apps/portal/package.json"
	run := runDependency(modified(path), map[string]string{
		path: manifestDiff(path, `    "lodash": "^4.17.21",`),
	})

	require.Equal(t, 1, run.Result.Violations)
	v := run.Findings[0].(domain.DependencyViolation)
	assert.Equal(t, domain.NewDependency, v.Type)
	assert.Equal(t, "lodash", v.PackageName)
	assert.Equal(t, path, v.File)
	assert.Contains(t, run.Result.Details[0], "lodash@^4.17.21")
	assert.False(t, run.Result.Passed)
}

func TestDependency_WorkspaceProtocolIsExempt(t *testing.T) {
	path := "apps/portal/package.json"
	run := runDependency(modified(path), map[string]string{
		path: manifestDiff(path, `    "@silence/core": "workspace:*",`),
	})

	assert.True(t, run.Result.Passed)
	assert.Zero(t, run.Result.Violations)
	assert.Equal(t, []string{"No unauthorized dependency changes"}, run.Result.Details)
}

func TestDependency_InternalDependencyOutsideAllowList(t *testing.T) {
	path := "packages/contracts/package.json"
	run := runDependency(modified(path), map[string]string{
		path: manifestDiff(path, `    "@silence/core": "workspace:*",`),
	})

	require.Equal(t, 1, run.Result.Violations)
	v := run.Findings[0].(domain.DependencyViolation)
	assert.Equal(t, domain.ForbiddenInternalDependency, v.Type)
	assert.Equal(t, "@silence/core", v.PackageName)
}

func TestDependency_AllowedInternalDependency(t *testing.T) {
	path := "packages/ui/package.json"
	run := runDependency(modified(path), map[string]string{
		path: manifestDiff(path, `    "@silence/core": "workspace:^",`),
	})
	assert.True(t, run.Result.Passed)
}

func TestDependency_LockfileChange(t *testing.T) {
	run := runDependency(modified("pnpm-lock.yaml"), nil)

	require.Equal(t, 1, run.Result.Violations)
	assert.Equal(t, domain.LockfileChanged, run.Findings[0].(domain.DependencyViolation).Type)
	assert.False(t, run.Result.Passed)
}

func TestDependency_NoDependencyFiles(t *testing.T) {
	run := runDependency(modified("apps/portal/src/page.tsx"), nil)

	assert.True(t, run.Result.Passed)
	assert.Equal(t, []string{"No dependency changes detected"}, run.Result.Details)
}

func TestDependency_DevDependencyBlock(t *testing.T) {
	path := "package.json"
	raw := `--- a/package.json
+++ b/package.json
@@ -1,0 +1,4 @@
+  "devDependencies": {
+    "vitest": "^1.0.0"
+  },
+  "version": "1.0.1"
`
	run := runDependency(modified(path), map[string]string{path: raw})

	require.Equal(t, 1, run.Result.Violations)
	assert.Equal(t, "vitest", run.Findings[0].(domain.DependencyViolation).PackageName)
}
