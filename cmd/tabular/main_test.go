package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	args = append([]string{"-env-file", ""}, args...)
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_GroupBy(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.csv", "id,v\n1,10\n2,20\n2,30\n3,40\n")

	code, out, errOut := runCLI(t, "groupby", "-in", in, "-by", "id", "-agg", "sum:v,count")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "id,sum_v,count\n1,10,1\n2,50,2\n3,40,1\n", out)
}

func TestRun_Merge(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.csv", "id,x\n1,a\n2,b\n")
	b := writeFile(t, dir, "b.csv", "id,y\n2,p\n2,q\n3,r\n")

	code, out, errOut := runCLI(t, "merge", "-left", a, "-right", b, "-on", "id", "-kind", "left")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "id,x,y\n2,b,p\n2,b,q\n1,a,\n", out)

	code, out, _ = runCLI(t, "merge", "-left", a, "-right", b, "-kind", "cross")
	require.Equal(t, 0, code)
	assert.Equal(t, 7, bytes.Count([]byte(out), []byte("\n")))

	code, _, _ = runCLI(t, "merge", "-left", a, "-right", b, "-on", "id,x")
	assert.Equal(t, 1, code)
}

func TestRun_MergeRightCoalesce(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.csv", "id,x\n1,a\n2,b\n")
	b := writeFile(t, dir, "b.csv", "id,y\n2,p\n3,r\n")

	code, out, errOut := runCLI(t, "merge", "-left", a, "-right", b, "-on", "id", "-kind", "right")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "id,x,y\n2,b,p\n,,r\n", out)

	code, out, errOut = runCLI(t, "merge", "-left", a, "-right", b, "-on", "id", "-kind", "right", "-coalesce")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "id,x,y\n2,b,p\n3,,r\n", out)
}

func TestRun_StackUnstack(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "wide.csv", "k,a,b\n1,1,3\n2,2,4\n")

	code, out, errOut := runCLI(t, "stack", "-in", in, "-values", "a,b")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "key,value,k\na,1,1\na,2,2\nb,3,1\nb,4,2\n", out)

	long := writeFile(t, dir, "long.csv", out)
	code, out, errOut = runCLI(t, "unstack", "-in", long, "-rows", "k")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "k,a,b\n1,1,3\n2,2,4\n", out)
}

func TestRun_Sort(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.csv", "k,n\nb,1\na,2\nb,3\n")

	code, out, errOut := runCLI(t, "sort", "-in", in, "-by", "k,-n")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "k,n\na,2\nb,3\nb,1\n", out)
}

func TestRun_DebugLogsOpStats(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.csv", "k,n\nb,1\na,2\n")

	code, _, errOut := runCLI(t, "-log-level", "debug", "sort", "-in", in, "-by", "k")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, errOut, "op stats")
	assert.Contains(t, errOut, "op=sort")
	assert.Contains(t, errOut, "column=k")
}

func TestRun_ConfigAndErrors(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "tabular.yaml", "csv:\n  delimiter: \";\"\n")
	in := writeFile(t, dir, "in.csv", "id;v\n1;2\n")

	code, out, errOut := runCLI(t, "-config", cfg, "groupby", "-in", in, "-by", "id")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, "id;count\n1;1\n", out)

	code, _, _ = runCLI(t, "nope")
	assert.Equal(t, 2, code)

	code, _, _ = runCLI(t)
	assert.Equal(t, 2, code)

	code, _, errOut = runCLI(t, "groupby", "-in", filepath.Join(dir, "missing.csv"), "-by", "id")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "command failed")

	code, out, _ = runCLI(t, "-version")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "tabular version")
}
