package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultOutputPath(t *testing.T) {
	assert.Equal(t, "sample-deob.js", defaultOutputPath("sample.js"))
	assert.Equal(t, "dir/sample-deob.js", defaultOutputPath("dir/sample.js"))
	assert.Equal(t, "noext-deob", defaultOutputPath("noext"))
}

func TestNormalizeEquals(t *testing.T) {
	assert.Equal(t, []string{"-max-iterations", "5"}, normalizeEquals([]string{"--max-iterations=5"}))
	assert.Equal(t, []string{"-o", "out.js"}, normalizeEquals([]string{"-o", "out.js"}))
	assert.Equal(t, []string{"-q"}, normalizeEquals([]string{"-q"}))
}

func TestRunRejectsMutuallyExclusiveQuietAndVerbose(t *testing.T) {
	assert.Equal(t, exitInvalidArgs, run([]string{"-q", "-v", "input.js"}))
}

func TestRunRejectsNegativeMaxIterations(t *testing.T) {
	assert.Equal(t, exitInvalidArgs, run([]string{"-m", "-1", "input.js"}))
}

func TestRunRejectsWrongArgCount(t *testing.T) {
	assert.Equal(t, exitInvalidArgs, run([]string{}))
	assert.Equal(t, exitInvalidArgs, run([]string{"a.js", "b.js"}))
}

func TestRunReportsFatalOnMissingFile(t *testing.T) {
	assert.Equal(t, exitFatal, run([]string{"-q", "/no/such/file.js"}))
}
