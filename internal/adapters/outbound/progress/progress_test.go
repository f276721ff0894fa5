package progress_test

import (
	"bytes"
	"testing"

	"github.com/silenceobjects/sentinel/internal/adapters/outbound/progress"
	"github.com/stretchr/testify/assert"
)

func TestBar_WritesProgress(t *testing.T) {
	var buf bytes.Buffer
	bar := progress.NewBar(&buf)

	bar.Start(2)
	bar.Step("terminology")
	bar.Step("security")
	bar.Finish()

	assert.NotEmpty(t, buf.String())
}

func TestBar_StepBeforeStart(t *testing.T) {
	var buf bytes.Buffer
	bar := progress.NewBar(&buf)
	bar.Step("x")
	bar.Finish()
	assert.Empty(t, buf.String())
}

func TestNew_DisabledIsNoOp(t *testing.T) {
	assert.Equal(t, progress.NoOp{}, progress.New(false))
}

func TestNew_CIIsNoOp(t *testing.T) {
	t.Setenv("CI", "true")
	assert.Equal(t, progress.NoOp{}, progress.New(true))
}
