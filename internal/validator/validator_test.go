package validator_test

import (
	"testing"

	"github.com/aretw0/rewind/internal/validator"
	"github.com/aretw0/rewind/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze_Clean(t *testing.T) {
	cfg, err := dsl.New("idle").
		Add("idle").On("start", "running").
		Add("running").On("stop", "idle").
		Build()
	require.NoError(t, err)

	report := validator.Analyze(cfg)
	assert.True(t, report.Clean())
	assert.Empty(t, report.String())
}

func TestAnalyze_Findings(t *testing.T) {
	cfg, err := dsl.New("draft").
		Add("draft").On("submit", "review").
		Add("archived").On("restore", "draft").
		Add("review").On("approve", "published").
		Add("published").
		Add("orphan").
		Build()
	require.NoError(t, err)

	report := validator.Analyze(cfg)
	assert.Equal(t, []string{"archived", "orphan"}, report.Unreachable)
	assert.Equal(t, []string{"published"}, report.DeadEnds)
	assert.Equal(t, []string{
		"state 'archived' is unreachable from the initial state",
		"state 'orphan' is unreachable from the initial state",
		"state 'published' has no outgoing transitions",
	}, report.Warnings())
}

func TestAnalyze_Nil(t *testing.T) {
	assert.True(t, validator.Analyze(nil).Clean())
}
