package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLineSet(t *testing.T) {
	s := make(LineSet)
	s.Add(7)
	s.AddRange(2, 4)

	assert.True(t, s.Contains(3))
	assert.False(t, s.Contains(5))
	assert.Equal(t, []int{2, 3, 4, 7}, s.Lines())
}

func TestForFile(t *testing.T) {
	assert.IsType(t, GoClassifier{}, ForFile("pkg/app.go"))
	assert.IsType(t, &TreeSitterClassifier{}, ForFile("scripts/run.py"))
	assert.IsType(t, &TreeSitterClassifier{}, ForFile("web/index.js"))
	assert.IsType(t, &TreeSitterClassifier{}, ForFile("web/app.tsx"))
	assert.IsType(t, &TreeSitterClassifier{}, ForFile("src/main.rs"))
	assert.Nil(t, ForFile("README.md"))
	assert.Nil(t, ForFile("data.cov"))
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("main.go"))
	assert.False(t, Supported("main.c"))
}
