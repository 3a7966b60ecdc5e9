package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goSample = `package demo

import "fmt"

// Greet says hello.
func Greet(name string) {
	fmt.Println("hello", name)
}

type T struct{ n int }

func (t T) Double() int {
	return t.n * 2
}

var hook = func() {
	fmt.Println("hooked")
}
`

func TestGoClassifierExecutableLines(t *testing.T) {
	set, err := GoClassifier{}.ExecutableLines("demo.go", []byte(goSample))
	require.NoError(t, err)

	// Greet body spans lines 6-8, Double 12-14, the literal 16-18.
	assert.Equal(t, []int{6, 7, 8, 12, 13, 14, 16, 17, 18}, set.Lines())

	// Declarations and blanks are never in the set.
	assert.False(t, set.Contains(1))
	assert.False(t, set.Contains(10))
}

func TestGoClassifierNoExecutableForms(t *testing.T) {
	src := `package demo

const answer = 42

type U struct{}
`
	set, err := GoClassifier{}.ExecutableLines("decl.go", []byte(src))
	require.NoError(t, err)
	assert.Empty(t, set)
}

func TestGoClassifierPartialRecovery(t *testing.T) {
	// The broken declaration in the middle is skipped; parsing resumes at
	// the next top-level form and both intact bodies are still reported.
	src := `package demo

func a() {
	_ = 1
}

func broken( {

func b() {
	_ = 2
}
`
	set, err := GoClassifier{}.ExecutableLines("broken.go", []byte(src))
	require.NoError(t, err)
	assert.True(t, set.Contains(4), "body of a")
	assert.True(t, set.Contains(10), "body of b")
}
