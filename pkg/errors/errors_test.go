package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	e1 := New("cause1")
	e2 := New("cause2").Wrap(e1)
	e := New("dummy").Wrap(e2)
	e3 := e.Unwrap()
	assert.True(t, Is(e, e1))
	assert.True(t, Is(e, e2))
	assert.True(t, e3 == e2)
}

func TestErrorInterop(t *testing.T) {
	// sentinels remain matchable through fmt wrapping
	sentinel := New("no receipt store")
	wrapped := fmt.Errorf("opening store: %w", sentinel)
	assert.True(t, Is(wrapped, sentinel))

	var target *Error
	assert.True(t, As(wrapped, &target))
	assert.Equal(t, "no receipt store", target.Error())
}
