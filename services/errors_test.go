package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("connection reset")
	wrapped := fmt.Errorf("handler: %w", internal("Erro ao listar eventos", cause))

	assert.Equal(t, KindInternal, KindOf(wrapped))
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, KindNotFound, KindOf(notFound(msgEventNotFound)))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.Equal(t, "conflict", KindConflict.String())
}
