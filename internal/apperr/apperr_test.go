package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, KindNotFound.Status())
	assert.Equal(t, http.StatusBadRequest, KindBadRequest.Status())
	assert.Equal(t, http.StatusInternalServerError, KindUpstream.Status())
}

func TestClassify_PassesThroughClassifiedErrors(t *testing.T) {
	original := NotFound("game with id %d not found", 7)
	wrapped := fmt.Errorf("catalog: %w", original)

	got := Classify(wrapped, "failed to fetch game")
	require.NotNil(t, got)
	assert.Same(t, original, got)
	assert.Equal(t, KindNotFound, got.Kind)
	assert.Equal(t, "game with id 7 not found", got.Message)
}

func TestClassify_WrapsUnclassifiedErrors(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")

	got := Classify(cause, "failed to fetch games")
	require.NotNil(t, got)
	assert.Equal(t, KindUpstream, got.Kind)
	assert.ErrorIs(t, got, cause)
	assert.Equal(t, "failed to fetch games: dial tcp: connection refused", got.Error())
}

func TestClassify_Nil(t *testing.T) {
	assert.Nil(t, Classify(nil, "unused"))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindBadRequest, KindOf(BadRequest("year must be a number or 'all'")))
	assert.Equal(t, KindUpstream, KindOf(errors.New("boom")))
}
