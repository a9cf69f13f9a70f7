package sl_test

import (
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/tv-manager/internal/lib/sl"
)

func TestErr_ReturnsCorrectAttr(t *testing.T) {
	err := errors.New("something went wrong")
	attr := sl.Err(err)

	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, slog.StringValue("something went wrong"), attr.Value)
}

func TestErr_NilError(t *testing.T) {
	attr := sl.Err(nil)

	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, "<nil>", attr.Value.String())
}

func TestErr_WrappedError(t *testing.T) {
	err := fmt.Errorf("manager.Renew: %w", errors.New("disk full"))

	assert.Equal(t, "manager.Renew: disk full", sl.Err(err).Value.String())
}
