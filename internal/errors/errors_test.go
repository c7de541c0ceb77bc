package errors_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fvicente/mazmorra/internal/errors"
)

func TestCodedConstructors(t *testing.T) {
	assert.Equal(t, errors.CodeInvalidArgument, errors.GetCode(errors.InvalidArgument("bad")))
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(errors.NotFoundf("no %s", "thing")))
	assert.Equal(t, errors.CodeAlreadyExists, errors.GetCode(errors.AlreadyExists("dup")))
	assert.Equal(t, errors.CodeUnavailable, errors.GetCode(errors.Unavailablef("down")))
	assert.Equal(t, errors.CodeContract, errors.GetCode(errors.Contract("bad shape")))
	assert.Equal(t, errors.CodeInternal, errors.GetCode(errors.Internal("boom")))
}

func TestWrapPreservesCauseAndCode(t *testing.T) {
	cause := errors.NotFound("session missing")

	wrapped := errors.Wrap(cause, "loading save")
	require.Error(t, wrapped)

	// Wrapping keeps the original code visible to the taxonomy helpers.
	assert.True(t, errors.IsNotFound(wrapped))
	assert.ErrorIs(t, wrapped, cause)
	assert.Contains(t, wrapped.Error(), "loading save")
}

func TestWrapPlainError(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")

	wrapped := errors.Wrapf(cause, "pinging %s", "redis")
	assert.ErrorIs(t, wrapped, cause)
	// Errors from outside the taxonomy stay unclassified.
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(wrapped))
}

func TestGetCode_UnknownForForeignErrors(t *testing.T) {
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(fmt.Errorf("plain")))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(nil))
}

func TestValidationErrors(t *testing.T) {
	issues := &errors.ValidationErrors{}
	assert.False(t, issues.HasIssues())

	issues.Add("locations.crypt.id", "id is required", "missing_id")
	issues.Add("startLocationId", "start location missing", "broken_ref")

	assert.True(t, issues.HasIssues())
	assert.Len(t, issues.Issues, 2)
	assert.Contains(t, issues.Error(), "2 validation issue(s)")
	assert.Contains(t, issues.Error(), "locations.crypt.id")
}
