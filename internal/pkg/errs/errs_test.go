package errs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewError_ReturnsTemplateForKnownCode(t *testing.T) {
	req := require.New(t)

	err := NewError(ErrNameInUse)
	req.Equal(ErrNameInUse, err.Code)
	req.Equal("Username is already in use", err.Message)
}

func TestNewError_FormatsDetailsIntoTemplate(t *testing.T) {
	req := require.New(t)

	err := NewError(ErrUnknownUser, "bob")
	req.Equal(`Unknown user "bob"`, err.Message)
}

func TestNewError_FallsBackToUnknownForMissingCode(t *testing.T) {
	req := require.New(t)

	err := NewError(-1)
	req.Equal(ErrUnknown, err.Code)
}

func TestNewError_ReturnsACopyOfTheTemplate(t *testing.T) {
	req := require.New(t)

	first := NewError(ErrUnknownUser, "bob")
	second := NewError(ErrUnknownUser, "carol")

	// Formatting one instance never mutates the shared template.
	req.Equal(`Unknown user "bob"`, first.Message)
	req.Equal(`Unknown user "carol"`, second.Message)
}

func TestCustomError_ImplementsError(t *testing.T) {
	req := require.New(t)

	var err error = NewError(ErrNameEmpty)
	req.Contains(err.Error(), "No name specified")
	req.Contains(err.Error(), "1101")
}
