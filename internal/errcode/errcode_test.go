package errcode

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, Kind(0), KindOf(nil))
	assert.Equal(t, "unknown", KindOf(nil).String())
	assert.Equal(t, KindValidation, KindOf(Validation("bad")))
	assert.Equal(t, KindNotFound, KindOf(fmt.Errorf("wrap: %w", NotFound("job"))))
	assert.Equal(t, KindConflict, KindOf(ErrUsernameTaken))
	assert.Equal(t, KindStore, KindOf(errors.New("boom")))
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("register: %w", &Error{Kind: KindConflict, Code: UsernameTaken, Message: "taken"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
	assert.NotErrorIs(t, err, ErrCannotDeleteAdmin)
}
