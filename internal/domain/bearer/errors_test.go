package bearer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFoundError(t *testing.T) {
	err := fmt.Errorf("plan: %w", &NotFoundError{Path: "/src/ghost"})
	assert.ErrorIs(t, err, ErrPathNotFound)
	assert.Equal(t, "plan: path does not exist: /src/ghost", err.Error())
	assert.Equal(t, "Path does not exist: /src/ghost", (&NotFoundError{Path: "/src/ghost"}).Message())

	inaccessible := &NotFoundError{Path: "/root/x", Inaccessible: true}
	assert.Equal(t, "Path does not exist or is not accessible: /root/x", inaccessible.Message())
}
