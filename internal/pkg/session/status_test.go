package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestName(t *testing.T) {
	assert.Equal(t, "CREATED", Name(Created))
	assert.Equal(t, "ACTIVE", Name(Active))
	assert.Equal(t, "ENDED", Name(Ended))
}

func TestFrom(t *testing.T) {
	assert.Equal(t, Created, From("CREATED"))
	assert.Equal(t, Active, From("ACTIVE"))
	assert.Equal(t, Ended, From("ENDED"))
	assert.Equal(t, Status(0), From("olia"))
}

func TestCanChange(t *testing.T) {
	assert.True(t, CanChange(Created, Active))
	assert.True(t, CanChange(Created, Ended))
	assert.True(t, CanChange(Active, Ended))
	assert.True(t, CanChange(Active, Active), "repeated join is idempotent")
}

func TestCanChange_EndedIsTerminal(t *testing.T) {
	assert.False(t, CanChange(Ended, Active))
	assert.False(t, CanChange(Ended, Created))
	assert.False(t, CanChange(Ended, Ended))
}

func TestCanChange_NoBackwards(t *testing.T) {
	assert.False(t, CanChange(Active, Created))
	assert.False(t, CanChange(Created, Created))
}
