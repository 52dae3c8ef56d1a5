package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldPrefixesError(t *testing.T) {
	v := Field("name", Required(), MaxLength(3))

	err := v("")
	require.Error(t, err)
	assert.Equal(t, "name: this field is required", err.Error())

	err = v("abcd")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no more than 3")

	assert.NoError(t, v("abc"))
}

func TestLengthCountsRunes(t *testing.T) {
	assert.NoError(t, MaxLength(2)("🎉🎉"))
	assert.Error(t, MinLength(3)("🎉🎉"))
}

func TestOptional(t *testing.T) {
	v := Optional(MinLength(5))
	assert.NoError(t, v(""))
	assert.Error(t, v("abc"))
}

func TestEmailAndOneOf(t *testing.T) {
	assert.NoError(t, Email()("dev@devtea.io"))
	assert.Error(t, Email()("not-an-email"))

	kind := OneOf("room", "dm")
	assert.NoError(t, kind("dm"))
	assert.EqualError(t, kind("group"), "must be one of: room, dm")
}
