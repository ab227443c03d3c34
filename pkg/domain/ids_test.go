package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "consentd/pkg/domain-errors"
)

func TestSubjectKey(t *testing.T) {
	visitor, err := ParseVisitorID("7d1c9a3e-4b8f-4a51-9a4e-1f2d3c4b5a69")
	require.NoError(t, err)

	assert.Equal(t, "visitor:7d1c9a3e-4b8f-4a51-9a4e-1f2d3c4b5a69", VisitorSubject(visitor).Key())
	assert.Equal(t, "user:teacher-17", UserSubject("teacher-17").Key())
	assert.Equal(t, "", Subject{}.Key())
	assert.True(t, Subject{}.IsZero())
}

func TestSubject_UserWinsOverVisitor(t *testing.T) {
	s := Subject{Visitor: NewVisitorID(), User: "parent-3"}
	assert.True(t, s.IsUser())
	assert.Equal(t, "user:parent-3", s.Key())
}

func TestParseVisitorID(t *testing.T) {
	_, err := ParseVisitorID("")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = ParseVisitorID("not-a-uuid")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestParseUserID(t *testing.T) {
	id, err := ParseUserID("  student-42 ")
	require.NoError(t, err)
	assert.Equal(t, UserID("student-42"), id)

	for _, bad := range []string{"", "a:b", "with space"} {
		_, err := ParseUserID(bad)
		assert.Error(t, err, bad)
	}
}
