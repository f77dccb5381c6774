package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueParseRoundTrip(t *testing.T) {
	p := NewTokenParser("test-secret", "storefront")

	token, err := p.Issue("u-1", "shopper@example.com")
	require.NoError(t, err)

	sess, err := p.Parse(token)
	require.NoError(t, err)
	assert.True(t, sess.Authenticated)
	assert.Equal(t, "u-1", sess.UserID)
	assert.Equal(t, "shopper@example.com", sess.Email)
}

func TestParseEmptyTokenIsAnonymous(t *testing.T) {
	p := NewTokenParser("test-secret", "storefront")

	sess, err := p.Parse("")
	require.NoError(t, err)
	assert.False(t, sess.Authenticated)
	assert.Empty(t, sess.UserID)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenParser("secret-a", "storefront").Issue("u-1", "")
	require.NoError(t, err)

	_, err = NewTokenParser("secret-b", "storefront").Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	token, err := NewTokenParser("test-secret", "other-service").Issue("u-1", "")
	require.NoError(t, err)

	_, err = NewTokenParser("test-secret", "storefront").Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsGarbage(t *testing.T) {
	p := NewTokenParser("test-secret", "storefront")

	_, err := p.Parse("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsMissingSubject(t *testing.T) {
	p := NewTokenParser("test-secret", "")

	token, err := p.Issue("", "shopper@example.com")
	require.NoError(t, err)

	_, err = p.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
