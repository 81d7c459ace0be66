package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOAuthService(t *testing.T) *OAuthService {
	t.Helper()
	db := testDB(t)
	ledger := NewLedgerService(db)
	auth := NewAuthService(db, ledger, nil, "test-secret", 100)
	return NewOAuthService(db, ledger, auth, "gh-id", "gh-secret", "gg-id", "gg-secret", "http://localhost:8080", 100)
}

func TestOAuthFirstLoginReturnsCreditedBalance(t *testing.T) {
	svc := newOAuthService(t)

	user, err := svc.upsertIdentity("github", providerIdentity{
		ID:        "12345",
		Email:     "ada@example.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	require.NoError(t, err)

	// First login creates the account and the response must already
	// carry the welcome bonus, not a stale zero balance.
	assert.Equal(t, 100, user.Tokens)
	require.NotNil(t, user.GithubID)
	assert.Equal(t, "12345", *user.GithubID)
	assert.Equal(t, 100, ledgerSum(t, svc.db, user.ID))

	// A second login finds the same account and leaves the balance alone.
	again, err := svc.upsertIdentity("github", providerIdentity{ID: "12345"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
	assert.Equal(t, 100, again.Tokens)
}

func TestOAuthAuthURL(t *testing.T) {
	svc := newOAuthService(t)

	url, err := svc.AuthURL("github", "state-123")
	require.NoError(t, err)
	assert.True(t, strings.Contains(url, "state=state-123"))
	assert.True(t, strings.Contains(url, "client_id=gh-id"))

	_, err = svc.AuthURL("facebook", "state")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestProviderColumn(t *testing.T) {
	assert.Equal(t, "google_id", providerColumn("google"))
	assert.Equal(t, "github_id", providerColumn("github"))
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		full  string
		first string
		last  string
	}{
		{"Ada Lovelace", "Ada", "Lovelace"},
		{"Ada King Lovelace", "Ada", "King Lovelace"},
		{"madonna", "madonna", "madonna"},
		{"", "user", "user"},
	}
	for _, tt := range tests {
		first, last := splitName(tt.full)
		assert.Equal(t, tt.first, first, tt.full)
		assert.Equal(t, tt.last, last, tt.full)
	}
}
