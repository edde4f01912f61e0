package auth

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockKeyRepo struct {
	byHash map[string]*APIKeyInfo
	err    error
}

func (m *mockKeyRepo) FindByHash(_ context.Context, hash string) (*APIKeyInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	info, ok := m.byHash[hash]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return info, nil
}

func TestAuthenticate(t *testing.T) {
	pepper := []byte("pepper")
	repo := &mockKeyRepo{byHash: map[string]*APIKeyInfo{
		HashKey(pepper, "good-key"): {
			ID:      "u1",
			KeyHash: HashKey(pepper, "good-key"),
			Name:    "Asha",
			Scopes:  []string{ScopeCustomer},
		},
		HashKey(pepper, "corrupt"): {ID: "u2", KeyHash: "not-hex"},
	}}
	a := NewAuthenticator(repo, pepper)

	tests := []struct {
		name    string
		key     string
		wantID  string
		wantErr error
	}{
		{name: "valid", key: "good-key", wantID: "u1"},
		{name: "empty", key: "", wantErr: ErrUnauthorized},
		{name: "unknown", key: "nope", wantErr: ErrUnauthorized},
		{name: "stored hash unreadable", key: "corrupt", wantErr: ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := a.Authenticate(context.Background(), tt.key)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, p.ID)
		})
	}
}

func TestAuthenticate_RepositoryFailure(t *testing.T) {
	dbErr := errors.New("connection refused")
	a := NewAuthenticator(&mockKeyRepo{err: dbErr}, []byte("pepper"))

	_, err := a.Authenticate(context.Background(), "any-key")
	require.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, ErrUnauthorized, "outages must not look like bad credentials")
}

func TestAuthenticate_WrongPepper(t *testing.T) {
	repo := &mockKeyRepo{byHash: map[string]*APIKeyInfo{
		HashKey([]byte("a"), "key"): {ID: "u1", KeyHash: HashKey([]byte("a"), "key")},
	}}

	_, err := NewAuthenticator(repo, []byte("b")).Authenticate(context.Background(), "key")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestPrincipal_Has(t *testing.T) {
	customer := Principal{Scopes: []string{ScopeCustomer}}
	admin := Principal{Scopes: []string{ScopeAdmin}}

	assert.True(t, customer.Has(ScopeCustomer))
	assert.False(t, customer.Has(ScopeAdmin))
	assert.True(t, admin.Has(ScopeCustomer))
	assert.True(t, admin.Has(ScopeAdmin))
}

func TestPrincipalContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := WithPrincipal(context.Background(), &Principal{ID: "u1"})
	p, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "u1", p.ID)
}
