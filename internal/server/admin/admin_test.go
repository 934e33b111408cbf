package admin

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/molyneaux/vehicle-photo-api/internal/server/models"
)

type fakeEnsurer struct {
	existing map[string]bool
	gotUser  string
	gotPass  string
	err      error
}

func (f *fakeEnsurer) EnsureUser(ctx context.Context, username, password string) (*models.User, bool, error) {
	f.gotUser, f.gotPass = username, password
	if f.err != nil {
		return nil, false, f.err
	}
	if f.existing[username] {
		return &models.User{ID: 7, UserName: username}, false, nil
	}
	return &models.User{ID: 1, UserName: username}, true, nil
}

func stubPasswords(t *testing.T, answers ...string) {
	t.Helper()
	origRead, origTerm := readPassword, isTerminal
	t.Cleanup(func() { readPassword, isTerminal = origRead, origTerm })
	isTerminal = func(int) bool { return true }

	i := 0
	readPassword = func(int) ([]byte, error) {
		if i >= len(answers) {
			return nil, errors.New("no more input")
		}
		a := answers[i]
		i++
		return []byte(a), nil
	}
}

func TestParseFlags(t *testing.T) {
	o, err := ParseFlags([]string{"-d", "postgres://x", "-u", "root", "-p", "s3cret", "-c", "cfg.json"})
	require.NoError(t, err)
	assert.Equal(t, Options{Username: "root", Password: "s3cret"}, o)

	o, err = ParseFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, "admin", o.Username)
	assert.Empty(t, o.Password)
}

func TestResolvePassword_Order(t *testing.T) {
	t.Setenv(PasswordEnv, "from-env")
	stubPasswords(t, "typed", "typed")

	pw, err := ResolvePassword(Options{Password: "from-flag"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "from-flag", pw)

	pw, err = ResolvePassword(Options{}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "from-env", pw)

	t.Setenv(PasswordEnv, "")
	var out bytes.Buffer
	pw, err = ResolvePassword(Options{}, &out)
	require.NoError(t, err)
	assert.Equal(t, "typed", pw)
	assert.Contains(t, out.String(), "Repeat admin password")
}

func TestPromptPassword_Mismatch(t *testing.T) {
	stubPasswords(t, "one", "two")

	_, err := PromptPassword(&bytes.Buffer{})
	assert.ErrorIs(t, err, ErrPasswordMismatch)
}

func TestPromptPassword_Empty(t *testing.T) {
	stubPasswords(t, "")

	_, err := PromptPassword(&bytes.Buffer{})
	assert.Error(t, err)
}

func TestPromptPassword_NotATerminal(t *testing.T) {
	stubPasswords(t, "pw", "pw")
	isTerminal = func(int) bool { return false }

	_, err := PromptPassword(&bytes.Buffer{})
	assert.ErrorContains(t, err, PasswordEnv)
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("created", func(t *testing.T) {
		e := &fakeEnsurer{}
		var out bytes.Buffer
		require.NoError(t, Run(ctx, e, Options{Username: "admin", Password: "pw"}, &out))
		assert.Equal(t, "admin", e.gotUser)
		assert.Equal(t, "pw", e.gotPass)
		assert.Contains(t, out.String(), `Admin user "admin" created`)
	})

	t.Run("exists", func(t *testing.T) {
		e := &fakeEnsurer{existing: map[string]bool{"admin": true}}
		var out bytes.Buffer
		require.NoError(t, Run(ctx, e, Options{Username: "admin", Password: "pw"}, &out))
		assert.Contains(t, out.String(), "already exists")
	})

	t.Run("error", func(t *testing.T) {
		e := &fakeEnsurer{err: errors.New("db down")}
		err := Run(ctx, e, Options{Username: "admin", Password: "pw"}, &bytes.Buffer{})
		assert.ErrorContains(t, err, "db down")
	})
}
