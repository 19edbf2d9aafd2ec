package xbridge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCredential(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		cred, err := NewCredential("study-1", "a@b.c", "pw")
		require.NoError(t, err)
		assert.Equal(t, "study-1", cred.Study())
		assert.Equal(t, "a@b.c", cred.Email())
		assert.True(t, cred.CanReauthenticate())
		assert.False(t, cred.IsZero())
	})

	t.Run("missing fields", func(t *testing.T) {
		tests := []struct {
			name                   string
			study, email, password string
		}{
			{"missing study", "", "a@b.c", "pw"},
			{"missing email", "study-1", "", "pw"},
			{"missing password", "study-1", "a@b.c", ""},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := NewCredential(tt.study, tt.email, tt.password)
				assert.ErrorIs(t, err, ErrInvalidConfiguration)
			})
		}
	})
}

func TestNewSessionCredential(t *testing.T) {
	t.Run("valid preset session", func(t *testing.T) {
		cred, err := NewSessionCredential("study-1", "a@b.c", &UserSession{Token: "tok"})
		require.NoError(t, err)
		assert.False(t, cred.CanReauthenticate())
		assert.Equal(t, "tok", cred.presetSession().Token)
	})

	t.Run("nil session", func(t *testing.T) {
		_, err := NewSessionCredential("study-1", "a@b.c", nil)
		assert.ErrorIs(t, err, ErrInvalidConfiguration)
	})

	t.Run("session without token", func(t *testing.T) {
		_, err := NewSessionCredential("study-1", "a@b.c", &UserSession{})
		assert.ErrorIs(t, err, ErrInvalidConfiguration)
	})
}

func TestCredential_Key(t *testing.T) {
	a1, _ := NewCredential("s", "e@x.y", "pw1")
	a2, _ := NewCredential("s", "e@x.y", "pw2")
	b, _ := NewCredential("s", "other@x.y", "pw1")

	// 身份由研究项目 + 邮箱决定，密码不参与
	assert.Equal(t, a1.Key(), a2.Key())
	assert.NotEqual(t, a1.Key(), b.Key())

	// 分隔符防止字段拼接歧义
	c1, _ := NewCredential("ab", "c@x.y", "pw")
	c2, _ := NewCredential("a", "bc@x.y", "pw")
	assert.NotEqual(t, c1.Key(), c2.Key())
}

func TestCredential_Fingerprint(t *testing.T) {
	cred, _ := NewCredential("study-1", "secret@example.com", "pw")
	fp := cred.Fingerprint()

	assert.NotEmpty(t, fp)
	assert.False(t, strings.Contains(fp, "secret@example.com"), "fingerprint must not leak the email")
	assert.False(t, strings.Contains(fp, "study-1"), "fingerprint must not leak the study")

	same, _ := NewCredential("study-1", "secret@example.com", "other-pw")
	assert.Equal(t, fp, same.Fingerprint())
}

func TestUserSession_Valid(t *testing.T) {
	var nilSession *UserSession
	assert.False(t, nilSession.Valid())
	assert.False(t, (&UserSession{}).Valid())
	assert.True(t, (&UserSession{Token: "tok"}).Valid())
}
