package jwt

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJwt() *JWT {
	conf := viper.New()
	conf.Set("security.jwt.key", "test-key")
	return NewJwt(conf)
}

func TestGenAndParseToken(t *testing.T) {
	j := newTestJwt()
	token, err := j.GenToken("admin", time.Now().Add(time.Hour))
	require.NoError(t, err)

	claims, err := j.ParseToken("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.UserId)
}

func TestParseExpiredToken(t *testing.T) {
	j := newTestJwt()
	token, err := j.GenToken("admin", time.Now().Add(-time.Hour))
	require.NoError(t, err)

	_, err = j.ParseToken(token)
	assert.Error(t, err)
}

func TestParseEmptyToken(t *testing.T) {
	_, err := newTestJwt().ParseToken("Bearer ")
	assert.EqualError(t, err, "token is empty")
}
