package token

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomKey() string {
	return strings.Repeat("a", 32)
}

func TestPasetoMaker(t *testing.T) {
	maker, err := NewPasetoMaker(randomKey())
	require.NoError(t, err)

	userID := uuid.New()
	issuedAt := time.Now()

	tokenStr, payload, err := maker.CreateToken(userID, time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, tokenStr)
	require.NotNil(t, payload)

	decoded, err := maker.VerifyToken(tokenStr)
	require.NoError(t, err)
	assert.Equal(t, userID, decoded.UserID)
	assert.Equal(t, payload.ID, decoded.ID)
	assert.WithinDuration(t, issuedAt, decoded.IssuedAt, time.Second)
	assert.WithinDuration(t, issuedAt.Add(time.Minute), decoded.ExpiredAt, time.Second)
}

func TestExpiredPasetoToken(t *testing.T) {
	maker, err := NewPasetoMaker(randomKey())
	require.NoError(t, err)

	tokenStr, _, err := maker.CreateToken(uuid.New(), -time.Minute)
	require.NoError(t, err)

	_, err = maker.VerifyToken(tokenStr)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestInvalidKeySize(t *testing.T) {
	_, err := NewPasetoMaker("short")
	require.Error(t, err)
}

func TestTamperedToken(t *testing.T) {
	maker, err := NewPasetoMaker(randomKey())
	require.NoError(t, err)

	tokenStr, _, err := maker.CreateToken(uuid.New(), time.Minute)
	require.NoError(t, err)

	_, err = maker.VerifyToken(tokenStr + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
