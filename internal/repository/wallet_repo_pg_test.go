package repository

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
)

func TestNewWalletRepository(t *testing.T) {
	pool := &pgxpool.Pool{}
	repo := NewWalletRepository(pool)
	assert.NotNil(t, repo)
}
