package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sideways_back_end/internal/models"
)

func TestAccountLocked(t *testing.T) {
	now := time.Now()

	t.Run("sans verrou", func(t *testing.T) {
		assert.False(t, accountLocked(&models.User{}, now))
	})

	t.Run("verrou actif", func(t *testing.T) {
		until := now.Add(10 * time.Minute)
		assert.True(t, accountLocked(&models.User{LockUntil: &until}, now))
	})

	t.Run("verrou expiré", func(t *testing.T) {
		until := now.Add(-time.Minute)
		assert.False(t, accountLocked(&models.User{LockUntil: &until}, now))
	})
}
