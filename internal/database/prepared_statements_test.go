package database

import (
	"testing"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
)

// Sans keyspace configuré, les accesseurs doivent remonter l'erreur de
// session — jamais rendre une requête nil qu'un appelant croirait utilisable.
func TestPreparedAccessorsWithoutSession(t *testing.T) {
	t.Setenv("SCYLLA_KS_USERS_KEYSPACE", "")

	accessors := map[string]func() (*gocql.Query, error){
		"GetUserByEmail":    GetPreparedGetUserByEmail,
		"GetUserByID":       GetPreparedGetUserByID,
		"InsertUser":        GetPreparedInsertUser,
		"InsertUserByEmail": GetPreparedInsertUserByEmail,
	}
	for name, accessor := range accessors {
		q, err := accessor()
		assert.Error(t, err, name)
		assert.Nil(t, q, name)
	}
}
