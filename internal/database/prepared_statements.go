package database

import (
	"log"
	"sync"

	"github.com/gocql/gocql"
)

// Textes CQL du chemin chaud de l'authentification. gocql prépare chaque
// statement côté serveur et met la préparation en cache par texte de requête :
// passer systématiquement par ces constantes garantit la réutilisation.
const (
	cqlGetUserByEmail = "SELECT user_id FROM users_by_email WHERE email = ?"
	cqlGetUserByID    = `SELECT email, password, role, provider, provider_id, is_verified, verification_token, lock_until, created_at
		FROM users WHERE user_id = ?`
	cqlInsertUser = `INSERT INTO users (user_id, email, password, role, provider, provider_id, is_verified, verification_token, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	cqlInsertUserByEmail = "INSERT INTO users_by_email (email, user_id) VALUES (?, ?) IF NOT EXISTS"
)

var preparedOnce sync.Once

// InitPreparedStatements établit la session ks_users au démarrage pour que la
// première requête d'authentification ne paie ni la connexion ni la
// préparation des statements.
func InitPreparedStatements() {
	preparedOnce.Do(func() {
		if _, err := GetUsersSession(); err != nil {
			log.Printf("⚠️ Impossible d'initialiser les prepared statements: %v", err)
			return
		}
		log.Println("✅ Prepared statements initialisés")
	})
}

// Un *gocql.Query ne supporte pas l'usage concurrent : chaque accesseur rend
// une instance neuve adossée au statement préparé partagé. Les valeurs se
// posent avec Bind.

func GetPreparedGetUserByEmail() (*gocql.Query, error) {
	session, err := GetUsersSession()
	if err != nil {
		return nil, err
	}
	return session.Query(cqlGetUserByEmail), nil
}

func GetPreparedGetUserByID() (*gocql.Query, error) {
	session, err := GetUsersSession()
	if err != nil {
		return nil, err
	}
	return session.Query(cqlGetUserByID), nil
}

func GetPreparedInsertUser() (*gocql.Query, error) {
	session, err := GetUsersSession()
	if err != nil {
		return nil, err
	}
	return session.Query(cqlInsertUser), nil
}

func GetPreparedInsertUserByEmail() (*gocql.Query, error) {
	session, err := GetUsersSession()
	if err != nil {
		return nil, err
	}
	return session.Query(cqlInsertUserByEmail), nil
}
