package config

import (
	"log"

	"github.com/joho/godotenv"
)

// Load charge le fichier .env s'il existe. En production les variables
// viennent directement de l'environnement et l'absence du fichier est normale.
func Load() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️ Aucun fichier .env trouvé — on continue avec les variables d'environnement du système")
		return
	}
	log.Println("✅ Fichier .env chargé")
}
