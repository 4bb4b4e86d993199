package conf

import (
	"fmt"
	"os"
)

// GetPgConnStrFromEnv assembles the pgx connection string from POSTGRES_*
// env vars. It returns "" when POSTGRES_HOST is unset so callers can fall
// back to in-memory stores.
func GetPgConnStrFromEnv() string {
	host := os.Getenv("POSTGRES_HOST")
	if host == "" {
		return ""
	}
	pw := os.Getenv("POSTGRES_PW")
	user := os.Getenv("POSTGRES_USER")
	port := os.Getenv("POSTGRES_PORT")
	db := os.Getenv("POSTGRES_DB")
	ssl := os.Getenv("POSTGRES_SSLMODE")

	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, pw, db, ssl)
}
