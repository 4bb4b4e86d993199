package conf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPgConnStrEmptyWithoutHost(t *testing.T) {
	for _, key := range []string{
		"POSTGRES_HOST", "POSTGRES_PW", "POSTGRES_USER",
		"POSTGRES_PORT", "POSTGRES_DB", "POSTGRES_SSLMODE",
	} {
		t.Setenv(key, "")
	}
	require.Empty(t, GetPgConnStrFromEnv(),
		"without POSTGRES_HOST the server must fall back to in-memory stores")
}

func TestPgConnStrFromEnv(t *testing.T) {
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("POSTGRES_PORT", "5432")
	t.Setenv("POSTGRES_USER", "algoarena")
	t.Setenv("POSTGRES_PW", "hunter2")
	t.Setenv("POSTGRES_DB", "algoarena")
	t.Setenv("POSTGRES_SSLMODE", "disable")

	require.Equal(t,
		"host=db.internal port=5432 user=algoarena password=hunter2 dbname=algoarena sslmode=disable",
		GetPgConnStrFromEnv())
}
