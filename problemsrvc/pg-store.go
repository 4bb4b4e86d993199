package problemsrvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool}
}

func (s *pgStore) Get(ctx context.Context, id string) (*Problem, error) {
	query := `
		SELECT shortid, title, category, max_points, cpu_ms, mem_kib, tests
		FROM problems
		WHERE shortid = $1
	`
	var p Problem
	var testsJson []byte
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Title, &p.Category, &p.MaxPoints, &p.CpuMs, &p.MemKiB, &testsJson,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProblemNotFound()
		}
		return nil, fmt.Errorf("failed to query problem: %w", err)
	}
	if err := json.Unmarshal(testsJson, &p.Tests); err != nil {
		return nil, fmt.Errorf("failed to unmarshal problem tests: %w", err)
	}
	return &p, nil
}

func (s *pgStore) List(ctx context.Context) ([]Problem, error) {
	query := `
		SELECT shortid, title, category, max_points, cpu_ms, mem_kib, tests
		FROM problems
		ORDER BY shortid
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query problems: %w", err)
	}
	defer rows.Close()

	var problems []Problem
	for rows.Next() {
		var p Problem
		var testsJson []byte
		err := rows.Scan(&p.ID, &p.Title, &p.Category, &p.MaxPoints, &p.CpuMs, &p.MemKiB, &testsJson)
		if err != nil {
			return nil, fmt.Errorf("failed to scan problem: %w", err)
		}
		if err := json.Unmarshal(testsJson, &p.Tests); err != nil {
			return nil, fmt.Errorf("failed to unmarshal problem tests: %w", err)
		}
		problems = append(problems, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating problems: %w", err)
	}
	return problems, nil
}
