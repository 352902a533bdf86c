package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	if len(os.Args) < 2 {
		fmt.Println("Usage: go run main.go [drop|up|seed]")
		os.Exit(1)
	}

	command := os.Args[1]

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close(ctx)

	switch command {
	case "drop":
		if err := dropTables(ctx, conn); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		fmt.Println("All tables dropped successfully")

	case "up":
		if err := createTables(ctx, conn); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
		fmt.Println("All tables created successfully")

	case "seed":
		if err := seedData(ctx, conn); err != nil {
			log.Fatalf("Failed to seed data: %v", err)
		}
		fmt.Println("Data seeded successfully")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

func dropTables(ctx context.Context, conn *pgx.Conn) error {
	statements := []string{
		`DROP VIEW IF EXISTS current_takes`,
		`DROP TABLE IF EXISTS payroll`,
		`DROP TABLE IF EXISTS takes`,
		`DROP TABLE IF EXISTS paydays`,
		`DROP TABLE IF EXISTS teams`,
		`DROP TABLE IF EXISTS email_addresses`,
		`DROP TABLE IF EXISTS participants`,
	}
	for _, stmt := range statements {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt, err)
		}
	}
	return nil
}

func createTables(ctx context.Context, conn *pgx.Conn) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS participants (
			id            BIGSERIAL PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			claimed_time  TIMESTAMPTZ,
			is_suspicious BOOLEAN,
			verified_in   TEXT,
			taking        NUMERIC(35,2) NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS email_addresses (
			id             BIGSERIAL PRIMARY KEY,
			participant_id BIGINT NOT NULL REFERENCES participants(id),
			address        TEXT NOT NULL,
			verified       BOOLEAN NOT NULL DEFAULT FALSE,
			UNIQUE (participant_id, address)
		)`,
		`CREATE TABLE IF NOT EXISTS teams (
			id               BIGSERIAL PRIMARY KEY,
			slug             TEXT NOT NULL UNIQUE,
			name             TEXT NOT NULL,
			owner_id         BIGINT NOT NULL REFERENCES participants(id),
			available        NUMERIC(35,2) NOT NULL DEFAULT 0,
			receiving        NUMERIC(35,2) NOT NULL DEFAULT 0,
			distributing     NUMERIC(35,2) NOT NULL DEFAULT 0,
			ndistributing_to INTEGER NOT NULL DEFAULT 0 CHECK (ndistributing_to >= 0),
			created_at       TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		// Append-only ledger. The current nominal take for a pair is its
		// latest row by mtime; ctime carries the membership creation time.
		`CREATE TABLE IF NOT EXISTS takes (
			id             BIGSERIAL PRIMARY KEY,
			team_id        BIGINT NOT NULL REFERENCES teams(id),
			member_id      BIGINT NOT NULL REFERENCES participants(id),
			recorder_id    BIGINT NOT NULL REFERENCES participants(id),
			nominal_amount NUMERIC(35,2) NOT NULL CHECK (nominal_amount >= 0),
			ctime          TIMESTAMPTZ NOT NULL,
			mtime          TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS takes_pair_mtime_idx
			ON takes (team_id, member_id, mtime DESC)`,
		`CREATE INDEX IF NOT EXISTS takes_member_idx ON takes (member_id)`,
		// Most recent externally-confirmed actual payout per pair; the
		// source of truth behind distributing / ndistributing_to / taking.
		`CREATE TABLE IF NOT EXISTS payroll (
			team_id       BIGINT NOT NULL REFERENCES teams(id),
			member_id     BIGINT NOT NULL REFERENCES participants(id),
			actual_amount NUMERIC(35,2) NOT NULL DEFAULT 0,
			mtime         TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (team_id, member_id)
		)`,
		`CREATE TABLE IF NOT EXISTS paydays (
			id       BIGSERIAL PRIMARY KEY,
			ts_start TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			ts_end   TIMESTAMPTZ
		)`,
	}
	for _, stmt := range statements {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("exec failed: %w", err)
		}
	}
	// The nonzero filter means consumers of current_takes only ever see
	// members still on the payroll.
	_, err := conn.Exec(ctx, `
		CREATE OR REPLACE VIEW current_takes AS
			SELECT * FROM (
				SELECT DISTINCT ON (team_id, member_id)
				       id, team_id, member_id, recorder_id, nominal_amount, ctime, mtime
				FROM takes
				ORDER BY team_id, member_id, mtime DESC, id DESC
			) latest
			WHERE nominal_amount > 0
	`)
	if err != nil {
		return fmt.Errorf("failed to create current_takes view: %w", err)
	}
	return nil
}

func seedData(ctx context.Context, conn *pgx.Conn) error {
	statements := []string{
		`INSERT INTO participants (username, claimed_time, is_suspicious, verified_in)
			VALUES ('picard', CURRENT_TIMESTAMP, FALSE, 'FR')
			ON CONFLICT (username) DO NOTHING`,
		`INSERT INTO email_addresses (participant_id, address, verified)
			SELECT id, 'picard@example.com', TRUE FROM participants WHERE username = 'picard'
			ON CONFLICT DO NOTHING`,
		`INSERT INTO teams (slug, name, owner_id, available, receiving)
			SELECT 'enterprise', 'The Enterprise', id, 1.00, 2.00
			FROM participants WHERE username = 'picard'
			ON CONFLICT (slug) DO NOTHING`,
		`INSERT INTO paydays (ts_start, ts_end)
			SELECT CURRENT_TIMESTAMP - INTERVAL '7 days', CURRENT_TIMESTAMP - INTERVAL '6 days'
			WHERE NOT EXISTS (SELECT 1 FROM paydays)`,
	}
	for _, stmt := range statements {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("seed failed: %w", err)
		}
	}
	return nil
}
