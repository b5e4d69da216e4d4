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
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	if len(os.Args) < 2 {
		fmt.Println("Usage: go run main.go [up|drop|seed]")
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
	case "up":
		if err := createTables(ctx, conn); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
		fmt.Println("✅ All tables created successfully")

	case "drop":
		if err := dropTables(ctx, conn); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		fmt.Println("✅ All tables dropped successfully")

	case "seed":
		if err := seedData(ctx, conn); err != nil {
			log.Fatalf("Failed to seed data: %v", err)
		}
		fmt.Println("✅ Data seeded successfully")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

func createTables(ctx context.Context, conn *pgx.Conn) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			username VARCHAR(64) NOT NULL UNIQUE,
			full_name VARCHAR(255) NOT NULL DEFAULT '',
			avatar_url TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS videos (
			id UUID PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			duration DOUBLE PRECISION NOT NULL DEFAULT 0,
			video_url TEXT NOT NULL,
			video_public_id TEXT NOT NULL,
			thumbnail_url TEXT NOT NULL,
			thumbnail_public_id TEXT NOT NULL,
			owner_id UUID NOT NULL REFERENCES users(id),
			is_published BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_videos_owner ON videos(owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_videos_created_at ON videos(created_at)`,
		`CREATE TABLE IF NOT EXISTS subscriptions (
			id UUID PRIMARY KEY,
			subscriber_id UUID NOT NULL REFERENCES users(id),
			channel_id UUID NOT NULL REFERENCES users(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (subscriber_id, channel_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_subscriptions_channel ON subscriptions(channel_id)`,
		`CREATE TABLE IF NOT EXISTS likes (
			id UUID PRIMARY KEY,
			video_id UUID NOT NULL REFERENCES videos(id),
			user_id UUID NOT NULL REFERENCES users(id),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (video_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS comments (
			id UUID PRIMARY KEY,
			video_id UUID NOT NULL REFERENCES videos(id),
			user_id UUID NOT NULL REFERENCES users(id),
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_likes_video ON likes(video_id)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_video ON comments(video_id)`,
	}

	for _, stmt := range statements {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("statement failed: %w", err)
		}
	}
	return nil
}

func dropTables(ctx context.Context, conn *pgx.Conn) error {
	statements := []string{
		`DROP TABLE IF EXISTS comments`,
		`DROP TABLE IF EXISTS likes`,
		`DROP TABLE IF EXISTS subscriptions`,
		`DROP TABLE IF EXISTS videos`,
		`DROP TABLE IF EXISTS users`,
	}

	for _, stmt := range statements {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("statement failed: %w", err)
		}
	}
	return nil
}

func seedData(ctx context.Context, conn *pgx.Conn) error {
	_, err := conn.Exec(ctx, `
		INSERT INTO users (id, username, full_name, avatar_url)
		VALUES
			('11111111-1111-1111-1111-111111111111', 'alice', 'Alice Example', ''),
			('22222222-2222-2222-2222-222222222222', 'bob', 'Bob Example', ''),
			('33333333-3333-3333-3333-333333333333', 'carol', 'Carol Example', '')
		ON CONFLICT (id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	return nil
}
