package db

import (
	"database/sql"
	"fmt"
	"log"

	"jamjar/config"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

var DB *sql.DB

// ConnectDB establishes a connection to the database.
func ConnectDB(cfg *config.Config) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	var err error
	DB, err = sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	if err = DB.Ping(); err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Successfully connected to the database.")
	return nil
}

// InitDB initializes the database schema, creating tables if they don't exist.
func InitDB() error {
	if err := createSessionsTable(); err != nil {
		return err
	}
	if err := createSessionTracksTable(); err != nil {
		return err
	}

	log.Println("Database initialization completed.")
	return nil
}

func createSessionsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS sessions (
		token VARCHAR(64) PRIMARY KEY,
		host_id VARCHAR(255) NOT NULL,
		playlist_id VARCHAR(255) NOT NULL,
		access_token TEXT NOT NULL,
		refresh_token TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	);
	`
	_, err := DB.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create sessions table: %w", err)
	}
	log.Println("Sessions table initialized successfully (or already exists).")
	return nil
}

func createSessionTracksTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS session_tracks (
		token VARCHAR(64) NOT NULL,
		track_id VARCHAR(64) NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (token, track_id),
		CONSTRAINT fk_session_tracks FOREIGN KEY (token) REFERENCES sessions(token) ON DELETE CASCADE
	);
	`
	_, err := DB.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create session_tracks table: %w", err)
	}
	log.Println("Session tracks table initialized successfully (or already exists).")
	return nil
}
