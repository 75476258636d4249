package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	dsn := fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the application tables if they do not exist.
// Statements are idempotent so startup is safe against an already
// provisioned database.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			first_name VARCHAR(100) NOT NULL,
			last_name VARCHAR(100) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE,
			age INT UNSIGNED NOT NULL,
			phone_number VARCHAR(32) NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			dining_preferences TEXT NOT NULL,
			profile_picture VARCHAR(512) NOT NULL DEFAULT '',
			online BOOLEAN NOT NULL DEFAULT TRUE,
			registered_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			reset_token_hash VARCHAR(64) NULL,
			reset_token_expires DATETIME NULL
		)`,
		`CREATE TABLE IF NOT EXISTS user_mpesa_numbers (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT UNSIGNED NOT NULL,
			phone VARCHAR(32) NOT NULL,
			UNIQUE KEY uq_user_phone (user_id, phone),
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS restaurants (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			cuisine_type VARCHAR(100) NOT NULL,
			address VARCHAR(512) NOT NULL,
			phone VARCHAR(32) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE,
			open_time VARCHAR(8) NOT NULL,
			close_time VARCHAR(8) NOT NULL,
			mpesa_number VARCHAR(32) NOT NULL DEFAULT '',
			approval_status ENUM('pending','accepted','declined') NOT NULL DEFAULT 'pending',
			current_capacity INT UNSIGNED NOT NULL,
			initial_capacity INT UNSIGNED NOT NULL,
			image VARCHAR(512) NOT NULL DEFAULT '',
			last_reset DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			password_hash VARCHAR(255) NOT NULL DEFAULT '',
			reset_token_hash VARCHAR(64) NULL,
			reset_token_expires DATETIME NULL
		)`,
		`CREATE TABLE IF NOT EXISTS user_favourites (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT UNSIGNED NOT NULL,
			restaurant_id BIGINT UNSIGNED NOT NULL,
			UNIQUE KEY uq_user_restaurant (user_id, restaurant_id),
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (restaurant_id) REFERENCES restaurants(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS menu_items (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			restaurant_id BIGINT UNSIGNED NOT NULL,
			name VARCHAR(255) NOT NULL DEFAULT 'item name',
			image VARCHAR(512) NOT NULL,
			description TEXT NOT NULL,
			price DECIMAL(10,2) NOT NULL,
			item_type ENUM('main course','appetizer','starter','dessert') NOT NULL,
			status ENUM('active','inactive') NOT NULL DEFAULT 'active',
			count INT UNSIGNED NOT NULL DEFAULT 0,
			ingredients JSON,
			FOREIGN KEY (restaurant_id) REFERENCES restaurants(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS sitting_areas (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			area_key VARCHAR(100) NOT NULL,
			name VARCHAR(255) NOT NULL,
			description TEXT NOT NULL,
			price DECIMAL(10,2) NOT NULL DEFAULT 0,
			icon_type VARCHAR(50) NOT NULL DEFAULT 'table',
			active BOOLEAN NOT NULL DEFAULT TRUE,
			restaurant_id BIGINT UNSIGNED NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uq_area_key_owner (area_key, restaurant_id),
			FOREIGN KEY (restaurant_id) REFERENCES restaurants(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS reservations (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT UNSIGNED NOT NULL,
			restaurant_id BIGINT UNSIGNED NOT NULL,
			reservation_date VARCHAR(16) NOT NULL,
			reservation_time VARCHAR(8) NOT NULL,
			party_size INT UNSIGNED NOT NULL,
			sitting_area JSON NOT NULL,
			confirmation_code VARCHAR(16) NOT NULL,
			status ENUM('pending','confirmed','payed','no-show') NOT NULL DEFAULT 'pending',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id),
			FOREIGN KEY (restaurant_id) REFERENCES restaurants(id)
		)`,
		`CREATE TABLE IF NOT EXISTS reservation_items (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			reservation_id BIGINT UNSIGNED NOT NULL,
			menu_item_id BIGINT UNSIGNED NOT NULL,
			FOREIGN KEY (reservation_id) REFERENCES reservations(id) ON DELETE CASCADE,
			FOREIGN KEY (menu_item_id) REFERENCES menu_items(id)
		)`,
		`CREATE TABLE IF NOT EXISTS payments (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT UNSIGNED NOT NULL,
			reservation_id BIGINT UNSIGNED NOT NULL,
			method VARCHAR(32) NOT NULL DEFAULT 'Mpesa',
			status ENUM('pending','confirmed','failed') NOT NULL DEFAULT 'pending',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id),
			FOREIGN KEY (reservation_id) REFERENCES reservations(id)
		)`,
		`CREATE TABLE IF NOT EXISTS activities (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			actor VARCHAR(255) NOT NULL,
			activity VARCHAR(512) NOT NULL,
			date DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS recommendations (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT UNSIGNED NOT NULL UNIQUE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS recommendation_entries (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			recommendation_id BIGINT UNSIGNED NOT NULL,
			restaurant_id BIGINT UNSIGNED NOT NULL,
			kind ENUM('favourites','new') NOT NULL,
			FOREIGN KEY (recommendation_id) REFERENCES recommendations(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS refresh_tokens (
			id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT UNSIGNED NOT NULL,
			token_hash CHAR(64) NOT NULL,
			expires_at DATETIME NOT NULL,
			revoked_at DATETIME NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			KEY idx_token_hash (token_hash),
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
