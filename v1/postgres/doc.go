// Package postgres serves settings from a PostgreSQL table through gorm.
//
// The table has one row per setting:
//
//	CREATE TABLE bus_settings (
//	    name       text PRIMARY KEY,
//	    value      text NOT NULL,
//	    updated_at timestamptz
//	);
//
// Store.Load reads the table into an in-memory snapshot that TryGetSetting
// answers from, so the bus never queries the database while resolving
// settings. Store.Set upserts a row; the change is visible after the next Load.
package postgres
