// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations, table maintenance
//	├── users/           # Accounts, email validation and password resets
//	└── appartments/     # Listings with photos, stations, reports, likes
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	// Initialize database connection
//	db, err := database.NewDatabase("./loca7.db")
//
//	// Create domain-specific repositories
//	usersRepo := users.NewRepository(db.DB)
//	appartmentsRepo := appartments.NewRepository(db.DB)
//
//	// Use repositories
//	owner, err := usersRepo.GetByEmail("jean@example.com")
//	listing, err := appartmentsRepo.GetByNumber(1234)
//
// The legacy importer additionally uses the table-level helpers
// (ListTables, Truncate, SetForeignKeyChecks) to empty everything except
// accounts before re-importing.
package database
