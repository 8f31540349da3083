// Package database provides the sqlite storage behind the mutation journal.
//
// The catalog itself lives in JSON files (see package jsonstore); this
// package only holds data about the catalog: which mutations ran, under
// which operation id, and whether they failed.
//
//	database/
//	├── database.go      # Connection setup and migrations
//	└── audit/           # Mutation journal queries and retention
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase("./data/audit.db", log)
//	repo := audit.NewRepository(db.DB)
//	events, total, err := repo.GetEvents(audit.Filter{EntityType: "lesson"}, 20, 0)
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Add the entity to the AutoMigrate call in NewDatabase
//  5. Add compile-time interface check: var _ SomeInterface = (*Repository)(nil)
package database
