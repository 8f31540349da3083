// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - CourseStore, ModuleStore, LessonStore: catalog operations used by the
//     HTTP controllers (internal/http/stores.go), implemented by the catalog
//     repositories
//   - Recorder: receives every catalog mutation (internal/catalog/catalog.go)
//
// ## Consistency Interfaces
//
//   - Locker: serializes checks and repairs with repository calls
//     (internal/consistency/checker.go)
//   - Backup: keeps the previous file content before a repair
//   - ConsistencyRunner, ConsistencyJournal: used by the background check task
//     (internal/tasks/consistency_check.go)
//
// ## Background Work
//
//   - Enqueuer: hands tasks to the backlite queue or to the inline runner
//     (internal/scheduler/jobs.go)
//
// # Adding a New Consistency Rule
//
//  1. Add a Kind in internal/consistency/report.go
//
//  2. Report it from Checker.inspect with the right Severity. Info issues do
//     not fail a check.
//
//  3. If Repair should fix it, extend rebuildTree or reconcile and cover it
//     in repair_test.go
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for examples.
package interfaces
