// Package lib provides a Go SDK for managing wbs projects and task trees
// programmatically.
//
// The SDK runs the same progress engine as the wbs CLI: every task change
// keeps the status and progress of the whole task tree consistent, and rolls
// the result up to the project.
//
// # Quick Start
//
//	client, err := lib.New(ctx, lib.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	p, err := client.CreateProject(ctx, lib.CreateProjectOpts{Code: "CRM", Name: "CRM rollout"})
//	design, err := client.CreateTask(ctx, "CRM", lib.CreateTaskOpts{Name: "Design", Priority: lib.TaskPriorityHigh})
//	_, err = client.CreateTask(ctx, "CRM", lib.CreateTaskOpts{ParentID: design.ID, Name: "Wireframes"})
//
//	// Completing a task completes its descendants and updates its ancestors.
//	status := lib.TaskStatusCompleted
//	_, err = client.UpdateTask(ctx, design.ID, lib.UpdateTaskOpts{Status: &status})
//
// # Storage
//
//   - [StorageSQLite]: Local SQLite database file (default).
//   - [StoragePostgres]: PostgreSQL database, set [Config.PostgresDSN].
//   - [StorageMemory]: In-memory storage for unit testing. No real infrastructure
//     is required.
//
// # Progress rules
//
// Parent progress is the weighted mean of the children progress, where the
// weight of a task is its priority weight (low 1, medium 2, high 3, urgent 4)
// multiplied by its estimated hours (at least 1). A parent with all its
// children completed is completed. A task with 100% progress is completed,
// unless cancelled.
//
// # Errors
//
// All methods return errors that can be checked with [errors.Is]:
//
//   - [ErrNotFound]: the project or task doesn't exist.
//   - [ErrAlreadyExists]: the project code is already in use.
//   - [ErrNotValid]: invalid input.
//   - [ErrConflict]: concurrent changes couldn't be resolved.
package lib
