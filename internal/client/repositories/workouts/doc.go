// Package workouts provides the client-side persistence layer for cached
// workout records.
//
// # Overview
//
// Every row carries two bookkeeping flags next to the workout fields:
// synced (cleared by local edits, set once the server acknowledged the row)
// and to_be_deleted (the user removed the row but the server has not been
// told yet). Local ids come from an AUTOINCREMENT column and are never
// reused; remote ids are unique and, once set, never change.
//
// Rows flagged for deletion are invisible to every read except
// ListPendingDeletion. Pulled rows never overwrite a row that still has
// unpushed local changes.
//
// Typical Usage
//
//	repo := workouts.NewSQLiteRepository(db)
//	id, _ := repo.Insert(ctx, w)
//	dirty, _ := repo.ListDirty(ctx, email)
//	_ = repo.MarkSynced(ctx, id, 42)
package workouts
