// Package profiles persists the cached account profile of the client.
//
// One row per account email. The dirty flag marks local edits that the
// server has not acknowledged yet; the reconciliation engine pushes dirty
// profiles first and never overwrites a dirty row with a pulled copy.
//
//	repo := profiles.NewSQLiteRepository(db)
//	_ = repo.Upsert(ctx, p, true)
//	p, _ := repo.Get(ctx, "user@example.com") // nil, nil when absent
package profiles
