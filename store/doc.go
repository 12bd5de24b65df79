// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store is the SQL repository shared by postgres and sqlite.

Queries use $N placeholders, which both drivers accept. Missing rows map to
the not-found sentinels of package election; unique violations from either
driver are recognised by IsUniqueViolation.

# Transactions

	err := st.InTx(ctx, func(tx *store.Store) error {
		if err := tx.InsertVote(ctx, v); err != nil {
			return err
		}
		return tx.Savepoint(ctx, "audit_entry", func() error {
			return tx.AppendAudit(ctx, entry)
		})
	})

Inside fn only tx may be used: sqlite runs on a single connection.
*/
package store
