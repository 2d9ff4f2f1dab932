// Package models defines the core domain models for the family ledger.
//
// # Models
//
//   - User: a registered account. A user belongs to at most one Group at a time.
//   - Group: the shared context (name, admin, invite code, income, budget).
//   - Expense: a ledger entry bound to the group its creator was in when adding it.
//   - Bill: an upcoming payment reminder, also bound to a group.
//
// # Design Principles
//
// 1. **Flat membership**: a user's group and role live on the User record. There is
// no membership table because a user is never in two groups.
// 2. **Immutable bindings**: Expense.GroupID and Bill.GroupID never change after insert.
// 3. **Snapshots over joins**: Expense.AddedBy stores the contributor's display name at
// creation time and is not resynchronized on rename.
// 4. **IDs, not pointers**: relationships are expressed as ID strings.
package models
