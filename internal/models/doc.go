// Package models defines the core domain entities for fintrack.
//
// # Actor graph
//
// The tenant hierarchy, top to bottom:
//   - Owner: the single super-actor of a deployment, stored as a User with
//     role RoleOwner.
//   - Admin: a tenant boundary. Admins manage standalone users directly and
//     user groups as a whole. An Admin record is distinct from the admin's
//     own User record; the two are linked by matching username or email.
//   - UserGroup: a peer collective of users under exactly one Admin.
//   - User: an ordinary actor. Has at most one owning Admin and/or at most
//     one UserGroup; never both an elevated role and an owning admin.
//
// # Record entities
//
//   - Account: holds a running balance, soft-deleted via IsActive.
//   - Category: either a shared default (no owner) or owned by one user.
//   - Budget: per-user spending envelope, optionally scoped to a category.
//   - Transaction: a single signed ledger entry against one account.
//   - RecurringTransaction: a template that materializes transactions on a
//     DAILY/WEEKLY/MONTHLY/YEARLY cadence.
//
// # Design notes
//
// Relationships are ID strings rather than pointers to avoid circular
// references, matching the storage layer's foreign keys. Money amounts are
// decimal.Decimal and are persisted with two fractional digits.
package models
