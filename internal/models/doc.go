// Package models defines the core domain records for settleup.
//
// # Records
//
//   - User: a registered account; inside a group it acts as a member
//   - Group: a roster of members sharing expenses
//   - Expense: an amount paid by one member, split into Shares
//   - Share: one member's portion of an expense, with its own paid flag
//   - Settlement: a proposed or confirmed real-world payment between two members
//   - Transfer: one step of a simplified debt plan (from, to, amount)
//
// # Design Principles
//
// 1. **Typed rows**: every store query scans into one of these records; a row
// with a missing required column fails the query instead of defaulting.
// 2. **IDs, not pointers**: relationships are expressed with string IDs (UUID format).
// 3. **Derived checkpoint**: no record stores the checkpoint; it is the
// settled_at of the latest approved settlement in a group.
//
// # Lifecycle
//
//   - Share.Paid flips to true exactly once, when a settlement from that member
//     is approved, and never reverts.
//   - Settlement starts pending and ends approved or rejected.
package models
