// Package finance holds the pure calculations behind budgets, goals,
// categorization rules, recurring schedules and split transactions.
// Nothing here touches the database; callers pass pre-fetched aggregates.
package finance
