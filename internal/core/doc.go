// Package core provides the data cleaning logic behind the portfolio demo.
//
// This package contains all domain logic independent of any UI or transport
// layer. It is used by the web handlers and by the cleancsv command without
// modification.
//
// # Architecture
//
// The package is organized around a few concepts:
//
//   - Dataset: an in-memory table of named, typed columns read from CSV.
//   - Clean: the pure transformation applied to a Dataset.
//   - Service: file-level entry point used by the web layer (save upload,
//     clean, write result, record the job).
//   - JobStore: persistence for the history of cleaning runs.
//
// # Cleaning Stages
//
// [Clean] always applies the same four stages, in this order:
//
//  1. Standardize column names (lowercase, spaces and hyphens to underscores)
//  2. Drop duplicate rows, keeping the first occurrence
//  3. Fill missing numeric cells with the column mean
//  4. Drop columns with fewer present values than half the row count
//
// Imputation runs before the sparse-column drop, so a mostly empty numeric
// column is still filled when it has at least one value and is then kept.
//
// # Error Handling
//
// Input problems surface as [*ParseError], output problems as [*WriteError].
// Technical errors are mapped to user-friendly messages using [MapError]:
//
//   - FILE001-FILE006: File errors (size, encoding, format, missing)
//   - CLN001-CLN003: Cleaning errors (parse, write)
//   - JOB001-JOB003: Job errors (busy, cancelled, timeout)
//   - MAIL001-MAIL002: Contact form delivery
package core
