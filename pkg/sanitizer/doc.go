// Package sanitizer normalizes free-text input before validation and storage.
//
// All functions are idempotent: applying them twice yields the same result.
// Invalid input degrades to an empty string or an empty slice, never an error.
//
// Normalization includes:
//   - Text: collapse whitespace, trim leading/trailing spaces
//   - Labels: text normalization plus lowercase ("Cat " becomes "cat")
//   - Keys: lowercase, every run of non letters/digits becomes one underscore
//     ("House Sitting" becomes "house_sitting")
//   - Slices: remove duplicates and empty values after normalization
package sanitizer
