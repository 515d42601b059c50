// Package sqlmodel defines the dialect-agnostic core of a multi-backend
// SQL client: a universal value and row model, a structured error
// taxonomy, and the asynchronous connection/transaction contract
// implemented by the postgres, mysql, and sqlite driver packages.
//
// Query composition lives in the expr package; model metadata generation
// lives in the model package. This package only defines the contracts
// those pieces share.
package sqlmodel
