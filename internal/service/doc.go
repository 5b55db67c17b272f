// Package service orchestrates the entity data operations: identity
// normalization, document storage, query conversion, and change event
// reconciliation behind one API.
package service
