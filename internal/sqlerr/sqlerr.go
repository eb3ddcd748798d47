// Package sqlerr turns PostgreSQL driver errors into API errors.
//
// Constraint violations become 400 responses with a readable message and a
// machine code such as QUESTION_ALREADY_EXISTS; missing rows become 404.
package sqlerr
