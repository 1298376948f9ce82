// Package models defines domain entities and persistence interfaces for the FilmSage client.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs exchanged with the review backend
//   - [User] : Identity record with dual id-field normalization
//   - [Credentials] / [RegisterProfile] / [UserPatch] : Auth operation inputs
//   - [Review] : Review submission payload
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [Favorite] : Locally cached favorite keyed by (tmdb_id, content_type)
//
// Persistent entities implement the Model interface providing ID generation,
// timestamps, and validation. The Repository[T] interface defines standard
// CRUD operations for database access.
package models
