package repositories

import "context"

// Repository groups the record store repositories behind one handle
type Repository interface {
	Student() StudentRepository
	Professor() ProfessorRepository
	LibraryMembership() LibraryMembershipRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Drop every cached view
	ClearCache(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
