package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// BatchInvalidate invalidates the patterns on every helper and returns the last failure
func BatchInvalidate(ctx context.Context, helper *CacheHelper, patterns []string, more ...*CacheHelper) error {
	helpers := more
	if helper != nil {
		helpers = append([]*CacheHelper{helper}, more...)
	}

	var lastErr error
	for _, h := range helpers {
		for _, pattern := range patterns {
			if err := h.InvalidatePattern(ctx, pattern); err != nil {
				lastErr = err
				slog.ErrorContext(ctx, "Failed to invalidate pattern in batch",
					"error", err,
					"pattern", pattern)
			}
		}
	}
	return lastErr
}

// Cache keys shared by the repositories
const (
	StudentListKey         = "list:projection"
	StudentEnrichedListKey = "list:enriched"
	ProfessorListKey       = "list:all"
)

func ProctorshipKey(professorID string) string {
	return fmt.Sprintf("professor:%s", professorID)
}

// InvalidateStudentCache drops every cached view that embeds student rows
func InvalidateStudentCache(ctx context.Context, cm *CacheManager) {
	SafeDelete(ctx, cm.Student, StudentListKey, StudentEnrichedListKey)
	SafeInvalidatePattern(ctx, cm.Proctorship, "professor:*")
}

// InvalidateProfessorCache drops professor lists and views that embed the professor
func InvalidateProfessorCache(ctx context.Context, cm *CacheManager, professorID string) {
	SafeDelete(ctx, cm.Professor, ProfessorListKey)
	SafeDelete(ctx, cm.Proctorship, ProctorshipKey(professorID))
	// enriched student rows embed their proctor
	SafeDelete(ctx, cm.Student, StudentEnrichedListKey)
}
