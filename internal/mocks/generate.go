// Package mocks provides mock implementations for testing the placement engine.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for our repository interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	mockRepo := mocks.NewMockApplicationRepository(ctrl)
//	mockRepo.EXPECT().GetByID(gomock.Any(), "app-1").Return(app, nil)
package mocks

// GetByID, GetByEmail, Register, HasRoleRecord
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=actor_repository_mock.go github.com/placementhub/placement-engine/internal/core ActorRepository

// Get, Save
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=profile_repository_mock.go github.com/placementhub/placement-engine/internal/core ProfileRepository

// Get, List, Decide
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=verification_repository_mock.go github.com/placementhub/placement-engine/internal/core VerificationRepository

// Create, GetByID, List, Update, Review, SetActive, Delete
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=job_posting_repository_mock.go github.com/placementhub/placement-engine/internal/core JobPostingRepository

// Create, GetByID, List, UpdateStatus, DeleteApplied
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=application_repository_mock.go github.com/placementhub/placement-engine/internal/core ApplicationRepository

// Create, List, CountUnread, MarkRead, MarkAllRead, Delete, DeleteRead
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=notification_repository_mock.go github.com/placementhub/placement-engine/internal/core NotificationRepository

// Set, Get, Delete, Exists, Health
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=cache_repository_mock.go github.com/placementhub/placement-engine/internal/core CacheRepository
