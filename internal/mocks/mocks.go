// Package mocks holds testify doubles for the engine's component interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/TomerGlick/MacCleaner-sub001/internal/types"
)

// MockGuard implements the PathGuard interface for testing.
type MockGuard struct {
	mock.Mock
}

func (m *MockGuard) IsProtected(path string) bool {
	args := m.Called(path)
	return args.Bool(0)
}

// MockArchiver implements the cleaner.Archiver interface for testing.
type MockArchiver struct {
	mock.Mock
}

func (m *MockArchiver) Archive(ctx context.Context, files []types.FileRecord, destDir string) (*types.ArchiveRef, error) {
	args := m.Called(ctx, files, destDir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ArchiveRef), args.Error(1)
}

func (m *MockArchiver) Restore(ctx context.Context, ref types.ArchiveRef, destDir string) (*types.RestoreOutcome, error) {
	args := m.Called(ctx, ref, destDir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RestoreOutcome), args.Error(1)
}

func (m *MockArchiver) RestorePaths(ctx context.Context, ref types.ArchiveRef, destDir string, paths []string) (*types.RestoreOutcome, error) {
	args := m.Called(ctx, ref, destDir, paths)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RestoreOutcome), args.Error(1)
}
