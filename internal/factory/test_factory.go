package factory

import (
	"context"
	"time"

	"github.com/mcoot/listgate/internal/dependencies/mocks"
	"github.com/mcoot/listgate/internal/storage/memory"
	"github.com/mcoot/listgate/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
	Memory    *memory.Storage
}

// NewTestApp creates an App on in-memory storage with a mocked clock
func NewTestApp() *TestApp {
	backend := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	app, err := newWithDependencies(context.Background(), backend, mockClock, testutil.NopLogger())
	if err != nil {
		// memory storage cannot fail to load
		panic(err)
	}

	return &TestApp{
		App:       app,
		MockClock: mockClock,
		Memory:    backend,
	}
}
