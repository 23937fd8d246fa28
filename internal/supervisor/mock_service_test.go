// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
)

// mockService runs until canceled, after failing the first fails starts.
type mockService struct {
	name       string
	fails      int32
	startCount atomic.Int32
	stopCount  atomic.Int32
}

func newMockService(name string, fails int32) *mockService {
	return &mockService{name: name, fails: fails}
}

func (m *mockService) Serve(ctx context.Context) error {
	n := m.startCount.Add(1)
	defer m.stopCount.Add(1)
	if n <= m.fails {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockService) String() string { return m.name }
