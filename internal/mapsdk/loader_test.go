// Pawmap - Pet-Care Service Map Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pawmap

package mapsdk_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/pawmap/internal/mapsdk"
	"github.com/tomtom215/pawmap/internal/mapsdk/sdktest"
)

func TestCachedLoader_MissingCredential(t *testing.T) {
	t.Parallel()

	sdk := sdktest.New()
	l := mapsdk.NewCachedLoader(sdk)

	_, err := l.Load(context.Background(), "")
	if !errors.Is(err, mapsdk.ErrCredentialMissing) {
		t.Fatalf("err = %v, want ErrCredentialMissing", err)
	}
	if sdk.LoadCalls() != 0 {
		t.Errorf("LoadCalls = %d, want 0", sdk.LoadCalls())
	}
}

func TestCachedLoader_ConcurrentLoadsShareOneFetch(t *testing.T) {
	t.Parallel()

	sdk := sdktest.New()
	release := sdk.Gate()
	l := mapsdk.NewCachedLoader(sdk)

	const waiters = 8
	handles := make([]mapsdk.Handle, waiters)
	errs := make([]error, waiters)
	var wg sync.WaitGroup
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			handles[i], errs[i] = l.Load(context.Background(), "key")
		}(i)
	}

	waitFor(t, func() bool { return sdk.LoadCalls() == 1 })
	release()
	wg.Wait()

	for i := 0; i < waiters; i++ {
		if errs[i] != nil {
			t.Fatalf("waiter %d: %v", i, errs[i])
		}
		if handles[i] != handles[0] {
			t.Errorf("waiter %d got a different handle", i)
		}
	}
	if got := sdk.LoadCalls(); got != 1 {
		t.Errorf("LoadCalls = %d, want 1", got)
	}

	// Later loads come from the cache.
	if _, err := l.Load(context.Background(), "key"); err != nil {
		t.Fatal(err)
	}
	if got := sdk.LoadCalls(); got != 1 {
		t.Errorf("LoadCalls after cached load = %d, want 1", got)
	}
	if !l.Cached("key") || l.Cached("other") {
		t.Error("Cached() mismatch")
	}
}

func TestCachedLoader_FailuresAreNotCached(t *testing.T) {
	t.Parallel()

	sdk := sdktest.New()
	sdk.FailLoad(errors.New("script 503"))
	l := mapsdk.NewCachedLoader(sdk)

	if _, err := l.Load(context.Background(), "key"); err == nil || !strings.Contains(err.Error(), "503") {
		t.Fatalf("err = %v, want load failure", err)
	}

	sdk.FailLoad(nil)
	if _, err := l.Load(context.Background(), "key"); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if got := sdk.LoadCalls(); got != 2 {
		t.Errorf("LoadCalls = %d, want 2", got)
	}
}

func TestCachedLoader_WaiterDetachesWithoutCancellingLoad(t *testing.T) {
	t.Parallel()

	sdk := sdktest.New()
	release := sdk.Gate()
	l := mapsdk.NewCachedLoader(sdk)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := l.Load(ctx, "key")
		done <- err
	}()

	waitFor(t, func() bool { return sdk.LoadCalls() == 1 })
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}

	release()
	waitFor(t, func() bool { return l.Cached("key") })

	if _, err := l.Load(context.Background(), "key"); err != nil {
		t.Fatal(err)
	}
	if got := sdk.LoadCalls(); got != 1 {
		t.Errorf("LoadCalls = %d, want 1", got)
	}
}

func TestCachedLoader_Timeout(t *testing.T) {
	t.Parallel()

	sdk := sdktest.New()
	release := sdk.Gate()
	defer release()
	l := mapsdk.NewCachedLoader(sdk, mapsdk.WithLoadTimeout(20*time.Millisecond))

	_, err := l.Load(context.Background(), "key")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want DeadlineExceeded", err)
	}
}

func TestCachedLoader_RecoversPanics(t *testing.T) {
	t.Parallel()

	sdk := sdktest.New()
	sdk.PanicLoad("sdk exploded")
	l := mapsdk.NewCachedLoader(sdk)

	_, err := l.Load(context.Background(), "key")
	if err == nil || !strings.Contains(err.Error(), "sdk exploded") {
		t.Fatalf("err = %v, want recovered panic", err)
	}
}

func TestCachedLoader_Forget(t *testing.T) {
	t.Parallel()

	sdk := sdktest.New()
	l := mapsdk.NewCachedLoader(sdk)
	if _, err := l.Load(context.Background(), "key"); err != nil {
		t.Fatal(err)
	}
	l.Forget("key")
	if _, err := l.Load(context.Background(), "key"); err != nil {
		t.Fatal(err)
	}
	if got := sdk.LoadCalls(); got != 2 {
		t.Errorf("LoadCalls = %d, want 2", got)
	}
}

func TestCachedLoader_BreakerRejectsAfterFailures(t *testing.T) {
	t.Parallel()

	sdk := sdktest.New()
	sdk.FailLoad(errors.New("network down"))
	breaker := mapsdk.NewBreaker(mapsdk.BreakerConfig{
		Name:                "loader-test",
		MaxRequests:         1,
		Timeout:             time.Minute,
		ConsecutiveFailures: 2,
	})
	l := mapsdk.NewCachedLoader(sdk, mapsdk.WithBreaker(breaker))

	for i := 0; i < 2; i++ {
		if _, err := l.Load(context.Background(), "key"); err == nil {
			t.Fatal("expected failure")
		}
	}
	if breaker.State() != "open" {
		t.Fatalf("breaker state = %s, want open", breaker.State())
	}

	_, err := l.Load(context.Background(), "key")
	if !mapsdk.Rejected(err) {
		t.Fatalf("err = %v, want breaker rejection", err)
	}
	if got := sdk.LoadCalls(); got != 2 {
		t.Errorf("LoadCalls = %d, want 2", got)
	}
}

func TestCachedLoader_ClientFailuresDoNotTripBreaker(t *testing.T) {
	t.Parallel()

	breaker := mapsdk.NewBreaker(mapsdk.BreakerConfig{
		Name:                "loader-client-test",
		MaxRequests:         1,
		Timeout:             time.Minute,
		ConsecutiveFailures: 2,
	})

	flaky := mapsdk.NewCachedLoader(mapsdk.LoaderFunc(func(context.Context, string) (mapsdk.Handle, error) {
		return nil, fmt.Errorf("%w: script blocked", mapsdk.ErrClientLoad)
	}), mapsdk.WithBreaker(breaker))
	for i := 0; i < 5; i++ {
		_, err := flaky.Load(context.Background(), "key")
		if !errors.Is(err, mapsdk.ErrClientLoad) {
			t.Fatalf("load %d: err = %v, want ErrClientLoad", i, err)
		}
	}
	if breaker.State() != "closed" {
		t.Fatalf("breaker state = %s after client failures, want closed", breaker.State())
	}

	sdk := sdktest.New()
	healthy := mapsdk.NewCachedLoader(sdk, mapsdk.WithBreaker(breaker))
	if _, err := healthy.Load(context.Background(), "key"); err != nil {
		t.Fatalf("healthy load: %v", err)
	}

	sdk.FailLoad(errors.New("sdk host down"))
	broken := mapsdk.NewCachedLoader(sdk, mapsdk.WithBreaker(breaker))
	for i := 0; i < 2; i++ {
		_, _ = broken.Load(context.Background(), "key")
	}
	if breaker.State() != "open" {
		t.Errorf("breaker state = %s after host failures, want open", breaker.State())
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}
