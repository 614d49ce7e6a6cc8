//go:build e2e

// Package e2e provides black-box tests for the oasis CLI. They drive the
// real binary inside sandboxes, with mock tools shadowing external
// executables and mock upstream servers standing in for the toolchain
// bucket and telemetry sink.
//
// To run these tests:
//
//	go test -tags=e2e ./tests/e2e/...
//
// The suite skips itself when the oasis binary cannot be resolved.
package e2e

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oasislabs/oasis-cli-harness/internal/harnesstest"
	"github.com/oasislabs/oasis-cli-harness/internal/mocktool"
	"github.com/oasislabs/oasis-cli-harness/internal/sandbox"
)

const (
	sampleKey      = "77827066de994266ffc685a8165e6f1b62c671ff801ba08475ca4c8b41ebf388"
	sampleToken    = "By9Uzva7SezLX+mMnJyUKh/pBOqQhfkuFkUWtkakMRc="
	sampleMnemonic = "range drive remove bleak mule satisfy mandate east lion minimum unfold ready"
)

// newSandbox allocates a sandbox for one layout, skipping the test when the
// oasis CLI under test is absent.
func newSandbox(t *testing.T, layout sandbox.Layout) *sandbox.Env {
	t.Helper()
	harnesstest.RequireOasis(t)
	return sandbox.New(t, layout)
}

// forEachLayout runs fn once per config layout, each in its own sandbox.
func forEachLayout(t *testing.T, fn func(t *testing.T, env *sandbox.Env)) {
	for _, layout := range sandbox.Layouts() {
		layout := layout
		t.Run(layout.String(), func(t *testing.T) {
			fn(t, newSandbox(t, layout))
		})
	}
}

// parseInvocations decodes a mock tool transcript, failing the test on a
// malformed record.
func parseInvocations(t *testing.T, output string) []mocktool.Invocation {
	t.Helper()
	invocations, err := mocktool.Parse(output)
	require.NoError(t, err, "mock tool transcript should decode")
	return invocations
}
