// Copyright FleetPulse, Inc. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package fusion

import (
	"testing"

	"go.uber.org/goleak"
)

// The engine fans out one goroutine per subsystem pipeline; every test must
// end with all of them joined.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
