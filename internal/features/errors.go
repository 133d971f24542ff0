// Copyright FleetPulse, Inc. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package features // import "github.com/fleetpulse/maintenance/internal/features"

import "fmt"

// InsufficientDataError reports a window shorter than a subsystem's minimum
// row-count contract. It is a validation failure, never retried.
type InsufficientDataError struct {
	Subsystem string
	Need      int
	Got       int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s needs >=%d rows, got %d", e.Subsystem, e.Need, e.Got)
}

// MissingColumnError reports a required raw channel that is absent from the
// window even after synthesis heuristics.
type MissingColumnError struct {
	Subsystem string
	Column    string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s requires column %q which is missing from the telemetry window", e.Subsystem, e.Column)
}
