// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package signal maps a deduplication Outcome to the process exit status
// read by the orchestrating workflow.
package signal

import "github.com/pdiddy/daily-arxiv/pkg/types"

// Exit codes. The values are ordinal: Stop and Fail must stay distinct.
const (
	Continue = 0 // new content, continue the workflow
	Stop     = 1 // nothing to do, stop without error
	Fail     = 2 // the run failed
)

// ExitCode returns the exit status for o. Unknown outcomes map to Fail.
func ExitCode(o types.Outcome) int {
	switch o {
	case types.OutcomeNewContent:
		return Continue
	case types.OutcomeNoNewContent, types.OutcomeNoData:
		return Stop
	default:
		return Fail
	}
}

// Describe returns a one-line explanation of o for the diagnostic stream.
func Describe(o types.Outcome) string {
	switch o {
	case types.OutcomeNewContent:
		return "deduplication complete, new content found, continuing workflow"
	case types.OutcomeNoNewContent:
		return "deduplication complete, no new content, stopping workflow"
	case types.OutcomeNoData:
		return "no data for today, stopping workflow"
	case types.OutcomeError:
		return "deduplication failed, stopping workflow"
	default:
		return "unknown deduplication outcome " + string(o) + ", stopping workflow"
	}
}
