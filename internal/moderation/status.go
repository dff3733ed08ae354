package moderation

import "modguard/internal/common"

// Decision thresholds. Both comparisons are strict: a score exactly at a
// boundary stays pending for human review.
const (
	autoRejectThreshold  = 0.8
	autoApproveThreshold = 0.3
	flagThreshold        = 0.3
)

// DecideStatus maps an overall violation score onto a disposition.
// Clearly violating content is rejected, clearly benign content is
// approved, and everything in between waits for a human.
func DecideStatus(overall float64) string {
	switch {
	case overall > autoRejectThreshold:
		return common.StatusRejected
	case overall < autoApproveThreshold:
		return common.StatusApproved
	default:
		return common.StatusPending
	}
}
