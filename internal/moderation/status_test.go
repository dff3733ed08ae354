package moderation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"modguard/internal/common"
)

func TestDecideStatus(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{0.0, common.StatusApproved},
		{0.29, common.StatusApproved},
		{0.3, common.StatusPending}, // boundary stays pending
		{0.5, common.StatusPending},
		{0.8, common.StatusPending}, // boundary stays pending
		{0.81, common.StatusRejected},
		{1.0, common.StatusRejected},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, DecideStatus(tc.score), "score %v", tc.score)
	}
}
