package archive

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"conquest-backend/internal/domain"
)

func TestObjectNamePartitionsByStartDate(t *testing.T) {
	callID := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	session := &domain.CallSession{
		CallID:    callID,
		StartedAt: time.Date(2025, 3, 9, 23, 45, 0, 0, time.UTC),
	}

	assert.Equal(t,
		"transcripts/2025/03/09/11111111-2222-3333-4444-555555555555.json",
		ObjectName(session))
}

func TestObjectNameUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	session := &domain.CallSession{
		CallID:    uuid.New(),
		StartedAt: time.Date(2025, 3, 10, 1, 30, 0, 0, loc), // still Mar 9 in UTC
	}

	assert.Contains(t, ObjectName(session), "transcripts/2025/03/09/")
}
