package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"spot_bot/internal/models"
)

func TestHistoryCapacityClamp(t *testing.T) {
	assert.Equal(t, 50, NewHistory(0).Cap())
	assert.Equal(t, 50, NewHistory(10).Cap())
	assert.Equal(t, 75, NewHistory(75).Cap())
	assert.Equal(t, 100, NewHistory(1000).Cap())
}

func TestHistoryEvictsOldest(t *testing.T) {
	h := NewHistory(50)
	for i := 1; i <= 120; i++ {
		h.Add(models.OrderRecord{OrderID: int64(i)})
	}
	recs := h.Records()
	assert.Len(t, recs, 50)
	assert.Equal(t, int64(71), recs[0].OrderID)
	assert.Equal(t, int64(120), recs[49].OrderID)

	recs[0].OrderID = -1
	assert.Equal(t, int64(71), h.Records()[0].OrderID)
}

func TestHistoryPartial(t *testing.T) {
	h := NewHistory(50)
	assert.Empty(t, h.Records())
	h.Add(models.OrderRecord{OrderID: 1})
	h.Add(models.OrderRecord{OrderID: 2})
	assert.Equal(t, 2, h.Len())
	assert.Equal(t, []models.OrderRecord{{OrderID: 1}, {OrderID: 2}}, h.Records())
}
