package runner

import "spot_bot/internal/models"

const (
	minHistory = 50
	maxHistory = 100
)

// History is a fixed ring of order records, oldest evicted first. Not safe for
// concurrent use; the runner guards it.
type History struct {
	buf   []models.OrderRecord
	start int
	n     int
}

func NewHistory(capacity int) *History {
	if capacity < minHistory {
		capacity = minHistory
	}
	if capacity > maxHistory {
		capacity = maxHistory
	}
	return &History{buf: make([]models.OrderRecord, capacity)}
}

func (h *History) Add(rec models.OrderRecord) {
	if h.n < len(h.buf) {
		h.buf[(h.start+h.n)%len(h.buf)] = rec
		h.n++
		return
	}
	h.buf[h.start] = rec
	h.start = (h.start + 1) % len(h.buf)
}

func (h *History) Len() int { return h.n }

func (h *History) Cap() int { return len(h.buf) }

// Records returns a copy, oldest first.
func (h *History) Records() []models.OrderRecord {
	out := make([]models.OrderRecord, h.n)
	for i := 0; i < h.n; i++ {
		out[i] = h.buf[(h.start+i)%len(h.buf)]
	}
	return out
}
