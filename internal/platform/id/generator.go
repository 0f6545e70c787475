package id

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// Generator creates opaque IDs for seasons and matches.
type Generator interface {
	NewID() (string, error)
}

// TimeOrderedGenerator issues version 7 UUIDs. IDs from one generator sort
// in creation order, which keeps season and match primary keys append-only.
type TimeOrderedGenerator struct {
	mu      sync.Mutex
	now     func() time.Time
	entropy io.Reader
	lastMS  int64
	seq     uint16
}

func NewTimeOrderedGenerator() *TimeOrderedGenerator {
	return &TimeOrderedGenerator{now: time.Now, entropy: rand.Reader}
}

func (g *TimeOrderedGenerator) NewID() (string, error) {
	var b uuid.UUID
	if _, err := io.ReadFull(g.entropy, b[6:]); err != nil {
		return "", crerr.Wrap(err, "read random bytes")
	}

	g.mu.Lock()
	ms := g.now().UnixMilli()
	switch {
	case ms > g.lastMS:
		g.lastMS = ms
		g.seq = (uint16(b[6])<<4 | uint16(b[7])>>4) & 0x07ff
	case g.seq >= 0x0fff:
		g.lastMS++
		g.seq = 0
	default:
		g.seq++
	}
	ms, seq := g.lastMS, g.seq
	g.mu.Unlock()

	b[0] = byte(ms >> 40)
	b[1] = byte(ms >> 32)
	b[2] = byte(ms >> 24)
	b[3] = byte(ms >> 16)
	b[4] = byte(ms >> 8)
	b[5] = byte(ms)
	b[6] = 0x70 | byte(seq>>8)
	b[7] = byte(seq)
	b[8] = b[8]&0x3f | 0x80

	return b.String(), nil
}
