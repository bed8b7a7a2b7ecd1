package history

import "time"

// DefaultSize is how many samples are kept locally and remotely.
const DefaultSize = 100

// Entry is one recorded position. CreatedAt is zero for samples that only
// exist locally.
type Entry struct {
	X, Y      int
	CreatedAt time.Time
}

// Buffer is a bounded, insertion-ordered history. When full, appending
// evicts the oldest entry. It is not safe for concurrent use.
type Buffer struct {
	size    int
	entries []Entry
}

// New creates an empty buffer; size <= 0 means DefaultSize.
func New(size int) *Buffer {
	if size <= 0 {
		size = DefaultSize
	}
	return &Buffer{size: size, entries: make([]Entry, 0, size+1)}
}

// Append adds e at the end, dropping index 0 once the buffer overflows.
func (b *Buffer) Append(e Entry) {
	b.entries = append(b.entries, e)
	if len(b.entries) > b.size {
		// shift in place so the backing array does not creep forward
		copy(b.entries, b.entries[1:])
		b.entries = b.entries[:b.size]
	}
}

// Replace seeds the buffer with entries in chronological order, keeping
// only the newest Cap() of them.
func (b *Buffer) Replace(entries []Entry) {
	if len(entries) > b.size {
		entries = entries[len(entries)-b.size:]
	}
	b.entries = append(b.entries[:0], entries...)
}

// Entries returns a copy, oldest first.
func (b *Buffer) Entries() []Entry {
	return append([]Entry(nil), b.entries...)
}

// Latest returns the newest entry.
func (b *Buffer) Latest() (Entry, bool) {
	if len(b.entries) == 0 {
		return Entry{}, false
	}
	return b.entries[len(b.entries)-1], true
}

func (b *Buffer) Len() int { return len(b.entries) }

func (b *Buffer) Cap() int { return b.size }
