package team

import (
	"slices"

	"github.com/samdwyer/monstertower/internal/monster"
)

// roster is the ordering policy behind a Team. Capacity is enforced by Team.
type roster interface {
	push(m *monster.Monster)
	pop() *monster.Monster
	special()
	len() int
	// items returns the monsters in retrieval order.
	items() []*monster.Monster
}

// =============================================================================
// FRONT: last in, first out
// =============================================================================

type stackRoster struct {
	stack []*monster.Monster // top is the last element
}

func newStackRoster() *stackRoster {
	return &stackRoster{stack: make([]*monster.Monster, 0, Capacity)}
}

func (r *stackRoster) push(m *monster.Monster) {
	r.stack = append(r.stack, m)
}

func (r *stackRoster) pop() *monster.Monster {
	top := r.stack[len(r.stack)-1]
	r.stack[len(r.stack)-1] = nil
	r.stack = r.stack[:len(r.stack)-1]
	return top
}

func (r *stackRoster) len() int { return len(r.stack) }

// special reverses the top three monsters (or fewer if not available).
func (r *stackRoster) special() {
	held := make([]*monster.Monster, 0, 3)
	for i := 0; i < 3 && r.len() > 0; i++ {
		held = append(held, r.pop())
	}
	for _, m := range held {
		r.push(m)
	}
}

func (r *stackRoster) items() []*monster.Monster {
	out := slices.Clone(r.stack)
	slices.Reverse(out)
	return out
}

// =============================================================================
// BACK: first in, first out
// =============================================================================

type queueRoster struct {
	buf   [Capacity]*monster.Monster
	front int
	count int
}

func newQueueRoster() *queueRoster {
	return &queueRoster{}
}

func (r *queueRoster) push(m *monster.Monster) {
	r.buf[(r.front+r.count)%Capacity] = m
	r.count++
}

func (r *queueRoster) pop() *monster.Monster {
	m := r.buf[r.front]
	r.buf[r.front] = nil
	r.front = (r.front + 1) % Capacity
	r.count--
	return m
}

func (r *queueRoster) len() int { return r.count }

// special serves the first half (rounded down) into a holding queue, drains
// the rest through a stack so it comes back reversed, then appends the held
// half in its original order.
func (r *queueRoster) special() {
	n := r.count
	held := make([]*monster.Monster, 0, n/2)
	for i := 0; i < n/2; i++ {
		held = append(held, r.pop())
	}

	stack := make([]*monster.Monster, 0, n-n/2)
	for r.count > 0 {
		stack = append(stack, r.pop())
	}

	for len(stack) > 0 {
		r.push(stack[len(stack)-1])
		stack = stack[:len(stack)-1]
	}
	for _, m := range held {
		r.push(m)
	}
}

func (r *queueRoster) items() []*monster.Monster {
	out := make([]*monster.Monster, 0, r.count)
	for i := 0; i < r.count; i++ {
		out = append(out, r.buf[(r.front+i)%Capacity])
	}
	return out
}

// =============================================================================
// PRIORITY: sorted by a stat
// =============================================================================

type sortedEntry struct {
	m   *monster.Monster
	key int
}

// sortedRoster keeps entries in ascending key order. Keys are negated when
// descending so that index 0 is always the next monster out.
type sortedRoster struct {
	sortKey    SortKey
	descending bool
	entries    []sortedEntry
}

func newSortedRoster(key SortKey, descending bool) *sortedRoster {
	return &sortedRoster{
		sortKey:    key,
		descending: descending,
		entries:    make([]sortedEntry, 0, Capacity),
	}
}

func (r *sortedRoster) keyOf(m *monster.Monster) int {
	v := r.sortKey.value(m)
	if r.descending {
		return -v
	}
	return v
}

// push inserts after every entry with an equal or smaller key, so ties
// keep insertion order.
func (r *sortedRoster) push(m *monster.Monster) {
	e := sortedEntry{m: m, key: r.keyOf(m)}
	i, _ := slices.BinarySearchFunc(r.entries, e.key, func(x sortedEntry, k int) int {
		if x.key <= k {
			return -1
		}
		return 1
	})
	r.entries = slices.Insert(r.entries, i, e)
}

func (r *sortedRoster) pop() *monster.Monster {
	m := r.entries[0].m
	r.entries = slices.Delete(r.entries, 0, 1)
	return m
}

func (r *sortedRoster) len() int { return len(r.entries) }

// special flips the direction and re-sorts using current stat values.
func (r *sortedRoster) special() {
	r.descending = !r.descending
	for i := range r.entries {
		r.entries[i].key = r.keyOf(r.entries[i].m)
	}
	slices.SortStableFunc(r.entries, func(a, b sortedEntry) int {
		return a.key - b.key
	})
}

func (r *sortedRoster) items() []*monster.Monster {
	out := make([]*monster.Monster, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.m
	}
	return out
}
