package lzma

// reps holds the four most recently used distance offsets, most recent
// first. The values are distances decreased by one. Duplicates are allowed;
// a fresh queue contains four zeros.
type reps [4]uint32

// index returns the index of dist in the queue or -1.
func (r *reps) index(dist uint32) int {
	for i, d := range r {
		if d == dist {
			return i
		}
	}
	return -1
}

// push puts a new distance at the front of the queue. The oldest distance
// is dropped.
func (r *reps) push(dist uint32) {
	r[3], r[2], r[1], r[0] = r[2], r[1], r[0], dist
}

// promote moves the distance at index i to the front of the queue. The
// distances before i move one place back.
func (r *reps) promote(i int) {
	d := r[i]
	copy(r[1:i+1], r[:i])
	r[0] = d
}
