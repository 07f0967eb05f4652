package store

// list.go implements the list-shaped keyspace primitives backing LPUSH,
// RPUSH, LPOP, RPOP, LINDEX, LLEN, LRANGE, LREM and LSET.

func (k *Keyspace) listLocked(key string, createIfAbsent bool) (*entry, error) {
	e, ok := k.getLocked(key)
	if !ok {
		if !createIfAbsent {
			return nil, nil
		}
		e = &entry{value: ListElem(nil)}
		k.data[key] = e
		return e, nil
	}
	if e.value.Kind != KindList {
		return nil, ErrWrongType
	}
	return e, nil
}

// LPush prepends values (in argument order, so the last argument ends up
// closest to the head) and returns the new length.
func (k *Keyspace) LPush(key string, values []string) (int, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, err := k.listLocked(key, true)
	if err != nil {
		return 0, err
	}
	list := e.value.List
	for _, v := range values {
		list = append([]string{v}, list...)
	}
	e.value.List = list
	return len(list), nil
}

// RPush appends values in argument order and returns the new length.
func (k *Keyspace) RPush(key string, values []string) (int, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, err := k.listLocked(key, true)
	if err != nil {
		return 0, err
	}
	e.value.List = append(e.value.List, values...)
	return len(e.value.List), nil
}

// LPushX is LPush but only if key already holds a list; absent keys are a
// no-op returning 0.
func (k *Keyspace) LPushX(key string, values []string) (int, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, err := k.listLocked(key, false)
	if err != nil {
		return 0, err
	}
	if e == nil {
		return 0, nil
	}
	list := e.value.List
	for _, v := range values {
		list = append([]string{v}, list...)
	}
	e.value.List = list
	return len(list), nil
}

// RPushX is RPush but only if key already holds a list.
func (k *Keyspace) RPushX(key string, values []string) (int, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, err := k.listLocked(key, false)
	if err != nil {
		return 0, err
	}
	if e == nil {
		return 0, nil
	}
	e.value.List = append(e.value.List, values...)
	return len(e.value.List), nil
}

// LLen returns the list length, 0 if absent.
func (k *Keyspace) LLen(key string) (int, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, err := k.listLocked(key, false)
	if err != nil {
		return 0, err
	}
	if e == nil {
		return 0, nil
	}
	return len(e.value.List), nil
}

// LIndex returns the element at a possibly-negative index, or ("", false)
// if out of range or the key is absent.
func (k *Keyspace) LIndex(key string, index int) (string, bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, err := k.listLocked(key, false)
	if err != nil {
		return "", false, err
	}
	if e == nil {
		return "", false, nil
	}
	i := resolveIndex(index, len(e.value.List))
	if i < 0 || i >= len(e.value.List) {
		return "", false, nil
	}
	return e.value.List[i], true, nil
}

// LSet overwrites the element at index. It reports ok=false when the key
// is absent or the index does not resolve into the list; the two cases are
// not distinguished, and the executor replies "ERR no such key" for both.
func (k *Keyspace) LSet(key string, index int, value string) (bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, err := k.listLocked(key, false)
	if err != nil {
		return false, err
	}
	if e == nil {
		return false, nil
	}
	i := resolveIndex(index, len(e.value.List))
	if i < 0 || i >= len(e.value.List) {
		return false, nil
	}
	e.value.List[i] = value
	return true, nil
}

// LPop removes and returns up to count elements from the head. count==0
// with the key present returns an empty, non-nil slice; a missing key
// returns (nil, false).
func (k *Keyspace) LPop(key string, count int) ([]string, bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, err := k.listLocked(key, false)
	if err != nil {
		return nil, false, err
	}
	if e == nil {
		return nil, false, nil
	}
	n := count
	if n > len(e.value.List) {
		n = len(e.value.List)
	}
	popped := make([]string, n)
	copy(popped, e.value.List[:n])
	e.value.List = e.value.List[n:]
	if len(e.value.List) == 0 {
		delete(k.data, key)
	}
	return popped, true, nil
}

// RPop is LPop from the tail.
func (k *Keyspace) RPop(key string, count int) ([]string, bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, err := k.listLocked(key, false)
	if err != nil {
		return nil, false, err
	}
	if e == nil {
		return nil, false, nil
	}
	n := count
	if n > len(e.value.List) {
		n = len(e.value.List)
	}
	l := len(e.value.List)
	popped := make([]string, n)
	for i := 0; i < n; i++ {
		popped[i] = e.value.List[l-1-i]
	}
	e.value.List = e.value.List[:l-n]
	if len(e.value.List) == 0 {
		delete(k.data, key)
	}
	return popped, true, nil
}

// LRange returns the inclusive, clamped [begin, end] slice described in
// spec.md §4.3. Out-of-range or empty results are an empty, non-nil slice.
func (k *Keyspace) LRange(key string, begin, end int) ([]string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, err := k.listLocked(key, false)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return []string{}, nil
	}
	l := len(e.value.List)
	b := clampBegin(begin, l)
	en := clampEnd(end, l)
	if b > en || l == 0 {
		return []string{}, nil
	}
	out := make([]string, en-b+1)
	copy(out, e.value.List[b:en+1])
	return out, nil
}

// LRem removes occurrences of element per spec.md §4.3's count semantics
// and returns the number removed.
func (k *Keyspace) LRem(key string, count int, element string) (int, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, err := k.listLocked(key, false)
	if err != nil {
		return 0, err
	}
	if e == nil {
		return 0, nil
	}

	removed := 0
	switch {
	case count == 0:
		kept := e.value.List[:0:0]
		for _, v := range e.value.List {
			if v == element {
				removed++
				continue
			}
			kept = append(kept, v)
		}
		e.value.List = kept

	case count > 0:
		kept := e.value.List[:0:0]
		for _, v := range e.value.List {
			if v == element && removed < count {
				removed++
				continue
			}
			kept = append(kept, v)
		}
		e.value.List = kept

	default: // count < 0: remove from the tail
		limit := -count
		kept := make([]string, len(e.value.List))
		copy(kept, e.value.List)
		for i := len(kept) - 1; i >= 0 && removed < limit; i-- {
			if kept[i] == element {
				kept = append(kept[:i], kept[i+1:]...)
				removed++
			}
		}
		e.value.List = kept
	}

	if len(e.value.List) == 0 {
		delete(k.data, key)
	}
	return removed, nil
}

// resolveIndex turns a possibly-negative index into an absolute one
// without clamping, so callers can detect out-of-range themselves.
func resolveIndex(index, length int) int {
	if index < 0 {
		return length + index
	}
	return index
}

// clampBegin resolves a possibly-negative begin index and clamps it into
// [0, length]. Clamping the upper bound to length (not length-1) lets a
// begin past the last element fall strictly above every possible clampEnd
// result, so LRANGE's "begin > end yields empty" guard actually fires
// instead of pulling an out-of-range begin back onto the last element.
func clampBegin(index, length int) int {
	i := resolveIndex(index, length)
	if i < 0 {
		i = 0
	}
	if i > length {
		i = length
	}
	return i
}

// clampEnd resolves a possibly-negative end index and clamps it into
// [-1, length-1]. -1 signals "before the first element", which combined
// with clampBegin's minimum of 0 keeps an end that resolves before the
// start of the list (e.g. a deeply negative end on a short list) empty.
func clampEnd(index, length int) int {
	i := resolveIndex(index, length)
	if i < -1 {
		i = -1
	}
	if i > length-1 {
		i = length - 1
	}
	return i
}
