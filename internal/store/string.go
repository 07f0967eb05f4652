package store

import "strconv"

// string.go implements the string-shaped keyspace primitives backing
// GETSET, GETDEL, APPEND, INCRBY, DECRBY, MGET, MSET and TYPE.

func (k *Keyspace) stringLocked(key string, createIfAbsent bool) (*entry, error) {
	e, ok := k.getLocked(key)
	if !ok {
		if !createIfAbsent {
			return nil, nil
		}
		e = &entry{value: StringElem("")}
		k.data[key] = e
		return e, nil
	}
	if e.value.Kind != KindString {
		return nil, ErrWrongType
	}
	return e, nil
}

// GetSet atomically sets key to value and returns the previous value
// (Nil if absent), clearing any prior TTL.
func (k *Keyspace) GetSet(key, value string) (Element, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, ok := k.getLocked(key)
	if ok && e.value.Kind != KindString {
		return Nil, ErrWrongType
	}
	prev := Nil
	if ok {
		prev = e.value
	}
	k.data[key] = &entry{value: StringElem(value)}
	return prev, nil
}

// GetDel returns and removes the value at key.
func (k *Keyspace) GetDel(key string) Element {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, ok := k.getLocked(key)
	if !ok {
		return Nil
	}
	delete(k.data, key)
	return e.value
}

// Append appends value to the string at key (treating an absent key as
// empty) and returns the resulting length.
func (k *Keyspace) Append(key, value string) (int, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, err := k.stringLocked(key, true)
	if err != nil {
		return 0, err
	}
	e.value.Str += value
	return len(e.value.Str), nil
}

// IncrBy adds increment (>=0, per spec.md §4.2) to the integer stored at
// key, treating a missing key as 0.
func (k *Keyspace) IncrBy(key string, increment int64) (int64, error) {
	return k.addTo(key, increment)
}

// DecrBy subtracts decrement (>=0) from the integer stored at key.
func (k *Keyspace) DecrBy(key string, decrement int64) (int64, error) {
	return k.addTo(key, -decrement)
}

func (k *Keyspace) addTo(key string, delta int64) (int64, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, err := k.stringLocked(key, false)
	if err != nil {
		return 0, err
	}
	cur := int64(0)
	if e == nil {
		e = &entry{value: StringElem("")}
		k.data[key] = e
	} else {
		parsed, perr := strconv.ParseInt(e.value.Str, 10, 64)
		if perr != nil {
			return 0, ErrNotInteger
		}
		cur = parsed
	}
	cur += delta
	e.value.Str = strconv.FormatInt(cur, 10)
	return cur, nil
}

// MGet returns one element per key, Nil for any that are absent or of the
// wrong shape (a non-string value simply reads back as Nil, matching
// real-Redis MGET).
func (k *Keyspace) MGet(keys []string) []Element {
	k.mu.Lock()
	defer k.mu.Unlock()
	out := make([]Element, len(keys))
	for i, key := range keys {
		e, ok := k.getLocked(key)
		if !ok || e.value.Kind != KindString {
			out[i] = Nil
			continue
		}
		out[i] = e.value
	}
	return out
}

// MSet writes every pair atomically: either all keys are updated or, since
// this implementation never fails mid-write, all of them always are. It
// exists as an explicit operation (vs. a loop of Set) so future
// implementations that shard the keyspace still have one place to enforce
// the spec.md §4.4 atomicity requirement.
func (k *Keyspace) MSet(pairs [][2]string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	for _, p := range pairs {
		k.data[p[0]] = &entry{value: StringElem(p[1])}
	}
}

// Type reports the TYPE name for key, "none" if absent.
func (k *Keyspace) Type(key string) string {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, ok := k.getLocked(key)
	if !ok {
		return "none"
	}
	return e.value.TypeName()
}
