package store

// set.go implements the set-shaped keyspace primitives backing SADD,
// SCARD, SISMEMBER, SMEMBERS and SREM.

func (k *Keyspace) setLocked(key string, createIfAbsent bool) (*entry, error) {
	e, ok := k.getLocked(key)
	if !ok {
		if !createIfAbsent {
			return nil, nil
		}
		e = &entry{value: SetElem()}
		k.data[key] = e
		return e, nil
	}
	if e.value.Kind != KindSet {
		return nil, ErrWrongType
	}
	return e, nil
}

// SAdd adds values to the set at key, returning the count actually added
// (duplicates are not recounted).
func (k *Keyspace) SAdd(key string, values []string) (int, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, err := k.setLocked(key, true)
	if err != nil {
		return 0, err
	}
	added := 0
	for _, v := range values {
		if _, exists := e.value.Set[v]; !exists {
			e.value.Set[v] = struct{}{}
			added++
		}
	}
	return added, nil
}

// SCard returns the set cardinality, 0 if absent.
func (k *Keyspace) SCard(key string) (int, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, err := k.setLocked(key, false)
	if err != nil {
		return 0, err
	}
	if e == nil {
		return 0, nil
	}
	return len(e.value.Set), nil
}

// SIsMember reports whether value is a member of the set at key.
func (k *Keyspace) SIsMember(key, value string) (bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, err := k.setLocked(key, false)
	if err != nil {
		return false, err
	}
	if e == nil {
		return false, nil
	}
	_, ok := e.value.Set[value]
	return ok, nil
}

// SMembers returns every member in unspecified order.
func (k *Keyspace) SMembers(key string) ([]string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, err := k.setLocked(key, false)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return []string{}, nil
	}
	out := make([]string, 0, len(e.value.Set))
	for v := range e.value.Set {
		out = append(out, v)
	}
	return out, nil
}

// SRem removes values from the set, returning the count actually removed.
func (k *Keyspace) SRem(key string, values []string) (int, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, err := k.setLocked(key, false)
	if err != nil {
		return 0, err
	}
	if e == nil {
		return 0, nil
	}
	removed := 0
	for _, v := range values {
		if _, exists := e.value.Set[v]; exists {
			delete(e.value.Set, v)
			removed++
		}
	}
	if len(e.value.Set) == 0 {
		delete(k.data, key)
	}
	return removed, nil
}
