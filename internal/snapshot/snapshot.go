// Package snapshot implements the best-effort persistence collaborator
// spec.md §6 reserves the `dbfilename` config key for (SPEC_FULL.md
// §10.2): saving and loading the keyspace's contents using
// github.com/vmihailenco/msgpack/v5, following the corpus convention of
// using a compact binary encoder for durable records rather than hand-
// rolling one. This is opportunistic persistence, not a durability
// guarantee — spec.md's Non-goals still exclude fsync/WAL/crash-
// consistency semantics.
package snapshot

import (
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/go-resp/kvserver/internal/store"
)

// document is the on-disk shape: a flat slice of store.Record values.
type document struct {
	Records []store.Record `msgpack:"records"`
}

// Save serializes every live key in k to path, overwriting any existing
// file.
func Save(path string, k *store.Keyspace) error {
	doc := document{Records: k.Export()}
	b, err := msgpack.Marshal(&doc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Load reads path and imports its records into k. A missing file is not an
// error: it simply means the server is starting with an empty keyspace.
func Load(path string, k *store.Keyspace) error {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var doc document
	if err := msgpack.Unmarshal(b, &doc); err != nil {
		return err
	}
	k.Import(doc.Records)
	return nil
}
