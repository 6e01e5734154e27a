package ldb

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/Fantom-foundation/Aurelia/go/database/smt"
)

// Key space layout of the underlying database. Each entry starts with a one
// byte table prefix; within a table, keys are ordered so range scans can
// serve pruning.
//
//	'n' <node key>            -> encoded node
//	'r' <big-endian version>  -> node key of the version's root
//	's' <big-endian version> <node key> -> nil, node stale since version
const (
	tableNodes byte = 'n'
	tableRoots byte = 'r'
	tableStale byte = 's'
)

// Store is a node store persisting all data in a LevelDB instance. All
// operations are safe for concurrent use; writes of one commit are applied
// atomically per call.
type Store struct {
	db *leveldb.DB

	// Guards the latest-version bookkeeping; node and root lookups go to
	// the database unlocked.
	mu     sync.Mutex
	latest smt.Version
	empty  bool
}

// NewStore opens a node store in the given directory, creating it if
// needed.
func NewStore(directory string) (*Store, error) {
	db, err := leveldb.OpenFile(directory, &opt.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open node store in %s: %w", directory, err)
	}
	store := &Store{db: db, empty: true}
	if err := store.restoreLatest(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// restoreLatest scans the root table for the highest registered version.
func (s *Store) restoreLatest() error {
	iter := s.db.NewIterator(util.BytesPrefix([]byte{tableRoots}), nil)
	defer iter.Release()
	if iter.Last() {
		key := iter.Key()
		if len(key) != 9 {
			return fmt.Errorf("invalid root table entry of length %d", len(key))
		}
		s.latest = smt.Version(binary.BigEndian.Uint64(key[1:]))
		s.empty = false
	}
	return iter.Error()
}

func (s *Store) GetNode(key smt.NodeKey) (smt.Node, error) {
	data, err := s.db.Get(nodeDbKey(key), nil)
	if err == leveldb.ErrNotFound {
		return nil, fmt.Errorf("%w: %v", smt.ErrNodeNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load node %v: %w", key, err)
	}
	return smt.DecodeNode(data)
}

func (s *Store) GetRootKey(version smt.Version) (smt.NodeKey, error) {
	data, err := s.db.Get(rootDbKey(version), nil)
	if err == leveldb.ErrNotFound {
		return smt.NodeKey{}, fmt.Errorf("%w: %d", smt.ErrMissingRoot, version)
	}
	if err != nil {
		return smt.NodeKey{}, fmt.Errorf("failed to load root of version %d: %w", version, err)
	}
	return smt.DecodeNodeKey(data)
}

func (s *Store) LatestVersion() (smt.Version, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, !s.empty
}

func (s *Store) PutNodeBatch(nodes map[smt.NodeKey]smt.Node) error {
	batch := new(leveldb.Batch)
	for key, node := range nodes {
		batch.Put(nodeDbKey(key), smt.EncodeNode(node))
	}
	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("failed to store node batch: %w", err)
	}
	return nil
}

func (s *Store) PutRoot(version smt.Version, root smt.NodeKey) error {
	if err := s.db.Put(rootDbKey(version), root.Bytes(), nil); err != nil {
		return fmt.Errorf("failed to register root of version %d: %w", version, err)
	}
	s.mu.Lock()
	if s.empty || version > s.latest {
		s.latest = version
		s.empty = false
	}
	s.mu.Unlock()
	return nil
}

func (s *Store) MarkStale(stale []smt.StaleNode) error {
	batch := new(leveldb.Batch)
	for _, node := range stale {
		batch.Put(staleDbKey(node), nil)
	}
	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("failed to record stale nodes: %w", err)
	}
	return nil
}

func (s *Store) Prune(upTo smt.Version) error {
	// Stale entries are ordered by the version that made them stale, so a
	// single range scan covers everything safe to drop.
	limit := make([]byte, 9)
	limit[0] = tableStale
	binary.BigEndian.PutUint64(limit[1:], uint64(upTo)+1)
	batch := new(leveldb.Batch)

	iter := s.db.NewIterator(&util.Range{Start: []byte{tableStale}, Limit: limit}, nil)
	for iter.Next() {
		entry := iter.Key()
		nodeKey, err := smt.DecodeNodeKey(entry[9:])
		if err != nil {
			iter.Release()
			return fmt.Errorf("invalid stale table entry: %w", err)
		}
		batch.Delete(nodeDbKey(nodeKey))
		batch.Delete(append([]byte{}, entry...))
	}
	err := iter.Error()
	iter.Release()
	if err != nil {
		return fmt.Errorf("failed to scan stale nodes: %w", err)
	}

	rootLimit := make([]byte, 9)
	rootLimit[0] = tableRoots
	binary.BigEndian.PutUint64(rootLimit[1:], uint64(upTo))
	iter = s.db.NewIterator(&util.Range{Start: []byte{tableRoots}, Limit: rootLimit}, nil)
	for iter.Next() {
		batch.Delete(append([]byte{}, iter.Key()...))
	}
	err = iter.Error()
	iter.Release()
	if err != nil {
		return fmt.Errorf("failed to scan outdated roots: %w", err)
	}

	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("failed to prune up to version %d: %w", upTo, err)
	}
	return nil
}

func (s *Store) Flush() error {
	// LevelDB writes are durable once the batch is applied; there is no
	// extra buffer to flush.
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func nodeDbKey(key smt.NodeKey) []byte {
	return append([]byte{tableNodes}, key.Bytes()...)
}

func rootDbKey(version smt.Version) []byte {
	res := make([]byte, 9)
	res[0] = tableRoots
	binary.BigEndian.PutUint64(res[1:], uint64(version))
	return res
}

func staleDbKey(node smt.StaleNode) []byte {
	res := make([]byte, 9, 9+16)
	res[0] = tableStale
	binary.BigEndian.PutUint64(res[1:], uint64(node.Since))
	return append(res, node.Key.Bytes()...)
}
