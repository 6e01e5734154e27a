package memory

import (
	"fmt"
	"sync"

	"github.com/Fantom-foundation/Aurelia/go/database/smt"
)

// Store is an in-memory node store, mainly serving tests and tools that do
// not need durability. Nodes are held in their encoded form, so the store
// round-trips content the same way the disk-based stores do.
type Store struct {
	mu     sync.Mutex
	nodes  map[smt.NodeKey][]byte
	roots  map[smt.Version]smt.NodeKey
	stale  map[smt.Version][]smt.NodeKey // stale nodes indexed by the version superseding them
	latest smt.Version
	empty  bool // true until the first root is registered
}

// NewStore constructs an empty in-memory node store.
func NewStore() *Store {
	return &Store{
		nodes: map[smt.NodeKey][]byte{},
		roots: map[smt.Version]smt.NodeKey{},
		stale: map[smt.Version][]smt.NodeKey{},
		empty: true,
	}
}

func (s *Store) GetNode(key smt.NodeKey) (smt.Node, error) {
	s.mu.Lock()
	data, found := s.nodes[key]
	s.mu.Unlock()
	if !found {
		return nil, fmt.Errorf("%w: %v", smt.ErrNodeNotFound, key)
	}
	return smt.DecodeNode(data)
}

func (s *Store) GetRootKey(version smt.Version) (smt.NodeKey, error) {
	s.mu.Lock()
	root, found := s.roots[version]
	s.mu.Unlock()
	if !found {
		return smt.NodeKey{}, fmt.Errorf("%w: %d", smt.ErrMissingRoot, version)
	}
	return root, nil
}

func (s *Store) LatestVersion() (smt.Version, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, !s.empty
}

func (s *Store) PutNodeBatch(nodes map[smt.NodeKey]smt.Node) error {
	encoded := make(map[smt.NodeKey][]byte, len(nodes))
	for key, node := range nodes {
		encoded[key] = smt.EncodeNode(node)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, data := range encoded {
		s.nodes[key] = data
	}
	return nil
}

func (s *Store) PutRoot(version smt.Version, root smt.NodeKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roots[version] = root
	if s.empty || version > s.latest {
		s.latest = version
		s.empty = false
	}
	return nil
}

func (s *Store) MarkStale(stale []smt.StaleNode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, node := range stale {
		s.stale[node.Since] = append(s.stale[node.Since], node.Key)
	}
	return nil
}

func (s *Store) Prune(upTo smt.Version) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for since, keys := range s.stale {
		if since > upTo {
			continue
		}
		for _, key := range keys {
			delete(s.nodes, key)
		}
		delete(s.stale, since)
	}
	for version := range s.roots {
		if version < upTo {
			delete(s.roots, version)
		}
	}
	return nil
}

func (s *Store) Flush() error {
	return nil
}

func (s *Store) Close() error {
	return nil
}
