package memory

import (
	"errors"
	"testing"

	"github.com/Fantom-foundation/Aurelia/go/backend/store"
	"github.com/Fantom-foundation/Aurelia/go/common"
	"github.com/Fantom-foundation/Aurelia/go/database/smt"
)

var _ store.Store = (*Store)(nil)

func TestMemoryStore_UnknownEntriesAreReported(t *testing.T) {
	s := NewStore()
	if _, err := s.GetNode(smt.RootNodeKey(1)); !errors.Is(err, smt.ErrNodeNotFound) {
		t.Errorf("expected unknown node to be reported, got %v", err)
	}
	if _, err := s.GetRootKey(1); !errors.Is(err, smt.ErrMissingRoot) {
		t.Errorf("expected unknown root to be reported, got %v", err)
	}
	if _, found := s.LatestVersion(); found {
		t.Errorf("empty store unexpectedly reports a latest version")
	}
}

func TestMemoryStore_NodesAreRoundTripped(t *testing.T) {
	s := NewStore()
	key := smt.RootNodeKey(1)
	leaf := &smt.LeafNode{Key: common.Key{1}, ValueHash: common.Hash{2}, Version: 1}
	if err := s.PutNodeBatch(map[smt.NodeKey]smt.Node{key: leaf}); err != nil {
		t.Fatalf("failed to store node: %v", err)
	}
	restored, err := s.GetNode(key)
	if err != nil {
		t.Fatalf("failed to load node: %v", err)
	}
	if got, ok := restored.(*smt.LeafNode); !ok || *got != *leaf {
		t.Errorf("invalid restored node, got %v, wanted %v", restored, leaf)
	}
}

func TestMemoryStore_TracksTheLatestVersion(t *testing.T) {
	s := NewStore()
	for _, version := range []smt.Version{1, 5, 3} {
		if err := s.PutRoot(version, smt.RootNodeKey(version)); err != nil {
			t.Fatalf("failed to register root: %v", err)
		}
	}
	latest, found := s.LatestVersion()
	if !found || latest != 5 {
		t.Errorf("invalid latest version, got %d, %t, wanted 5", latest, found)
	}
}

func TestMemoryStore_ServesTreeConstruction(t *testing.T) {
	s := NewStore()
	tree := smt.NewTree(s, s, smt.Sha256Config)

	key := common.Key{1}
	if _, err := tree.ApplyBatch(0, []smt.Update{smt.Insert(key, common.Hash{1})}); err != nil {
		t.Fatalf("failed to apply batch: %v", err)
	}
	update, err := tree.ApplyBatch(1, []smt.Update{smt.Insert(key, common.Hash{2})})
	if err != nil {
		t.Fatalf("failed to apply batch: %v", err)
	}

	value, exists, proof, err := tree.GetWithProof(key, 2)
	if err != nil || !exists || value != (common.Hash{2}) {
		t.Fatalf("invalid lookup result, got %x, %t, %v", value, exists, err)
	}
	if err := proof.VerifyInclusion(smt.Sha256Config, update.RootHash, key, value); err != nil {
		t.Errorf("failed to verify proof: %v", err)
	}
}

func TestMemoryStore_PruneRemovesStaleNodesAndOldRoots(t *testing.T) {
	s := NewStore()
	tree := smt.NewTree(s, s, smt.Sha256Config)

	key := common.Key{1}
	if _, err := tree.ApplyBatch(0, []smt.Update{smt.Insert(key, common.Hash{1})}); err != nil {
		t.Fatalf("failed to apply batch: %v", err)
	}
	if _, err := tree.ApplyBatch(1, []smt.Update{smt.Insert(key, common.Hash{2})}); err != nil {
		t.Fatalf("failed to apply batch: %v", err)
	}

	if err := s.Prune(2); err != nil {
		t.Fatalf("failed to prune: %v", err)
	}

	// The old version is gone, the new one remains readable.
	if _, err := s.GetRootKey(1); !errors.Is(err, smt.ErrMissingRoot) {
		t.Errorf("expected pruned root to be gone, got %v", err)
	}
	if _, err := s.GetNode(smt.RootNodeKey(1)); !errors.Is(err, smt.ErrNodeNotFound) {
		t.Errorf("expected pruned node to be gone, got %v", err)
	}
	if value, exists, err := tree.Get(key, 2); err != nil || !exists || value != (common.Hash{2}) {
		t.Errorf("pruning damaged the retained version, got %x, %t, %v", value, exists, err)
	}
}
