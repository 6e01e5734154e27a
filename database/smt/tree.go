// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package smt

import (
	"bytes"
	"errors"
	"fmt"
	"slices"

	"github.com/Fantom-foundation/Aurelia/go/common"
)

// ErrDuplicateKey is reported when a batch contains the same key more than
// once. The batch is rejected as a whole; nothing is committed.
const ErrDuplicateKey = common.ConstError("duplicate key in batch")

// Update is a single entry of a write batch: either the binding of a key to
// a new value digest, or the removal of a key.
type Update struct {
	Key       common.Key
	ValueHash common.Hash
	Remove    bool
}

// Insert creates an update binding the given key to the given value digest.
func Insert(key common.Key, valueHash common.Hash) Update {
	return Update{Key: key, ValueHash: valueHash}
}

// Remove creates an update deleting the given key. Removing an absent key is
// a no-op for that entry, not an error.
func Remove(key common.Key) Update {
	return Update{Key: key, Remove: true}
}

// TreeUpdate is the outcome of applying one batch. It lists everything the
// storage layer needs to persist the new version: the created nodes, the
// address and hash of the new root, and the nodes the new version
// superseded.
type TreeUpdate struct {
	// The version minted by the batch.
	Version Version
	// The hash of the new version's root node.
	RootHash common.Hash
	// The address of the new version's root node. For a batch that did not
	// modify the tree this references the root of an older version.
	Root NodeKey
	// All nodes created by the batch, to be persisted under their keys.
	CreatedNodes map[NodeKey]Node
	// All nodes of older versions superseded by the batch.
	StaleNodes []StaleNode
}

// Tree is the construction and query engine of the authenticated index. It
// owns no state beyond its configuration: each operation is a pure function
// of its inputs and the content of the node source, which makes concurrent
// queries over arbitrary historical versions safe without coordination.
//
// Applying batches is the exception: two batches must not be applied
// concurrently on the same base version, since the storage layer can only
// accept one successor per version. Serializing writes is the caller's
// responsibility.
type Tree struct {
	source NodeSource
	sink   NodeSink
	hasher hasher
	config TreeConfig
}

// NewTree creates a tree engine on top of the given storage boundary. The
// sink may be nil for read-only use; applying a batch then only reports the
// outcome without forwarding it to storage.
func NewTree(source NodeSource, sink NodeSink, config TreeConfig) *Tree {
	return &Tree{
		source: source,
		sink:   sink,
		hasher: hasher{algorithm: config.Hashing},
		config: config,
	}
}

// GetRootHash computes the root hash of the given version.
func (t *Tree) GetRootHash(version Version) (common.Hash, error) {
	rootKey, err := t.source.GetRootKey(version)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to resolve root of version %d: %w", version, err)
	}
	node, err := t.getNode(rootKey)
	if err != nil {
		return common.Hash{}, err
	}
	return t.hasher.hashNode(node), nil
}

// ApplyBatch applies a batch of updates on top of the given base version and
// mints version base+1. The batch may list each key at most once; violating
// batches are rejected atomically with ErrDuplicateKey. The outcome is
// forwarded to the node sink and returned.
//
// The base version is usually the latest version known to the storage layer,
// but any committed version is accepted; building on an older version forks
// the history without modifying intervening versions.
//
// An empty batch, or a batch whose entries all turn out to be no-ops, still
// mints a new version; its created and stale sets are empty and the new
// version's root references the base version's root node.
func (t *Tree) ApplyBatch(base Version, updates []Update) (*TreeUpdate, error) {
	sorted := slices.Clone(updates)
	slices.SortFunc(sorted, func(a, b Update) int {
		return bytes.Compare(a.Key[:], b.Key[:])
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].Key == sorted[i].Key {
			return nil, fmt.Errorf("%w: 0x%x", ErrDuplicateKey, sorted[i].Key)
		}
	}

	baseRoot, baseNode, err := t.getBaseRoot(base)
	if err != nil {
		return nil, err
	}

	cache := newTreeCache(base + 1)

	var existing *Child
	if baseNode != nil && baseNode.Kind() != EmptyNodeKind {
		existing = &Child{
			Hash:    t.hasher.hashNode(baseNode),
			Version: baseRoot.Version,
			IsLeaf:  baseNode.IsLeaf(),
		}
	}

	newChild, err := t.buildSubtree(cache, EmptyPath(), 0, existing, sorted)
	if err != nil {
		return nil, err
	}

	// A persisted empty-root anchor is superseded once the tree becomes
	// non-empty; a batch keeping the tree empty shares the old anchor.
	if baseNode != nil && baseNode.Kind() == EmptyNodeKind && newChild != nil {
		cache.markStale(baseRoot)
	}

	res := &TreeUpdate{
		Version:      cache.version,
		CreatedNodes: cache.created,
		StaleNodes:   cache.stale,
	}
	switch {
	case newChild == nil && existing == nil && baseNode != nil:
		// The tree was empty before and still is; the base anchor carries
		// the new version as well.
		res.Root, res.RootHash = baseRoot, EmptyNodeHash
	case newChild == nil:
		// The tree is empty at the new version, either because it became
		// empty or because a virgin store received a no-op batch. An empty
		// node is anchored at the root so the version resolves.
		res.Root = RootNodeKey(cache.version)
		res.RootHash = EmptyNodeHash
		cache.put(res.Root, EmptyNode{})
	case newChild.Version != cache.version:
		// Nothing changed; the new version shares the base root.
		res.Root = baseRoot
		res.RootHash = newChild.Hash
	default:
		res.Root = RootNodeKey(cache.version)
		res.RootHash = newChild.Hash
	}

	if t.sink != nil {
		if err := t.sink.PutNodeBatch(res.CreatedNodes); err != nil {
			return nil, fmt.Errorf("failed to store nodes of version %d: %w", res.Version, err)
		}
		if err := t.sink.PutRoot(res.Version, res.Root); err != nil {
			return nil, fmt.Errorf("failed to register root of version %d: %w", res.Version, err)
		}
		if err := t.sink.MarkStale(res.StaleNodes); err != nil {
			return nil, fmt.Errorf("failed to mark stale nodes of version %d: %w", res.Version, err)
		}
	}
	return res, nil
}

// getBaseRoot resolves the root node of the base version. A virgin store is
// only accepted for base version 0, denoting the empty tree; a missing root
// for any other version indicates an inconsistent backend and is fatal.
func (t *Tree) getBaseRoot(base Version) (NodeKey, Node, error) {
	rootKey, err := t.source.GetRootKey(base)
	if err != nil {
		if base == 0 && errors.Is(err, ErrMissingRoot) {
			return NodeKey{}, nil, nil
		}
		return NodeKey{}, nil, fmt.Errorf("failed to resolve root of base version %d: %w", base, err)
	}
	node, err := t.getNode(rootKey)
	if err != nil {
		return NodeKey{}, nil, err
	}
	return rootKey, node, nil
}

// getNode resolves a node through the source, wrapping failures with the
// affected address. Failures are fatal for the operation in progress and
// never retried here.
func (t *Tree) getNode(key NodeKey) (Node, error) {
	node, err := t.source.GetNode(key)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve node %v: %w", key, err)
	}
	return node, nil
}

// buildSubtree computes the new version of the subtree rooted at the given
// position. The updates are sorted by key, unique, and all located below
// the position; existing describes the base version's node at the position,
// or is nil for an empty subtree.
//
// The result is the child descriptor the parent should reference: nil if
// the subtree is empty under the new version, a descriptor of the cache's
// version for a rebuilt subtree, or the unmodified existing descriptor if
// the updates turned out not to change the subtree. All created nodes and
// all superseded base nodes are recorded in the cache.
func (t *Tree) buildSubtree(cache *treeCache, position Path, depth int, existing *Child, updates []Update) (*Child, error) {
	if existing == nil {
		return t.buildFromScratch(cache, position, depth, updates)
	}
	if existing.IsLeaf {
		return t.buildFromLeaf(cache, position, depth, existing, updates)
	}
	return t.buildFromInternal(cache, position, depth, existing, updates)
}

// buildFromScratch grows a subtree at a previously empty position. Removals
// target absent keys and are dropped.
func (t *Tree) buildFromScratch(cache *treeCache, position Path, depth int, updates []Update) (*Child, error) {
	inserts := updates[:0:0]
	for _, update := range updates {
		if !update.Remove {
			inserts = append(inserts, update)
		}
	}
	if len(inserts) == 0 {
		return nil, nil
	}
	if len(inserts) == 1 {
		return t.makeLeaf(cache, position, inserts[0].Key, inserts[0].ValueHash), nil
	}

	// Multiple keys below this position split one nibble further down. Each
	// group is non-empty, so every recursion yields a child.
	node := &InternalNode{}
	for nibble, group := range groupByNibble(inserts, depth) {
		if len(group) == 0 {
			continue
		}
		child, err := t.buildFromScratch(cache, position.Child(Nibble(nibble)), depth+1, group)
		if err != nil {
			return nil, err
		}
		node.SetChild(Nibble(nibble), child)
	}
	return t.makeInternal(cache, position, node), nil
}

// buildFromLeaf rebuilds the subtree at a position currently occupied by a
// leaf. The leaf's binding joins the update set; depending on the outcome
// the leaf is kept, replaced, deleted, or pushed further down next to the
// new keys.
func (t *Tree) buildFromLeaf(cache *treeCache, position Path, depth int, existing *Child, updates []Update) (*Child, error) {
	key := NodeKey{Version: existing.Version, Path: position}
	node, err := t.getNode(key)
	if err != nil {
		return nil, err
	}
	leaf, ok := node.(*LeafNode)
	if !ok {
		return nil, fmt.Errorf("%w: expected leaf node at %v, got %v", ErrCorruptedNode, key, node.Kind())
	}

	// Merge the existing binding into the sorted update list and drop all
	// removals; what remains are the bindings the subtree has to hold.
	entries := make([]Update, 0, len(updates)+1)
	merged := false
	for _, update := range updates {
		if !merged {
			switch bytes.Compare(leaf.Key[:], update.Key[:]) {
			case -1:
				entries = append(entries, Insert(leaf.Key, leaf.ValueHash))
				merged = true
			case 0:
				merged = true // the update overrides the leaf's binding
			}
		}
		if !update.Remove {
			entries = append(entries, update)
		}
	}
	if !merged {
		entries = append(entries, Insert(leaf.Key, leaf.ValueHash))
	}

	if len(entries) == 1 && entries[0].Key == leaf.Key && entries[0].ValueHash == leaf.ValueHash {
		return existing, nil // the subtree's content did not change
	}

	cache.markStale(key)
	if len(entries) == 0 {
		return nil, nil
	}
	if len(entries) == 1 {
		return t.makeLeaf(cache, position, entries[0].Key, entries[0].ValueHash), nil
	}
	return t.buildFromScratch(cache, position, depth, entries)
}

// buildFromInternal rebuilds the subtree at a position currently occupied
// by an internal node. Only child positions targeted by updates are
// visited; all other children are shared with the base version unchanged.
func (t *Tree) buildFromInternal(cache *treeCache, position Path, depth int, existing *Child, updates []Update) (*Child, error) {
	key := NodeKey{Version: existing.Version, Path: position}
	node, err := t.getNode(key)
	if err != nil {
		return nil, err
	}
	internal, ok := node.(*InternalNode)
	if !ok {
		return nil, fmt.Errorf("%w: expected internal node at %v, got %v", ErrCorruptedNode, key, node.Kind())
	}

	changed := false
	res := &InternalNode{}
	for nibble, group := range groupByNibble(updates, depth) {
		child := internal.Child(Nibble(nibble))
		if len(group) == 0 {
			res.SetChild(Nibble(nibble), child)
			continue
		}
		newChild, err := t.buildSubtree(cache, position.Child(Nibble(nibble)), depth+1, child, group)
		if err != nil {
			return nil, err
		}
		res.SetChild(Nibble(nibble), newChild)
		if !childEqual(child, newChild) {
			changed = true
		}
	}
	if !changed {
		return existing, nil
	}

	cache.markStale(key)
	switch count := res.ChildCount(); {
	case count == 0:
		return nil, nil
	case count == 1:
		if nibble, child := res.SingleChild(); child != nil && child.IsLeaf {
			return t.liftLeaf(cache, position, nibble, child)
		}
	}
	return t.makeInternal(cache, position, res), nil
}

// liftLeaf relocates the only remaining leaf of a dissolved internal node
// from the child position one level up to the position of its former
// parent. The leaf's hash does not depend on its position, so only its
// address changes.
func (t *Tree) liftLeaf(cache *treeCache, position Path, nibble Nibble, child *Child) (*Child, error) {
	childPos := position.Child(nibble)
	var leaf *LeafNode
	if child.Version == cache.version {
		// The leaf was created by this batch; it moves up within the cache.
		leaf = cache.remove(NodeKey{Version: child.Version, Path: childPos}).(*LeafNode)
	} else {
		// An untouched base leaf moves up; its old address becomes stale.
		key := NodeKey{Version: child.Version, Path: childPos}
		node, err := t.getNode(key)
		if err != nil {
			return nil, err
		}
		old, ok := node.(*LeafNode)
		if !ok {
			return nil, fmt.Errorf("%w: expected leaf node at %v, got %v", ErrCorruptedNode, key, node.Kind())
		}
		cache.markStale(key)
		leaf = &LeafNode{Key: old.Key, ValueHash: old.ValueHash, Version: cache.version}
	}
	cache.put(NodeKey{Version: cache.version, Path: position}, leaf)
	return &Child{Hash: child.Hash, Version: cache.version, IsLeaf: true}, nil
}

// makeLeaf creates a new leaf at the given position and returns its
// descriptor.
func (t *Tree) makeLeaf(cache *treeCache, position Path, key common.Key, valueHash common.Hash) *Child {
	leaf := &LeafNode{Key: key, ValueHash: valueHash, Version: cache.version}
	cache.put(NodeKey{Version: cache.version, Path: position}, leaf)
	return &Child{Hash: t.hasher.hashNode(leaf), Version: cache.version, IsLeaf: true}
}

// makeInternal creates a new internal node at the given position and
// returns its descriptor.
func (t *Tree) makeInternal(cache *treeCache, position Path, node *InternalNode) *Child {
	cache.put(NodeKey{Version: cache.version, Path: position}, node)
	return &Child{Hash: t.hasher.hashNode(node), Version: cache.version}
}

// groupByNibble splits a key-sorted update list into the 16 contiguous
// sub-lists sharing the nibble at the given depth. The sub-lists alias the
// input.
func groupByNibble(updates []Update, depth int) [16][]Update {
	var groups [16][]Update
	start := 0
	for start < len(updates) {
		nibble := getNibble(updates[start].Key, depth)
		end := start + 1
		for end < len(updates) && getNibble(updates[end].Key, depth) == nibble {
			end++
		}
		groups[nibble] = updates[start:end]
		start = end
	}
	return groups
}

func childEqual(a, b *Child) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// ----------------------------------------------------------------------------
//                               Tree Cache
// ----------------------------------------------------------------------------

// treeCache stages the outcome of one batch while it is being computed.
// Nothing reaches the node sink before the whole batch succeeded, which
// keeps failed batches free of side effects.
type treeCache struct {
	version Version
	created map[NodeKey]Node
	stale   []StaleNode
}

func newTreeCache(version Version) *treeCache {
	return &treeCache{
		version: version,
		created: map[NodeKey]Node{},
	}
}

func (c *treeCache) put(key NodeKey, node Node) {
	c.created[key] = node
}

// remove takes a node created earlier in the same batch back out of the
// cache, used when path compression relocates it.
func (c *treeCache) remove(key NodeKey) Node {
	node, found := c.created[key]
	if !found {
		panic(fmt.Sprintf("no node created at %v in this batch", key))
	}
	delete(c.created, key)
	return node
}

func (c *treeCache) markStale(key NodeKey) {
	c.stale = append(c.stale, StaleNode{Key: key, Since: c.version})
}
