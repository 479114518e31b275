// Package badgergraph is a durable graph.Model backed by BadgerDB: nodes
// and relationships are stored as key/value pairs, with adjacency
// indexes kept alongside them so Expand doesn't have to scan every edge.
package badgergraph

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/wbrown/cyphergraph"
	"github.com/wbrown/cyphergraph/graph"
	"github.com/wbrown/cyphergraph/procedure"
)

const (
	nodePrefix   = "n:"
	relPrefix    = "r:"
	outAdjPrefix = "ao:"
	inAdjPrefix  = "ai:"
	indexPrefix  = "ix:"
	sep          = "\x00"
)

// Graph is a BadgerDB-backed property graph.
type Graph struct {
	db *badger.DB

	mu         sync.RWMutex
	procedures *procedure.Registry
}

var _ graph.Model = (*Graph)(nil)

// Open opens (creating if necessary) a BadgerDB-backed graph at path.
// Logging is disabled to keep the host's own log output undisturbed, and
// the working set is tuned for a mixed read/write workload rather than
// BadgerDB's write-heavy defaults.
func Open(path string) (*Graph, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	opts.MemTableSize = 64 << 20
	opts.BlockCacheSize = 128 << 20
	opts.IndexCacheSize = 64 << 20

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badgergraph: open: %w", err)
	}
	return &Graph{db: db, procedures: procedure.NewRegistry()}, nil
}

// Close releases the underlying BadgerDB handle.
func (g *Graph) Close() error {
	return g.db.Close()
}

// RegisterProcedure exposes p through Procedure(p.Namespace(), p.Name()).
func (g *Graph) RegisterProcedure(p procedure.Procedure) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.procedures.Register(p)
}

// AddNode inserts a node with a freshly generated identity and returns it,
// a convenience for fixtures and seeding that wraps a single-node
// CreateElements call.
func (g *Graph) AddNode(labels []string, props map[string]cyphergraph.Value) (cyphergraph.Node, error) {
	var result cyphergraph.Node
	err := g.CreateElements([]cyphergraph.Node{cyphergraph.NewNode(cyphergraph.NewNodeID("seed"), labels, props)}, nil,
		func(c graph.CreatedElements) { result = c.Nodes[0] })
	return result, err
}

// AddRelationship inserts a relationship with a freshly generated identity
// between two existing nodes and returns it.
func (g *Graph) AddRelationship(relType string, start, end cyphergraph.NodeID, props map[string]cyphergraph.Value) (cyphergraph.Relationship, error) {
	var result cyphergraph.Relationship
	err := g.CreateElements(nil, []cyphergraph.Relationship{cyphergraph.NewRelationship(cyphergraph.RelID{}, relType, start, end, props)},
		func(c graph.CreatedElements) { result = c.Relationships[0] })
	return result, err
}

func nodeKey(id cyphergraph.NodeID) []byte { return []byte(nodePrefix + id.String()) }
func relKey(id cyphergraph.RelID) []byte   { return []byte(relPrefix + id.String()) }

func outAdjKey(node cyphergraph.NodeID, rel cyphergraph.RelID) []byte {
	return []byte(outAdjPrefix + node.String() + sep + rel.String())
}
func inAdjKey(node cyphergraph.NodeID, rel cyphergraph.RelID) []byte {
	return []byte(inAdjPrefix + node.String() + sep + rel.String())
}

func (g *Graph) Nodes() (graph.NodeIterator, error) {
	var nodes []cyphergraph.Node
	err := g.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(nodePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			item := it.Item()
			id := cyphergraph.NewNodeID(string(bytes.TrimPrefix(item.Key(), opts.Prefix)))
			err := item.Value(func(val []byte) error {
				n, err := decodeNode(id, val)
				if err != nil {
					return err
				}
				nodes = append(nodes, n)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return graph.NewSliceNodeIterator(nodes), nil
}

func (g *Graph) NodesFiltered(filter cyphergraph.NodeFilter) (graph.NodeIterator, error) {
	all, err := g.Nodes()
	if err != nil {
		return nil, err
	}
	matched, err := graph.FilterNodes(all, filter)
	if err != nil {
		return nil, err
	}
	return graph.NewSliceNodeIterator(matched), nil
}

func (g *Graph) getNode(txn *badger.Txn, id cyphergraph.NodeID) (cyphergraph.Node, error) {
	item, err := txn.Get(nodeKey(id))
	if err != nil {
		return cyphergraph.Node{}, err
	}
	var n cyphergraph.Node
	err = item.Value(func(val []byte) error {
		decoded, err := decodeNode(id, val)
		n = decoded
		return err
	})
	return n, err
}

func (g *Graph) getRel(txn *badger.Txn, id cyphergraph.RelID) (cyphergraph.Relationship, error) {
	item, err := txn.Get(relKey(id))
	if err != nil {
		return cyphergraph.Relationship{}, err
	}
	var r cyphergraph.Relationship
	err = item.Value(func(val []byte) error {
		decoded, err := decodeRel(id, val)
		r = decoded
		return err
	})
	return r, err
}

func (g *Graph) Relationships() (graph.PathIterator, error) {
	var triples []cyphergraph.PathTriple
	err := g.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(relPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			item := it.Item()
			id := cyphergraph.NewRelID(string(bytes.TrimPrefix(item.Key(), opts.Prefix)))
			var rel cyphergraph.Relationship
			if err := item.Value(func(val []byte) error {
				decoded, err := decodeRel(id, val)
				rel = decoded
				return err
			}); err != nil {
				return err
			}
			start, err := g.getNode(txn, rel.StartID)
			if err == badger.ErrKeyNotFound {
				continue
			}
			if err != nil {
				return err
			}
			end, err := g.getNode(txn, rel.EndID)
			if err == badger.ErrKeyNotFound {
				continue
			}
			if err != nil {
				return err
			}
			triples = append(triples, cyphergraph.NewCanonicalTriple(start, rel, end))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return graph.NewSlicePathIterator(triples), nil
}

func (g *Graph) Paths(start cyphergraph.NodeFilter, rel cyphergraph.RelationshipFilter, end cyphergraph.NodeFilter, dir cyphergraph.Direction) (graph.PathIterator, error) {
	canonical, err := g.Relationships()
	if err != nil {
		return nil, err
	}
	defer canonical.Close()

	var oriented []cyphergraph.PathTriple
	for canonical.Next() {
		t := canonical.Triple()
		switch dir {
		case cyphergraph.Outgoing:
			oriented = append(oriented, t)
		case cyphergraph.Incoming:
			oriented = append(oriented, t.Revert())
		case cyphergraph.Both:
			oriented = append(oriented, t, t.Revert())
		}
	}
	if err := canonical.Err(); err != nil {
		return nil, err
	}

	matched, err := graph.FilterTriples(graph.NewSlicePathIterator(oriented), start, rel, end)
	if err != nil {
		return nil, err
	}
	return graph.NewSlicePathIterator(matched), nil
}

func (g *Graph) Expand(nodeID cyphergraph.NodeID, dir cyphergraph.Direction, relFilter cyphergraph.RelationshipFilter, endFilter cyphergraph.NodeFilter) (graph.PathIterator, error) {
	var triples []cyphergraph.PathTriple
	err := g.db.View(func(txn *badger.Txn) error {
		var relIDs []cyphergraph.RelID
		if dir == cyphergraph.Outgoing || dir == cyphergraph.Both {
			ids, err := scanAdjacency(txn, outAdjPrefix, nodeID)
			if err != nil {
				return err
			}
			relIDs = append(relIDs, ids...)
		}
		if dir == cyphergraph.Incoming || dir == cyphergraph.Both {
			ids, err := scanAdjacency(txn, inAdjPrefix, nodeID)
			if err != nil {
				return err
			}
			relIDs = append(relIDs, ids...)
		}

		for _, rid := range relIDs {
			r, err := g.getRel(txn, rid)
			if err == badger.ErrKeyNotFound {
				continue
			}
			if err != nil {
				return err
			}
			start, err := g.getNode(txn, r.StartID)
			if err != nil {
				return err
			}
			end, err := g.getNode(txn, r.EndID)
			if err != nil {
				return err
			}
			canonical := cyphergraph.NewCanonicalTriple(start, r, end)
			if canonical.StartNode.ID.Equal(nodeID) {
				triples = append(triples, canonical)
			} else {
				triples = append(triples, canonical.Revert())
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	matched, err := graph.FilterTriples(graph.NewSlicePathIterator(triples), cyphergraph.NodeFilter{}, relFilter, endFilter)
	if err != nil {
		return nil, err
	}
	return graph.NewSlicePathIterator(matched), nil
}

func scanAdjacency(txn *badger.Txn, prefix string, node cyphergraph.NodeID) ([]cyphergraph.RelID, error) {
	key := []byte(prefix + node.String() + sep)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = key
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	var ids []cyphergraph.RelID
	for it.Seek(key); it.ValidForPrefix(key); it.Next() {
		relStr := bytes.TrimPrefix(it.Item().Key(), key)
		ids = append(ids, cyphergraph.NewRelID(string(relStr)))
	}
	return ids, nil
}

// CreateElements performs all writes in a single Badger transaction, so a
// caller either sees every new node and relationship or none of them.
// A relationship endpoint that names the placeholder ID of a node in the
// same call is remapped to that node's freshly assigned ID, the same
// convention memgraph uses.
func (g *Graph) CreateElements(nodes []cyphergraph.Node, rels []cyphergraph.Relationship, onCreated func(graph.CreatedElements)) error {
	created := graph.CreatedElements{
		Nodes:         make([]cyphergraph.Node, len(nodes)),
		Relationships: make([]cyphergraph.Relationship, len(rels)),
	}

	err := g.db.Update(func(txn *badger.Txn) error {
		remap := make(map[cyphergraph.NodeID]cyphergraph.NodeID, len(nodes))
		for i, n := range nodes {
			id := cyphergraph.NewNodeID(uuid.NewString())
			remap[n.ID] = id
			created.Nodes[i] = cyphergraph.NewNode(id, n.Labels, n.Properties)
			if err := txn.Set(nodeKey(id), encodeNode(created.Nodes[i])); err != nil {
				return err
			}
		}

		for i, r := range rels {
			start := r.StartID
			if mapped, ok := remap[start]; ok {
				start = mapped
			}
			end := r.EndID
			if mapped, ok := remap[end]; ok {
				end = mapped
			}
			id := cyphergraph.NewRelID(uuid.NewString())
			created.Relationships[i] = cyphergraph.NewRelationship(id, r.Type, start, end, r.Properties)
			if err := txn.Set(relKey(id), encodeRel(created.Relationships[i])); err != nil {
				return err
			}
			if err := txn.Set(outAdjKey(start, id), []byte{}); err != nil {
				return err
			}
			if err := txn.Set(inAdjKey(end, id), []byte{}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("badgergraph: create elements: %w", err)
	}

	if onCreated != nil {
		onCreated(created)
	}
	return nil
}

func (g *Graph) CreateIndex(label string, propertyKeys []string) error {
	key := []byte(indexPrefix + label + sep + fmt.Sprint(propertyKeys))
	return g.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, encodeStrings(propertyKeys))
	})
}

func (g *Graph) Indexes() []graph.IndexSpec {
	var out []graph.IndexSpec
	_ = g.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(indexPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			item := it.Item()
			rest := bytes.TrimPrefix(item.Key(), opts.Prefix)
			parts := bytes.SplitN(rest, []byte(sep), 2)
			label := string(parts[0])
			var keys []string
			err := item.Value(func(val []byte) error {
				decoded, err := decodeStrings(val)
				keys = decoded
				return err
			})
			if err != nil {
				continue
			}
			out = append(out, graph.IndexSpec{Label: label, PropertyKeys: keys})
		}
		return nil
	})
	return out
}

func (g *Graph) Procedure(namespace, name string) (procedure.Procedure, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.procedures.Get(namespace, name)
}
