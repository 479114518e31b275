package cyphergraph

import (
	"crypto/sha1"

	"github.com/wbrown/cyphergraph/internal/l85"
)

// elementID is the shared representation behind NodeID and RelID: a stable
// hash plus a lexicographically-sortable L85 string encoding of it. Both are
// computed at construction. String() prints the source string the ID was
// built from, falling back to the L85 form for hash-built IDs; equality and
// ordering compare the raw hash bytes.
type elementID struct {
	hash        [20]byte
	l85         string
	source      string // original string handed to the constructor, if any
	l85Computed bool
}

func newElementID(s string) elementID {
	return elementID{hash: sha1.Sum([]byte(s)), source: s}
}

func newElementIDFromHash(hash [20]byte) elementID {
	return elementID{hash: hash, l85: l85.EncodeFixed20(hash), l85Computed: true}
}

func (e *elementID) l85String() string {
	if !e.l85Computed {
		e.l85 = l85.EncodeFixed20(e.hash)
		e.l85Computed = true
	}
	return e.l85
}

func (e elementID) String() string {
	if e.source != "" {
		return e.source
	}
	return e.l85
}

func (e elementID) equal(other elementID) bool {
	return e.hash == other.hash
}

func (e elementID) compare(other elementID) int {
	switch {
	case e.hash == other.hash:
		return 0
	case string(e.hash[:]) < string(other.hash[:]):
		return -1
	default:
		return 1
	}
}

// NodeID is a stable identifier for a Node. Two NodeIDs constructed from the
// same string (NewNodeID) compare equal; hosts that already have their own
// identity scheme can build one with NodeIDFromHash.
type NodeID struct{ id elementID }

// NewNodeID derives a NodeID from an arbitrary string, e.g. a host-side
// primary key. Identical strings always yield equal NodeIDs.
func NewNodeID(s string) NodeID {
	id := newElementID(s)
	id.l85String()
	return NodeID{id}
}

// NodeIDFromHash builds a NodeID directly from a 20-byte hash, for hosts that
// maintain their own hashing scheme (e.g. a storage layer keyed by SHA1).
func NodeIDFromHash(hash [20]byte) NodeID { return NodeID{newElementIDFromHash(hash)} }

func (n NodeID) String() string       { return n.id.String() }
func (n NodeID) Equal(o NodeID) bool  { return n.id.equal(o.id) }
func (n NodeID) Compare(o NodeID) int { return n.id.compare(o.id) }

// RelID is a stable identifier for a Relationship.
type RelID struct{ id elementID }

// NewRelID derives a RelID from an arbitrary string.
func NewRelID(s string) RelID {
	id := newElementID(s)
	id.l85String()
	return RelID{id}
}

// RelIDFromHash builds a RelID directly from a 20-byte hash.
func RelIDFromHash(hash [20]byte) RelID { return RelID{newElementIDFromHash(hash)} }

func (r RelID) String() string       { return r.id.String() }
func (r RelID) Equal(o RelID) bool   { return r.id.equal(o.id) }
func (r RelID) Compare(o RelID) int  { return r.id.compare(o.id) }
