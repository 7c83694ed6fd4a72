// Command glmedemo encodes a small linked list as a record, frames it as
// a compressed stream message, decodes it back, and rebuilds the list's
// back-pointers — the recursive pointer-graph pattern the record layer
// documents: the wire form is acyclic, so a doubly-linked structure is
// reconstructed by the caller after decode rather than represented
// directly on the wire.
package main

import (
	"bytes"
	"fmt"
	"log"

	"github.com/glme-go/glme"
	"github.com/glme-go/glme/buffer"
	"github.com/glme-go/glme/compress"
	"github.com/glme-go/glme/record"
	"github.com/glme-go/glme/wire"
)

// listNode is a singly-linked list node on the wire; prev is never
// encoded and is rebuilt by walkList after a full decode.
type listNode struct {
	value int64
	next  *listNode
	prev  *listNode
}

var nodeTypeID = glme.TypeID("glmedemo.listNode")

// nodesDecoded, reached through the Buffer's user-context slot, counts
// records decoded across an arbitrarily deep chain of nested
// EncodeEmbedded/DecodeEmbedded calls that share one Buffer — a context
// use that, unlike a parent back-pointer, does not depend on recursion
// order.
type nodesDecoded struct{ n int }

func nodeFields() []record.FieldDesc[listNode] {
	return []record.FieldDesc[listNode]{
		{
			IsAbsent: func(n *listNode) bool { return n.value == 0 },
			Encode:   func(b *buffer.Buffer, n *listNode) error { return wire.WriteInt(b, n.value) },
			Decode: func(b *buffer.Buffer, n *listNode) error {
				if counter, ok := b.Context.(*nodesDecoded); ok {
					counter.n++
				}
				v, err := wire.ReadInt(b)
				n.value = v

				return err
			},
			SetDefault: func(n *listNode) { n.value = 0 },
		},
		{
			IsAbsent: func(n *listNode) bool { return n.next == nil },
			Encode: func(b *buffer.Buffer, n *listNode) error {
				return record.EncodeEmbedded(b, nodeTypeID, n.next, nodeFields())
			},
			Decode: func(b *buffer.Buffer, n *listNode) error {
				n.next = &listNode{}

				return record.DecodeEmbedded(b, n.next, nodeFields())
			},
			SetDefault: func(n *listNode) { n.next = nil },
		},
	}
}

// walkList sets every node's prev pointer from its predecessor's next,
// the caller-side post-processing step the record layer leaves to
// callers for recursive pointer graphs it cannot represent on the wire.
func walkList(head *listNode) {
	var prev *listNode
	for n := head; n != nil; n = n.next {
		n.prev = prev
		prev = n
	}
}

func main() {
	head := &listNode{value: 1, next: &listNode{value: 2, next: &listNode{value: 3}}}

	var wireBytes bytes.Buffer
	written, err := glme.EncodeMessage(&wireBytes, compress.S2, func(b *buffer.Buffer) error {
		return record.Encode(b, nodeTypeID, head, nodeFields())
	})
	if err != nil {
		log.Fatalf("encode: %v", err)
	}
	fmt.Printf("wrote %d bytes\n", written)

	var decoded listNode
	counter := &nodesDecoded{}
	err = glme.DecodeMessage(&wireBytes, 0, func(b *buffer.Buffer) error {
		b.Context = counter
		_, err := record.Decode(b, &decoded, nodeFields())

		return err
	})
	if err != nil {
		log.Fatalf("decode: %v", err)
	}
	fmt.Printf("decoded %d nodes\n", counter.n)

	walkList(&decoded)
	for n := &decoded; n != nil; n = n.next {
		back := "nil"
		if n.prev != nil {
			back = fmt.Sprintf("%d", n.prev.value)
		}
		fmt.Printf("node value=%d prev=%s\n", n.value, back)
	}
}
