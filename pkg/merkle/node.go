// Package merkle content-addresses completion turns into hash chains so the
// debug log of a run can be verified turn by turn.
package merkle

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/papercomputeco/intake/pkg/llm"
)

// Node is one completion turn in a run's hash chain.
type Node struct {
	// Hash is the hex SHA-256 of the parent hash and the turn.
	Hash string `json:"hash"`

	// ParentHash is the hash of the turn this request extended, or nil when
	// the turn opened a fresh conversation.
	ParentHash *string `json:"parent_hash"`

	Turn llm.Turn `json:"turn"`
}

// hashInput is what a turn hash covers. Parent is empty for a root turn.
type hashInput struct {
	Parent string   `json:"parent,omitempty"`
	Turn   llm.Turn `json:"turn"`
}

// NewNode hashes turn onto parent. A nil parent starts a new chain.
func NewNode(turn llm.Turn, parent *Node) *Node {
	n := &Node{Turn: turn}

	var parentHash string
	if parent != nil {
		n.ParentHash = &parent.Hash
		parentHash = parent.Hash
	}

	n.Hash = hashTurn(parentHash, turn)
	return n
}

// hashTurn encodes the turn as JSON, which is stable for llm.Turn since it
// holds only strings, slices and integers.
func hashTurn(parent string, turn llm.Turn) string {
	data, err := json.Marshal(hashInput{Parent: parent, Turn: turn})
	if err != nil {
		panic("merkle: could not encode turn: " + err.Error())
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Chain links successive turns of one conversation. Reset starts a new
// chain whenever the conversation is rebuilt from a fresh system prompt.
type Chain struct {
	head *Node
}

// Append hashes turn onto the current head and returns the new head.
func (c *Chain) Append(turn llm.Turn) *Node {
	c.head = NewNode(turn, c.head)
	return c.head
}

// Head returns the most recent node, or nil for an empty chain.
func (c *Chain) Head() *Node {
	return c.head
}

// Reset drops the chain head so the next turn becomes a root.
func (c *Chain) Reset() {
	c.head = nil
}
