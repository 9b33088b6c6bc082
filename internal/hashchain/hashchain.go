// Package hashchain links memory blocks with a lightweight rolling checksum.
// The hash is an advisory integrity marker for display and verification, not
// a cryptographic digest; collisions are tolerated because the chain is never
// adversarially verified.
package hashchain

import (
	"fmt"
	"time"

	"github.com/rcliao/coherence/internal/model"
)

// GenesisContent is the event descriptor recorded by every genesis block.
const GenesisContent = "session_created"

// Sum returns the deterministic rolling checksum of input, rendered as
// lowercase hex of the absolute 32-bit accumulator. The empty string is a
// valid input and hashes to "0".
func Sum(input string) string {
	var h int32
	for _, r := range input {
		h = h*31 + r
	}
	if h < 0 {
		h = -h
	}
	return fmt.Sprintf("%x", h)
}

// canonical is the serialization hashed into a block: the link context,
// the block timestamp, and the payload content, pipe-joined.
func canonical(context string, ts time.Time, content string) string {
	return context + "|" + ts.UTC().Format(time.RFC3339Nano) + "|" + content
}

// Genesis builds the first block of a session's chain. Its previous hash is
// the sentinel "0" and its hash covers the session id rather than a
// predecessor.
func Genesis(sessionID string, now time.Time) model.MemoryBlock {
	return model.MemoryBlock{
		Hash:         Sum(canonical(sessionID, now, GenesisContent)),
		PreviousHash: model.GenesisPreviousHash,
		Timestamp:    now.UTC(),
		Type:         model.BlockInteraction,
		Content:      GenesisContent,
		Significance: 1.0,
		Signature:    model.GenesisSignature,
	}
}

// Append returns chain extended with a new block linked to the current tail.
// Existing blocks are never modified.
func Append(chain []model.MemoryBlock, blockType model.BlockType, content string, significance float64, now time.Time) []model.MemoryBlock {
	prev := model.GenesisPreviousHash
	if len(chain) > 0 {
		prev = chain[len(chain)-1].Hash
	}
	b := model.MemoryBlock{
		PreviousHash: prev,
		Timestamp:    now.UTC(),
		Type:         blockType,
		Content:      content,
		Significance: significance,
	}
	b.Hash = Sum(canonical(prev, b.Timestamp, content))
	return append(chain, b)
}

// Verify walks a session's chain and checks the genesis sentinel, every
// previous-hash link, and every recomputable block hash.
func Verify(sessionID string, chain []model.MemoryBlock) error {
	if len(chain) == 0 {
		return fmt.Errorf("empty chain")
	}
	g := chain[0]
	if g.PreviousHash != model.GenesisPreviousHash {
		return fmt.Errorf("genesis previousHash = %q, want %q", g.PreviousHash, model.GenesisPreviousHash)
	}
	if g.Signature != model.GenesisSignature {
		return fmt.Errorf("genesis signature = %q, want %q", g.Signature, model.GenesisSignature)
	}
	if want := Sum(canonical(sessionID, g.Timestamp, g.Content)); g.Hash != want {
		return fmt.Errorf("genesis hash = %q, want %q", g.Hash, want)
	}
	for i := 1; i < len(chain); i++ {
		b := chain[i]
		if b.PreviousHash != chain[i-1].Hash {
			return fmt.Errorf("block %d previousHash = %q, want %q", i, b.PreviousHash, chain[i-1].Hash)
		}
		if want := Sum(canonical(b.PreviousHash, b.Timestamp, b.Content)); b.Hash != want {
			return fmt.Errorf("block %d hash = %q, want %q", i, b.Hash, want)
		}
	}
	return nil
}
