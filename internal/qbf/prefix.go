package qbf

// QuantifierKind distinguishes the two quantifier kinds a prefix block can
// carry.
type QuantifierKind uint8

const (
	Existential QuantifierKind = iota
	Universal
)

func (k QuantifierKind) String() string {
	if k == Universal {
		return "universal"
	}
	return "existential"
}

// Block is one quantifier block of the prefix: a contiguous run of variables
// of the same kind, at a fixed block index counted from the outside in.
type Block struct {
	Kind QuantifierKind
	Vars []int
}

// Prefix is the ordered sequence of quantifier blocks, outermost first. It is
// frozen after parsing: Pure-Literal Elimination may empty a block, but the
// block itself is retained positionally so that block indices stay stable.
type Prefix struct {
	blocks []Block
}

// NumBlocks returns the number of blocks in the prefix.
func (p *Prefix) NumBlocks() int {
	return len(p.blocks)
}

// Block returns the i-th block, outermost first.
func (p *Prefix) Block(i int) *Block {
	return &p.blocks[i]
}

// AppendBlock starts a new quantifier block of the given kind, merging with
// the current innermost-so-far (last) block if it has the same kind (QDIMACS allows
// repeated adjacent blocks of the same kind, which must be merged per the
// format's rules). It returns the index of the (possibly merged-into) block.
func (p *Prefix) AppendBlock(kind QuantifierKind) int {
	if n := len(p.blocks); n > 0 && p.blocks[n-1].Kind == kind {
		return n - 1
	}
	p.blocks = append(p.blocks, Block{Kind: kind})
	return len(p.blocks) - 1
}

// AddVar appends variable v to block index blockIdx.
func (p *Prefix) AddVar(blockIdx, v int) {
	p.blocks[blockIdx].Vars = append(p.blocks[blockIdx].Vars, v)
}

// RemoveVar removes variable v from block index blockIdx, e.g. after pure
// literal elimination has assigned it. The block is retained even if it
// becomes empty.
func (p *Prefix) RemoveVar(blockIdx, v int) {
	vars := p.blocks[blockIdx].Vars
	for i, u := range vars {
		if u == v {
			vars[i] = vars[len(vars)-1]
			p.blocks[blockIdx].Vars = vars[:len(vars)-1]
			return
		}
	}
}

// InnermostExistentialBlock returns the index of the innermost block if it
// is existential; otherwise (the prefix is empty or ends in a universal
// block) it appends a new existential block and returns that. QDIMACS variables
// that never appear in a quantifier line are implicitly existential and
// belong at the innermost block.
func (p *Prefix) InnermostExistentialBlock() int {
	if n := len(p.blocks); n > 0 && p.blocks[n-1].Kind == Existential {
		return n - 1
	}
	return p.AppendBlock(Existential)
}
