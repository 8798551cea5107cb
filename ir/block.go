package ir

// Block is a basic block: a straight-line sequence of instructions
// ending (once terminated) in a Br/CondBr/Ret.
type Block struct {
	Name   string
	Func   *Func
	Instrs []*Instr
}

// indexOf returns the position of in within b.Instrs, or -1.
func (b *Block) indexOf(in *Instr) int {
	for i, e := range b.Instrs {
		if e == in {
			return i
		}
	}
	return -1
}

// Append adds in to the end of the block.
func (b *Block) Append(in *Instr) {
	in.Block = b
	b.Instrs = append(b.Instrs, in)
}

// InsertBefore splices in immediately before anchor, which must
// belong to b.
func (b *Block) InsertBefore(in, anchor *Instr) {
	idx := b.indexOf(anchor)
	if idx < 0 {
		panic("ir: InsertBefore anchor not in block")
	}
	in.Block = b
	b.Instrs = append(b.Instrs, nil)
	copy(b.Instrs[idx+1:], b.Instrs[idx:])
	b.Instrs[idx] = in
}

// InsertAfter splices in immediately after anchor, which must belong
// to b.
func (b *Block) InsertAfter(in, anchor *Instr) {
	idx := b.indexOf(anchor)
	if idx < 0 {
		panic("ir: InsertAfter anchor not in block")
	}
	pos := idx + 1
	in.Block = b
	b.Instrs = append(b.Instrs, nil)
	copy(b.Instrs[pos+1:], b.Instrs[pos:])
	b.Instrs[pos] = in
}

// Erase removes in from the block. The caller is responsible for
// having already redirected in's own users to other values (e.g. via
// ReplaceAllUsesWith) — Erase only unlinks it from the block and
// drops its own operand use-edges.
func (b *Block) Erase(in *Instr) {
	idx := b.indexOf(in)
	if idx < 0 {
		return
	}
	for i := 0; i < in.NumOperands(); i++ {
		if op := in.Operand(i); op != nil {
			op.removeUser(in, i)
		}
	}
	b.Instrs = append(b.Instrs[:idx], b.Instrs[idx+1:]...)
	in.Block = nil
}

// Terminator returns the block's last instruction if it is a
// terminator (Br/CondBr/Ret), else nil.
func (b *Block) Terminator() *Instr {
	if len(b.Instrs) == 0 {
		return nil
	}
	last := b.Instrs[len(b.Instrs)-1]
	switch last.Op {
	case OpBr, OpCondBr, OpRet:
		return last
	default:
		return nil
	}
}

// FirstNonAlloca returns the first instruction in the block that is
// not an Alloca — the canonical anchor for inserting a new local
// after the existing batch of entry-block allocas, preserving
// invariant 6 (every alloca precedes every non-alloca instruction).
func (b *Block) FirstNonAlloca() *Instr {
	for _, in := range b.Instrs {
		if in.Op != OpAlloca {
			return in
		}
	}
	return nil
}
