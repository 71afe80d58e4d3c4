package crontab

import "strings"

// Block is a contiguous, blank-line-delimited group of lines treated as one
// logical unit.
type Block struct {
	Lines []Line

	// trailing is the number of blank lines that followed the block in the
	// source text, preserved so serialization round-trips.
	trailing int
}

// NewBlock returns an empty block separated from its successor by one blank
// line when serialized.
func NewBlock(lines ...Line) *Block {
	return &Block{Lines: lines, trailing: 1}
}

// Comments returns the block's comment lines in order.
func (b *Block) Comments() []*Comment {
	var out []*Comment
	for _, l := range b.Lines {
		if c, ok := l.(*Comment); ok {
			out = append(out, c)
		}
	}
	return out
}

// Envs returns the block's environment assignment lines in order.
func (b *Block) Envs() []*Env {
	var out []*Env
	for _, l := range b.Lines {
		if e, ok := l.(*Env); ok {
			out = append(out, e)
		}
	}
	return out
}

// Entries returns the block's schedule entry lines in order.
func (b *Block) Entries() []*Entry {
	var out []*Entry
	for _, l := range b.Lines {
		if e, ok := l.(*Entry); ok {
			out = append(out, e)
		}
	}
	return out
}

// Replace swaps the block's lines wholesale, keeping its position and
// trailing spacing in the document.
func (b *Block) Replace(lines []Line) {
	b.Lines = lines
}

// Document is the parsed form of one crontab file: ordered blocks plus the
// surrounding blank-line shape needed to reproduce the source exactly.
type Document struct {
	Blocks []*Block

	leading        int
	noFinalNewline bool
}

// Parse builds a Document from crontab file content. Parse never fails:
// unrecognized lines are preserved as comments.
func Parse(data []byte) *Document {
	doc := &Document{}
	text := string(data)
	if text == "" {
		return doc
	}
	if !strings.HasSuffix(text, "\n") {
		doc.noFinalNewline = true
	} else {
		text = strings.TrimSuffix(text, "\n")
	}

	var cur *Block
	for _, raw := range strings.Split(text, "\n") {
		if strings.TrimSpace(raw) == "" {
			if cur == nil {
				doc.leading++
				continue
			}
			cur.trailing++
			continue
		}
		if cur == nil || cur.trailing > 0 {
			cur = &Block{}
			doc.Blocks = append(doc.Blocks, cur)
		}
		cur.Lines = append(cur.Lines, parseLine(raw))
	}
	return doc
}

// Serialize renders the document back to file content. Unmodified input
// reproduces the original bytes.
func (d *Document) Serialize() []byte {
	if len(d.Blocks) == 0 && d.leading == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString(strings.Repeat("\n", d.leading))
	for i, b := range d.Blocks {
		for _, l := range b.Lines {
			sb.WriteString(l.Render())
			sb.WriteString("\n")
		}
		trailing := b.trailing
		if trailing == 0 && i < len(d.Blocks)-1 {
			trailing = 1
		}
		sb.WriteString(strings.Repeat("\n", trailing))
	}
	out := sb.String()
	if d.noFinalNewline {
		out = strings.TrimSuffix(out, "\n")
	}
	return []byte(out)
}

// AddBlock appends a block to the end of the document.
func (d *Document) AddBlock(b *Block) {
	if n := len(d.Blocks); n > 0 && d.Blocks[n-1].trailing == 0 {
		d.Blocks[n-1].trailing = 1
	}
	d.Blocks = append(d.Blocks, b)
}

// RemoveBlock deletes the block from the document. Removing a block that is
// not part of the document is a no-op.
func (d *Document) RemoveBlock(target *Block) {
	for i, b := range d.Blocks {
		if b == target {
			d.Blocks = append(d.Blocks[:i], d.Blocks[i+1:]...)
			return
		}
	}
}
