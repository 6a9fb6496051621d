package cv2pdf

import (
	"fmt"
	"strings"
)

// Paginate splits a compiled document into pages for the target page
// settings. It is pure: identical input always yields identical pages,
// and paginating an already-paginated sequence with the same settings
// reproduces the same boundaries.
//
// Blocks are never split except when a single atomic block exceeds a
// full page on its own; such a block is force-split at its task-list
// boundary and a LayoutOverflowWarning is recorded. Content wider than
// the page content area is clipped, not shrunk, with the same warning.
func Paginate(doc *Document, ps PageSettings) (*Paginated, []Warning, error) {
	if doc == nil {
		return nil, nil, ErrNilDocument
	}
	if err := ps.Validate(); err != nil {
		return nil, nil, err
	}

	pages, warnings := paginateBlocks(doc.Blocks, ps)
	for _, w := range warnings {
		logger().Warn("layout warning", "kind", string(w.Kind), "block", w.Field, "detail", w.Detail)
	}
	return &Paginated{Meta: doc.Meta, Theme: doc.Theme, Pages: pages}, warnings, nil
}

// Repaginate flattens an already-paginated document and paginates it
// again, e.g. after a page-size change.
func Repaginate(p *Paginated, ps PageSettings) (*Paginated, []Warning, error) {
	if p == nil {
		return nil, nil, ErrNilDocument
	}
	var blocks []Block
	for _, pg := range p.Pages {
		blocks = append(blocks, pg.Blocks...)
	}
	return Paginate(&Document{Meta: p.Meta, Theme: p.Theme, Blocks: blocks}, ps)
}

func paginateBlocks(blocks []Block, ps PageSettings) ([]Page, []Warning) {
	contentW, contentH := ps.ContentSize()
	var warnings []Warning
	warnedSplit := map[string]bool{}

	newPage := func(n int) Page {
		return Page{
			ID:          fmt.Sprintf("page-%d", n),
			Size:        ps.Size,
			Orientation: ps.Orientation,
			Margin:      ps.Margin,
		}
	}

	pages := []Page{newPage(1)}
	used := 0.0

	// place appends a block to the current page, opening a new page when
	// the accumulated height would overflow.
	var place func(b Block)
	place = func(b Block) {
		box := measure(&b, contentW)

		if box.W > contentW+0.5 {
			warnings = append(warnings, Warning{
				Kind: WarnLayoutOverflow, Field: b.ID,
				Detail: fmt.Sprintf("block width %.1fpt exceeds content width %.1fpt, clipped", box.W, contentW),
			})
		}

		cur := &pages[len(pages)-1]
		fits := used+box.H <= contentH+0.001
		if !fits && len(cur.Blocks) > 0 {
			// Pull a trailing section title onto the new page so it is
			// not orphaned at the bottom of the previous one.
			var carried []Block
			if n := len(cur.Blocks); isSectionTitle(&cur.Blocks[n-1]) {
				carried = []Block{cur.Blocks[n-1]}
				cur.Blocks = cur.Blocks[:n-1]
			}
			pages = append(pages, newPage(len(pages)+1))
			cur = &pages[len(pages)-1]
			used = 0
			for _, t := range carried {
				tb := measure(&t, contentW)
				cur.Blocks = append(cur.Blocks, t)
				used += tb.H
			}
		}

		if box.H <= contentH-used+0.001 {
			cur.Blocks = append(cur.Blocks, b)
			used += box.H
			return
		}

		// The block alone exceeds a full page. Force-split at its
		// task-list boundary when one exists; otherwise clip.
		head, tail, ok := splitAtTaskList(&b, contentH-used, contentW)
		if ok {
			if !warnedSplit[b.ID] {
				warnedSplit[b.ID] = true
				warnings = append(warnings, Warning{
					Kind: WarnLayoutOverflow, Field: b.ID,
					Detail: fmt.Sprintf("atomic block taller than page content height %.1fpt, force-split at task list", contentH),
				})
			}
			hb := measure(&head, contentW)
			cur.Blocks = append(cur.Blocks, head)
			used += hb.H
			place(tail)
			return
		}

		warnings = append(warnings, Warning{
			Kind: WarnLayoutOverflow, Field: b.ID,
			Detail: fmt.Sprintf("block height %.1fpt exceeds page content height %.1fpt, clipped", box.H, contentH),
		})
		cur.Blocks = append(cur.Blocks, b)
		used = contentH
	}

	for i := range blocks {
		place(blocks[i])
	}

	// An all-empty document still renders one empty page.
	return pages, warnings
}

// isSectionTitle recognizes the compiler's section heading blocks so
// pagination can keep them attached to the content they introduce.
func isSectionTitle(b *Block) bool {
	return b.Type == BlockHeading && b.Level == 2 && strings.HasSuffix(b.ID, "-title")
}

// splitAtTaskList splits an oversized entry into a head part that fits
// the remaining page space and a continuation part holding the entry
// header copy plus the remaining task items. Returns ok=false when the
// block has no task list to split at, or when not even one task fits.
func splitAtTaskList(b *Block, contentH, contentW float64) (head, tail Block, ok bool) {
	tasks := findTaskList(b)
	if tasks == nil || len(tasks.Children) < 2 {
		return Block{}, Block{}, false
	}

	// Height of everything except the task items.
	probe := cloneBlock(*b)
	probeTasks := findTaskList(&probe)
	probeTasks.Children = nil
	base := measure(&probe, contentW).H
	if base >= contentH {
		return Block{}, Block{}, false
	}

	// Fit as many leading items as possible, keeping at least one on
	// each side of the split.
	fit := 0
	for k := 1; k < len(tasks.Children); k++ {
		probeTasks.Children = tasks.Children[:k]
		if measure(&probe, contentW).H > contentH {
			break
		}
		fit = k
	}
	if fit == 0 {
		return Block{}, Block{}, false
	}

	head = cloneBlock(*b)
	findTaskList(&head).Children = tasks.Children[:fit]

	tail = cloneBlock(*b)
	suffixIDs(&tail, "-cont")
	tailTasks := findTaskList(&tail)
	rest := tasks.Children[fit:]
	items := make([]Block, len(rest))
	for i := range rest {
		items[i] = cloneBlock(rest[i])
		suffixIDs(&items[i], "-cont")
	}
	tailTasks.Children = items
	// Keep only the entry header and the remaining tasks in the
	// continuation; the body text already appeared in the head part.
	pruneContinuation(&tail)
	return head, tail, true
}

// findTaskList returns the first descendant list whose id marks it as a
// task list. Matching is on the "-tasks" marker rather than a suffix so
// continuations, which accumulate one "-cont" per split, still match.
func findTaskList(b *Block) *Block {
	var found *Block
	b.Walk(func(n *Block) bool {
		if n.Type == BlockList && strings.Contains(n.ID, "-tasks") {
			found = n
			return false
		}
		return true
	})
	return found
}

// pruneContinuation reduces the continuation entry to its repeated
// header plus the remaining task list; the body text between them
// already appeared in the head part.
func pruneContinuation(b *Block) {
	b.Walk(func(n *Block) bool {
		for _, c := range n.Children {
			if c.Type != BlockList || !strings.Contains(c.ID, "-tasks") {
				continue
			}
			keep := n.Children[:0:0]
			for _, cc := range n.Children {
				if strings.Contains(cc.ID, "-head") ||
					(cc.Type == BlockList && strings.Contains(cc.ID, "-tasks")) {
					keep = append(keep, cc)
				}
			}
			n.Children = keep
			return false
		}
		return true
	})
}

// cloneBlock deep-copies a block subtree so split parts never alias the
// original document.
func cloneBlock(b Block) Block {
	out := b
	if b.Style != nil {
		s := *b.Style
		out.Style = &s
	}
	if b.Layout != nil {
		l := *b.Layout
		out.Layout = &l
	}
	if len(b.Shapes) > 0 {
		out.Shapes = append([]IconShape(nil), b.Shapes...)
	}
	if len(b.Children) > 0 {
		out.Children = make([]Block, len(b.Children))
		for i := range b.Children {
			out.Children[i] = cloneBlock(b.Children[i])
		}
	}
	return out
}

// suffixIDs rewrites every id in a subtree so continuation blocks stay
// unique within the document.
func suffixIDs(b *Block, suffix string) {
	b.ID += suffix
	for i := range b.Children {
		suffixIDs(&b.Children[i], suffix)
	}
}
