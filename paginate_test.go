package cv2pdf

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// fixedBlock returns an image block with exact dimensions, for
// pagination tests that need precise geometry.
func fixedBlock(id string, h float64) Block {
	return Block{
		ID:     id,
		Type:   BlockImage,
		Src:    "placeholder.png",
		Layout: &Layout{Width: &Dimension{Pt: 100}, Height: &Dimension{Pt: h}},
	}
}

// pageIDs flattens the top-level block ids of every page.
func pageIDs(p *Paginated) [][]string {
	out := make([][]string, len(p.Pages))
	for i, pg := range p.Pages {
		for j := range pg.Blocks {
			out[i] = append(out[i], pg.Blocks[j].ID)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// TestPaginate - Page Breaks and Conservation
// ---------------------------------------------------------------------------

func TestPaginate(t *testing.T) {
	t.Parallel()

	ps := DefaultPageSettings() // content height 761.89pt

	t.Run("nil document", func(t *testing.T) {
		t.Parallel()

		_, _, err := Paginate(nil, ps)
		if !errors.Is(err, ErrNilDocument) {
			t.Errorf("error = %v, want ErrNilDocument", err)
		}
	})

	t.Run("invalid page settings", func(t *testing.T) {
		t.Parallel()

		_, _, err := Paginate(&Document{}, PageSettings{Size: "tabloid"})
		if !errors.Is(err, ErrInvalidPageSize) {
			t.Errorf("error = %v, want ErrInvalidPageSize", err)
		}
	})

	t.Run("empty document yields one empty page", func(t *testing.T) {
		t.Parallel()

		p, warns, err := Paginate(&Document{}, ps)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(warns) != 0 {
			t.Errorf("unexpected warnings: %v", warns)
		}
		if len(p.Pages) != 1 || len(p.Pages[0].Blocks) != 0 {
			t.Errorf("pages = %v", pageIDs(p))
		}
	})

	t.Run("blocks flow onto new pages without splitting", func(t *testing.T) {
		t.Parallel()

		doc := &Document{Blocks: []Block{
			fixedBlock("a", 300), fixedBlock("b", 300), fixedBlock("c", 300),
		}}
		p, warns, err := Paginate(doc, ps)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(warns) != 0 {
			t.Errorf("unexpected warnings: %v", warns)
		}
		got := pageIDs(p)
		if len(got) != 2 || len(got[0]) != 2 || got[1][0] != "c" {
			t.Errorf("pages = %v, want [[a b] [c]]", got)
		}
	})

	t.Run("conservation: every block appears exactly once in order", func(t *testing.T) {
		t.Parallel()

		res, err := CompileDocument(sampleProfile(), "classic", "usa", "en")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		p, _, err := Paginate(res.Document, res.Region.PageSettings())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var want, got []string
		for i := range res.Document.Blocks {
			want = append(want, res.Document.Blocks[i].ID)
		}
		for _, pg := range pageIDs(p) {
			got = append(got, pg...)
		}
		if len(got) != len(want) {
			t.Fatalf("block count changed: got %d, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("order diverged at %d: got %q, want %q", i, got[i], want[i])
			}
		}
	})

	t.Run("page metadata carries the settings", func(t *testing.T) {
		t.Parallel()

		p, _, err := Paginate(&Document{Blocks: []Block{fixedBlock("a", 10)}}, ps)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		pg := p.Pages[0]
		if pg.ID != "page-1" || pg.Size != ps.Size || pg.Margin != ps.Margin {
			t.Errorf("page metadata = %+v", pg)
		}
	})
}

// ---------------------------------------------------------------------------
// TestPaginateTitleCarry - Section Titles Never Orphan
// ---------------------------------------------------------------------------

func TestPaginateTitleCarry(t *testing.T) {
	t.Parallel()

	title := Block{ID: "experience-title", Type: BlockHeading, Level: 2, Content: "Experience"}
	doc := &Document{Blocks: []Block{
		fixedBlock("filler", 700),
		title,
		fixedBlock("entry", 100),
	}}

	p, _, err := Paginate(doc, DefaultPageSettings())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := pageIDs(p)
	if len(got) != 2 {
		t.Fatalf("pages = %v, want 2 pages", got)
	}
	if len(got[0]) != 1 || got[0][0] != "filler" {
		t.Errorf("page 1 = %v, want [filler]", got[0])
	}
	if len(got[1]) != 2 || got[1][0] != "experience-title" || got[1][1] != "entry" {
		t.Errorf("page 2 = %v, want [experience-title entry]", got[1])
	}
}

// ---------------------------------------------------------------------------
// TestPaginateForceSplit - Oversized Atomic Entries
// ---------------------------------------------------------------------------

func oversizedEntry(taskCount int) Block {
	items := make([]Block, 0, taskCount)
	for i := 0; i < taskCount; i++ {
		items = append(items, Block{
			ID:   fmt.Sprintf("exp-1-task-%d", i+1),
			Type: BlockListItem,
			Children: []Block{{
				ID: fmt.Sprintf("exp-1-task-%d-text", i+1), Type: BlockText, Content: "did a thing",
			}},
		})
	}
	return Block{
		ID:     "exp-1",
		Type:   BlockContainer,
		Layout: &Layout{Direction: DirectionColumn, Atomic: true},
		Children: []Block{
			{ID: "exp-1-head", Type: BlockHeading, Level: 3, Content: "Engineer", Style: &Style{FontSize: 10, LineHeight: 1.25}},
			{ID: "exp-1-tasks", Type: BlockList, Layout: &Layout{Direction: DirectionColumn}, Children: items},
		},
	}
}

func TestPaginateForceSplit(t *testing.T) {
	t.Parallel()

	t.Run("entry taller than a page splits at the task list", func(t *testing.T) {
		t.Parallel()

		doc := &Document{Blocks: []Block{oversizedEntry(70)}}
		p, warns, err := Paginate(doc, DefaultPageSettings())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(p.Pages) != 2 {
			t.Fatalf("pages = %v, want 2", pageIDs(p))
		}
		head := p.Pages[0].Blocks[0]
		tail := p.Pages[1].Blocks[0]
		if head.ID != "exp-1" {
			t.Errorf("head id = %q, want exp-1", head.ID)
		}
		if tail.ID != "exp-1-cont" {
			t.Errorf("tail id = %q, want exp-1-cont", tail.ID)
		}

		headTasks := findTaskList(&head)
		tailTasks := findTaskList(&tail)
		if headTasks == nil || tailTasks == nil {
			t.Fatal("task list missing from a split part")
		}
		if len(headTasks.Children)+len(tailTasks.Children) != 70 {
			t.Errorf("tasks not conserved: %d + %d", len(headTasks.Children), len(tailTasks.Children))
		}
		if len(headTasks.Children) == 0 || len(tailTasks.Children) == 0 {
			t.Error("split must leave at least one task on each side")
		}

		// Continuation repeats the header and renames every id.
		if len(tail.Children) != 2 {
			t.Fatalf("tail children = %d, want header + tasks", len(tail.Children))
		}
		if tail.Children[0].ID != "exp-1-head-cont" {
			t.Errorf("continuation header id = %q", tail.Children[0].ID)
		}
		if !strings.HasSuffix(tailTasks.Children[0].ID, "-cont") {
			t.Errorf("continuation task id %q not suffixed", tailTasks.Children[0].ID)
		}

		overflow := 0
		for _, w := range warns {
			if w.Kind == WarnLayoutOverflow {
				overflow++
			}
		}
		if overflow != 1 {
			t.Errorf("overflow warnings = %d, want exactly 1: %v", overflow, warns)
		}
	})

	t.Run("entry spanning three pages splits twice", func(t *testing.T) {
		t.Parallel()

		doc := &Document{Blocks: []Block{oversizedEntry(130)}}
		p, warns, err := Paginate(doc, DefaultPageSettings())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(p.Pages) != 3 {
			t.Fatalf("pages = %v, want 3", pageIDs(p))
		}

		second := p.Pages[2].Blocks[0]
		if second.ID != "exp-1-cont-cont" {
			t.Errorf("second continuation id = %q, want exp-1-cont-cont", second.ID)
		}
		if len(second.Children) != 2 ||
			second.Children[0].ID != "exp-1-head-cont-cont" ||
			second.Children[1].ID != "exp-1-tasks-cont-cont" {
			t.Errorf("second continuation children = %v, want repeated header and tasks", pageIDs(p)[2])
		}

		total := 0
		for _, pg := range p.Pages {
			for i := range pg.Blocks {
				pg.Blocks[i].Walk(func(b *Block) bool {
					if b.Type == BlockListItem {
						total++
					}
					return true
				})
			}
		}
		if total != 130 {
			t.Errorf("tasks not conserved across pages: %d, want 130", total)
		}

		overflow := 0
		for _, w := range warns {
			if w.Kind == WarnLayoutOverflow {
				overflow++
			}
		}
		if overflow != 2 {
			t.Errorf("overflow warnings = %d, want one per split: %v", overflow, warns)
		}

		var all []Block
		for _, pg := range p.Pages {
			all = append(all, pg.Blocks...)
		}
		if err := (&Document{Blocks: all}).Validate(); err != nil {
			t.Errorf("twice-split document invalid: %v", err)
		}
	})

	t.Run("split result still validates", func(t *testing.T) {
		t.Parallel()

		doc := &Document{Blocks: []Block{oversizedEntry(70)}}
		p, _, err := Paginate(doc, DefaultPageSettings())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var all []Block
		for _, pg := range p.Pages {
			all = append(all, pg.Blocks...)
		}
		flat := &Document{Blocks: all}
		if err := flat.Validate(); err != nil {
			t.Errorf("split document invalid: %v", err)
		}
	})

	t.Run("oversized block without task list is clipped with warning", func(t *testing.T) {
		t.Parallel()

		doc := &Document{Blocks: []Block{fixedBlock("huge", 900)}}
		p, warns, err := Paginate(doc, DefaultPageSettings())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(p.Pages) != 1 {
			t.Errorf("pages = %v, want the clipped block on one page", pageIDs(p))
		}
		if len(warns) != 1 || warns[0].Kind != WarnLayoutOverflow {
			t.Errorf("warnings = %v, want one layout overflow", warns)
		}
	})

	t.Run("wide block warns and is kept", func(t *testing.T) {
		t.Parallel()

		wide := Block{
			ID: "wide", Type: BlockImage, Src: "x",
			Layout: &Layout{Width: &Dimension{Pt: 900}, Height: &Dimension{Pt: 40}},
		}
		p, warns, err := Paginate(&Document{Blocks: []Block{wide}}, DefaultPageSettings())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(p.Pages[0].Blocks) != 1 {
			t.Error("wide block dropped instead of clipped")
		}
		if len(warns) != 1 || warns[0].Kind != WarnLayoutOverflow {
			t.Errorf("warnings = %v, want one layout overflow", warns)
		}
	})
}

// ---------------------------------------------------------------------------
// TestRepaginate - Idempotence
// ---------------------------------------------------------------------------

func TestRepaginate(t *testing.T) {
	t.Parallel()

	t.Run("same settings reproduce the same boundaries", func(t *testing.T) {
		t.Parallel()

		res, err := CompileDocument(sampleProfile(), "classic", "usa", "en")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ps := res.Region.PageSettings()
		first, _, err := Paginate(res.Document, ps)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		second, _, err := Repaginate(first, ps)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		a, b := pageIDs(first), pageIDs(second)
		if len(a) != len(b) {
			t.Fatalf("page count changed: %d vs %d", len(a), len(b))
		}
		for i := range a {
			if strings.Join(a[i], ",") != strings.Join(b[i], ",") {
				t.Errorf("page %d diverged: %v vs %v", i+1, a[i], b[i])
			}
		}
	})

	t.Run("page size change reflows", func(t *testing.T) {
		t.Parallel()

		doc := &Document{Blocks: []Block{
			fixedBlock("a", 400), fixedBlock("b", 400),
		}}
		a4 := DefaultPageSettings() // content 761.89: one block per page
		p, _, err := Paginate(doc, a4)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(p.Pages) != 2 {
			t.Fatalf("a4 pages = %d, want 2", len(p.Pages))
		}

		tall := a4
		tall.Orientation = OrientationLandscape // content 515.28: still one per page
		re, _, err := Repaginate(p, tall)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var got []string
		for _, pg := range pageIDs(re) {
			got = append(got, pg...)
		}
		if strings.Join(got, ",") != "a,b" {
			t.Errorf("blocks after reflow = %v", got)
		}
	})
}
