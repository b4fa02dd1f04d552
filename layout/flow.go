package layout

// Flowable 是分页器消费的流式单元：文本块、垂直间隔或分页符。
type Flowable interface {
	flowable()
}

// Spacer 在两个块之间加入固定高度的垂直间隔（mm）。
type Spacer struct {
	Height float64
}

// PageBreak 强制另起一页。
type PageBreak struct{}

func (Spacer) flowable()    {}
func (PageBreak) flowable() {}

// Filter 清理流式序列：去掉无内容的块、序列开头的间隔与分页符、
// 相邻重复的分页符，以及其后再无内容的尾部分页符和间隔。
func Filter(flow []Flowable) []Flowable {
	contentAfter := make([]bool, len(flow)+1)
	for i := len(flow) - 1; i >= 0; i-- {
		contentAfter[i] = contentAfter[i+1]
		if b, ok := flow[i].(*Block); ok && b.HasContent() {
			contentAfter[i] = true
		}
	}
	var out []Flowable
	for i, f := range flow {
		switch fl := f.(type) {
		case *Block:
			if fl.HasContent() {
				out = append(out, fl)
			}
		case Spacer:
			if len(out) == 0 || !contentAfter[i+1] {
				continue
			}
			out = append(out, fl)
		case PageBreak:
			if len(out) == 0 || !contentAfter[i+1] {
				continue
			}
			if _, dup := out[len(out)-1].(PageBreak); dup {
				continue
			}
			out = append(out, fl)
		}
	}
	return out
}

// Paginate 将流式序列排入页面。块先在当前页剩余高度内折行，
// 放不下的部分由 Split 打包成整页块依次另起新页。
// 空输入产出单张空页，保证结果至少有一页。
func Paginate(flow []Flowable, opts PageOptions, meta DocumentMeta, m Measurer) *Result {
	res := &Result{Meta: meta}
	cur := Page{Width: opts.Width, Height: opts.Height, Margin: opts.Margin}
	cursorY := opts.Margin.Top
	bottom := opts.Height - opts.Margin.Bottom

	newPage := func() {
		res.Pages = append(res.Pages, cur)
		cur = Page{Width: opts.Width, Height: opts.Height, Margin: opts.Margin}
		cursorY = opts.Margin.Top
	}
	placeBlock := func(b *Block) {
		if len(b.Lines()) == 0 {
			return
		}
		cur.Blocks = append(cur.Blocks, PlacedBlock{
			X:          opts.Margin.Left,
			Y:          cursorY,
			Width:      b.Width(),
			Height:     b.Height(),
			Style:      b.Style,
			Lines:      b.Lines(),
			LineHeight: b.Style.LineHeight(),
		})
		cursorY += b.Height()
	}

	for _, f := range flow {
		switch fl := f.(type) {
		case PageBreak:
			if len(cur.Blocks) > 0 {
				newPage()
			}
		case Spacer:
			if len(cur.Blocks) == 0 {
				continue
			}
			cursorY += fl.Height
			if cursorY >= bottom {
				newPage()
			}
		case *Block:
			if len(cur.Blocks) > 0 && fl.Style.SpaceBefore > 0 {
				cursorY += fl.Style.SpaceBefore
			}
			if bottom-cursorY < fl.Style.LineHeight() && len(cur.Blocks) > 0 {
				newPage()
			}
			conts := fl.Split(opts.ContentWidth(), bottom-cursorY, opts.ContentHeight(), m)
			placeBlock(fl)
			for _, c := range conts {
				newPage()
				placeBlock(c)
			}
			if fl.Style.SpaceAfter > 0 {
				cursorY += fl.Style.SpaceAfter
			}
		}
	}
	res.Pages = append(res.Pages, cur)
	return res
}
