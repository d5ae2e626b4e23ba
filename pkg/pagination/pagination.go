package pagination

// DefaultSize is the standard page size when one is not provided.
const DefaultSize = 20

// MaxSize caps how many rows any paged query can request.
const MaxSize = 100

// Params holds offset pagination inputs from controllers or services.
// Page is zero-based.
type Params struct {
	Page int
	Size int
}

// Normalize enforces the configured default and maximum page sizes.
func (p Params) Normalize() Params {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size <= 0 {
		p.Size = DefaultSize
	}
	if p.Size > MaxSize {
		p.Size = MaxSize
	}
	return p
}

// Offset returns the row offset for the normalized params.
func (p Params) Offset() int {
	n := p.Normalize()
	return n.Page * n.Size
}

// Page is a paged result envelope.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Last          bool  `json:"last"`
}

// NewPage assembles the envelope from one page of rows and the total row count.
func NewPage[T any](content []T, params Params, total int64) Page[T] {
	n := params.Normalize()
	if content == nil {
		content = []T{}
	}
	totalPages := int((total + int64(n.Size) - 1) / int64(n.Size))
	return Page[T]{
		Content:       content,
		Page:          n.Page,
		Size:          n.Size,
		TotalElements: total,
		TotalPages:    totalPages,
		Last:          n.Page >= totalPages-1,
	}
}
