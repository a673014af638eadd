package pagination

const (
	// DefaultSize is the standard page size when one is not provided.
	DefaultSize = 20
	// MaxSize caps how many rows any page query can request.
	MaxSize = 100
)

// Params holds page/size pagination inputs from controllers or services.
type Params struct {
	Page int
	Size int
}

// Normalize clamps the parameters to sane bounds. Pages are 1-based.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Size <= 0 {
		p.Size = DefaultSize
	}
	if p.Size > MaxSize {
		p.Size = MaxSize
	}
	return p
}

// Offset returns the row offset for the normalized parameters.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Size
}

// Page wraps one page of results with the total row count.
type Page[T any] struct {
	Records []T   `json:"records"`
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	Size    int   `json:"size"`
}

// NewPage assembles a page response from the normalized request parameters.
func NewPage[T any](records []T, total int64, params Params) Page[T] {
	n := params.Normalize()
	if records == nil {
		records = []T{}
	}
	return Page[T]{
		Records: records,
		Total:   total,
		Page:    n.Page,
		Size:    n.Size,
	}
}
