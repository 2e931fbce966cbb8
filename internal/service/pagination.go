package service

type (
	PageParams struct {
		Page  int
		Limit int
	}

	Page[T any] struct {
		Count int64
		Page  int
		Limit int
		Items []T
	}
)

func (p PageParams) normalize(defaultLimit int) PageParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultLimit
	}
	return p
}

func (p PageParams) offset() int {
	return (p.Page - 1) * p.Limit
}

func (p Page[T]) HasNext() bool {
	return int64(p.Page*p.Limit) < p.Count
}

func (p Page[T]) HasPrevious() bool {
	return p.Page > 1
}
