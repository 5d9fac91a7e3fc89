package services

import "math"

// Pagination mirrors the envelope every list endpoint returns.
type Pagination struct {
	Total       int64 `json:"total"`
	Pages       int64 `json:"pages"`
	CurrentPage int   `json:"currentPage"`
}

func paginate(total int64, page, limit int) Pagination {
	return Pagination{
		Total:       total,
		Pages:       calculateTotalPages(total, limit),
		CurrentPage: page,
	}
}

func calculateTotalPages(total int64, limit int) int64 {
	if limit == 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}

// round2 is the rating/money rounding policy: two decimal places.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
