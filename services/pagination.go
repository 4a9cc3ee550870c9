package services

import (
	"strconv"
	"strings"

	"listing-search/models"
)

const windowHalf = 2

// TotalPages is ceil(count/perPage) with a floor of 1.
func TotalPages(count, perPage int) int {
	if perPage <= 0 {
		perPage = models.DefaultItemsPerPage
	}
	pages := (count + perPage - 1) / perPage
	if pages < 1 {
		return 1
	}
	return pages
}

// Page returns the slice of filtered belonging to currentPage. Pages outside
// the available range yield an empty slice.
func Page(filtered []*models.Listing, currentPage, perPage int) []*models.Listing {
	if perPage <= 0 || currentPage < 1 {
		return []*models.Listing{}
	}
	start := (currentPage - 1) * perPage
	if start >= len(filtered) {
		return []*models.Listing{}
	}
	end := start + perPage
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end]
}

// NextPage advances one page if possible and reports whether it moved.
func NextPage(state *models.SearchState, totalPages int) bool {
	return GoToPage(state, totalPages, state.CurrentPage+1)
}

// PrevPage goes back one page if possible and reports whether it moved.
func PrevPage(state *models.SearchState, totalPages int) bool {
	return GoToPage(state, totalPages, state.CurrentPage-1)
}

// GoToPage jumps to page n when 1 <= n <= totalPages; otherwise the state
// is left unchanged.
func GoToPage(state *models.SearchState, totalPages, n int) bool {
	if n < 1 || n > totalPages {
		return false
	}
	state.CurrentPage = n
	return true
}

// GoToPageInput is GoToPage for raw user input. Anything that is not an
// integer is ignored.
func GoToPageInput(state *models.SearchState, totalPages int, raw string) bool {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return GoToPage(state, totalPages, n)
}

// VisibleWindow returns the half-open range [left, right) of page buttons to
// show around currentPage.
func VisibleWindow(currentPage, totalPages int) (left, right int) {
	left = currentPage - windowHalf
	right = currentPage + windowHalf + 1

	if left < 1 {
		return 1, min(2*windowHalf+1, totalPages)
	}
	if right > totalPages {
		return max(1, totalPages-2*windowHalf), totalPages
	}
	return left, right
}
