// Package dto provides request and response types for the chapter timeline API.
// These types are used by huma to generate OpenAPI documentation and perform validation.
package dto

// ListResponse is a generic paginated list response.
type ListResponse[T any] struct {
	Items    []T  `json:"items" doc:"List of items"`
	Total    int  `json:"total" doc:"Total count across all pages"`
	Page     int  `json:"page" doc:"Current page number"`
	PageSize int  `json:"page_size" doc:"Items per page"`
	HasMore  bool `json:"has_more" doc:"Whether more pages exist"`
}

// PaginationParams defines common pagination query parameters.
type PaginationParams struct {
	Page     int `query:"page" default:"1" minimum:"1" doc:"Page number"`
	PageSize int `query:"page_size" default:"20" minimum:"1" maximum:"100" doc:"Items per page"`
}

// Paginate returns the page of items described by p, and whether more remain.
func Paginate[T any](items []T, p PaginationParams) ListResponse[T] {
	page, size := max(p.Page, 1), max(p.PageSize, 1)
	start := min((page-1)*size, len(items))
	end := min(start+size, len(items))
	return ListResponse[T]{
		Items:    items[start:end],
		Total:    len(items),
		Page:     page,
		PageSize: size,
		HasMore:  end < len(items),
	}
}

// VideoIDParam is a path parameter for video IDs.
type VideoIDParam struct {
	ID string `path:"id" minLength:"1" maxLength:"128" doc:"Video identifier"`
}

// MessageResponse is a simple success message response.
type MessageResponse struct {
	Message string `json:"message" doc:"Success message"`
}

// MessageOutput wraps a message response for huma.
type MessageOutput struct {
	Body MessageResponse
}
