package errors

import "net/http"

var (
	ErrSiteNotFound = New(
		"SITE_NOT_FOUND",
		"Heritage site not found",
		http.StatusNotFound,
	)

	ErrInvalidSiteID = New(
		"INVALID_SITE_ID",
		"Invalid site ID",
		http.StatusBadRequest,
	)

	ErrInvalidCoordinates = New(
		"INVALID_COORDINATES",
		"Invalid coordinates provided",
		http.StatusBadRequest,
	)

	ErrEmptySearchQuery = New(
		"EMPTY_SEARCH_QUERY",
		"Search query must not be empty",
		http.StatusBadRequest,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrDatabaseError = New(
		"DATABASE_ERROR",
		"Database operation failed",
		http.StatusInternalServerError,
	)

	ErrCacheError = New(
		"CACHE_ERROR",
		"Cache operation failed",
		http.StatusInternalServerError,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
