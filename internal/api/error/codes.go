// Package error defines the error codes returned by the API and their
// HTTP status codes.
package error

import "net/http"

type ErrorCode string

const (
	UnknownError         ErrorCode = "unknown_error"
	InternalServerError  ErrorCode = "internal_server_error"
	BadRequest           ErrorCode = "bad_request"
	UnprocessibleEntity  ErrorCode = "unprocessible_entity"
	InvalidCredentials   ErrorCode = "invalid_credentials"
	InvalidAccessToken   ErrorCode = "invalid_access_token"
	ExpiredAccessToken   ErrorCode = "expired_access_token"
	InvalidIDToken       ErrorCode = "invalid_id_token"
	ProviderDisabled     ErrorCode = "provider_disabled"
	WeakPassword         ErrorCode = "weak_password"
	EmailConflict        ErrorCode = "email_conflict"
	RecipeNotFound       ErrorCode = "recipe_not_found"
	RecipeNotOwned       ErrorCode = "recipe_not_owned"
	UserNotFound         ErrorCode = "user_not_found"
	AlreadySaved         ErrorCode = "already_saved"
	OwnRecipe            ErrorCode = "own_recipe"
	InvalidRecipe        ErrorCode = "invalid_recipe"
	InvalidRating        ErrorCode = "invalid_rating"
	InvalidImage         ErrorCode = "invalid_image"
	ImageTooLarge        ErrorCode = "image_too_large"
	PartialDelete        ErrorCode = "partial_delete"
	TooManyRequests      ErrorCode = "too_many_requests"
	UnsupportedViewMode  ErrorCode = "unsupported_view_mode"
	InvalidQueryArgument ErrorCode = "invalid_query_argument"
)

var errorCodeToStatusCode = map[ErrorCode]int{
	UnknownError:         0, // No error code - unknown
	InternalServerError:  http.StatusInternalServerError,
	BadRequest:           http.StatusBadRequest,
	UnprocessibleEntity:  http.StatusUnprocessableEntity,
	InvalidCredentials:   http.StatusUnauthorized,
	InvalidAccessToken:   http.StatusUnauthorized,
	ExpiredAccessToken:   http.StatusUnauthorized,
	InvalidIDToken:       http.StatusUnauthorized,
	ProviderDisabled:     http.StatusNotImplemented,
	WeakPassword:         http.StatusUnprocessableEntity,
	EmailConflict:        http.StatusConflict,
	RecipeNotFound:       http.StatusNotFound,
	RecipeNotOwned:       http.StatusForbidden,
	UserNotFound:         http.StatusNotFound,
	AlreadySaved:         http.StatusConflict,
	OwnRecipe:            http.StatusForbidden,
	InvalidRecipe:        http.StatusUnprocessableEntity,
	InvalidRating:        http.StatusUnprocessableEntity,
	InvalidImage:         http.StatusUnsupportedMediaType,
	ImageTooLarge:        http.StatusRequestEntityTooLarge,
	PartialDelete:        http.StatusInternalServerError,
	TooManyRequests:      http.StatusTooManyRequests,
	UnsupportedViewMode:  http.StatusBadRequest,
	InvalidQueryArgument: http.StatusBadRequest,
}

func (ec ErrorCode) StatusCode() int {
	return errorCodeToStatusCode[ec]
}

func (ec ErrorCode) String() string {
	return string(ec)
}
