package resgroup

import "errors"

var (
	// ErrIndexOutOfRange is returned by [(*List).At] for an invalid index.
	ErrIndexOutOfRange = errors.New("resource group index is out of range")

	// ErrNotObject is returned when a resource group list document
	// is not a JSON object.
	ErrNotObject = errors.New("resource group list data is not a JSON object")

	// ErrEmpty is returned for a document that is an empty JSON object.
	ErrEmpty = errors.New("resource group list data is empty")

	// ErrUnsuccessful is returned for a service response
	// whose success field is not true.
	ErrUnsuccessful = errors.New("resource group list response was not successful")
)

var errNotObjectSyntax = errors.New("document does not start with '{'")
