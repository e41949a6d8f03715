package domain

import "errors"

var (
	// ErrMissingCredential is returned when no vision API key is available for the call
	ErrMissingCredential = errors.New("API key not found. Please enter your OpenAI API key in settings")

	// ErrInvalidImage is returned when the image payload is empty
	ErrInvalidImage = errors.New("missing image data")

	// ErrVisionAPIFailure is returned when the vision completion request fails
	ErrVisionAPIFailure = errors.New("vision API request failed")

	// ErrNoProductsDetected is returned when a scan finished without any products
	ErrNoProductsDetected = errors.New("no products detected")

	// ErrScanNotFound is returned when a scan is unknown or its session expired
	ErrScanNotFound = errors.New("scan not found")

	// ErrSessionStoreUnavailable is returned when the scan store cannot be reached
	ErrSessionStoreUnavailable = errors.New("session store unavailable")

	// ErrUnsupportedFormat is returned when an export format is not csv or xlsx
	ErrUnsupportedFormat = errors.New("unsupported export format")
)
