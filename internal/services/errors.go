package services

import "errors"

var (
	// ErrMessagingNotConfigured is returned when sending without Z-API
	// credentials or destination groups
	ErrMessagingNotConfigured = errors.New("messaging is not configured")

	// ErrUnknownExportFormat is returned for formats other than csv and xlsx
	ErrUnknownExportFormat = errors.New("unknown export format")
)
