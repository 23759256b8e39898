// Package common defines shared sentinel errors used across premrelay
// components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Transfer pipeline errors, one per failure class. Every branch of a
	// transfer that fails terminates in exactly one of these.
	ErrUnsupportedLink      = errors.New("unsupported link")
	ErrBrokerAPI            = errors.New("broker api error")
	ErrBrokerTransport      = errors.New("broker transport error")
	ErrBrokerRedirect       = errors.New("broker redirected")
	ErrStorage              = errors.New("storage error")
	ErrDeliveryTimeout      = errors.New("delivery timed out")
	ErrHostingNotConfigured = errors.New("hosted downloads not configured")

	// Messaging-edit classification. The transport maps platform errors
	// to these so callers never match on error text.
	ErrMessageNotModified = errors.New("message not modified")
	ErrMessageNotEditable = errors.New("message not editable")
)
