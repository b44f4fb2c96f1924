package errors

import "github.com/pkg/errors"

var (
	// common errors
	ErrTenantMissing = errors.New("tenant is missing")

	// client configuration errors
	ErrClientNotFound       = errors.New("client not found")
	ErrClientConfigInvalid  = errors.New("client configuration is invalid")
	ErrRoutingRulesMissing  = errors.New("routing rules are missing")
	ErrRoutingRulesInvalid  = errors.New("routing rules are invalid")
	ErrNoRoutingDestination = errors.New("no routing destination configured")

	// domain mapping errors
	ErrDomainConflict = errors.New("domain already registered to another client")
)
