package service

import (
	domainauth "github.com/placementhub/placement-engine/internal/domain/auth"
	apperrors "github.com/placementhub/placement-engine/internal/errors"
)

// gate admits active actors holding one of roles.
func gate(actor domainauth.Actor, roles ...domainauth.Role) error {
	if err := requireActive(actor); err != nil {
		return err
	}
	return domainauth.Authorize(actor, roles...)
}

// gateCap admits active actors whose role grants c.
func gateCap(actor domainauth.Actor, c domainauth.Capability) error {
	if err := requireActive(actor); err != nil {
		return err
	}
	return domainauth.AuthorizeCapability(actor, c)
}

func requireActive(actor domainauth.Actor) error {
	if actor.ID == "" {
		return apperrors.Unauthenticated("no resolved actor")
	}
	if !actor.Active {
		return apperrors.AccountInactive("account is awaiting verification")
	}
	return nil
}
