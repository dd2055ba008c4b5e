// Package guard holds the transfer policy predicate consulted before every
// ownership change. Check is pure: it reads the content policy and the proposed
// change and returns an error without touching any store.
package guard

import (
	"keepsake/internal/registry/models"
	id "keepsake/pkg/domain"
	dErrors "keepsake/pkg/domain-errors"
)

// Transfer describes a proposed ownership change.
type Transfer struct {
	RecordID  id.RecordID
	From      id.Identity
	To        id.Identity
	Initiator models.Initiator
	// RecipientIsContract is resolved by the caller from the contract directory.
	// Only consulted when Policy.RestrictContractRecipients is set.
	RecipientIsContract bool
}

// Policy carries deployment-wide guard switches.
type Policy struct {
	// RestrictContractRecipients rejects transfers to contract-controlled
	// identities when the content is not admin-transferable.
	RestrictContractRecipients bool
}

// Check evaluates the transfer policy of content for t.
//
// A transfer with a null From is a mint and always passes. Otherwise:
//   - content must be transferable
//   - administrative transfers also require AdminTransferable
//   - with RestrictContractRecipients, a contract recipient requires AdminTransferable
func Check(content *models.Content, t Transfer, p Policy) error {
	if t.From.IsNil() {
		return nil
	}
	if content == nil {
		return dErrors.New(dErrors.CodeNotFound, "content not found for record "+t.RecordID.String())
	}
	if !content.Policy.Transferable {
		return dErrors.New(dErrors.CodeTransferNotPermitted, "content is not transferable")
	}
	if t.Initiator == models.InitiatorAdministrative && !content.Policy.AdminTransferable {
		return dErrors.New(dErrors.CodeTransferNotPermitted, "content does not allow administrative transfers")
	}
	if p.RestrictContractRecipients && t.RecipientIsContract && !content.Policy.AdminTransferable {
		return dErrors.New(dErrors.CodeTransferNotPermitted, "content does not allow transfers to contract recipients")
	}
	return nil
}
