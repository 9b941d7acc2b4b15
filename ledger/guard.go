package ledger

import "github.com/Henryno111/deposit-stx/models"

// Guard answers "is the caller the configured owner". The owner is fixed when
// the guard is built.
type Guard struct {
	owner models.Principal
}

func NewGuard(owner models.Principal) Guard {
	return Guard{owner: owner}
}

func (g Guard) Owner() models.Principal {
	return g.owner
}

func (g Guard) RequireOwner(caller models.Principal) error {
	if g.owner == "" || caller != g.owner {
		return ErrOwnerOnly
	}
	return nil
}
