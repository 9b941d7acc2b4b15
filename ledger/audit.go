package ledger

import (
	"context"
	"fmt"

	"github.com/Henryno111/deposit-stx/models"

	"github.com/google/uuid"
)

// AppendEvent records ev in the audit namespace as part of tx.
func AppendEvent(tx Tx, ev models.AuditEvent) error {
	_, err := RecordEvent(tx, ev)
	return err
}

// RecordEvent is AppendEvent returning the stored event with its id and height.
func RecordEvent(tx Tx, ev models.AuditEvent) (models.AuditEvent, error) {
	ev.ID = uuid.NewString()
	ev.Height = tx.Height()
	if err := tx.Put(NSAudit, fmt.Sprintf("%s-%s", IDKey(ev.Height), ev.ID), ev); err != nil {
		return models.AuditEvent{}, err
	}
	return ev, nil
}

// RecentEvents returns up to limit audit events, newest first.
func RecentEvents(ctx context.Context, store Store, limit int) ([]models.AuditEvent, error) {
	var events []models.AuditEvent
	err := store.View(ctx, func(tx Tx) error {
		keys, err := tx.Keys(NSAudit, "")
		if err != nil {
			return err
		}
		for i := len(keys) - 1; i >= 0 && (limit <= 0 || len(events) < limit); i-- {
			var ev models.AuditEvent
			if _, err := tx.Get(NSAudit, keys[i], &ev); err != nil {
				return err
			}
			events = append(events, ev)
		}
		return nil
	})
	return events, err
}
