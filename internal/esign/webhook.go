package esign

import (
	"context"
	"fmt"
	"time"
)

// Provider webhook event types. The set is closed but extensible:
// unrecognized types are logged and acknowledged without a state change.
const (
	EventDocumentSigned    = "document_signed"
	EventDocumentCompleted = "document_completed"
	EventDocumentDeclined  = "document_declined"
	EventDocumentExpired   = "document_expired"
)

// WebhookEvent is the provider's webhook payload. Field names are
// provider-defined and treated as a best-effort, possibly-incomplete schema;
// missing fields degrade gracefully.
type WebhookEvent struct {
	Event struct {
		Type string `json:"type"`
	} `json:"event"`
	TemplateID    string            `json:"template_id"`
	DocumentID    string            `json:"document_id"`
	Signer        *WebhookSigner    `json:"signer,omitempty"`
	UpdatedEmails map[string]string `json:"updated_emails,omitempty"`
	Role3Email    string            `json:"role3_email,omitempty"`
}

// WebhookSigner identifies the role an event relates to.
type WebhookSigner struct {
	Role string `json:"role"`
}

// CorrelationID returns the identifier used to look up local state, preferring
// the template id. Empty means the event carries nothing correlatable.
func (e WebhookEvent) CorrelationID() string {
	if e.TemplateID != "" {
		return e.TemplateID
	}
	return e.DocumentID
}

// role3Update returns the updated third-role email carried by the event, if
// any. Both observed payload shapes are checked: a keyed updated_emails map
// and a flat role3_email field.
func (e WebhookEvent) role3Update() string {
	if v := e.UpdatedEmails["Role3"]; v != "" {
		return v
	}
	return e.Role3Email
}

func (e WebhookEvent) signerRole() string {
	if e.Signer == nil {
		return ""
	}
	return e.Signer.Role
}

// Ack is the reconciliation acknowledgement. A webhook endpoint must not
// signal failure to the provider for an event it genuinely received, so
// processing errors surface as Failed/Cause rather than transport errors.
type Ack struct {
	Received bool   `json:"received"`
	Message  string `json:"message,omitempty"`
	Failed   bool   `json:"failed,omitempty"`
	Cause    string `json:"cause,omitempty"`
}

// RecipientUpdater is the extension seam for propagating an updated signer
// email to the provider before the workflow reaches the final role. The
// provider API for this is not modeled here; a nil updater leaves the gap
// logged rather than silently dropped.
type RecipientUpdater interface {
	UpdateRecipient(ctx context.Context, templateID, role, email string) error
}

func (e *engine) Reconcile(ctx context.Context, event WebhookEvent) Ack {
	id := event.CorrelationID()
	if id == "" {
		e.logger.Warn("webhook without template_id or document_id ignored")
		return Ack{Received: true, Message: "ignored: missing identifier"}
	}

	found, ok := e.registry.FindByProviderID(ctx, id)
	if !ok {
		// retries, duplicates, and foreign events are expected from a
		// webhook source; an unknown identifier is not an error
		e.logger.Warn("webhook for unknown identifier ignored", "identifier", id)
		return Ack{Received: true, Message: "ignored: unknown document or template"}
	}

	unlock := e.locks.acquire(found.DocumentID)
	defer unlock()

	doc, err := e.registry.Get(ctx, found.DocumentID)
	if err != nil {
		return Ack{Received: true, Failed: true, Cause: err.Error()}
	}

	if err := e.applyEvent(ctx, &doc, event); err != nil {
		e.logger.Error("webhook processing failed", "document_id", doc.DocumentID, "error", err)
		return Ack{Received: true, Failed: true, Cause: err.Error()}
	}

	if err := e.registry.Save(ctx, doc); err != nil {
		return Ack{Received: true, Failed: true, Cause: err.Error()}
	}

	return Ack{Received: true, Message: "processed"}
}

func (e *engine) applyEvent(ctx context.Context, doc *DocumentState, event WebhookEvent) error {
	eventType := event.Event.Type

	switch eventType {
	case EventDocumentSigned:
		if event.signerRole() != RoleSecond {
			e.logger.Info(
				"signed event for non-gating role",
				"document_id", doc.DocumentID,
				"role", event.signerRole(),
			)
			return nil
		}
		return e.applyRole2Signed(ctx, doc, event)

	case EventDocumentCompleted:
		e.transition(doc, StatusCompleted)

	case EventDocumentDeclined, EventDocumentExpired:
		e.transition(doc, StatusFailed)
		e.logger.Warn("signing process failed", "document_id", doc.DocumentID, "event", eventType)

	default:
		e.logger.Info(
			"unhandled webhook event type",
			"document_id", doc.DocumentID,
			"event", eventType,
		)
	}

	return nil
}

func (e *engine) applyRole2Signed(ctx context.Context, doc *DocumentState, event WebhookEvent) error {
	e.transition(doc, StatusPartiallySigned)

	updated := event.role3Update()
	if updated == "" || updated == doc.PendingRoleEmail {
		e.logger.Warn(
			"no Role 3 email update in webhook; workflow may stall if the address was not pre-set",
			"document_id", doc.DocumentID,
		)
		return nil
	}

	doc.PendingRoleEmail = updated

	if e.recipients == nil {
		e.logger.Warn(
			"recipient update not propagated: no provider update-recipient capability wired",
			"document_id", doc.DocumentID,
			"template_id", doc.ProviderTemplateID,
			"email", updated,
		)
		return nil
	}

	if err := e.recipients.UpdateRecipient(ctx, doc.ProviderTemplateID, RoleThird, updated); err != nil {
		return fmt.Errorf("update %s recipient: %w", RoleThird, err)
	}

	return nil
}

// transition applies a status change when legal; illegal edges (stale or
// duplicate events against terminal state) are logged and skipped so status
// stays monotonic.
func (e *engine) transition(doc *DocumentState, to Status) {
	if doc.Status == to {
		return
	}

	if !doc.Status.CanTransition(to) {
		e.logger.Warn(
			"illegal status transition ignored",
			"document_id", doc.DocumentID,
			"from", doc.Status,
			"to", to,
		)
		return
	}

	doc.Status = to
	doc.UpdatedAt = time.Now().UTC()
	e.logger.Info("status changed", "document_id", doc.DocumentID, "status", to)
}
