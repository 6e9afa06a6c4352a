package core

import "context"

// Identity verification decision codes, as reported by the provider.
const (
	IdentityDecisionApproved = "approved"
	IdentityDecisionDeclined = "declined"
	IdentityDecisionResubmit = "resubmission_requested"
	IdentityDecisionExpired  = "abandoned"
)

type (
	// IdentitySession is a started verification session the user must complete
	// in the provider's hosted flow.
	IdentitySession struct {
		ID  string
		URL string
	}

	// IdentityDecision is the provider's verdict on a session.
	IdentityDecision struct {
		SessionID string
		Code      string
		Reason    string
	}

	// IdentityService is any service that can verify a person's identity
	// documents (Veriff, Stripe Identity, ...).
	IdentityService interface {
		// StartSession creates a verification session for the given person.
		StartSession(ctx context.Context, personID, firstName, lastName string) (IdentitySession, error)
		// DecodeWebhook authenticates and decodes a decision webhook payload.
		DecodeWebhook(signature string, payload []byte) (IdentityDecision, error)
	}
)
