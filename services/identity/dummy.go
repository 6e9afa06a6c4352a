package identitysvc

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/cavok/flightdesk/core"
)

// dummyService approves everyone; used in dev mode and tests.
type dummyService struct{}

var _ core.IdentityService = (*dummyService)(nil)

func NewDummyService() *dummyService {
	return &dummyService{}
}

func (svc *dummyService) StartSession(ctx context.Context, personID, firstName, lastName string) (core.IdentitySession, error) {
	id := uuid.New().String()
	return core.IdentitySession{
		ID:  id,
		URL: "https://verify.invalid/sessions/" + id,
	}, nil
}

func (svc *dummyService) DecodeWebhook(signature string, payload []byte) (core.IdentityDecision, error) {
	var decision core.IdentityDecision
	if err := json.Unmarshal(payload, &decision); err != nil {
		return core.IdentityDecision{}, err
	}
	if decision.Code == "" {
		decision.Code = core.IdentityDecisionApproved
	}
	return decision, nil
}
