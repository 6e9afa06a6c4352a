package identitysvc

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/cavok/flightdesk/core"
)

var ErrBadSignature = errors.New("webhook signature mismatch")

type (
	veriffPerson struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}

	veriffSession struct {
		Verification struct {
			Person     veriffPerson `json:"person"`
			VendorData string       `json:"vendorData"`
		} `json:"verification"`
	}

	veriffSessionResponse struct {
		Status       string `json:"status"`
		Verification struct {
			ID  string `json:"id"`
			URL string `json:"url"`
		} `json:"verification"`
	}

	veriffDecision struct {
		Verification struct {
			ID     string `json:"id"`
			Status string `json:"status"`
			Reason string `json:"reason"`
		} `json:"verification"`
	}
)

type veriffService struct {
	client    *http.Client
	baseURL   string
	apiKey    string
	secretKey string
}

var _ core.IdentityService = (*veriffService)(nil)

func NewVeriffService(conf *core.Config) *veriffService {
	return &veriffService{
		client:    &http.Client{Timeout: 30 * time.Second},
		baseURL:   conf.Veriff.BaseURL,
		apiKey:    conf.Veriff.APIKey,
		secretKey: conf.Veriff.SecretKey,
	}
}

func (svc *veriffService) StartSession(ctx context.Context, personID, firstName, lastName string) (core.IdentitySession, error) {
	var session veriffSession
	session.Verification.Person = veriffPerson{FirstName: firstName, LastName: lastName}
	session.Verification.VendorData = personID

	payload, err := json.Marshal(session)
	if err != nil {
		return core.IdentitySession{}, errors.Wrap(err, "encoding session request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, svc.baseURL+"/v1/sessions", bytes.NewReader(payload))
	if err != nil {
		return core.IdentitySession{}, errors.Wrap(err, "creating session request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-AUTH-CLIENT", svc.apiKey)

	res, err := svc.client.Do(req)
	if err != nil {
		return core.IdentitySession{}, errors.Wrap(err, "calling identity API")
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return core.IdentitySession{}, errors.Errorf("identity API: status %d", res.StatusCode)
	}

	var sessionRes veriffSessionResponse
	if err := json.NewDecoder(res.Body).Decode(&sessionRes); err != nil {
		return core.IdentitySession{}, errors.Wrap(err, "decoding session response")
	}
	return core.IdentitySession{
		ID:  sessionRes.Verification.ID,
		URL: sessionRes.Verification.URL,
	}, nil
}

// DecodeWebhook checks the payload's HMAC-SHA256 signature against the shared
// secret before trusting the decision.
func (svc *veriffService) DecodeWebhook(signature string, payload []byte) (core.IdentityDecision, error) {
	mac := hmac.New(sha256.New, []byte(svc.secretKey))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return core.IdentityDecision{}, ErrBadSignature
	}

	var decision veriffDecision
	if err := json.Unmarshal(payload, &decision); err != nil {
		return core.IdentityDecision{}, errors.Wrap(err, "decoding decision payload")
	}
	return core.IdentityDecision{
		SessionID: decision.Verification.ID,
		Code:      decision.Verification.Status,
		Reason:    decision.Verification.Reason,
	}, nil
}
