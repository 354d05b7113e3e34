package chi

import (
	"net/http"

	domcred "github.com/jorgekof/hostreamly-admin/internal/domain/credential"
	"github.com/jorgekof/hostreamly-admin/internal/domain/money"
)

// GetCredentialStatus handles GET /provider/credential.
func (s *Server) GetCredentialStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.credentials.Status(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, credentialStatusToResponse(st))
}

// SaveCredential handles PUT /provider/credential.
// A saved credential is tested once before the response is written.
func (s *Server) SaveCredential(w http.ResponseWriter, r *http.Request) {
	var req CredentialRequest
	if !s.decode(w, r, &req) {
		return
	}
	st, err := s.credentials.Save(r.Context(), req.SecretKey, req.WebhookSecret)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, credentialStatusToResponse(st))
}

// TestCredential handles POST /provider/credential/test.
// A rejected key is reported in the body with 200.
func (s *Server) TestCredential(w http.ResponseWriter, r *http.Request) {
	st, err := s.credentials.TestConnection(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, credentialStatusToResponse(st))
}

// DeleteCredential handles DELETE /provider/credential.
func (s *Server) DeleteCredential(w http.ResponseWriter, r *http.Request) {
	if err := s.credentials.Delete(r.Context()); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func credentialStatusToResponse(st domcred.Status) CredentialStatusResponse {
	return CredentialStatusResponse{
		ConfigState:         string(st.Config),
		TestState:           string(st.Test),
		Message:             st.Message,
		TestedAt:            timeOrNil(st.TestedAt),
		TestedAtDisplay:     money.FormatTime(st.TestedAt),
		MaskedSecretKey:     st.MaskedSecretKey,
		MaskedWebhookSecret: st.MaskedWebhookSecret,
		UpdatedAt:           timeOrNil(st.UpdatedAt),
	}
}
