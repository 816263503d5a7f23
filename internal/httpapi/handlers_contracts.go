package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hospital-onboarding/internal/contracts"
	"hospital-onboarding/internal/models"
)

func (s *Server) handleGenerateContract(w http.ResponseWriter, r *http.Request) {
	var input contracts.GenerateInput
	if err := decodeValidated(r, "generateContract", &input); err != nil {
		writeError(w, s.logger, err)
		return
	}

	contract, err := s.contracts.Generate(r.Context(), input)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, contract)
}

func (s *Server) handleGetContract(w http.ResponseWriter, r *http.Request) {
	contract, err := s.contracts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, contract)
}

func (s *Server) handleSendContract(w http.ResponseWriter, r *http.Request) {
	contract, err := s.contracts.Send(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, contract)
}

// handleMarkContractViewed stamps the first time the hospital opens the
// contract from the signing link.
func (s *Server) handleMarkContractViewed(w http.ResponseWriter, r *http.Request) {
	if err := s.contracts.MarkViewed(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, s.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSignContract serves both signing routes; the route fixes the party
// and the service checks the signer is entitled to that side.
func (s *Server) handleSignContract(party models.SignatoryParty) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sig models.Signature
		if err := decodeValidated(r, "signContract", &sig); err != nil {
			writeError(w, s.logger, err)
			return
		}

		contract, err := s.contracts.Sign(r.Context(), chi.URLParam(r, "id"), party, sig)
		if err != nil {
			writeError(w, s.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, contract)
	}
}
