package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"srm-agent-portal/internal/service"
)

// FlowHandler serves the SRM booking flow endpoints.
type FlowHandler struct {
	flows service.BookingFlowService
}

func NewFlowHandler(flows service.BookingFlowService) *FlowHandler {
	return &FlowHandler{flows: flows}
}

// agentAndFlow pulls the authenticated agent and the {flowID} route variable.
func agentAndFlow(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	agentID, ok := AgentIDFromContext(r.Context())
	if !ok {
		writeProblem(w, http.StatusUnauthorized, "unauthenticated", "agent is not authenticated")
		return "", "", false
	}
	return agentID, mux.Vars(r)["flowID"], true
}

func (h *FlowHandler) StartFlow(w http.ResponseWriter, r *http.Request) {
	agentID, ok := AgentIDFromContext(r.Context())
	if !ok {
		writeProblem(w, http.StatusUnauthorized, "unauthenticated", "agent is not authenticated")
		return
	}
	state, err := h.flows.StartFlow(r.Context(), agentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, state)
}

func (h *FlowHandler) GetFlow(w http.ResponseWriter, r *http.Request) {
	agentID, flowID, ok := agentAndFlow(w, r)
	if !ok {
		return
	}
	state, err := h.flows.State(r.Context(), agentID, flowID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *FlowHandler) AbandonFlow(w http.ResponseWriter, r *http.Request) {
	agentID, flowID, ok := agentAndFlow(w, r)
	if !ok {
		return
	}
	if err := h.flows.Abandon(r.Context(), agentID, flowID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FlowHandler) SubmitCustomer(w http.ResponseWriter, r *http.Request) {
	agentID, flowID, ok := agentAndFlow(w, r)
	if !ok {
		return
	}
	var sub service.CustomerSubmission
	if err := decodeJSON(w, r, &sub); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.flows.SubmitCustomer(r.Context(), agentID, flowID, sub)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *FlowHandler) SubmitVehicle(w http.ResponseWriter, r *http.Request) {
	agentID, flowID, ok := agentAndFlow(w, r)
	if !ok {
		return
	}
	var sub service.VehicleSubmission
	if err := decodeJSON(w, r, &sub); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.flows.SubmitVehicle(r.Context(), agentID, flowID, sub)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// PreviewQuote answers 200 with available=false when the range cannot be priced.
func (h *FlowHandler) PreviewQuote(w http.ResponseWriter, r *http.Request) {
	agentID, flowID, ok := agentAndFlow(w, r)
	if !ok {
		return
	}
	var in service.PaymentInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	preview, err := h.flows.PreviewQuote(r.Context(), agentID, flowID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

func (h *FlowHandler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	agentID, flowID, ok := agentAndFlow(w, r)
	if !ok {
		return
	}
	var in service.PaymentInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	res, err := h.flows.SubmitPayment(r.Context(), agentID, flowID, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type searchResponse struct {
	Results any `json:"results"`
}

func (h *FlowHandler) SearchCustomers(w http.ResponseWriter, r *http.Request) {
	agentID, ok := AgentIDFromContext(r.Context())
	if !ok {
		writeProblem(w, http.StatusUnauthorized, "unauthenticated", "agent is not authenticated")
		return
	}
	results, err := h.flows.SearchCustomers(r.Context(), agentID, r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponse{Results: results})
}

func (h *FlowHandler) SearchVehicles(w http.ResponseWriter, r *http.Request) {
	agentID, ok := AgentIDFromContext(r.Context())
	if !ok {
		writeProblem(w, http.StatusUnauthorized, "unauthenticated", "agent is not authenticated")
		return
	}
	results, err := h.flows.SearchVehicles(r.Context(), agentID, r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponse{Results: results})
}
