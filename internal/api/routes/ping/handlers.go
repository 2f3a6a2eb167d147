// Package ping contains handlers for pinging the server
package ping

import (
	"net/http"

	"github.com/matt-dz/recetario/internal/api/render"
)

type PingResponse struct {
	Status string `json:"status"`
}

// HandlePing godoc
//
//	@Summary	Ping endpoint.
//	@Tags		Ping
//	@Produce	json
//	@Success	200	{object}	PingResponse
//	@Router		/api/ping [get]
func HandlePing(w http.ResponseWriter, r *http.Request) {
	render.JSON(r.Context(), w, http.StatusOK, PingResponse{Status: "ok"})
}
