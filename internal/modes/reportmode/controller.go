package reportmode

import (
	"net/http"

	"github.com/hashmap-kz/slackrep/internal/shared/x/httpx"
)

type Controller struct {
	Service Service
}

func NewController(s Service) *Controller {
	return &Controller{
		Service: s,
	}
}

func (c *Controller) StatusHandler(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, c.Service.Status())
}
