package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/fairwayfoods/fairway-app/services"
	"github.com/fairwayfoods/fairway-app/utils"
	"github.com/gin-gonic/gin"
)

type MarketingController struct {
	Mailer *services.Mailer
}

func NewMarketingController(mailer *services.Mailer) *MarketingController {
	return &MarketingController{Mailer: mailer}
}

// SendMarketing sends a one-off campaign email to a recipient list.
// Superuser only (enforced by the route group).
func (mc *MarketingController) SendMarketing(c *gin.Context) {
	var req struct {
		Emails  []string `json:"emails" binding:"required,min=1"`
		Subject string   `json:"subject" binding:"required"`
		Message string   `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	clean := make([]string, 0, len(req.Emails))
	for _, e := range req.Emails {
		e = strings.TrimSpace(e)
		if e != "" && strings.Contains(e, "@") {
			clean = append(clean, e)
		}
	}
	if len(clean) == 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("no valid email addresses provided"))
		return
	}

	sent := mc.Mailer.SendToMany(clean, req.Subject, req.Message)

	utils.RespondJSON(c, http.StatusOK,
		fmt.Sprintf("Sent %d of %d emails", sent, len(clean)), gin.H{
			"sent":  sent,
			"total": len(clean),
		})
}
