package admin

import (
	"errors"

	"github.com/cellar-next/internal/http/response"
	"github.com/cellar-next/internal/service"

	"github.com/gin-gonic/gin"
)

// SendTestEmailRequest 测试邮件请求
type SendTestEmailRequest struct {
	To      string `json:"to" binding:"required"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// SendTestEmail 发送测试邮件以检查 SMTP 配置
func (h *Handler) SendTestEmail(c *gin.Context) {
	var req SendTestEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	if err := h.EmailService.SendCustomEmail(req.To, req.Subject, req.Body); err != nil {
		switch {
		case errors.Is(err, service.ErrEmailServiceDisabled),
			errors.Is(err, service.ErrEmailServiceNotConfigured):
			respondError(c, response.CodeBadRequest, "error.email_not_configured", nil)
		case errors.Is(err, service.ErrInvalidEmail):
			respondError(c, response.CodeBadRequest, "error.email_invalid", nil)
		case errors.Is(err, service.ErrEmailRecipientRejected):
			respondError(c, response.CodeBadRequest, "error.email_recipient", nil)
		default:
			respondError(c, response.CodeInternal, "error.email_send_failed", err)
		}
		return
	}
	response.SuccessWithMsg(c, "Test email sent")
}
