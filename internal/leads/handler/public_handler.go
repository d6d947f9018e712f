package handler

import (
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"couvreur_backend/internal/leads/domain"
	"couvreur_backend/internal/leads/service"
	"couvreur_backend/internal/leads/transport"
	"couvreur_backend/internal/notification"
	"couvreur_backend/platform/httpkit"
	"couvreur_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Pipeline is the estimate orchestrator as seen by the public endpoints.
type Pipeline interface {
	Submit(ctx context.Context, req transport.SubmitLeadRequest, uploads []service.PhotoUpload) (service.SubmitResult, error)
	Estimate(ctx context.Context, leadID uuid.UUID) (domain.Estimate, *domain.PhotoAnalysis, error)
	Notify(ctx context.Context, leadID uuid.UUID, est domain.Estimate) (notification.Result, error)
}

// PublicHandler serves the wizard endpoints. No authentication.
type PublicHandler struct {
	pipeline Pipeline
	val      *validator.Validator
}

const (
	publicMsgInvalidRequest = "invalid request"
	publicMsgLeadIDRequired = "leadId is required"
	publicMsgLeadNotFound   = "lead not found"
	publicMsgValidation     = "validation failed"

	formFieldPayload = "payload"
	formFieldPhotos  = "photos"
)

func NewPublicHandler(pipeline Pipeline, val *validator.Validator) *PublicHandler {
	return &PublicHandler{pipeline: pipeline, val: val}
}

// RegisterRoutes mounts the wizard endpoints. submitMiddleware runs before the
// submission handler only.
func (h *PublicHandler) RegisterRoutes(rg *gin.RouterGroup, submitMiddleware ...gin.HandlerFunc) {
	rg.POST("/leads", append(submitMiddleware, h.Submit)...)
	rg.POST("/estimate", h.Estimate)
	rg.POST("/notifications", h.Notify)
}

// Submit accepts JSON or multipart/form-data with a JSON "payload" field and
// "photos" files.
func (h *PublicHandler) Submit(c *gin.Context) {
	var (
		req     transport.SubmitLeadRequest
		uploads []service.PhotoUpload
	)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		form, err := c.MultipartForm()
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, publicMsgInvalidRequest, nil)
			return
		}
		payload := firstValue(form.Value[formFieldPayload])
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, publicMsgInvalidRequest, nil)
			return
		}
		uploads = toUploads(form.File[formFieldPhotos])
	} else if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, publicMsgInvalidRequest, nil)
		return
	}

	res, err := h.pipeline.Submit(c.Request.Context(), req, uploads)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, transport.SubmitLeadResponse{
		Success:  true,
		LeadID:   res.LeadID.String(),
		Estimate: transport.ToEstimateResponse(res.Estimate),
		Analysis: res.Analysis,
		Photos:   res.PhotoCount,
	})
}

func (h *PublicHandler) Estimate(c *gin.Context) {
	var req transport.EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		httpkit.Error(c, http.StatusBadRequest, publicMsgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, publicMsgLeadIDRequired, nil)
		return
	}
	leadID, err := uuid.Parse(req.LeadID)
	if err != nil {
		httpkit.Error(c, http.StatusNotFound, publicMsgLeadNotFound, nil)
		return
	}

	est, analysis, err := h.pipeline.Estimate(c.Request.Context(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.EstimateResultResponse{
		Success:  true,
		Estimate: transport.ToEstimateResponse(est),
		Analysis: analysis,
		LeadID:   leadID.String(),
	})
}

func (h *PublicHandler) Notify(c *gin.Context) {
	var req transport.NotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		httpkit.Error(c, http.StatusBadRequest, publicMsgInvalidRequest, nil)
		return
	}
	if strings.TrimSpace(req.LeadID) == "" {
		httpkit.Error(c, http.StatusBadRequest, publicMsgLeadIDRequired, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, publicMsgValidation, validator.FieldErrors(err))
		return
	}
	leadID, err := uuid.Parse(req.LeadID)
	if err != nil {
		httpkit.Error(c, http.StatusNotFound, publicMsgLeadNotFound, nil)
		return
	}

	res, err := h.pipeline.Notify(c.Request.Context(), leadID, req.Estimate.ToDomain())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toNotificationResponse(res))
}

func toNotificationResponse(res notification.Result) transport.NotificationResponse {
	resp := transport.NotificationResponse{
		Success:    true,
		EmailsSent: res.EmailsSent,
		Reason:     res.Reason,
	}
	if res.Customer != nil {
		resp.CustomerEmail = &transport.EmailOutcome{Sent: res.Customer.Sent, Error: res.Customer.Error}
	}
	if res.Operator != nil {
		resp.OwnerEmail = &transport.EmailOutcome{Sent: res.Operator.Sent, Error: res.Operator.Error}
	}
	return resp
}

func toUploads(files []*multipart.FileHeader) []service.PhotoUpload {
	uploads := make([]service.PhotoUpload, 0, len(files))
	for _, fh := range files {
		uploads = append(uploads, service.PhotoUpload{
			FileName:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Open: func() (io.ReadCloser, error) {
				return fh.Open()
			},
		})
	}
	return uploads
}

func firstValue(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
