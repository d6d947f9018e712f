package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"couvreur_backend/internal/leads/domain"
	"couvreur_backend/internal/leads/management"
	"couvreur_backend/internal/leads/repository"
	"couvreur_backend/internal/leads/service"
	"couvreur_backend/internal/leads/transport"
	"couvreur_backend/internal/notification"
	"couvreur_backend/platform/apperr"
	"couvreur_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubPipeline struct {
	submitted   *transport.SubmitLeadRequest
	uploads     []service.PhotoUpload
	submitErr   error
	estimateErr error
	notifyRes   notification.Result
	notifyErr   error
}

var fixedLeadID = uuid.MustParse("3f2a8c1e-7b5d-4e9a-9c0f-1d2e3f4a5b6c")

func (p *stubPipeline) Submit(_ context.Context, req transport.SubmitLeadRequest, uploads []service.PhotoUpload) (service.SubmitResult, error) {
	p.submitted = &req
	p.uploads = uploads
	if p.submitErr != nil {
		return service.SubmitResult{}, p.submitErr
	}
	return service.SubmitResult{
		LeadID:     fixedLeadID,
		Estimate:   domain.Estimate{Low: 7097, Mid: 8349, High: 9601, Timeline: "1-2 jours", Confidence: 50},
		PhotoCount: len(uploads),
	}, nil
}

func (p *stubPipeline) Estimate(_ context.Context, id uuid.UUID) (domain.Estimate, *domain.PhotoAnalysis, error) {
	if p.estimateErr != nil {
		return domain.Estimate{}, nil, p.estimateErr
	}
	a := domain.FallbackAnalysis()
	return domain.Estimate{Low: 1, Mid: 2, High: 3, Timeline: "1-2 jours", Confidence: 30}, &a, nil
}

func (p *stubPipeline) Notify(context.Context, uuid.UUID, domain.Estimate) (notification.Result, error) {
	return p.notifyRes, p.notifyErr
}

func newPublicRouter(p Pipeline) *gin.Engine {
	r := gin.New()
	NewPublicHandler(p, validator.New()).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func postJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestSubmit_JSON(t *testing.T) {
	p := &stubPipeline{}
	r := newPublicRouter(p)

	w := postJSON(r, "/api/v1/leads", `{"fullName":"Marie Tremblay","phone":"514-872-0134","email":"marie@example.com","address":"12 rue des Érables","consent":true}`)

	require.Equal(t, http.StatusCreated, w.Code)
	var resp transport.SubmitLeadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, fixedLeadID.String(), resp.LeadID)
	assert.Equal(t, 8349, resp.Estimate.Mid)
	assert.Nil(t, resp.Analysis)
	assert.Equal(t, "Marie Tremblay", p.submitted.FullName)
}

func TestSubmit_Multipart(t *testing.T) {
	p := &stubPipeline{}
	r := newPublicRouter(p)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("payload", `{"fullName":"Marie Tremblay","consent":true}`))
	for _, name := range []string{"front.jpg", "back.jpg"} {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="photos"; filename="`+name+`"`)
		h.Set("Content-Type", "image/jpeg")
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, _ = part.Write([]byte{0xFF, 0xD8, 0xFF})
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/leads", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, p.uploads, 2)
	assert.Equal(t, "front.jpg", p.uploads[0].FileName)
	assert.Equal(t, "image/jpeg", p.uploads[0].ContentType)

	rc, err := p.uploads[1].Open()
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	assert.Equal(t, []byte{0xFF, 0xD8, 0xFF}, data)
}

func TestSubmit_ValidationError(t *testing.T) {
	p := &stubPipeline{submitErr: apperr.Validation("invalid submission").WithDetails(map[string]string{"consent": "required"})}
	r := newPublicRouter(p)

	w := postJSON(r, "/api/v1/leads", `{"fullName":"Marie"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"consent":"required"`)
}

func TestSubmit_MalformedJSON(t *testing.T) {
	w := postJSON(newPublicRouter(&stubPipeline{}), "/api/v1/leads", `{"fullName":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEstimate(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"missing lead id", `{}`, nil, http.StatusBadRequest},
		{"empty body", ``, nil, http.StatusBadRequest},
		{"not a uuid", `{"leadId":"abc"}`, nil, http.StatusNotFound},
		{"unknown lead", `{"leadId":"` + fixedLeadID.String() + `"}`, apperr.NotFound("lead not found"), http.StatusNotFound},
		{"persistence failure", `{"leadId":"` + fixedLeadID.String() + `"}`, apperr.Internal("failed to save estimate", io.ErrUnexpectedEOF), http.StatusInternalServerError},
		{"ok", `{"leadId":"` + fixedLeadID.String() + `"}`, nil, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postJSON(newPublicRouter(&stubPipeline{estimateErr: tc.err}), "/api/v1/estimate", tc.body)
			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusOK {
				var resp transport.EstimateResultResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.True(t, resp.Success)
				assert.Equal(t, fixedLeadID.String(), resp.LeadID)
				require.NotNil(t, resp.Analysis)
				assert.Equal(t, "unknown", resp.Analysis.RoofType)
			} else {
				assert.Contains(t, w.Body.String(), `"error"`)
			}
		})
	}
}

func TestNotify(t *testing.T) {
	body := `{"leadId":"` + fixedLeadID.String() + `","estimate":{"low":7097,"mid":8349,"high":9601,"timeline":"1-2 jours"}}`

	t.Run("skipped", func(t *testing.T) {
		p := &stubPipeline{notifyRes: notification.Result{EmailsSent: false, Reason: "RESEND_API_KEY not configured"}}
		w := postJSON(newPublicRouter(p), "/api/v1/notifications", body)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"emailsSent":false,"reason":"RESEND_API_KEY not configured"}`, w.Body.String())
	})

	t.Run("partial", func(t *testing.T) {
		p := &stubPipeline{notifyRes: notification.Result{
			EmailsSent: true,
			Customer:   &notification.Outcome{Sent: false, Error: "mailbox unavailable"},
			Operator:   &notification.Outcome{Sent: true},
		}}
		w := postJSON(newPublicRouter(p), "/api/v1/notifications", body)

		require.Equal(t, http.StatusOK, w.Code)
		var resp transport.NotificationResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.CustomerEmail.Sent)
		assert.Equal(t, "mailbox unavailable", resp.CustomerEmail.Error)
		assert.True(t, resp.OwnerEmail.Sent)
	})

	t.Run("not found", func(t *testing.T) {
		p := &stubPipeline{notifyErr: apperr.NotFound("lead not found")}
		w := postJSON(newPublicRouter(p), "/api/v1/notifications", body)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("missing lead id", func(t *testing.T) {
		w := postJSON(newPublicRouter(&stubPipeline{}), "/api/v1/notifications", `{"estimate":{"mid":1}}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

type adminRepo struct {
	lead domain.Lead
}

func (r *adminRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Lead, error) {
	if id != r.lead.ID {
		return domain.Lead{}, repository.ErrNotFound
	}
	return r.lead, nil
}

func (r *adminRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.Status) (domain.Status, error) {
	if id != r.lead.ID {
		return "", repository.ErrNotFound
	}
	prev := r.lead.Status
	r.lead.Status = status
	return prev, nil
}

func (r *adminRepo) List(context.Context, repository.ListParams) ([]domain.Lead, int, error) {
	return []domain.Lead{r.lead}, 1, nil
}

func (r *adminRepo) Stats(context.Context) (repository.Stats, error) {
	return repository.Stats{Total: 1, New: 1}, nil
}

func newAdminRouter(t *testing.T, repo *adminRepo) *gin.Engine {
	t.Helper()
	val := validator.New()
	require.NoError(t, RegisterValidations(val))
	r := gin.New()
	New(management.New(repo, nil, nil), val).RegisterRoutes(r.Group("/admin/leads"))
	return r
}

func TestAdminRoutes(t *testing.T) {
	repo := &adminRepo{lead: domain.Lead{ID: fixedLeadID, FullName: "Marie Tremblay", Status: domain.StatusNew}}
	r := newAdminRouter(t, repo)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/leads?status=new", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var list transport.LeadListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Total)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/leads?status=archived", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/leads/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/leads/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/admin/leads/"+fixedLeadID.String()+"/status", strings.NewReader(`{"status":"inspection"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.StatusInspection, repo.lead.Status)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPatch, "/admin/leads/"+fixedLeadID.String()+"/status", strings.NewReader(`{"status":"archived"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
