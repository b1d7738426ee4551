package routers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"regdesk/config"
	"regdesk/database"
	"regdesk/metrics"
	"regdesk/models"
	"regdesk/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 64)...)

type testEnv struct {
	app   *fiber.App
	store *database.Store
	root  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := database.OpenGorm("sqlite", ":memory:", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	root := t.TempDir()
	cfg := &config.Config{
		UploadDir:     root,
		MaxUploadSize: 5 << 20,
		DBTimeout:     5 * time.Second,
		AllowOrigins:  "*",
	}
	m := metrics.New()

	app := NewApp(Deps{
		Config:  cfg,
		Log:     zap.NewNop(),
		Metrics: m,
		Store:   store,
		Intake:  utils.NewFileIntake(root, cfg.MaxUploadSize, m),
	})
	return &testEnv{app: app, store: store, root: root}
}

type upload struct {
	field       string
	filename    string
	contentType string
	content     []byte
}

func pngUpload(field string) upload {
	return upload{field: field, filename: field + ".png", contentType: "image/png", content: pngBytes}
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, files ...upload) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for key, value := range fields {
		require.NoError(t, w.WriteField(key, value))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, f.field, f.filename))
		h.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func (e *testEnv) do(t *testing.T, req *http.Request) (int, map[string]interface{}) {
	t.Helper()

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func (e *testEnv) countFiles(t *testing.T) int {
	t.Helper()
	n := 0
	_ = filepath.Walk(e.root, func(_ string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			n++
		}
		return nil
	})
	return n
}

func tradingFields(i int) map[string]string {
	return map[string]string{
		"firstName":    "Asha",
		"lastName":     "Verma",
		"email":        fmt.Sprintf("Asha%d@Example.com", i),
		"phone":        "9876543210",
		"dateOfBirth":  "1990-01-02",
		"address":      "12 MG Road",
		"city":         "Pune",
		"state":        "Maharashtra",
		"pincode":      "411001",
		"aadharNumber": fmt.Sprintf("1234567890%02d", i),
		"panNumber":    "abcde1234f",
		"agreeTerms":   "true",
	}
}

func data(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	d, ok := body["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %v", body)
	return d
}

func (e *testEnv) createTrading(t *testing.T, i int) string {
	t.Helper()
	req := multipartRequest(t, "POST", "/api/trading-registration", tradingFields(i),
		pngUpload(utils.AadharField), pngUpload(utils.SignatureField))
	status, body := e.do(t, req)
	require.Equal(t, fiber.StatusCreated, status, "%v", body)
	return data(t, body)["id"].(string)
}

func TestTradingCreateAndGet(t *testing.T) {
	e := newTestEnv(t)

	req := multipartRequest(t, "POST", "/api/trading-registration", tradingFields(1),
		pngUpload(utils.AadharField), pngUpload(utils.PanField), pngUpload(utils.SignatureField))
	status, body := e.do(t, req)
	require.Equal(t, fiber.StatusCreated, status, "%v", body)
	assert.Equal(t, true, body["success"])

	created := data(t, body)
	id := created["id"].(string)
	assert.Equal(t, "asha1@example.com", created["email"])
	assert.Equal(t, "pending", created["registrationStatus"])
	assert.NotContains(t, created, "aadharDocument")

	status, body = e.do(t, httptest.NewRequest("GET", "/api/trading-registration/"+id, nil))
	require.Equal(t, fiber.StatusOK, status)
	reg := data(t, body)
	assert.Equal(t, "Asha", reg["firstName"])
	assert.Equal(t, "ABCDE1234F", reg["panNumber"])
	assert.Equal(t, "123456789001", reg["aadharNumber"])
	assert.Equal(t, false, reg["isFullyVerified"])

	aadhar := reg["aadharDocument"].(map[string]interface{})
	assert.Equal(t, "aadharFile.png", aadhar["originalName"])
	assert.Equal(t, "image/png", aadhar["mimetype"])
	url := aadhar["url"].(string)
	assert.True(t, strings.HasPrefix(url, "/uploads/aadhar/aadharFile-"), url)
	assert.Contains(t, reg, "panDocument")
	assert.Equal(t, 3, e.countFiles(t))

	resp, err := e.app.Test(httptest.NewRequest("GET", url, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	served, _ := io.ReadAll(resp.Body)
	assert.Equal(t, pngBytes, served)

	// Repeated reads return the same document
	first, err := e.app.Test(httptest.NewRequest("GET", "/api/trading-registration/"+id, nil), -1)
	require.NoError(t, err)
	second, err := e.app.Test(httptest.NewRequest("GET", "/api/trading-registration/"+id, nil), -1)
	require.NoError(t, err)
	firstBody, _ := io.ReadAll(first.Body)
	secondBody, _ := io.ReadAll(second.Body)
	assert.JSONEq(t, string(firstBody), string(secondBody))
}

func TestTradingCreateMissingFieldAndFile(t *testing.T) {
	e := newTestEnv(t)

	fields := tradingFields(1)
	delete(fields, "firstName")
	fields["phone"] = "12345"

	status, body := e.do(t, multipartRequest(t, "POST", "/api/trading-registration", fields, pngUpload(utils.AadharField)))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])

	errs := body["errors"].(map[string]interface{})
	assert.Contains(t, errs, "firstName")
	assert.Contains(t, errs, "phone")
	assert.Equal(t, "signatureFile is required", errs["signatureFile"])
	assert.Zero(t, e.countFiles(t))
}

func TestTradingCreateRejectsBadFiles(t *testing.T) {
	e := newTestEnv(t)

	textFile := upload{field: utils.AadharField, filename: "aadhar.txt", contentType: "text/plain", content: []byte("hello")}
	status, body := e.do(t, multipartRequest(t, "POST", "/api/trading-registration", tradingFields(1),
		textFile, pngUpload(utils.SignatureField)))
	assert.Equal(t, fiber.StatusBadRequest, status)
	errs := body["errors"].(map[string]interface{})
	assert.Contains(t, errs["file"], utils.AadharField)

	// A valid first file is removed when a later one is rejected
	pdfSignature := upload{field: utils.SignatureField, filename: "sign.pdf", contentType: "application/pdf", content: []byte("%PDF-1.4")}
	status, body = e.do(t, multipartRequest(t, "POST", "/api/trading-registration", tradingFields(1),
		pngUpload(utils.AadharField), pdfSignature))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body["errors"].(map[string]interface{})["file"], utils.SignatureField)

	big := upload{field: utils.AadharField, filename: "big.png", contentType: "image/png",
		content: append(append([]byte{}, pngBytes...), bytes.Repeat([]byte{1}, 5<<20)...)}
	status, body = e.do(t, multipartRequest(t, "POST", "/api/trading-registration", tradingFields(1),
		big, pngUpload(utils.SignatureField)))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body["errors"].(map[string]interface{})["file"], "5MB")

	assert.Zero(t, e.countFiles(t))
	_, total, err := e.store.TradingRegistrations.List(context.Background(), database.ListQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestOversizedBodyIsFileRejection(t *testing.T) {
	e := newTestEnv(t)
	// The body limit is enforced while reading the request, which reports
	// this error to the app's error handler.
	e.app.Post("/oversized", func(c *fiber.Ctx) error {
		return fiber.ErrRequestEntityTooLarge
	})

	status, body := e.do(t, httptest.NewRequest("POST", "/oversized", nil))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])
	errs, ok := body["errors"].(map[string]interface{})
	require.True(t, ok, "%v", body)
	assert.Contains(t, errs["file"], "5MB")
	assert.Zero(t, e.countFiles(t))
}

func TestTradingDuplicateEmail(t *testing.T) {
	e := newTestEnv(t)
	e.createTrading(t, 1)

	fields := tradingFields(2)
	fields["email"] = "asha1@example.com"
	status, body := e.do(t, multipartRequest(t, "POST", "/api/trading-registration", fields,
		pngUpload(utils.AadharField), pngUpload(utils.SignatureField)))

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, map[string]interface{}{"email": "email already exists!"}, body["errors"])
	assert.Equal(t, 2, e.countFiles(t))
}

func TestTradingGetUnknownOrMalformedID(t *testing.T) {
	e := newTestEnv(t)

	for _, id := range []string{"not-a-valid-id", "0d3c7a4e-5b7f-4c3e-9d4c-0a6b5c2f9e11"} {
		status, body := e.do(t, httptest.NewRequest("GET", "/api/trading-registration/"+id, nil))
		assert.Equal(t, fiber.StatusNotFound, status)
		assert.Equal(t, false, body["success"])

		status, _ = e.do(t, httptest.NewRequest("DELETE", "/api/trading-registration/"+id, nil))
		assert.Equal(t, fiber.StatusNotFound, status)
	}
}

func TestTradingStatusUpdate(t *testing.T) {
	e := newTestEnv(t)
	id := e.createTrading(t, 1)
	target := "/api/trading-registration/" + id + "/status"

	status, body := e.do(t, jsonRequest("PUT", target, `{"status":"approved","adminNotes":"KYC complete"}`))
	require.Equal(t, fiber.StatusOK, status, "%v", body)
	assert.Equal(t, "approved", data(t, body)["registrationStatus"])

	status, body = e.do(t, jsonRequest("PUT", target, `{"status":"archived"}`))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body["errors"], "status")

	_, body = e.do(t, httptest.NewRequest("GET", "/api/trading-registration/"+id, nil))
	reg := data(t, body)
	assert.Equal(t, "approved", reg["registrationStatus"])
	assert.Equal(t, "KYC complete", reg["adminNotes"])

	status, _ = e.do(t, jsonRequest("PUT", "/api/trading-registration/missing/status", `{"status":"approved"}`))
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestTradingVerificationIsolation(t *testing.T) {
	e := newTestEnv(t)
	id := e.createTrading(t, 1)
	target := "/api/trading-registration/" + id + "/verify"

	status, body := e.do(t, jsonRequest("PUT", target, `{"verificationType":"emailVerified","status":true}`))
	require.Equal(t, fiber.StatusOK, status, "%v", body)
	result := data(t, body)
	assert.Equal(t, map[string]interface{}{
		"aadharVerified":    false,
		"panVerified":       false,
		"signatureVerified": false,
		"emailVerified":     true,
		"phoneVerified":     false,
	}, result["verificationStatus"])
	assert.Equal(t, false, result["isFullyVerified"])

	for _, flag := range []string{"aadharVerified", "signatureVerified"} {
		status, _ = e.do(t, jsonRequest("PUT", target, fmt.Sprintf(`{"verificationType":%q,"status":true}`, flag)))
		require.Equal(t, fiber.StatusOK, status)
	}
	_, body = e.do(t, jsonRequest("PUT", target, `{"verificationType":"phoneVerified","status":true}`))
	assert.Equal(t, true, data(t, body)["isFullyVerified"])

	_, body = e.do(t, jsonRequest("PUT", target, `{"verificationType":"phoneVerified","status":false}`))
	assert.Equal(t, false, data(t, body)["isFullyVerified"])

	status, body = e.do(t, jsonRequest("PUT", target, `{"verificationType":"addressVerified","status":true}`))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body["errors"], "verificationType")

	status, body = e.do(t, jsonRequest("PUT", target, `{"verificationType":"panVerified"}`))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body["errors"], "status")
}

func TestTradingDeleteRemovesFiles(t *testing.T) {
	e := newTestEnv(t)
	id := e.createTrading(t, 1)

	_, body := e.do(t, httptest.NewRequest("GET", "/api/trading-registration/"+id, nil))
	reg := data(t, body)
	aadharPath := reg["aadharDocument"].(map[string]interface{})["path"].(string)
	signaturePath := reg["signatureDocument"].(map[string]interface{})["path"].(string)

	// One file already missing must not fail the delete
	require.NoError(t, os.Remove(signaturePath))

	status, body := e.do(t, httptest.NewRequest("DELETE", "/api/trading-registration/"+id, nil))
	require.Equal(t, fiber.StatusOK, status, "%v", body)

	_, err := os.Stat(aadharPath)
	assert.True(t, os.IsNotExist(err))
	assert.Zero(t, e.countFiles(t))

	status, _ = e.do(t, httptest.NewRequest("GET", "/api/trading-registration/"+id, nil))
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestTradingDeleteWithoutFiles(t *testing.T) {
	e := newTestEnv(t)

	reg := &models.TradingRegistration{
		FirstName: "Ravi", LastName: "Kumar", Email: "ravi@example.com", Phone: "9123456780",
		AadharNumber: "999988887777", RegistrationStatus: models.RegistrationPending, SubmissionDate: time.Now(),
	}
	require.NoError(t, e.store.TradingRegistrations.Create(context.Background(), reg))

	status, body := e.do(t, httptest.NewRequest("DELETE", "/api/trading-registration/"+reg.ID, nil))
	assert.Equal(t, fiber.StatusOK, status, "%v", body)
}

func TestTradingUpdateReplacesFiles(t *testing.T) {
	e := newTestEnv(t)
	id := e.createTrading(t, 1)
	otherID := e.createTrading(t, 2)

	_, body := e.do(t, httptest.NewRequest("GET", "/api/trading-registration/"+id, nil))
	oldPath := data(t, body)["aadharDocument"].(map[string]interface{})["path"].(string)

	status, body := e.do(t, multipartRequest(t, "PUT", "/api/trading-registration/"+id,
		map[string]string{"city": "Mumbai"}, pngUpload(utils.AadharField)))
	require.Equal(t, fiber.StatusOK, status, "%v", body)
	reg := data(t, body)
	assert.Equal(t, "Mumbai", reg["city"])
	assert.Equal(t, "Asha", reg["firstName"])

	newPath := reg["aadharDocument"].(map[string]interface{})["path"].(string)
	assert.NotEqual(t, oldPath, newPath)
	_, err := os.Stat(oldPath)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(newPath)
	assert.NoError(t, err)
	assert.Equal(t, 4, e.countFiles(t))

	// A failed save keeps the stored file and drops the new upload
	status, body = e.do(t, multipartRequest(t, "PUT", "/api/trading-registration/"+otherID,
		map[string]string{"email": "asha1@example.com"}, pngUpload(utils.AadharField)))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body["errors"], "email")
	assert.Equal(t, 4, e.countFiles(t))

	status, body = e.do(t, jsonRequest("PUT", "/api/trading-registration/"+id, `{"pincode":"12"}`))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body["errors"], "pincode")

	status, _ = e.do(t, jsonRequest("PUT", "/api/trading-registration/nope", `{"city":"Delhi"}`))
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestTradingUpdateAcceptsJSONBooleans(t *testing.T) {
	e := newTestEnv(t)
	id := e.createTrading(t, 1)
	target := "/api/trading-registration/" + id

	status, body := e.do(t, jsonRequest("PUT", target, `{"agreeMarketing":true,"city":"Nagpur"}`))
	require.Equal(t, fiber.StatusOK, status, "%v", body)
	assert.Equal(t, true, data(t, body)["agreeMarketing"])
	assert.Equal(t, "Nagpur", data(t, body)["city"])

	status, body = e.do(t, jsonRequest("PUT", target, `{"agreeMarketing":"false"}`))
	require.Equal(t, fiber.StatusOK, status, "%v", body)
	assert.Equal(t, false, data(t, body)["agreeMarketing"])

	status, body = e.do(t, jsonRequest("PUT", target, `{"agreeMarketing":"maybe"}`))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body["errors"], "agreeMarketing")

	status, body = e.do(t, jsonRequest("PUT", target, `{"agreeMarketing":{}}`))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body["errors"], "general")
}

func TestTradingListPagination(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		reg := &models.TradingRegistration{
			FirstName: fmt.Sprintf("User%d", i), LastName: "Test", Email: fmt.Sprintf("user%d@example.com", i),
			Phone: "9000000000", AadharNumber: fmt.Sprintf("5555666677%02d", i),
			RegistrationStatus: models.RegistrationPending, SubmissionDate: time.Now(),
			AadharDocument: models.FileInfo{Filename: "a.png", Path: filepath.Join(e.root, "aadhar", "a.png")},
		}
		require.NoError(t, e.store.TradingRegistrations.Create(ctx, reg))
	}

	status, body := e.do(t, httptest.NewRequest("GET", "/api/trading-registration?limit=2&page=2", nil))
	require.Equal(t, fiber.StatusOK, status, "%v", body)
	d := data(t, body)
	items := d["registrations"].([]interface{})
	assert.Len(t, items, 2)
	assert.NotContains(t, items[0], "aadharDocument")
	assert.Equal(t, map[string]interface{}{"total": 5.0, "page": 2.0, "limit": 2.0, "pages": 3.0}, d["pagination"])

	_, body = e.do(t, httptest.NewRequest("GET", "/api/trading-registration?search=USER3&sortBy=firstName&sortOrder=asc", nil))
	d = data(t, body)
	assert.Len(t, d["registrations"], 1)

	status, body = e.do(t, httptest.NewRequest("GET", "/api/trading-registration?sortBy=password&limit=500", nil))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body["errors"], "sortBy")
	assert.Contains(t, body["errors"], "limit")
}

func TestTradingStats(t *testing.T) {
	e := newTestEnv(t)
	id := e.createTrading(t, 1)
	e.createTrading(t, 2)

	status, _ := e.do(t, jsonRequest("PUT", "/api/trading-registration/"+id+"/status", `{"status":"under_review"}`))
	require.Equal(t, fiber.StatusOK, status)

	status, body := e.do(t, httptest.NewRequest("GET", "/api/trading-registration/stats", nil))
	require.Equal(t, fiber.StatusOK, status, "%v", body)
	stats := data(t, body)
	assert.Equal(t, 2.0, stats["total"])
	assert.Equal(t, 2.0, stats["today"])
	assert.Equal(t, map[string]interface{}{
		"pending": 1.0, "approved": 0.0, "rejected": 0.0, "under_review": 1.0,
	}, stats["byStatus"])
	assert.Equal(t, 0.0, stats["fullyVerified"])
	assert.Equal(t, 2.0, stats["notFullyVerified"])
}

func TestRegistrationSubmitAndList(t *testing.T) {
	e := newTestEnv(t)

	fields := tradingFields(1)
	delete(fields, "panNumber")
	fields["agreeMarketing"] = "true"

	status, body := e.do(t, multipartRequest(t, "POST", "/api/registration/submit", fields,
		pngUpload(utils.AadharField), pngUpload(utils.SignatureField)))
	require.Equal(t, fiber.StatusCreated, status, "%v", body)
	assert.Equal(t, 2, e.countFiles(t))

	fields["aadharNumber"] = "111122223333"
	status, body = e.do(t, multipartRequest(t, "POST", "/api/registration/submit", fields,
		pngUpload(utils.AadharField), pngUpload(utils.SignatureField)))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, map[string]interface{}{"email": "email already exists!"}, body["errors"])
	assert.Equal(t, 2, e.countFiles(t))

	fields["agreeTerms"] = "false"
	status, body = e.do(t, multipartRequest(t, "POST", "/api/registration/submit", fields, pngUpload(utils.SignatureField)))
	assert.Equal(t, fiber.StatusBadRequest, status)
	errs := body["errors"].(map[string]interface{})
	assert.Contains(t, errs, "agreeTerms")
	assert.Contains(t, errs, "aadharFile")

	status, body = e.do(t, httptest.NewRequest("GET", "/api/registration/all?search=asha", nil))
	require.Equal(t, fiber.StatusOK, status)
	d := data(t, body)
	items := d["registrations"].([]interface{})
	require.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, true, item["agreeMarketing"])
	assert.True(t, strings.HasPrefix(item["signatureFileUrl"].(string), "/uploads/signatures/"))
	assert.Equal(t, 1.0, d["pagination"].(map[string]interface{})["pages"])
}

func TestPaymentsAddAndList(t *testing.T) {
	e := newTestEnv(t)

	status, body := e.do(t, jsonRequest("POST", "/api/payments/add",
		`{"userName":"Meera","courseName":"Options 101","amount":"4999.499","userPhone":"9876543210"}`))
	require.Equal(t, fiber.StatusCreated, status, "%v", body)
	payment := data(t, body)
	assert.Equal(t, 4999.5, payment["amount"])
	assert.Equal(t, "Pending", payment["paymentStatus"])

	status, _ = e.do(t, jsonRequest("POST", "/api/payments/add",
		`{"userName":"Meera","courseName":"Futures","amount":1200,"paymentStatus":"Paid"}`))
	require.Equal(t, fiber.StatusCreated, status)

	status, body = e.do(t, jsonRequest("POST", "/api/payments/add",
		`{"userName":"Meera","courseName":"Futures","amount":0,"paymentStatus":"Refunded"}`))
	assert.Equal(t, fiber.StatusBadRequest, status)
	errs := body["errors"].(map[string]interface{})
	assert.Contains(t, errs, "amount")
	assert.Contains(t, errs, "paymentStatus")

	status, body = e.do(t, jsonRequest("POST", "/api/payments/add", `{"userName":`))
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, body["errors"], "general")

	status, body = e.do(t, httptest.NewRequest("GET", "/api/payments/all?status=Paid", nil))
	require.Equal(t, fiber.StatusOK, status)
	d := data(t, body)
	payments := d["payments"].([]interface{})
	require.Len(t, payments, 1)
	assert.Equal(t, 1200.0, payments[0].(map[string]interface{})["amount"])
}

func TestHealthAndMetrics(t *testing.T) {
	e := newTestEnv(t)

	status, body := e.do(t, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", data(t, body)["database"])

	status, body = e.do(t, httptest.NewRequest("GET", "/api/unknown", nil))
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, false, body["success"])

	resp, err := e.app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	text, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(text), `http_requests_total{method="GET",path="/health",status="200"} 1`)
}

func TestCORSWildcardHasNoCredentials(t *testing.T) {
	e := newTestEnv(t)

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("Origin", "https://example.com")
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Credentials"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}
