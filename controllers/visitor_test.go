package controllers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/safein/safein-server/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	publicID, folder string
	data             []byte
	err              error
}

func (f *fakeUploader) Upload(_ context.Context, file interface{}, publicID, folder string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.publicID, f.folder = publicID, folder
	if r, ok := file.(io.Reader); ok {
		f.data, _ = io.ReadAll(r)
	}
	return "https://res.cloudinary.com/demo/" + folder + "/" + publicID + ".jpg", nil
}

func visitorApp(h *Handler) *fiber.App {
	return newTestApp(testEmployeeID, "security", func(r fiber.Router) {
		r.Get("/visitors", h.ListVisitors)
		r.Get("/visitors/:id", h.GetVisitor)
		r.Post("/visitors", h.CreateVisitor)
		r.Patch("/visitors/:id", h.UpdateVisitor)
		r.Post("/visitors/:id/photo", h.UploadVisitorPhoto)
	})
}

func photoRequest(t *testing.T, target string, content []byte) *http.Request {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("photo", "face.jpg")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestUploadVisitorPhoto(t *testing.T) {
	mock := dbtest.Setup(t)
	h := newTestHandler(time.Now())
	uploader := &fakeUploader{}
	h.Uploader = uploader

	mock.ExpectQuery(`SELECT \* FROM "visitors"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "company_id", "name", "phone"}).AddRow(12, 3, "Asha", "98450"))
	mock.ExpectExec(`UPDATE "visitors" SET "photo_url"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	status, body := send(t, visitorApp(h), photoRequest(t, "/visitors/12/photo", []byte("jpeg-bytes")))

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "visitor_12", uploader.publicID)
	assert.Equal(t, "safein/3/visitors", uploader.folder)
	assert.Equal(t, []byte("jpeg-bytes"), uploader.data)
	assert.Equal(t, "https://res.cloudinary.com/demo/safein/3/visitors/visitor_12.jpg", body["photoUrl"])
}

func TestUploadVisitorPhoto_UploaderFails(t *testing.T) {
	mock := dbtest.Setup(t)
	h := newTestHandler(time.Now())
	h.Uploader = &fakeUploader{err: errors.New("quota exceeded")}

	mock.ExpectQuery(`SELECT \* FROM "visitors"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "company_id"}).AddRow(12, 3))

	status, body := send(t, visitorApp(h), photoRequest(t, "/visitors/12/photo", []byte("x")))
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, "quota exceeded", body["error"])
}

func TestUploadVisitorPhoto_NotConfigured(t *testing.T) {
	h := newTestHandler(time.Now())

	status, _ := send(t, visitorApp(h), photoRequest(t, "/visitors/12/photo", []byte("x")))
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestCreateVisitor_Validation(t *testing.T) {
	h := newTestHandler(time.Now())

	status, body := doJSON(t, visitorApp(h), http.MethodPost, "/visitors", fiber.Map{
		"name":        "Asha",
		"idProofType": "library_card",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "Phone")
	assert.Contains(t, body["error"], "IDProofType")
}

func TestCreateVisitor(t *testing.T) {
	mock := dbtest.Setup(t)
	h := newTestHandler(time.Now())

	mock.ExpectQuery(`INSERT INTO "visitors"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(21))

	status, body := doJSON(t, visitorApp(h), http.MethodPost, "/visitors", fiber.Map{
		"name":        "Asha",
		"phone":       "98450",
		"idProofType": "passport",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.EqualValues(t, 21, body["ID"])
	assert.EqualValues(t, 3, body["companyId"])
}

func TestListVisitors_PresetAndSearch(t *testing.T) {
	mock := dbtest.Setup(t)
	h := newTestHandler(time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC))

	mock.ExpectQuery(`SELECT count\(\*\) FROM "visitors" WHERE company_id = .* AND created_at >= .* AND created_at < .* AND \(name ILIKE`).
		WithArgs(sqlmock.AnyArg(),
			time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC),
			"%asha%", "%asha%", "%asha%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT \* FROM "visitors"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "company_id", "name"}).AddRow(12, 3, "Asha"))

	status, body := doJSON(t, visitorApp(h), http.MethodGet, "/visitors?preset=today&q=asha", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["total"])
	require.Len(t, body["data"], 1)
}

func TestUpdateVisitor_PartialFields(t *testing.T) {
	mock := dbtest.Setup(t)
	h := newTestHandler(time.Now())

	mock.ExpectQuery(`SELECT \* FROM "visitors"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "company_id", "name", "phone"}).AddRow(12, 3, "Asha", "98450"))
	mock.ExpectExec(`UPDATE "visitors" SET "organization"=\$1,"updated_at"=\$2`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	status, body := doJSON(t, visitorApp(h), http.MethodPatch, "/visitors/12", fiber.Map{"organization": "Acme"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Acme", body["organization"])
	assert.Equal(t, "Asha", body["name"])
}
