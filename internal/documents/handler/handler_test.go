package handler

//go:generate mockgen -source=handler.go -destination=mocks/handler_mock.go -package=mocks Service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"onecore/internal/adapters/filestorage"
	"onecore/internal/adapters/propertybase"
	"onecore/internal/documents"
	"onecore/internal/documents/handler/mocks"
	dErrors "onecore/pkg/domain-errors"
)

const testMaxBytes = 1 << 10

type HandlerSuite struct {
	suite.Suite
	router      http.Handler
	ctrl        *gomock.Controller
	mockService *mocks.MockService
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockService = mocks.NewMockService(s.ctrl)
	r := chi.NewRouter()
	New(s.mockService, slog.New(slog.DiscardHandler), testMaxBytes).Register(r)
	s.router = r
}

func (s *HandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func multipartBody(s *HandlerSuite, field, fileName string, content []byte) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	s.Require().NoError(mw.WriteField("description", "manual"))
	if field != "" {
		fw, err := mw.CreateFormFile(field, fileName)
		s.Require().NoError(err)
		_, err = fw.Write(content)
		s.Require().NoError(err)
	}
	s.Require().NoError(mw.Close())
	return &buf, mw.FormDataContentType()
}

func (s *HandlerSuite) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) TestUploadComponentFile() {
	body, ct := multipartBody(s, "file", "manual.pdf", []byte("%PDF-1.7"))
	s.mockService.EXPECT().UploadComponentFile(gomock.Any(), "c-1", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, f documents.File) (documents.Document, error) {
			s.Equal("manual.pdf", f.Name)
			s.Equal("application/octet-stream", f.ContentType)
			content, err := io.ReadAll(f.Body)
			s.Require().NoError(err)
			s.Equal("%PDF-1.7", string(content))
			return documents.Document{Document: propertybase.Document{ID: "doc-1"}, URL: "https://signed"}, nil
		})

	req := httptest.NewRequest(http.MethodPost, "/components/c-1/documents", body)
	req.Header.Set("Content-Type", ct)
	rec := s.do(req)

	s.Equal(http.StatusCreated, rec.Code)
	var resp struct {
		Content documents.Document `json:"content"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("doc-1", resp.Content.ID)
	s.Equal("https://signed", resp.Content.URL)
}

func (s *HandlerSuite) TestUploadComponentModelDocument() {
	body, ct := multipartBody(s, "file", "drawing.dwg", []byte("x"))
	s.mockService.EXPECT().UploadComponentModelDocument(gomock.Any(), "m-1", gomock.Any()).
		Return(documents.Document{Document: propertybase.Document{ID: "doc-2"}}, nil)

	req := httptest.NewRequest(http.MethodPost, "/component-models/m-1/documents", body)
	req.Header.Set("Content-Type", ct)

	s.Equal(http.StatusCreated, s.do(req).Code)
}

func (s *HandlerSuite) TestUploadMissingFileIs400() {
	body, ct := multipartBody(s, "", "", nil)

	req := httptest.NewRequest(http.MethodPost, "/components/c-1/documents", body)
	req.Header.Set("Content-Type", ct)
	rec := s.do(req)

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Contains(rec.Body.String(), `multipart field \"file\" is required`)
}

func (s *HandlerSuite) TestUploadWrongFieldNameIs400() {
	body, ct := multipartBody(s, "attachment", "a.pdf", []byte("x"))

	req := httptest.NewRequest(http.MethodPost, "/components/c-1/documents", body)
	req.Header.Set("Content-Type", ct)

	s.Equal(http.StatusBadRequest, s.do(req).Code)
}

func (s *HandlerSuite) TestUploadNotMultipartIs415() {
	req := httptest.NewRequest(http.MethodPost, "/components/c-1/documents", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	s.Equal(http.StatusUnsupportedMediaType, s.do(req).Code)
}

func (s *HandlerSuite) TestUploadOversizeDeclaredLengthIs413() {
	body, ct := multipartBody(s, "file", "big.bin", bytes.Repeat([]byte("a"), 2*testMaxBytes))

	req := httptest.NewRequest(http.MethodPost, "/components/c-1/documents", body)
	req.Header.Set("Content-Type", ct)
	rec := s.do(req)

	s.Equal(http.StatusRequestEntityTooLarge, rec.Code)
	s.Contains(rec.Body.String(), "payload_too_large")
}

func (s *HandlerSuite) TestUploadOversizeStreamedIs413() {
	body, ct := multipartBody(s, "file", "big.bin", bytes.Repeat([]byte("a"), 2*testMaxBytes))
	s.mockService.EXPECT().UploadComponentFile(gomock.Any(), "c-1", gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, f documents.File) (documents.Document, error) {
			_, err := io.Copy(io.Discard, f.Body)
			s.Require().Error(err)
			return documents.Document{}, dErrors.Wrap(err, dErrors.CodeInternal, "file_storage request failed")
		})

	req := httptest.NewRequest(http.MethodPost, "/components/c-1/documents", io.NopCloser(body))
	req.Header.Set("Content-Type", ct)
	req.ContentLength = -1

	s.Equal(http.StatusRequestEntityTooLarge, s.do(req).Code)
}

func (s *HandlerSuite) TestUploadMetadataConflictIs409() {
	body, ct := multipartBody(s, "file", "a.pdf", []byte("x"))
	s.mockService.EXPECT().UploadComponentFile(gomock.Any(), "c-1", gomock.Any()).
		Return(documents.Document{}, dErrors.New(dErrors.CodeConflict, "document exists"))

	req := httptest.NewRequest(http.MethodPost, "/components/c-1/documents", body)
	req.Header.Set("Content-Type", ct)

	s.Equal(http.StatusConflict, s.do(req).Code)
}

func (s *HandlerSuite) TestListComponentDocuments() {
	s.mockService.EXPECT().ListComponentDocuments(gomock.Any(), "c-1").Return(nil, nil)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/components/c-1/documents", nil))

	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"content":[]}`, rec.Body.String())
}

func (s *HandlerSuite) TestListComponentModelDocumentsNotFound() {
	s.mockService.EXPECT().ListComponentModelDocuments(gomock.Any(), "m-9").
		Return(nil, dErrors.New(dErrors.CodeNotFound, "component model not found"))

	rec := s.do(httptest.NewRequest(http.MethodGet, "/component-models/m-9/documents", nil))

	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *HandlerSuite) TestDeleteDocument() {
	s.mockService.EXPECT().DeleteDocument(gomock.Any(), "doc-1").Return(nil)

	rec := s.do(httptest.NewRequest(http.MethodDelete, "/documents/doc-1", nil))

	s.Equal(http.StatusNoContent, rec.Code)
}

func (s *HandlerSuite) TestFileURL() {
	s.mockService.EXPECT().FileURL(gomock.Any(), "components/c-1/a.pdf", 10*time.Minute).
		Return(filestorage.SignedURL{URL: "https://signed", ExpiresIn: 600}, nil)

	rec := s.do(httptest.NewRequest(http.MethodGet, "/files/components%2Fc-1%2Fa.pdf/url?expirySeconds=600", nil))

	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"content":{"url":"https://signed","expiresIn":600}}`, rec.Body.String())
}

func (s *HandlerSuite) TestFileURLDefaultExpiry() {
	s.mockService.EXPECT().FileURL(gomock.Any(), "a.pdf", time.Duration(0)).
		Return(filestorage.SignedURL{URL: "u", ExpiresIn: 3600}, nil)

	s.Equal(http.StatusOK, s.do(httptest.NewRequest(http.MethodGet, "/files/a.pdf/url", nil)).Code)
}

func (s *HandlerSuite) TestFileURLRejectsBadExpiry() {
	// 18446744074s wraps to about 290ms as a Duration.
	for _, q := range []string{"0", "-5", "soon", "604801", "18446744074"} {
		rec := s.do(httptest.NewRequest(http.MethodGet, "/files/a.pdf/url?expirySeconds="+q, nil))
		s.Equal(http.StatusBadRequest, rec.Code, q)
	}
}
