package router

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/javajoker/vendor-console/internal/config"
	"github.com/javajoker/vendor-console/internal/i18n"
	"github.com/javajoker/vendor-console/internal/services"
	"github.com/javajoker/vendor-console/internal/utils"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string          `json:"code"`
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
	} `json:"error"`
	Meta json.RawMessage `json:"meta"`
}

type draftData struct {
	ID        string `json:"id"`
	Mode      string `json:"mode"`
	ProductID string `json:"product_id"`
	Product   struct {
		Name      string `json:"name"`
		Materials []struct {
			Key      string `json:"key"`
			Identity string `json:"identity"`
		} `json:"materials"`
	} `json:"product"`
}

type APITestSuite struct {
	suite.Suite
	upstream *httptest.Server
	blobs    *services.MemoryBlobStore
	router   *gin.Engine
	cancel   context.CancelFunc
	token    string

	mu        sync.Mutex
	submitted map[string]string
	authSeen  []string
}

func (suite *APITestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	require.NoError(suite.T(), i18n.Initialize("en"))
}

func (suite *APITestSuite) SetupTest() {
	suite.submitted = nil
	suite.authSeen = nil
	suite.upstream = httptest.NewServer(http.HandlerFunc(suite.serveUpstream))

	cfg := &config.Config{
		Environment: "test",
		ProductAPI: config.ProductAPIConfig{
			BaseURL:          suite.upstream.URL,
			Timeout:          5 * time.Second,
			CategoriesPath:   "/categories",
			MeasurementsPath: "/measurements",
			ProductsPath:     "/vendor/products",
		},
		JWT: config.JWTConfig{SecretKey: "test-secret", Issuer: "vendor-console"},
		Uploads: config.UploadConfig{
			MaxFileSize:  1 << 20,
			MaxDimension: 512,
			AllowedTypes: []string{"image/png", "image/jpeg"},
		},
		Drafts:    config.DraftConfig{TTL: time.Hour, MaxPerVendor: 5},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		I18n:      config.I18nConfig{DefaultLocale: "en"},
	}

	suite.blobs = services.NewMemoryBlobStore()
	storage := services.NewStorageServiceWithStore(suite.blobs, cfg.Uploads, "staging")
	productAPI := services.NewProductAPIService(cfg.ProductAPI, storage)
	svc := &Services{
		Catalog: services.NewCatalogService(productAPI, services.NewMemoryCache(time.Minute)),
		Drafts:  services.NewDraftService(productAPI, storage, cfg.Drafts),
		Storage: storage,
	}

	var ctx context.Context
	ctx, suite.cancel = context.WithCancel(context.Background())
	suite.router = Initialize(ctx, cfg, svc)

	token, err := utils.GenerateJWT("vendor-1", "Asha Textiles", utils.RoleVendor, time.Hour)
	require.NoError(suite.T(), err)
	suite.token = token
}

func (suite *APITestSuite) TearDownTest() {
	suite.cancel()
	suite.upstream.Close()
}

// serveUpstream plays the Product API: product 15 exists, submissions create
// product 501.
func (suite *APITestSuite) serveUpstream(w http.ResponseWriter, r *http.Request) {
	suite.mu.Lock()
	suite.authSeen = append(suite.authSeen, r.Header.Get("Authorization"))
	suite.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/categories":
		w.Write([]byte(`{"data":[{"id":1,"name":"Men","subcategories":[{"id":2,"name":"Shirts"}]}]}`))
	case r.Method == http.MethodGet && r.URL.Path == "/measurements":
		w.Write([]byte(`{"data":[{"id":"chest","name":"Chest"}]}`))
	case r.Method == http.MethodGet && r.URL.Path == "/vendor/products/15":
		w.Write([]byte(`{"product":{"id":15,"name":"Linen Shirt"}}`))
	case r.Method == http.MethodGet && r.URL.Path == "/vendor/products/501":
		w.Write([]byte(`{"product":{"id":501,"name":"Kurta"}}`))
	case r.Method == http.MethodPost && r.URL.Path == "/vendor/products":
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fields := make(map[string]string)
		for k, v := range r.MultipartForm.Value {
			fields[k] = v[0]
		}
		for k := range r.MultipartForm.File {
			fields[k] = "<file>"
		}
		suite.mu.Lock()
		suite.submitted = fields
		suite.mu.Unlock()
		w.Write([]byte(`{"status":"success","product":{"id":"501"}}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"message":"No such product"}`))
	}
}

func (suite *APITestSuite) do(method, path string, body io.Reader, contentType string, headers ...string) (*httptest.ResponseRecorder, envelope) {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if suite.token != "" {
		req.Header.Set("Authorization", "Bearer "+suite.token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(suite.T(), json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (suite *APITestSuite) doJSON(method, path string, payload interface{}) (*httptest.ResponseRecorder, envelope) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(suite.T(), err)
		body = bytes.NewReader(data)
	}
	return suite.do(method, path, body, "application/json")
}

func (suite *APITestSuite) upload(method, path, field, filename string, data []byte) (*httptest.ResponseRecorder, envelope) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(suite.T(), err)
	_, err = part.Write(data)
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), mw.Close())
	return suite.do(method, path, &buf, mw.FormDataContentType())
}

func (suite *APITestSuite) draft(env envelope) draftData {
	var d draftData
	require.NoError(suite.T(), json.Unmarshal(env.Data, &d))
	return d
}

func (suite *APITestSuite) createDraft() draftData {
	w, env := suite.doJSON(http.MethodPost, "/v1/drafts", nil)
	require.Equal(suite.T(), http.StatusCreated, w.Code, w.Body.String())
	return suite.draft(env)
}

func pngBytes(t *testing.T) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func (suite *APITestSuite) TestHealth() {
	w, _ := suite.do(http.MethodGet, "/health", nil, "")
	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

func (suite *APITestSuite) TestRequiresVendorToken() {
	t := suite.T()
	suite.token = ""
	w, env := suite.do(http.MethodPost, "/v1/drafts", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	admin, err := utils.GenerateJWT("vendor-1", "Ops", "admin", time.Hour)
	require.NoError(t, err)
	suite.token = admin
	w, env = suite.do(http.MethodPost, "/v1/drafts", nil, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "FORBIDDEN", env.Error.Code)
}

func (suite *APITestSuite) TestCatalogForwardsVendorToken() {
	t := suite.T()
	w, env := suite.doJSON(http.MethodGet, "/v1/catalog/categories", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var categories []struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &categories))
	require.Len(t, categories, 1)
	assert.Equal(t, "Men", categories[0].Name)

	suite.mu.Lock()
	defer suite.mu.Unlock()
	assert.Contains(t, suite.authSeen, "Bearer "+suite.token)
}

func (suite *APITestSuite) TestDraftsArePrivateToVendor() {
	t := suite.T()
	d := suite.createDraft()
	assert.Equal(t, "create", d.Mode)

	other, err := utils.GenerateJWT("vendor-2", "Other", utils.RoleVendor, time.Hour)
	require.NoError(t, err)
	suite.token = other
	w, env := suite.doJSON(http.MethodGet, "/v1/drafts/"+d.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Draft not found", env.Error.Message)
}

func (suite *APITestSuite) TestErrorsAreLocalized() {
	w, env := suite.do(http.MethodGet, "/v1/drafts/missing", nil, "", "Accept-Language", "zh-TW,zh;q=0.9")
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
	assert.Equal(suite.T(), "找不到草稿", env.Error.Message)
}

func (suite *APITestSuite) TestOpenForEditLoadsProduct() {
	t := suite.T()
	w, env := suite.doJSON(http.MethodPost, "/v1/drafts/edit/15", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	d := suite.draft(env)
	assert.Equal(t, "edit", d.Mode)
	assert.Equal(t, "15", d.ProductID)
	assert.Equal(t, "Linen Shirt", d.Product.Name)

	w, env = suite.doJSON(http.MethodPost, "/v1/drafts/edit/99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Product not found", env.Error.Message)
}

func (suite *APITestSuite) TestRejectsInvalidInput() {
	t := suite.T()
	d := suite.createDraft()
	base := "/v1/drafts/" + d.ID

	w, env := suite.doJSON(http.MethodPost, base+"/materials", nil)
	require.Equal(t, http.StatusOK, w.Code)
	key := suite.draft(env).Product.Materials[0].Key

	w, env = suite.doJSON(http.MethodPut, base+"/materials/"+key+"/prices/ready/M",
		map[string]string{"field": "price", "value": "abc"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	w, env = suite.doJSON(http.MethodPatch, base+"/materials/nope",
		map[string]string{"field": "identity", "value": "Silk"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Material not found", env.Error.Message)

	w, env = suite.upload(http.MethodPut, base+"/main-image", "image", "notes.txt", []byte("plain text"))
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	assert.Equal(t, "UNSUPPORTED_FILE", env.Error.Code)
	assert.Zero(t, suite.blobs.Len())

	w, env = suite.do(http.MethodDelete, base+"/attributes/abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "BAD_REQUEST", env.Error.Code)
}

func (suite *APITestSuite) TestIncompleteDraftIsNotSubmitted() {
	t := suite.T()
	d := suite.createDraft()

	w, env := suite.doJSON(http.MethodGet, "/v1/drafts/"+d.ID+"/validate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var result struct {
		Valid  bool              `json:"valid"`
		Errors []json.RawMessage `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Errors)

	w, env = suite.doJSON(http.MethodPost, "/v1/drafts/"+d.ID+"/submit", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	suite.mu.Lock()
	defer suite.mu.Unlock()
	assert.Nil(t, suite.submitted)
}

func (suite *APITestSuite) TestBuildAndSubmitProduct() {
	t := suite.T()
	d := suite.createDraft()
	base := "/v1/drafts/" + d.ID

	w, _ := suite.doJSON(http.MethodPatch, base, map[string]interface{}{
		"name":        "Kurta",
		"category_id": "1",
		"gender":      "men",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env := suite.doJSON(http.MethodPost, base+"/materials", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	key := suite.draft(env).Product.Materials[0].Key

	steps := []struct {
		method string
		path   string
		body   interface{}
	}{
		{http.MethodPatch, base + "/materials/" + key, map[string]string{"field": "identity", "value": "Cotton"}},
		{http.MethodPost, base + "/materials/" + key + "/availability/ready", nil},
		{http.MethodPut, base + "/materials/" + key + "/ready-sizes/M", nil},
		{http.MethodPut, base + "/materials/" + key + "/prices/ready/M", map[string]string{"field": "price", "value": "100"}},
		{http.MethodPost, base + "/attributes", map[string]string{"key": "Fabric care", "value": "Dry clean"}},
	}
	for _, step := range steps {
		w, _ := suite.doJSON(step.method, step.path, step.body)
		require.Equal(t, http.StatusOK, w.Code, "%s %s: %s", step.method, step.path, w.Body.String())
	}

	w, _ = suite.upload(http.MethodPut, base+"/main-image", "image", "main.png", pngBytes(t))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, suite.blobs.Len())

	w, env = suite.doJSON(http.MethodGet, base+"/validate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"valid":true`)

	w, env = suite.doJSON(http.MethodPost, base+"/submit", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var outcome struct {
		ProductID string    `json:"product_id"`
		Message   string    `json:"message"`
		Draft     draftData `json:"draft"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &outcome))
	assert.Equal(t, "501", outcome.ProductID)
	assert.Equal(t, "Product saved", outcome.Message)
	assert.Equal(t, "501", outcome.Draft.ProductID)

	suite.mu.Lock()
	assert.Equal(t, "Kurta", suite.submitted["name"])
	suite.mu.Unlock()

	// The submitted draft keeps editing the saved product.
	w, env = suite.doJSON(http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "edit", suite.draft(env).Mode)
	assert.Zero(t, suite.blobs.Len())
}

func (suite *APITestSuite) TestDraftLimitConflicts() {
	t := suite.T()
	for i := 0; i < 5; i++ {
		suite.createDraft()
	}
	w, env := suite.doJSON(http.MethodPost, "/v1/drafts", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "DRAFT_LIMIT", env.Error.Code)
}

func (suite *APITestSuite) TestDiscardReleasesUploads() {
	t := suite.T()
	d := suite.createDraft()
	base := "/v1/drafts/" + d.ID

	w, _ := suite.upload(http.MethodPost, base+"/gallery", "images", "look.png", pngBytes(t))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, suite.blobs.Len())

	w, _ = suite.doJSON(http.MethodDelete, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, suite.blobs.Len())

	w, _ = suite.doJSON(http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}
