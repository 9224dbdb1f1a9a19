package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/nongdanviet/nongdanviet-backend/internal/app/model"
	"github.com/nongdanviet/nongdanviet-backend/internal/app/repository"
	"github.com/nongdanviet/nongdanviet-backend/internal/app/service"
	"github.com/nongdanviet/nongdanviet-backend/internal/db"
	apperrors "github.com/nongdanviet/nongdanviet-backend/internal/errors"
	"github.com/nongdanviet/nongdanviet-backend/internal/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupVerificationControllerTest(t *testing.T) (*VerificationController, *gin.Engine, *gorm.DB, *model.User, *model.User) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	verificationRepo := repository.NewVerificationRepository(testDB)
	userRepo := repository.NewUserRepository(testDB)
	transactionRepo := repository.NewTransactionRepository(testDB)
	verificationService := service.NewVerificationService(verificationRepo, userRepo, transactionRepo)
	// Các handler duyệt hồ sơ không chạm tới S3 nên không cần client thật
	verificationController := NewVerificationController(verificationService, nil)

	farmer := &model.User{
		Email:        "farmer@example.com",
		PasswordHash: "hash",
		Username:     "nongdan01",
		FullName:     "Nguyễn Văn Tám",
		Province:     "Bến Tre",
		Role:         model.RoleUser,
	}
	testDB.Create(farmer)

	admin := &model.User{
		Email:        "admin@example.com",
		PasswordHash: "hash",
		Username:     "admin01",
		FullName:     "Quản Trị Viên",
		Role:         model.RoleAdmin,
	}
	testDB.Create(admin)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	return verificationController, router, testDB, farmer, admin
}

func setAuthInContext(c *gin.Context, user *model.User) {
	c.Set(middleware.UserIDKey, user.ID)
	c.Set(middleware.UserRoleKey, user.Role)
}

func createPendingDocument(t *testing.T, testDB *gorm.DB, userID uint, documentURL string) *model.VerificationDocument {
	doc := &model.VerificationDocument{
		UserID:       userID,
		DocumentType: model.DocumentTypeFarmingCertificate,
		DocumentURL:  documentURL,
		Status:       model.DocumentStatusPending,
	}
	require.NoError(t, testDB.Create(doc).Error)
	return doc
}

func TestVerificationController_Decide_Approve(t *testing.T) {
	controller, router, testDB, farmer, admin := setupVerificationControllerTest(t)

	doc := createPendingDocument(t, testDB, farmer.ID, "https://files.example.com/verifications/1/a.jpg")

	router.POST("/admin/verifications/:id/decide", func(c *gin.Context) {
		setAuthInContext(c, admin)
		controller.Decide(c)
	})

	jsonBody, _ := json.Marshal(DecideRequest{Action: "approve"})
	req := httptest.NewRequest(http.MethodPost, "/admin/verifications/1/decide", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "Đã duyệt hồ sơ xác minh", response["message"])

	var saved model.VerificationDocument
	require.NoError(t, testDB.First(&saved, doc.ID).Error)
	assert.Equal(t, model.DocumentStatusApproved, saved.Status)

	// Duyệt hồ sơ thì người nộp được đánh dấu xác minh
	var savedFarmer model.User
	require.NoError(t, testDB.First(&savedFarmer, farmer.ID).Error)
	assert.True(t, savedFarmer.IsVerified)
}

func TestVerificationController_Decide_RejectWithReason(t *testing.T) {
	controller, router, testDB, farmer, admin := setupVerificationControllerTest(t)

	doc := createPendingDocument(t, testDB, farmer.ID, "https://files.example.com/verifications/1/a.jpg")

	router.POST("/admin/verifications/:id/decide", func(c *gin.Context) {
		setAuthInContext(c, admin)
		controller.Decide(c)
	})

	jsonBody, _ := json.Marshal(DecideRequest{Action: "reject", Reason: "Ảnh giấy tờ bị mờ"})
	req := httptest.NewRequest(http.MethodPost, "/admin/verifications/1/decide", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var saved model.VerificationDocument
	require.NoError(t, testDB.First(&saved, doc.ID).Error)
	assert.Equal(t, model.DocumentStatusRejected, saved.Status)
	assert.Equal(t, "Ảnh giấy tờ bị mờ", saved.RejectionReason)
}

func TestVerificationController_Decide_NotFound(t *testing.T) {
	controller, router, _, _, admin := setupVerificationControllerTest(t)

	router.POST("/admin/verifications/:id/decide", func(c *gin.Context) {
		setAuthInContext(c, admin)
		controller.Decide(c)
	})

	jsonBody, _ := json.Marshal(DecideRequest{Action: "approve"})
	req := httptest.NewRequest(http.MethodPost, "/admin/verifications/9999/decide", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, apperrors.VerificationNotFound, response["error"])
}

func TestVerificationController_Decide_AlreadyDecided(t *testing.T) {
	controller, router, testDB, farmer, admin := setupVerificationControllerTest(t)

	createPendingDocument(t, testDB, farmer.ID, "https://files.example.com/verifications/1/a.jpg")

	router.POST("/admin/verifications/:id/decide", func(c *gin.Context) {
		setAuthInContext(c, admin)
		controller.Decide(c)
	})

	jsonBody, _ := json.Marshal(DecideRequest{Action: "approve"})
	req := httptest.NewRequest(http.MethodPost, "/admin/verifications/1/decide", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// Quyết định lần hai trên cùng hồ sơ bị chặn
	jsonBody, _ = json.Marshal(DecideRequest{Action: "reject", Reason: "Đổi ý"})
	req = httptest.NewRequest(http.MethodPost, "/admin/verifications/1/decide", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, apperrors.VerificationAlreadyDecided, response["error"])
}

func TestVerificationController_Decide_MissingReason(t *testing.T) {
	controller, router, testDB, farmer, admin := setupVerificationControllerTest(t)

	doc := createPendingDocument(t, testDB, farmer.ID, "https://files.example.com/verifications/1/a.jpg")

	router.POST("/admin/verifications/:id/decide", func(c *gin.Context) {
		setAuthInContext(c, admin)
		controller.Decide(c)
	})

	jsonBody, _ := json.Marshal(DecideRequest{Action: "reject", Reason: "   "})
	req := httptest.NewRequest(http.MethodPost, "/admin/verifications/1/decide", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, apperrors.VerificationMissingReason, response["error"])

	// Hồ sơ vẫn ở trạng thái chờ duyệt
	var saved model.VerificationDocument
	require.NoError(t, testDB.First(&saved, doc.ID).Error)
	assert.Equal(t, model.DocumentStatusPending, saved.Status)
}

func TestVerificationController_Decide_MissingEvidence(t *testing.T) {
	controller, router, testDB, farmer, admin := setupVerificationControllerTest(t)

	createPendingDocument(t, testDB, farmer.ID, "")

	router.POST("/admin/verifications/:id/decide", func(c *gin.Context) {
		setAuthInContext(c, admin)
		controller.Decide(c)
	})

	jsonBody, _ := json.Marshal(DecideRequest{Action: "approve"})
	req := httptest.NewRequest(http.MethodPost, "/admin/verifications/1/decide", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, apperrors.VerificationMissingEvidence, response["error"])
}

func TestVerificationController_Decide_InvalidAction(t *testing.T) {
	controller, router, testDB, farmer, admin := setupVerificationControllerTest(t)

	createPendingDocument(t, testDB, farmer.ID, "https://files.example.com/verifications/1/a.jpg")

	router.POST("/admin/verifications/:id/decide", func(c *gin.Context) {
		setAuthInContext(c, admin)
		controller.Decide(c)
	})

	jsonBody, _ := json.Marshal(DecideRequest{Action: "escalate"})
	req := httptest.NewRequest(http.MethodPost, "/admin/verifications/1/decide", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, apperrors.VerificationInvalidAction, response["error"])
}

func TestVerificationController_Decide_InvalidID(t *testing.T) {
	controller, router, _, _, admin := setupVerificationControllerTest(t)

	router.POST("/admin/verifications/:id/decide", func(c *gin.Context) {
		setAuthInContext(c, admin)
		controller.Decide(c)
	})

	jsonBody, _ := json.Marshal(DecideRequest{Action: "approve"})
	req := httptest.NewRequest(http.MethodPost, "/admin/verifications/invalid/decide", bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, apperrors.ValidationInvalidID, response["error"])
}

func TestVerificationController_ListDocuments_FilterByStatus(t *testing.T) {
	controller, router, testDB, farmer, admin := setupVerificationControllerTest(t)

	createPendingDocument(t, testDB, farmer.ID, "https://files.example.com/verifications/1/a.jpg")
	rejected := createPendingDocument(t, testDB, farmer.ID, "https://files.example.com/verifications/1/b.jpg")
	testDB.Model(rejected).Updates(map[string]interface{}{
		"status":           model.DocumentStatusRejected,
		"rejection_reason": "Sai loại giấy tờ",
	})

	router.GET("/admin/verifications", func(c *gin.Context) {
		setAuthInContext(c, admin)
		controller.ListDocuments(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/admin/verifications?status=pending", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, float64(1), response["total"])
}

func TestVerificationController_ListDocuments_InvalidStatus(t *testing.T) {
	controller, router, _, _, admin := setupVerificationControllerTest(t)

	router.GET("/admin/verifications", func(c *gin.Context) {
		setAuthInContext(c, admin)
		controller.ListDocuments(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/admin/verifications?status=archived", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, apperrors.ValidationInvalidInput, response["error"])
}

func TestVerificationController_GetMyDocuments(t *testing.T) {
	controller, router, testDB, farmer, _ := setupVerificationControllerTest(t)

	createPendingDocument(t, testDB, farmer.ID, "https://files.example.com/verifications/1/a.jpg")
	createPendingDocument(t, testDB, farmer.ID, "https://files.example.com/verifications/1/b.jpg")

	router.GET("/verifications/me", func(c *gin.Context) {
		setAuthInContext(c, farmer)
		controller.GetMyDocuments(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/verifications/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, float64(2), response["total"])
}

func TestVerificationController_GetDocument_ForbiddenForOtherUser(t *testing.T) {
	controller, router, testDB, farmer, _ := setupVerificationControllerTest(t)

	createPendingDocument(t, testDB, farmer.ID, "https://files.example.com/verifications/1/a.jpg")

	other := &model.User{
		Email:        "other@example.com",
		PasswordHash: "hash",
		Username:     "nongdan02",
		FullName:     "Trần Thị Chín",
		Role:         model.RoleUser,
	}
	testDB.Create(other)

	router.GET("/verifications/:id", func(c *gin.Context) {
		setAuthInContext(c, other)
		controller.GetDocument(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/verifications/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestVerificationController_GetDocument_AdminCanView(t *testing.T) {
	controller, router, testDB, farmer, admin := setupVerificationControllerTest(t)

	createPendingDocument(t, testDB, farmer.ID, "https://files.example.com/verifications/1/a.jpg")

	router.GET("/verifications/:id", func(c *gin.Context) {
		setAuthInContext(c, admin)
		controller.GetDocument(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/verifications/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
