package service

import (
	"testing"
	"time"

	"github.com/nongdanviet/nongdanviet-backend/internal/app/model"
	"github.com/nongdanviet/nongdanviet-backend/internal/app/repository"
	"github.com/nongdanviet/nongdanviet-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupVerificationServiceTest(t *testing.T) (VerificationService, *model.User, *model.User, *gorm.DB) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	verificationRepo := repository.NewVerificationRepository(testDB)
	userRepo := repository.NewUserRepository(testDB)
	transactionRepo := repository.NewTransactionRepository(testDB)
	svc := NewVerificationService(verificationRepo, userRepo, transactionRepo)

	farmer := &model.User{
		Email:        "nongdan@example.com",
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

	return svc, farmer, admin, testDB
}

func submitTestDocument(t *testing.T, svc VerificationService, userID uint) *model.VerificationDocument {
	doc, err := svc.SubmitDocument(userID, SubmissionInput{
		DocumentType: model.DocumentTypeFarmingCertificate,
		DocumentURL:  "https://cdn.example.com/u1/1700000000.jpg",
	})
	require.NoError(t, err)
	return doc
}

func TestVerificationService_SubmitDocument(t *testing.T) {
	svc, farmer, _, _ := setupVerificationServiceTest(t)

	doc, err := svc.SubmitDocument(farmer.ID, SubmissionInput{
		DocumentType: model.DocumentTypeFarmingCertificate,
		DocumentURL:  "http://x/a.jpg",
	})
	require.NoError(t, err)

	assert.Equal(t, model.DocumentStatusPending, doc.Status)
	assert.Nil(t, doc.VerifiedBy)
	assert.Nil(t, doc.VerifiedAt)
	assert.Equal(t, farmer.ID, doc.UserID)
	assert.NotZero(t, doc.ID)
}

func TestVerificationService_SubmitDocument_InvalidType(t *testing.T) {
	svc, farmer, _, _ := setupVerificationServiceTest(t)

	_, err := svc.SubmitDocument(farmer.ID, SubmissionInput{
		DocumentType: "so_do",
		DocumentURL:  "http://x/a.jpg",
	})
	assert.ErrorIs(t, err, ErrInvalidDocumentType)
}

func TestVerificationService_SubmitDocument_MissingURL(t *testing.T) {
	svc, farmer, _, _ := setupVerificationServiceTest(t)

	_, err := svc.SubmitDocument(farmer.ID, SubmissionInput{
		DocumentType: model.DocumentTypeOther,
		DocumentURL:  "   ",
	})
	assert.ErrorIs(t, err, ErrMissingDocumentURL)
}

func TestVerificationService_SubmitDocument_DuplicateTransaction(t *testing.T) {
	svc, farmer, _, testDB := setupVerificationServiceTest(t)

	tx := &model.CreditTransaction{UserID: farmer.ID, Amount: 5000000}
	testDB.Create(tx)

	_, err := svc.SubmitDocument(farmer.ID, SubmissionInput{
		TransactionID: &tx.ID,
		DocumentType:  model.DocumentTypeBusinessLicense,
		DocumentURL:   "http://x/a.jpg",
	})
	require.NoError(t, err)

	// Giao dịch đã có hồ sơ pending: nộp thêm bị chặn
	_, err = svc.SubmitDocument(farmer.ID, SubmissionInput{
		TransactionID: &tx.ID,
		DocumentType:  model.DocumentTypeBusinessLicense,
		DocumentURL:   "http://x/b.jpg",
	})
	assert.ErrorIs(t, err, ErrDuplicateSubmission)
}

func TestVerificationService_SubmitDocument_UnknownTransaction(t *testing.T) {
	svc, farmer, _, _ := setupVerificationServiceTest(t)

	missing := uint(99999)
	_, err := svc.SubmitDocument(farmer.ID, SubmissionInput{
		TransactionID: &missing,
		DocumentType:  model.DocumentTypeBusinessLicense,
		DocumentURL:   "http://x/a.jpg",
	})
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestVerificationService_SubmitDocument_AfterRejectionAllowed(t *testing.T) {
	svc, farmer, admin, testDB := setupVerificationServiceTest(t)

	tx := &model.CreditTransaction{UserID: farmer.ID, Amount: 5000000}
	testDB.Create(tx)

	doc, err := svc.SubmitDocument(farmer.ID, SubmissionInput{
		TransactionID: &tx.ID,
		DocumentType:  model.DocumentTypeFarmingCertificate,
		DocumentURL:   "http://x/a.jpg",
	})
	require.NoError(t, err)

	_, err = svc.Decide(doc.ID, ActionReject, admin.ID, "Ảnh không rõ")
	require.NoError(t, err)

	// Hồ sơ trước đã bị từ chối: được nộp lại cho cùng giao dịch
	_, err = svc.SubmitDocument(farmer.ID, SubmissionInput{
		TransactionID: &tx.ID,
		DocumentType:  model.DocumentTypeFarmingCertificate,
		DocumentURL:   "http://x/b.jpg",
	})
	assert.NoError(t, err)
}

func TestVerificationService_Decide_Approve(t *testing.T) {
	svc, farmer, admin, testDB := setupVerificationServiceTest(t)
	doc := submitTestDocument(t, svc, farmer.ID)

	updated, err := svc.Decide(doc.ID, ActionApprove, admin.ID, "")
	require.NoError(t, err)

	assert.Equal(t, model.DocumentStatusApproved, updated.Status)
	require.NotNil(t, updated.VerifiedBy)
	assert.Equal(t, admin.ID, *updated.VerifiedBy)
	assert.NotNil(t, updated.VerifiedAt)
	assert.Empty(t, updated.RejectionReason)

	// Người nộp được đánh dấu đã xác minh
	var refreshed model.User
	testDB.First(&refreshed, farmer.ID)
	assert.True(t, refreshed.IsVerified)
}

func TestVerificationService_Decide_ApproveWithoutEvidence(t *testing.T) {
	svc, farmer, admin, testDB := setupVerificationServiceTest(t)

	// Hồ sơ không có ảnh minh chứng (ghi ngoài luồng service)
	doc := &model.VerificationDocument{
		UserID:       farmer.ID,
		DocumentType: model.DocumentTypeOther,
		DocumentURL:  "",
		Status:       model.DocumentStatusPending,
	}
	testDB.Create(doc)

	_, err := svc.Decide(doc.ID, ActionApprove, admin.ID, "")
	assert.ErrorIs(t, err, ErrMissingEvidence)

	// Bản ghi lưu trữ không thay đổi
	var stored model.VerificationDocument
	testDB.First(&stored, doc.ID)
	assert.Equal(t, model.DocumentStatusPending, stored.Status)
	assert.Nil(t, stored.VerifiedBy)
	assert.Nil(t, stored.VerifiedAt)
}

func TestVerificationService_Decide_Reject(t *testing.T) {
	svc, farmer, admin, _ := setupVerificationServiceTest(t)
	doc := submitTestDocument(t, svc, farmer.ID)

	// Thiếu lý do: bị chặn
	_, err := svc.Decide(doc.ID, ActionReject, admin.ID, "")
	assert.ErrorIs(t, err, ErrMissingReason)

	// Lý do chỉ có khoảng trắng cũng bị chặn
	_, err = svc.Decide(doc.ID, ActionReject, admin.ID, "   ")
	assert.ErrorIs(t, err, ErrMissingReason)

	// Có lý do: thành công
	updated, err := svc.Decide(doc.ID, ActionReject, admin.ID, "Ảnh không rõ")
	require.NoError(t, err)
	assert.Equal(t, model.DocumentStatusRejected, updated.Status)
	assert.Equal(t, "Ảnh không rõ", updated.RejectionReason)
	require.NotNil(t, updated.VerifiedBy)
	assert.Equal(t, admin.ID, *updated.VerifiedBy)
	assert.NotNil(t, updated.VerifiedAt)
}

func TestVerificationService_Decide_AlreadyDecided(t *testing.T) {
	svc, farmer, admin, _ := setupVerificationServiceTest(t)
	doc := submitTestDocument(t, svc, farmer.ID)

	first, err := svc.Decide(doc.ID, ActionApprove, admin.ID, "")
	require.NoError(t, err)

	// Quyết định thứ hai trên hồ sơ đã chốt: bị từ chối và không đổi gì
	_, err = svc.Decide(doc.ID, ActionReject, admin.ID, "abc")
	assert.ErrorIs(t, err, ErrAlreadyDecided)

	after, err := svc.GetByID(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Status, after.Status)
	assert.Equal(t, *first.VerifiedBy, *after.VerifiedBy)
	assert.Empty(t, after.RejectionReason)
}

func TestVerificationService_Decide_InvalidAction(t *testing.T) {
	svc, farmer, admin, _ := setupVerificationServiceTest(t)
	doc := submitTestDocument(t, svc, farmer.ID)

	_, err := svc.Decide(doc.ID, "escalate", admin.ID, "")
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestVerificationService_Decide_NotFound(t *testing.T) {
	svc, _, admin, _ := setupVerificationServiceTest(t)

	_, err := svc.Decide(9999, ActionApprove, admin.ID, "")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

// Hai người duyệt cùng thấy hồ sơ pending rồi cùng gửi quyết định:
// đúng một bên thắng, bên kia nhận ErrAlreadyDecided.
func TestVerificationService_Decide_ConcurrentRace(t *testing.T) {
	svc, farmer, admin, testDB := setupVerificationServiceTest(t)
	doc := submitTestDocument(t, svc, farmer.ID)

	reviewer2 := &model.User{
		Email:        "admin2@example.com",
		PasswordHash: "hash",
		Username:     "admin02",
		FullName:     "Quản Trị Viên 2",
		Role:         model.RoleAdmin,
	}
	testDB.Create(reviewer2)

	// Cả hai đã qua bước kiểm tra tiền điều kiện (đều thấy pending);
	// ghi xuống bằng UPDATE có điều kiện ở tầng repository
	repo := repository.NewVerificationRepository(testDB)

	approved, err := repo.Decide(doc.ID, repository.DecisionUpdate{
		Status:     model.DocumentStatusApproved,
		VerifiedBy: admin.ID,
		VerifiedAt: time.Now(),
	})
	require.NoError(t, err)

	rejected, err := repo.Decide(doc.ID, repository.DecisionUpdate{
		Status:          model.DocumentStatusRejected,
		VerifiedBy:      reviewer2.ID,
		VerifiedAt:      time.Now(),
		RejectionReason: "abc",
	})
	require.NoError(t, err)

	assert.True(t, approved)
	assert.False(t, rejected, "second conditional write must not apply")

	stored, err := svc.GetByID(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DocumentStatusApproved, stored.Status)
	assert.Equal(t, admin.ID, *stored.VerifiedBy)
}

func TestVerificationService_List_FilterByStatus(t *testing.T) {
	svc, farmer, admin, _ := setupVerificationServiceTest(t)

	pending := submitTestDocument(t, svc, farmer.ID)
	approvedDoc := submitTestDocument(t, svc, farmer.ID)
	rejectedDoc := submitTestDocument(t, svc, farmer.ID)

	_, err := svc.Decide(approvedDoc.ID, ActionApprove, admin.ID, "")
	require.NoError(t, err)
	_, err = svc.Decide(rejectedDoc.ID, ActionReject, admin.ID, "Thiếu con dấu")
	require.NoError(t, err)

	// Chỉ còn đúng một hồ sơ pending
	summaries, err := svc.List(model.DocumentStatusPending)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, pending.ID, summaries[0].Document.ID)
	assert.Equal(t, "nongdan01", summaries[0].Submitter.Username)
	assert.Nil(t, summaries[0].Reviewer)

	// Danh sách đã duyệt có danh tính người duyệt
	summaries, err = svc.List(model.DocumentStatusApproved)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.NotNil(t, summaries[0].Reviewer)
	assert.Equal(t, admin.ID, summaries[0].Reviewer.ID)

	// Không lọc: trả về cả ba, gọi hai lần cho kết quả giống hệt nhau
	all1, err := svc.List("")
	require.NoError(t, err)
	all2, err := svc.List("")
	require.NoError(t, err)
	require.Len(t, all1, 3)
	for i := range all1 {
		assert.Equal(t, all1[i].Document.ID, all2[i].Document.ID)
	}
}

func TestVerificationService_GetByTransaction(t *testing.T) {
	svc, farmer, _, testDB := setupVerificationServiceTest(t)

	tx := &model.CreditTransaction{UserID: farmer.ID, Amount: 2000000}
	testDB.Create(tx)

	_, err := svc.GetByTransaction(tx.ID)
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	doc, err := svc.SubmitDocument(farmer.ID, SubmissionInput{
		TransactionID: &tx.ID,
		DocumentType:  model.DocumentTypeFarmingCertificate,
		DocumentURL:   "http://x/a.jpg",
	})
	require.NoError(t, err)

	found, err := svc.GetByTransaction(tx.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, found.ID)
}

func TestFilterByStatus(t *testing.T) {
	now := time.Now()
	docs := []model.VerificationDocument{
		{ID: 1, Status: model.DocumentStatusPending, CreatedAt: now.Add(-3 * time.Hour)},
		{ID: 2, Status: model.DocumentStatusApproved, CreatedAt: now.Add(-2 * time.Hour)},
		{ID: 3, Status: model.DocumentStatusPending, CreatedAt: now.Add(-1 * time.Hour)},
		{ID: 4, Status: model.DocumentStatusRejected, CreatedAt: now},
		{ID: 5, Status: model.DocumentStatusPending, CreatedAt: now.Add(-1 * time.Hour)}, // trùng thời điểm với ID 3
	}

	pending := FilterByStatus(docs, model.DocumentStatusPending)
	require.Len(t, pending, 3)
	// Mới nhất trước; trùng thời điểm thì id lớn hơn đứng trước
	assert.Equal(t, uint(5), pending[0].ID)
	assert.Equal(t, uint(3), pending[1].ID)
	assert.Equal(t, uint(1), pending[2].ID)

	all := FilterByStatus(docs, "")
	require.Len(t, all, 5)
	assert.Equal(t, uint(4), all[0].ID)

	rejected := FilterByStatus(docs, model.DocumentStatusRejected)
	require.Len(t, rejected, 1)
	assert.Equal(t, uint(4), rejected[0].ID)
}
