package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jangguenhee/vmc-saju/internal/models/db_models"
	"github.com/jangguenhee/vmc-saju/pkg/aiclient"
	"github.com/jangguenhee/vmc-saju/pkg/tosspay"
)

// In-memory fakes implementing the repository and client interfaces.
// They mirror the conditional-update semantics of the real gorm
// implementations, which is what most of the tests exercise.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*db_models.User

	failFind bool
}

func newFakeUserRepo(users ...*db_models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*db_models.User)}
	for _, u := range users {
		copied := *u
		repo.users[u.ID] = &copied
	}
	return repo
}

func (r *fakeUserRepo) get(id string) *db_models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id]
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*db_models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFind {
		return nil, fmt.Errorf("connection refused")
	}
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) Insert(_ context.Context, user *db_models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.ID]; exists {
		return fmt.Errorf("duplicate key")
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, id, email string, name *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.Email = email
		u.Name = name
	}
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) DecrementTestsRemaining(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.Plan != db_models.PlanFree || u.TestsRemaining <= 0 {
		return false, nil
	}
	u.TestsRemaining--
	return true, nil
}

func (r *fakeUserRepo) MarkDailyReportSent(_ context.Context, id, today string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.Plan != db_models.PlanPaid {
		return false, nil
	}
	if u.LastDailyReportDate != nil && *u.LastDailyReportDate >= today {
		return false, nil
	}
	date := today
	u.LastDailyReportDate = &date
	return true, nil
}

func (r *fakeUserRepo) AdvanceBillingDate(_ context.Context, id, prev, next string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.NextBillingDate == nil || *u.NextBillingDate != prev {
		return false, nil
	}
	date := next
	u.NextBillingDate = &date
	return true, nil
}

func (r *fakeUserRepo) ActivatePaid(_ context.Context, id string, billingKey *string, nextBillingDate string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.Plan = db_models.PlanPaid
		u.BillingKey = billingKey
		date := nextBillingDate
		u.NextBillingDate = &date
	}
	return nil
}

func (r *fakeUserRepo) Suspend(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.Plan = db_models.PlanSuspended
	}
	return nil
}

func (r *fakeUserRepo) CancelSubscription(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.Plan = db_models.PlanCancelled
		u.BillingKey = nil
	}
	return nil
}

func (r *fakeUserRepo) ListDueForBilling(_ context.Context, today string) ([]db_models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var due []db_models.User
	for _, u := range r.users {
		if u.Plan == db_models.PlanPaid && u.BillingKey != nil &&
			u.NextBillingDate != nil && *u.NextBillingDate == today {
			due = append(due, *u)
		}
	}
	return due, nil
}

func (r *fakeUserRepo) ListDueForDailyReport(_ context.Context, today string) ([]db_models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var due []db_models.User
	for _, u := range r.users {
		if u.Plan == db_models.PlanPaid &&
			(u.LastDailyReportDate == nil || *u.LastDailyReportDate < today) {
			due = append(due, *u)
		}
	}
	return due, nil
}

type fakeAnalysisRepo struct {
	mu       sync.Mutex
	analyses []*db_models.Analysis

	failInsert bool
}

func newFakeAnalysisRepo() *fakeAnalysisRepo {
	return &fakeAnalysisRepo{}
}

func (r *fakeAnalysisRepo) Insert(_ context.Context, analysis *db_models.Analysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failInsert {
		return fmt.Errorf("insert failed")
	}
	if analysis.ID == uuid.Nil {
		analysis.ID = uuid.New()
	}
	if analysis.CreatedAt == 0 {
		analysis.CreatedAt = time.Now().Unix()
	}
	copied := *analysis
	r.analyses = append(r.analyses, &copied)
	return nil
}

func (r *fakeAnalysisRepo) FindByID(_ context.Context, id string) (*db_models.Analysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.analyses {
		if a.ID.String() == id {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeAnalysisRepo) ListRecentByUser(_ context.Context, userID string, limit int) ([]db_models.Analysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []db_models.Analysis
	for i := len(r.analyses) - 1; i >= 0 && len(out) < limit; i-- {
		if r.analyses[i].UserID == userID {
			out = append(out, *r.analyses[i])
		}
	}
	return out, nil
}

func (r *fakeAnalysisRepo) LatestByUser(_ context.Context, userID string) (*db_models.Analysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.analyses) - 1; i >= 0; i-- {
		if r.analyses[i].UserID == userID {
			copied := *r.analyses[i]
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeAnalysisRepo) CountDailyInRange(_ context.Context, userID string, start, end int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, a := range r.analyses {
		if a.UserID == userID && a.Type == db_models.AnalysisDaily &&
			a.CreatedAt >= start && a.CreatedAt < end {
			count++
		}
	}
	return count, nil
}

type fakePaymentLogRepo struct {
	mu   sync.Mutex
	logs []*db_models.PaymentLog
}

func newFakePaymentLogRepo() *fakePaymentLogRepo {
	return &fakePaymentLogRepo{}
}

func (r *fakePaymentLogRepo) Insert(_ context.Context, log *db_models.PaymentLog) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.logs {
		if existing.OrderID == log.OrderID && existing.Status == log.Status {
			return false, nil
		}
	}
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	copied := *log
	r.logs = append(r.logs, &copied)
	return true, nil
}

func (r *fakePaymentLogRepo) ListByUser(_ context.Context, userID string, limit int) ([]db_models.PaymentLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []db_models.PaymentLog
	for i := len(r.logs) - 1; i >= 0 && len(out) < limit; i-- {
		if r.logs[i].UserID == userID {
			out = append(out, *r.logs[i])
		}
	}
	return out, nil
}

func (r *fakePaymentLogRepo) byStatus(status db_models.PaymentStatus) []*db_models.PaymentLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*db_models.PaymentLog
	for _, log := range r.logs {
		if log.Status == status {
			out = append(out, log)
		}
	}
	return out
}

// stubAIClient counts calls and returns a canned valid result, or an
// error when failing is set.
type stubAIClient struct {
	mu      sync.Mutex
	calls   int
	failing bool

	markdown   string
	json       map[string]interface{}
	onGenerate func() // runs inside Generate, before returning
}

func validReportJSON(t aiclient.ReportType) map[string]interface{} {
	j := map[string]interface{}{
		"overall_score": float64(78),
		"fortune_aspects": map[string]interface{}{
			"career":       map[string]interface{}{"score": float64(80)},
			"wealth":       map[string]interface{}{"score": float64(70)},
			"health":       map[string]interface{}{"score": float64(75)},
			"relationship": map[string]interface{}{"score": float64(82)},
		},
		"lucky_elements": []interface{}{"물", "북쪽"},
		"warnings":       []interface{}{"과로 주의"},
	}
	if t == aiclient.ReportDaily {
		j["date"] = "2026-08-28"
		j["time_slots"] = map[string]interface{}{
			"morning":   map[string]interface{}{"score": float64(70)},
			"afternoon": map[string]interface{}{"score": float64(80)},
			"evening":   map[string]interface{}{"score": float64(60)},
		}
	}
	return j
}

func newStubAIClient() *stubAIClient {
	return &stubAIClient{markdown: "# 사주 분석\n\n전반적으로 좋은 흐름입니다."}
}

func (c *stubAIClient) Generate(_ context.Context, opts aiclient.Options) (*aiclient.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.onGenerate != nil {
		c.onGenerate()
	}
	if c.failing {
		return nil, fmt.Errorf("upstream unavailable")
	}
	j := c.json
	if j == nil {
		j = validReportJSON(opts.Type)
	}
	return &aiclient.Result{Markdown: c.markdown, JSON: j}, nil
}

func (c *stubAIClient) ModelName(t aiclient.ReportType) string {
	if t == aiclient.ReportDaily {
		return "stub-pro"
	}
	return "stub-flash"
}

func (c *stubAIClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// stubTossClient records charges and can be told to refuse them.
type stubTossClient struct {
	mu sync.Mutex

	charges       []string // order ids
	approved      []string // payment keys
	deletedKeys   []string
	chargeErr     error
	approveErr    error
	deleteErr     error
	returnBilling string
}

func newStubTossClient() *stubTossClient {
	return &stubTossClient{}
}

func (c *stubTossClient) ApprovePayment(_ context.Context, paymentKey, orderID string, amount int64) (*tosspay.Payment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.approveErr != nil {
		return nil, c.approveErr
	}
	c.approved = append(c.approved, paymentKey)
	return &tosspay.Payment{
		PaymentKey:  paymentKey,
		OrderID:     orderID,
		Status:      "DONE",
		TotalAmount: amount,
		BillingKey:  c.returnBilling,
	}, nil
}

func (c *stubTossClient) ChargeWithBillingKey(_ context.Context, billingKey, customerKey string, amount int64, orderID, orderName string) (*tosspay.Payment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.chargeErr != nil {
		return nil, c.chargeErr
	}
	c.charges = append(c.charges, orderID)
	return &tosspay.Payment{
		PaymentKey:  "pay_" + orderID,
		OrderID:     orderID,
		Status:      "DONE",
		TotalAmount: amount,
		BillingKey:  billingKey,
	}, nil
}

func (c *stubTossClient) DeleteBillingKey(_ context.Context, billingKey, customerKey string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deleteErr != nil {
		return c.deleteErr
	}
	c.deletedKeys = append(c.deletedKeys, billingKey)
	return nil
}

func (c *stubTossClient) chargeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.charges)
}

func strPtr(s string) *string { return &s }

func quickRetry() aiclient.RetryConfig {
	return aiclient.RetryConfig{
		MaxRetries:     2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
		Timeout:        time.Second,
	}
}
