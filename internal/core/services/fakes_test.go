package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"smartcart-auth/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// In-memory repository fakes. All mutation is serialized with a mutex,
// matching the single-row atomicity the storage layer provides.

type memUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1, users: make(map[uint]*models.User)}
}

func (r *memUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = r.nextID
	r.nextID++
	user.CreatedAt = time.Now()
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		clone := *u
		return &clone, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) List(_ context.Context, offset, limit int) ([]*models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*models.User
	for _, u := range r.users {
		clone := *u
		all = append(all, &clone)
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *memUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	if err == nil {
		return true, nil
	}
	return false, nil
}

func (r *memUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	return false, nil
}

func (r *memUserRepo) ExistsByNIC(_ context.Context, nic string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.NIC == nic {
			return true, nil
		}
	}
	return false, nil
}

func (r *memUserRepo) CountByRole(_ context.Context, role string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, u := range r.users {
		if u.Role == role {
			count++
		}
	}
	return count, nil
}

type memTokenRepo struct {
	mu     sync.Mutex
	nextID uint
	rows   map[string]*models.AccessToken
}

func newMemTokenRepo() *memTokenRepo {
	return &memTokenRepo{nextID: 1, rows: make(map[string]*models.AccessToken)}
}

func (r *memTokenRepo) Create(_ context.Context, token *models.AccessToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.create(token)
	return nil
}

func (r *memTokenRepo) create(token *models.AccessToken) {
	token.ID = r.nextID
	r.nextID++
	token.CreatedAt = time.Now()
	clone := *token
	r.rows[token.Token] = &clone
}

func (r *memTokenRepo) GetByToken(_ context.Context, token string) (*models.AccessToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row, ok := r.rows[token]; ok {
		clone := *row
		return &clone, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memTokenRepo) Update(_ context.Context, token *models.AccessToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *token
	r.rows[token.Token] = &clone
	return nil
}

func (r *memTokenRepo) RevokeAllByUserID(_ context.Context, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revokeAll(userID)
	return nil
}

func (r *memTokenRepo) revokeAll(userID uint) {
	for _, row := range r.rows {
		if row.UserID == userID && row.IsLive() {
			row.Revoked = true
			row.Expired = true
		}
	}
}

func (r *memTokenRepo) Rotate(_ context.Context, userID uint, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revokeAll(userID)
	r.create(&models.AccessToken{
		Token:     token,
		TokenType: models.TokenTypeBearer,
		UserID:    userID,
	})
	return nil
}

func (r *memTokenRepo) IsLive(_ context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[token]
	return ok && row.IsLive(), nil
}

func (r *memTokenRepo) DeleteByUserID(_ context.Context, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, row := range r.rows {
		if row.UserID == userID {
			delete(r.rows, key)
		}
	}
	return nil
}

// liveTokensFor snapshots the live token strings for a user
func (r *memTokenRepo) liveTokensFor(userID uint) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var live []string
	for _, row := range r.rows {
		if row.UserID == userID && row.IsLive() {
			live = append(live, row.Token)
		}
	}
	return live
}

func (r *memTokenRepo) rowCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

type memResetCodeRepo struct {
	mu     sync.Mutex
	nextID uint
	rows   []*models.ResetCode
}

func newMemResetCodeRepo() *memResetCodeRepo {
	return &memResetCodeRepo{nextID: 1}
}

func (r *memResetCodeRepo) Create(_ context.Context, code *models.ResetCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	code.ID = r.nextID
	r.nextID++
	code.CreatedAt = time.Now()
	clone := *code
	r.rows = append(r.rows, &clone)
	return nil
}

func (r *memResetCodeRepo) GetByEmailAndCode(_ context.Context, email, code string) (*models.ResetCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.Email == email && row.Code == code {
			clone := *row
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memResetCodeRepo) ExpireAllByEmail(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.Email == email {
			row.Expired = true
		}
	}
	return nil
}

func (r *memResetCodeRepo) DeleteByEmail(_ context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.rows[:0]
	for _, row := range r.rows {
		if row.Email != email {
			kept = append(kept, row)
		}
	}
	r.rows = kept
	return nil
}

func (r *memResetCodeRepo) DeleteExpired(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	kept := r.rows[:0]
	for _, row := range r.rows {
		if row.IsUsable(now) {
			kept = append(kept, row)
		}
	}
	r.rows = kept
	return nil
}

// usableCodesFor snapshots the usable codes for an email
func (r *memResetCodeRepo) usableCodesFor(email string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	var codes []string
	for _, row := range r.rows {
		if row.Email == email && row.IsUsable(now) {
			codes = append(codes, row.Code)
		}
	}
	return codes
}

// seed inserts a code row directly, bypassing the normal flow
func (r *memResetCodeRepo) seed(code *models.ResetCode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	code.ID = r.nextID
	r.nextID++
	clone := *code
	r.rows = append(r.rows, &clone)
}

// fakeMailer records dispatched mail and can simulate gateway failure
type fakeMailer struct {
	mu         sync.Mutex
	failNext   bool
	logins     []sentLogin
	resetCodes []sentCode
}

type sentLogin struct {
	Email    string
	Username string
	Password string
}

type sentCode struct {
	Email string
	Code  string
}

func (m *fakeMailer) SendLoginDetails(email, username, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext {
		m.failNext = false
		return errFakeMailer
	}
	m.logins = append(m.logins, sentLogin{Email: email, Username: username, Password: password})
	return nil
}

func (m *fakeMailer) SendResetCode(email, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext {
		m.failNext = false
		return errFakeMailer
	}
	m.resetCodes = append(m.resetCodes, sentCode{Email: email, Code: code})
	return nil
}

func (m *fakeMailer) lastCode() (sentCode, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.resetCodes) == 0 {
		return sentCode{}, false
	}
	return m.resetCodes[len(m.resetCodes)-1], true
}

var errFakeMailer = errors.New("mail gateway unavailable")
