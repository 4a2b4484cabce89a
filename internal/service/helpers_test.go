package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/templui/passreset/internal/db/dbtest"
	"github.com/templui/passreset/internal/metrics"
	"github.com/templui/passreset/internal/model"
	"github.com/templui/passreset/internal/repository"
	"github.com/templui/passreset/internal/service"
)

const testAppURL = "http://localhost:8090"

type fixture struct {
	db       *sqlx.DB
	tokens   repository.TokenRepository
	users    repository.UserRepository
	accounts *service.AccountService
	mailer   *recordingMailer
	metrics  *metrics.Metrics
	svc      *service.PasswordResetService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, nil)
}

// newFixtureWith wires the service against a real database. directory, when
// non-nil, replaces the account directory handed to the reset service.
func newFixtureWith(t *testing.T, directory func(*service.AccountService) service.AccountDirectory) *fixture {
	t.Helper()

	db := dbtest.New(t)
	f := &fixture{
		db:      db,
		tokens:  repository.NewTokenRepository(db),
		users:   repository.NewUserRepository(db),
		mailer:  &recordingMailer{},
		metrics: metrics.New(prometheus.NewRegistry()),
	}
	f.accounts = service.NewAccountService(f.users, bcrypt.MinCost)

	var accounts service.AccountDirectory = f.accounts
	if directory != nil {
		accounts = directory(f.accounts)
	}

	svc, err := service.NewPasswordResetService(
		f.tokens,
		accounts,
		f.mailer,
		repository.NewTransactor(db),
		f.metrics,
		testAppURL+"/",
		"Acme",
	)
	require.NoError(t, err)
	f.svc = svc
	return f
}

// register creates an account and returns it with its plaintext password.
func (f *fixture) register(ctx context.Context, t *testing.T) (*model.User, string) {
	t.Helper()

	password := gofakeit.Password(true, true, true, false, false, 12)
	user, err := f.accounts.Register(ctx, gofakeit.Email(), gofakeit.Username()+gofakeit.DigitN(4), password)
	require.NoError(t, err)
	return user, password
}

func (f *fixture) tokenCount(t *testing.T) int {
	t.Helper()

	var n int
	require.NoError(t, f.db.Get(&n, `SELECT COUNT(*) FROM reset_tokens`))
	return n
}

// tokenIDFromURL extracts the id from <base>/reset-password/<id>/.
func tokenIDFromURL(t *testing.T, url string) string {
	t.Helper()

	rest, ok := strings.CutPrefix(url, testAppURL+"/reset-password/")
	require.True(t, ok, "unexpected reset url %q", url)
	id, ok := strings.CutSuffix(rest, "/")
	require.True(t, ok, "reset url %q lacks trailing slash", url)
	return id
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []*model.DeliveryMessage
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg *model.DeliveryMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.err
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// failingDirectory writes the new credential and then reports failure, so a
// test can check that the write was rolled back with the token deletion.
type failingDirectory struct {
	*service.AccountService
}

var errDirectoryDown = errors.New("account directory unavailable")

func (d failingDirectory) SetCredential(ctx context.Context, userID, password string) error {
	err := d.AccountService.SetCredential(ctx, userID, password)
	if err != nil {
		return err
	}
	return errDirectoryDown
}

type mockTokenRepository struct {
	mock.Mock
}

func (m *mockTokenRepository) Create(ctx context.Context, userID string) (*model.ResetToken, error) {
	args := m.Called(ctx, userID)
	token, _ := args.Get(0).(*model.ResetToken)
	return token, args.Error(1)
}

func (m *mockTokenRepository) ByID(ctx context.Context, id string) (*model.ResetToken, error) {
	args := m.Called(ctx, id)
	token, _ := args.Get(0).(*model.ResetToken)
	return token, args.Error(1)
}

func (m *mockTokenRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type mockAccountDirectory struct {
	mock.Mock
}

func (m *mockAccountDirectory) FindByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	args := m.Called(ctx, identifier)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *mockAccountDirectory) SetCredential(ctx context.Context, userID, password string) error {
	return m.Called(ctx, userID, password).Error(0)
}

// directTx runs fn without a database transaction.
type directTx struct{}

func (directTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
