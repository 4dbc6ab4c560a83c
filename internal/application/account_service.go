package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/guruunoob/goobex-website/internal/domain/entity"
	repo "github.com/guruunoob/goobex-website/internal/domain/repository"
	"github.com/guruunoob/goobex-website/internal/infrastructure/identity"
	"github.com/guruunoob/goobex-website/pkg/helpers"
	"github.com/guruunoob/goobex-website/pkg/mailer"
)

var (
	// ErrProvisioning marks a login attempt whose account reconciliation
	// failed. The caller must not end up authenticated.
	ErrProvisioning = errors.New("account provisioning failed")
	// ErrNoSession is returned when a session token does not resolve to
	// an active server-side session.
	ErrNoSession = errors.New("no active session")
	// ErrBadState is returned when the callback state nonce is missing,
	// expired, or already consumed.
	ErrBadState = errors.New("invalid oauth state")
)

const stateTTL = 10 * time.Minute

// Exchanger runs the provider side of the authorization-code flow.
type Exchanger interface {
	AuthCodeURL(state string) string
	ExchangePrincipal(ctx context.Context, code string) (*entity.Principal, error)
}

// SessionStore keeps session hashes and OAuth state nonces server-side.
type SessionStore interface {
	SaveSession(ctx context.Context, sid string, fields map[string]string, ttl time.Duration) error
	GetSession(ctx context.Context, sid string) (map[string]string, error)
	DeleteSession(ctx context.Context, sid string) error
	PutState(ctx context.Context, state string, ttl time.Duration) error
	TakeState(ctx context.Context, state string) (bool, error)
}

// Publisher enqueues background jobs (satisfied by helpers.RabbitPublisher).
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

type Service struct {
	Repo       repo.AccountRepository
	Directory  identity.Directory
	OAuth      Exchanger
	Sessions   SessionStore
	JWT        *helpers.JWTManager
	Logger     *logrus.Logger
	SessionTTL time.Duration

	// Optional collaborators; nil disables the feature.
	ES        *elasticsearch.Client
	ESIndex   string
	GCS       *storage.Client
	GCSBucket string
	Pub       Publisher

	AppName     string
	BaseURL     string
	MailEnabled bool

	httpClient *http.Client
}

func NewService(r repo.AccountRepository, dir identity.Directory, ex Exchanger, sessions SessionStore, jwt *helpers.JWTManager, logger *logrus.Logger, sessionTTL time.Duration) *Service {
	return &Service{
		Repo:       r,
		Directory:  dir,
		OAuth:      ex,
		Sessions:   sessions,
		JWT:        jwt,
		Logger:     logger,
		SessionTTL: sessionTTL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

// BeginLogin mints a one-time state nonce and returns the provider
// consent URL to redirect the caller to.
func (s *Service) BeginLogin(ctx context.Context) (string, error) {
	state := uuid.NewString()
	if err := s.Sessions.PutState(ctx, state, stateTTL); err != nil {
		return "", err
	}
	return s.OAuth.AuthCodeURL(state), nil
}

// CompleteLogin finishes the callback: state check, code exchange,
// provisioning, then session issue. The session exists only if every
// prior step succeeded, so a provisioning failure can never leave the
// caller authenticated.
func (s *Service) CompleteLogin(ctx context.Context, state, code string) (string, time.Time, error) {
	ok, err := s.Sessions.TakeState(ctx, state)
	if err != nil {
		return "", time.Time{}, err
	}
	if !ok {
		return "", time.Time{}, ErrBadState
	}

	p, err := s.OAuth.ExchangePrincipal(ctx, code)
	if err != nil {
		return "", time.Time{}, err
	}
	if err := s.Provision(ctx, p); err != nil {
		return "", time.Time{}, err
	}
	return s.IssueSession(ctx, p)
}

// Provision reconciles an OAuth principal with an account record,
// creating both the directory user and the record on first-ever login
// for the email. Repeat logins are a no-op.
func (s *Service) Provision(ctx context.Context, p *entity.Principal) error {
	_, err := s.Directory.GetUserByEmail(ctx, p.Email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, identity.ErrUserNotFound) {
		// Unclassified lookup errors must not fall into the create
		// branch.
		return fmt.Errorf("%w: %v", ErrProvisioning, err)
	}

	placeholder, err := helpers.GenPlaceholderPassword()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProvisioning, err)
	}
	hash, err := helpers.HashPassword(placeholder)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProvisioning, err)
	}
	if _, err := s.Directory.CreateUser(ctx, p.Email, hash); err != nil {
		return fmt.Errorf("%w: %v", ErrProvisioning, err)
	}

	acc := &entity.Account{
		Email:       p.Email,
		Username:    p.GivenName,
		DisplayName: p.GivenName,
		Description: "",
		ThumbURL:    s.mirrorThumb(ctx, p.Picture),
		Locale:      p.Locale,
	}
	created, err := s.Repo.CreateIfAbsent(ctx, acc)
	if err != nil {
		// No rollback of the directory user: the next login finds it
		// and retries the idempotent insert.
		return fmt.Errorf("%w: %v", ErrProvisioning, err)
	}
	if created {
		s.indexAccount(ctx, acc)
		s.sendWelcome(ctx, acc)
	}
	return nil
}

// IssueSession stores the principal server-side under a fresh session
// id and returns the signed token for the cookie.
func (s *Service) IssueSession(ctx context.Context, p *entity.Principal) (string, time.Time, error) {
	sid := uuid.NewString()
	token, exp, err := s.JWT.GenerateSessionToken(sid)
	if err != nil {
		return "", time.Time{}, err
	}
	fields := map[string]string{
		"email":      p.Email,
		"given_name": p.GivenName,
		"picture":    p.Picture,
		"locale":     p.Locale,
		"created_at": time.Now().UTC().Format(time.RFC3339Nano),
	}
	if err := s.Sessions.SaveSession(ctx, sid, fields, s.SessionTTL); err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

// ResolveSession maps a session token back to its principal. The
// identity provider is not consulted; the session is trusted until it
// expires or is ended.
func (s *Service) ResolveSession(ctx context.Context, token string) (*entity.Principal, error) {
	claims, err := s.JWT.ParseSessionToken(token)
	if err != nil {
		return nil, ErrNoSession
	}
	data, err := s.Sessions.GetSession(ctx, claims.SessionID)
	if err != nil || len(data) == 0 {
		return nil, ErrNoSession
	}
	return &entity.Principal{
		Email:     data["email"],
		GivenName: data["given_name"],
		Picture:   data["picture"],
		Locale:    data["locale"],
	}, nil
}

// EndSession invalidates the server-side session. Idempotent: an
// unknown or garbage token is not an error.
func (s *Service) EndSession(ctx context.Context, token string) error {
	claims, err := s.JWT.ParseSessionToken(token)
	if err != nil {
		return nil
	}
	return s.Sessions.DeleteSession(ctx, claims.SessionID)
}

func (s *Service) ListAccounts(ctx context.Context) ([]entity.Account, error) {
	return s.Repo.List(ctx)
}

func (s *Service) AccountByEmail(ctx context.Context, email string) (*entity.Account, error) {
	return s.Repo.GetByEmail(ctx, email)
}

func (s *Service) AccountByUsername(ctx context.Context, username string) (*entity.Account, error) {
	return s.Repo.GetByUsername(ctx, username)
}

// mirrorThumb copies the provider avatar into the GCS bucket so the
// thumb URL stays stable after the provider rotates theirs. Best
// effort: any failure falls back to the original picture URL.
func (s *Service) mirrorThumb(ctx context.Context, pictureURL string) string {
	if pictureURL == "" {
		return ""
	}
	if s.GCS == nil || s.GCSBucket == "" {
		return pictureURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pictureURL, nil)
	if err != nil {
		return pictureURL
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logWarn("avatar fetch failed", err, logrus.Fields{"url": pictureURL})
		return pictureURL
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return pictureURL
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	object := path.Join("avatars", uuid.NewString())
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, object, contentType, resp.Body)
	if err != nil {
		s.logWarn("avatar upload failed", err, logrus.Fields{"object": object})
		return pictureURL
	}
	return url
}

func (s *Service) indexAccount(ctx context.Context, a *entity.Account) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	doc := map[string]any{
		"email":       a.Email,
		"username":    a.Username,
		"displayName": a.DisplayName,
		"description": a.Description,
		"thumbUrl":    a.ThumbURL,
		"locale":      a.Locale,
		"created_at":  a.CreatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: a.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.logWarn("es index failed", err, logrus.Fields{"account_id": a.ID})
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		s.logWarn("es index response error", nil, logrus.Fields{"status": res.Status(), "account_id": a.ID})
	}
}

// SearchAccounts performs a multi_match search over the accounts index.
func (s *Service) SearchAccounts(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"username^2", "displayName", "description"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

func (s *Service) sendWelcome(ctx context.Context, a *entity.Account) {
	if s.Pub == nil || !s.MailEnabled {
		return
	}
	job := mailer.EmailJob{
		To:       a.Email,
		Template: mailer.TemplateWelcome,
		Data: map[string]any{
			"AppName":     s.AppName,
			"DisplayName": a.DisplayName,
			"Email":       a.Email,
			"ProfileURL":  s.BaseURL + "/profile/" + a.Username,
		},
	}
	if err := s.Pub.PublishJSON(ctx, job); err != nil {
		s.logWarn("welcome email enqueue failed", err, logrus.Fields{"email": a.Email})
	}
}

func (s *Service) logWarn(msg string, err error, fields logrus.Fields) {
	if s.Logger == nil {
		return
	}
	e := s.Logger.WithFields(fields)
	if err != nil {
		e = e.WithError(err)
	}
	e.Warn(msg)
}
