package app

import (
	"context"
	"crypto/rand"
	"errors"
	"log"
	"math/big"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"juridico/api/internal/auth"
	"juridico/api/internal/chat"
	"juridico/api/internal/collection"
	"juridico/api/internal/config"
	"juridico/api/internal/email"
	"juridico/api/internal/export"
	"juridico/api/internal/notify"
	"juridico/api/internal/search"
	"juridico/api/internal/session"
	"juridico/api/internal/storage"
	"juridico/api/internal/store"
	"juridico/api/internal/util"
)

// Session is the authenticated hosted-backend identity attached to a request.
type Session struct {
	Token        string
	RefreshToken string
	ProfileID    string
	DisplayName  string
	Email        string
	JTI          string
	ExpiresAt    time.Time
}

// profileStore is the slice of the hosted backend the service needs.
type profileStore interface {
	Ping(ctx context.Context) error
	GetProfile(ctx context.Context, id string) (store.Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (store.Profile, error)
	ListProfiles(ctx context.Context) ([]store.Profile, error)
	CreateProfile(ctx context.Context, profile store.Profile) error
	UpdateProfile(ctx context.Context, id, displayName, avatarURL string) error
}

// Deps bundles the service's collaborators.
type Deps struct {
	Data     *collection.Store
	Storage  *storage.Coordinator
	Profiles profileStore
	Sessions *session.RedisStore
	Bridge   *chat.Bridge
	Search   *search.Service
	Export   *export.Service
	Email    *email.Service
	Alerts   *notify.Buffer
}

type Service struct {
	cfg      config.Config
	data     *collection.Store
	storage  *storage.Coordinator
	profiles profileStore
	sessions *session.RedisStore
	bridge   *chat.Bridge
	search   *search.Service
	export   *export.Service
	email    *email.Service
	alerts   *notify.Buffer
	now      func() time.Time
}

func New(cfg config.Config, deps Deps) *Service {
	return &Service{
		cfg:      cfg,
		data:     deps.Data,
		storage:  deps.Storage,
		profiles: deps.Profiles,
		sessions: deps.Sessions,
		bridge:   deps.Bridge,
		search:   deps.Search,
		export:   deps.Export,
		email:    deps.Email,
		alerts:   deps.Alerts,
		now:      time.Now,
	}
}

// APIKey returns the key the frontend must present on every request.
func (s *Service) APIKey() string {
	return s.cfg.APIKey
}

func (s *Service) Ping(ctx context.Context) error {
	return s.profiles.Ping(ctx)
}

// mutate applies fn to the data set and persists through the coordinator.
// A persistence failure has already been surfaced as a notification by the
// coordinator, so it is logged here rather than returned: the in-memory
// mutation stands either way.
func (s *Service) mutate(ctx context.Context, fn func(*collection.Data) error) error {
	var opErr error
	err := s.data.Update(ctx, func(d *collection.Data) {
		opErr = fn(d)
	})
	if opErr != nil {
		return opErr
	}
	if err != nil {
		log.Printf("app: persist failed: %v", err)
	}
	return nil
}

// ---- Auth against the hosted backend ----

// Bootstrap creates the configured admin account when it does not exist yet.
// Without it a fresh deployment has an empty profiles table and no way to log
// in. Idempotent: an existing account with the same e-mail is left untouched.
func (s *Service) Bootstrap(ctx context.Context) error {
	if s.cfg.AdminEmail == "" || s.cfg.AdminPassword == "" {
		return nil
	}
	_, err := s.profiles.GetProfileByEmail(ctx, s.cfg.AdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(s.cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	profile := store.Profile{
		ID:           util.NewID("prof"),
		DisplayName:  s.cfg.AdminName,
		Email:        s.cfg.AdminEmail,
		PasswordHash: string(hash),
	}
	if err := s.profiles.CreateProfile(ctx, profile); err != nil {
		return err
	}
	log.Printf("app: created admin account %s", profile.Email)
	return nil
}

func (s *Service) Login(ctx context.Context, emailAddr, password string) (Session, error) {
	profile, err := s.profiles.GetProfileByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Session{}, domainError(http.StatusUnauthorized, "INVALID_CREDENTIALS", "E-mail ou senha inválidos", nil)
		}
		return Session{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)) != nil {
		return Session{}, domainError(http.StatusUnauthorized, "INVALID_CREDENTIALS", "E-mail ou senha inválidos", nil)
	}
	return s.issueSession(ctx, profile)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	tokenHash := auth.HashToken(refreshToken)
	data, err := s.sessions.Lookup(ctx, tokenHash)
	if err != nil {
		return Session{}, err
	}
	if err := s.sessions.Revoke(ctx, tokenHash); err != nil {
		return Session{}, err
	}
	profile, err := s.profiles.GetProfile(ctx, data.ProfileID)
	if err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, profile)
}

func (s *Service) issueSession(ctx context.Context, profile store.Profile) (Session, error) {
	now := s.now()
	expiresAt := now.Add(s.cfg.AccessTTL)
	jti := util.NewID("jti")

	token, err := auth.IssueToken([]byte(s.cfg.TokenSecret), auth.Claims{
		Sub:   profile.ID,
		Name:  profile.DisplayName,
		Email: profile.Email,
		JTI:   jti,
		Exp:   expiresAt.Unix(),
	})
	if err != nil {
		return Session{}, err
	}

	refresh := util.NewID("rft") + util.NewID("")
	refreshExpires := now.Add(s.cfg.RefreshTTL)
	if err := s.sessions.Save(ctx, auth.HashToken(refresh), profile.ID, profile.DisplayName, refreshExpires); err != nil {
		return Session{}, err
	}

	return Session{
		Token:        token,
		RefreshToken: refresh,
		ProfileID:    profile.ID,
		DisplayName:  profile.DisplayName,
		Email:        profile.Email,
		JTI:          jti,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *Service) SessionFromToken(ctx context.Context, token string) (Session, error) {
	claims, err := auth.ParseToken([]byte(s.cfg.TokenSecret), token)
	if err != nil {
		return Session{}, err
	}
	profile, err := s.profiles.GetProfile(ctx, claims.Sub)
	if err != nil {
		return Session{}, err
	}
	return Session{
		Token:       token,
		ProfileID:   profile.ID,
		DisplayName: profile.DisplayName,
		Email:       profile.Email,
		JTI:         claims.JTI,
		ExpiresAt:   time.Unix(claims.Exp, 0),
	}, nil
}

func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken != "" {
		_ = s.sessions.Revoke(ctx, auth.HashToken(refreshToken))
	}
	return nil
}

// ---- Storage coordination ----

// SelectDirectory grants (or cancels selection of) a saves directory. The
// outcome always lands in the notification buffer; this never errors.
func (s *Service) SelectDirectory(ctx context.Context, path string) {
	s.storage.SelectDirectory(ctx, path)
}

type StorageStatus struct {
	Backend        string `json:"backend"`
	UsingDirectory bool   `json:"usingDirectory"`
}

func (s *Service) StorageStatus() StorageStatus {
	return StorageStatus{
		Backend:        s.storage.BackendLabel(),
		UsingDirectory: s.storage.UsingDirectory(),
	}
}

// SaveAll forces a full write of every collection to the active backend.
func (s *Service) SaveAll(ctx context.Context) error {
	return s.storage.SaveAll(ctx)
}

// Notifications drains and returns the pending user-facing notifications.
func (s *Service) Notifications() []notify.Notification {
	return s.alerts.Drain()
}

// ---- Search, reports ----

func (s *Service) Search(q search.Query) search.Response {
	return s.search.Search(q)
}

func (s *Service) ExportReport(req export.Request) (*export.Result, error) {
	return s.export.Export(req)
}

// ---- Chat ----

// Contacts lists the registered hosted-backend profiles, the only valid
// conversation targets.
func (s *Service) Contacts(ctx context.Context) ([]store.Profile, error) {
	return s.profiles.ListProfiles(ctx)
}

func (s *Service) OpenConversation(ctx context.Context, session Session, contactID string) ([]chat.Message, error) {
	if contactID == "" {
		return nil, validationError("contactId é obrigatório")
	}
	return s.bridge.Open(ctx, session.ProfileID, contactID)
}

func (s *Service) ConversationMessages() []chat.Message {
	return s.bridge.Messages()
}

func (s *Service) SendMessage(ctx context.Context, content string) (chat.Message, error) {
	if content == "" {
		return chat.Message{}, validationError("Mensagem vazia")
	}
	message, err := s.bridge.Send(ctx, content)
	if errors.Is(err, chat.ErrContactNotRegistered) {
		return chat.Message{}, domainError(http.StatusUnprocessableEntity, "CONTACT_NOT_REGISTERED", "O contato não possui conta no chat", nil)
	}
	return message, err
}

// ---- Client portal accesses ----

// PortalAccessResult carries the one and only copy of the generated password.
type PortalAccessResult struct {
	Access   collection.ClientAccess `json:"access"`
	Password string                  `json:"password"`
}

func (s *Service) ListPortalAccesses() []collection.ClientAccess {
	return s.data.Snapshot().ClientAccesses
}

// GeneratePortalAccess creates a portal access for a client. The plaintext
// password is returned exactly once; only its bcrypt hash is stored.
func (s *Service) GeneratePortalAccess(ctx context.Context, clientID int, processes []string) (PortalAccessResult, error) {
	password, err := generatePassword(10)
	if err != nil {
		return PortalAccessResult{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return PortalAccessResult{}, err
	}

	var access collection.ClientAccess
	err = s.mutate(ctx, func(d *collection.Data) error {
		var client *collection.Client
		for i := range d.Clients {
			if d.Clients[i].ID == clientID {
				client = &d.Clients[i]
				break
			}
		}
		if client == nil {
			return notFoundError("Cliente não encontrado")
		}
		if client.Email == "" {
			return validationError("O cliente não possui e-mail cadastrado")
		}
		for _, existing := range d.ClientAccesses {
			if existing.ClientID == clientID {
				return domainError(http.StatusConflict, "ACCESS_EXISTS", "O cliente já possui acesso ao portal", nil)
			}
		}
		access = collection.ClientAccess{
			ID:           collection.NextAccessID(d.ClientAccesses),
			ClientID:     clientID,
			ClientName:   client.Name,
			Email:        client.Email,
			PasswordHash: string(hash),
			Processes:    append([]string(nil), processes...),
			CreatedAt:    s.now().Format("2006-01-02"),
			Status:       "ativo",
		}
		d.ClientAccesses = append(d.ClientAccesses, access)
		return nil
	})
	if err != nil {
		return PortalAccessResult{}, err
	}

	if s.email != nil && s.email.IsConfigured() {
		office := s.data.Snapshot().UserProfile.DisplayName
		go func() {
			mailErr := s.email.SendPortalAccessEmail(access.Email, email.PortalAccessData{
				OfficeName: office,
				ClientName: access.ClientName,
				Email:      access.Email,
				Password:   password,
				Processes:  access.Processes,
			})
			if mailErr != nil {
				log.Printf("app: portal access mail: %v", mailErr)
			}
		}()
	}

	return PortalAccessResult{Access: access, Password: password}, nil
}

func (s *Service) RevokePortalAccess(ctx context.Context, id int) error {
	return s.mutate(ctx, func(d *collection.Data) error {
		for i, access := range d.ClientAccesses {
			if access.ID == id {
				d.ClientAccesses = append(d.ClientAccesses[:i], d.ClientAccesses[i+1:]...)
				return nil
			}
		}
		return notFoundError("Acesso não encontrado")
	})
}

const passwordAlphabet = "abcdefghjkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func generatePassword(length int) (string, error) {
	out := make([]byte, length)
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = passwordAlphabet[n.Int64()]
	}
	return string(out), nil
}
