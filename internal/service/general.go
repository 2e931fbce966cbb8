package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Rogue-Bear-Innovations/foodgram-back/internal/config"
	"github.com/Rogue-Bear-Innovations/foodgram-back/internal/db"
)

type (
	RegisterInput struct {
		Email     string
		Username  string
		FirstName string
		LastName  string
		Password  string
	}

	// UserView is a user as seen by a viewer.
	UserView struct {
		User         db.User
		IsSubscribed bool
	}

	General struct {
		db         *gorm.DB
		logger     *zap.SugaredLogger
		bcryptCost int
		pageSize   int
	}
)

func NewGeneral(db *gorm.DB, cfg *config.Config, l *zap.SugaredLogger) *General {
	return &General{
		db:         db,
		logger:     l,
		bcryptCost: cfg.BcryptCost,
		pageSize:   cfg.PageSize,
	}
}

func (s *General) Register(ctx context.Context, in RegisterInput) (*db.User, error) {
	hash, err := s.hashPassword("password", in.Password)
	if err != nil {
		return nil, err
	}

	user := db.User{
		Email:     strings.TrimSpace(in.Email),
		Username:  strings.TrimSpace(in.Username),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Password:  hash,
		Token:     uuid.New().String(),
	}
	res := s.db.WithContext(ctx).Create(&user)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return nil, s.duplicateUserError(ctx, user.Email)
		}
		return nil, errors.Wrap(res.Error, "create user")
	}
	return &user, nil
}

func (s *General) duplicateUserError(ctx context.Context, email string) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&db.User{}).Where("email = ?", email).Count(&n).Error; err != nil {
		return errors.Wrap(err, "count users")
	}
	if n > 0 {
		return fieldError("email", "A user with that email already exists.")
	}
	return fieldError("username", "A user with that username already exists.")
}

func (s *General) Login(ctx context.Context, email, pass string) (string, error) {
	user := db.User{}
	res := s.db.WithContext(ctx).Where("email = ?", email).First(&user)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", res.Error
	}

	if err := s.bcryptCheck(user.Password, pass); err != nil {
		return "", ErrInvalidCredentials
	}

	token := uuid.New().String()
	res = s.db.WithContext(ctx).Model(&user).Update("token", token)
	if res.Error != nil {
		return "", errors.Wrap(res.Error, "update token")
	}

	return token, nil
}

// Logout rotates the token so the presented one stops resolving.
func (s *General) Logout(ctx context.Context, user *db.User) error {
	if user == nil {
		return ErrUnauthorized
	}
	res := s.db.WithContext(ctx).Model(user).Update("token", uuid.New().String())
	if res.Error != nil {
		return errors.Wrap(res.Error, "rotate token")
	}
	return nil
}

func (s *General) UserByToken(ctx context.Context, token string) (*db.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	user := db.User{}
	res := s.db.WithContext(ctx).Where("token = ?", token).First(&user)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, errors.Wrap(res.Error, "find user by token")
	}
	return &user, nil
}

func (s *General) SetPassword(ctx context.Context, user *db.User, current, next string) error {
	if user == nil {
		return ErrUnauthorized
	}
	if err := s.bcryptCheck(user.Password, current); err != nil {
		return fieldError("current_password", "Invalid password.")
	}
	hash, err := s.hashPassword("new_password", next)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Model(user).Update("password", hash)
	if res.Error != nil {
		return errors.Wrap(res.Error, "update password")
	}
	return nil
}

func (s *General) GetUser(ctx context.Context, viewer *db.User, id uint64) (*UserView, error) {
	user := db.User{}
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err, "User")
	}
	subscribed, err := subscribedTo(ctx, s.db, viewer, []uint64{user.ID})
	if err != nil {
		return nil, err
	}
	return &UserView{User: user, IsSubscribed: subscribed[user.ID]}, nil
}

func (s *General) ListUsers(ctx context.Context, viewer *db.User, params PageParams) (*Page[UserView], error) {
	params = params.normalize(s.pageSize)
	q := s.db.WithContext(ctx).Model(&db.User{}).Session(&gorm.Session{})

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return nil, errors.Wrap(err, "count users")
	}

	users := make([]db.User, 0)
	if err := q.Order("id").Offset(params.offset()).Limit(params.Limit).Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "list users")
	}

	ids := make([]uint64, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}
	subscribed, err := subscribedTo(ctx, s.db, viewer, ids)
	if err != nil {
		return nil, err
	}

	items := make([]UserView, len(users))
	for i := range users {
		items[i] = UserView{User: users[i], IsSubscribed: subscribed[users[i].ID]}
	}
	return &Page[UserView]{Count: count, Page: params.Page, Limit: params.Limit, Items: items}, nil
}

// hashPassword reports a password over the bcrypt input limit as a validation error on field.
func (s *General) hashPassword(field, pass string) (string, error) {
	hash, err := s.bcryptGen(pass)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fieldError(field, "Ensure this field has no more than 72 bytes.")
	}
	if err != nil {
		return "", errors.Wrap(err, "bcryptGen")
	}
	return hash, nil
}

func (s *General) bcryptGen(pass string) (string, error) {
	passwordHashB, err := bcrypt.GenerateFromPassword([]byte(pass), s.bcryptCost)
	if err != nil {
		return "", errors.Wrap(err, "generate password hash")
	}
	return string(passwordHashB), nil
}

func (s *General) bcryptCheck(hash, pass string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pass))
}

// subscribedTo reports which of the given authors the viewer follows. Anonymous viewers follow nobody.
func subscribedTo(ctx context.Context, tx *gorm.DB, viewer *db.User, authorIDs []uint64) (map[uint64]bool, error) {
	res := make(map[uint64]bool, len(authorIDs))
	if viewer == nil || len(authorIDs) == 0 {
		return res, nil
	}
	ids := make([]uint64, 0)
	err := tx.WithContext(ctx).Model(&db.Subscription{}).
		Where("user_id = ? AND author_id IN ?", viewer.ID, authorIDs).
		Pluck("author_id", &ids).Error
	if err != nil {
		return nil, errors.Wrap(err, "find subscriptions")
	}
	for _, id := range ids {
		res[id] = true
	}
	return res, nil
}
