// Package usecase はauthフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"auth_backend/internal/feature/auth/domain"
	"auth_backend/internal/feature/auth/domain/entity"
)

const (
	// minPasswordLength はパスワードの最低文字数を定義します。
	minPasswordLength = 8

	// dummyPassword はユーザー未検出時のタイミング攻撃緩和用ハッシュの元になる値です。
	dummyPassword = "timing-equaliser-not-a-real-password"

	// fallbackDummyHash はダミーハッシュを生成できなかった場合に検証する、
	// 既定パラメータ（64MiB, t=3, p=2）の有効なargon2id文字列です。
	fallbackDummyHash = "$argon2id$v=19$m=65536,t=3,p=2$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
)

// UserRepository はユーザーの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーをストレージに永続化し、ハッシュを含まないUserを返します。
	// 一意制約に違反した場合、ErrEmailAlreadyExistsを返します。
	Create(ctx context.Context, email, passwordHash string) (*entity.User, error)

	// FindByEmail は検証に必要な資格情報のみを取得します。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	FindByEmail(ctx context.Context, email string) (*entity.Credential, error)

	// UpdatePasswordHash は保存済みハッシュを置き換えます。
	// ユーザーが存在しない場合、ErrUserNotFoundを返します。
	UpdatePasswordHash(ctx context.Context, userID uint, passwordHash string) error
}

// PasswordHasher はパスワードの一方向ハッシュ化と検証を定義します。
type PasswordHasher interface {
	// Hash は自己記述的なハッシュ文字列を生成します。
	Hash(password string) (string, error)
	// Verify は不一致・不正なハッシュのいずれでもfalseを返し、エラーは返しません。
	Verify(hash, password string) bool
	// NeedsRehash は旧方式または現在より弱いパラメータのハッシュに対してtrueを返します。
	NeedsRehash(hash string) bool
}

// TokenIssuer はアクセストークン発行のインターフェースを定義します。
type TokenIssuer interface {
	// IssueToken は指定されたユーザーの署名済みアクセストークンを発行します。
	IssueToken(userID uint, email string) (entity.Token, error)
}

// authUsecase は認証ビジネスロジックを実装します。
type authUsecase struct {
	users  UserRepository
	hasher PasswordHasher
	tokens TokenIssuer

	dummyMu   sync.Mutex
	dummyHash string
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(users UserRepository, hasher PasswordHasher, tokens TokenIssuer) *authUsecase {
	return &authUsecase{
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

// normalizeEmail は前後の空白を除去し小文字化します。
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validatePassword はパスワードがセキュリティ要件を満たしているかチェックします。
func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters long", domain.ErrWeakPassword, minPasswordLength)
	}
	return nil
}

// Signup はハッシュ化されたパスワードで新規ユーザーを登録し、アクセストークンを返します。
func (u *authUsecase) Signup(ctx context.Context, email, password string) (entity.Token, error) {
	email = normalizeEmail(email)
	if email == "" {
		return entity.Token{}, fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}
	if err := validatePassword(password); err != nil {
		return entity.Token{}, err
	}

	hashed, err := u.hasher.Hash(password)
	if err != nil {
		return entity.Token{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := u.users.Create(ctx, email, hashed)
	if err != nil {
		// どの列が衝突したかは公開しない
		if errors.Is(err, ErrEmailAlreadyExists) {
			return entity.Token{}, domain.ErrCredentialsTaken
		}
		return entity.Token{}, fmt.Errorf("failed to create user: %w", err)
	}

	return u.issue(user.ID, user.Email)
}

// Signin はユーザーを認証し、成功時にアクセストークンを返します。
// ユーザー列挙を防ぐため、未登録とパスワード不一致は同一のエラーを返します。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもハッシュ検証を実行します。
func (u *authUsecase) Signin(ctx context.Context, email, password string) (entity.Token, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return entity.Token{}, domain.ErrInvalidCredentials
	}

	cred, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			return entity.Token{}, fmt.Errorf("failed to find user: %w", err)
		}
		u.hasher.Verify(u.dummy(), password)
		return entity.Token{}, domain.ErrInvalidCredentials
	}

	if !u.hasher.Verify(cred.PasswordHash, password) {
		return entity.Token{}, domain.ErrInvalidCredentials
	}

	if u.hasher.NeedsRehash(cred.PasswordHash) {
		u.rehash(ctx, cred.UserID, password)
	}

	return u.issue(cred.UserID, cred.Email)
}

// issue は注入されたTokenIssuerでトークンを発行します。
func (u *authUsecase) issue(userID uint, email string) (entity.Token, error) {
	token, err := u.tokens.IssueToken(userID, email)
	if err != nil {
		return entity.Token{}, fmt.Errorf("failed to issue token: %w", err)
	}
	return token, nil
}

// rehash は検証済みのパスワードを現在のパラメータで再ハッシュして保存します。
// 失敗してもサインイン自体は成功させ、次回のサインインで再試行します。
func (u *authUsecase) rehash(ctx context.Context, userID uint, password string) {
	hashed, err := u.hasher.Hash(password)
	if err != nil {
		slog.Warn("password rehash failed", "user_id", userID, "error", err)
		return
	}
	if err := u.users.UpdatePasswordHash(ctx, userID, hashed); err != nil {
		slog.Warn("failed to store rehashed password", "user_id", userID, "error", err)
		return
	}
	slog.Info("password hash upgraded", "user_id", userID)
}

// dummy は現在のハッシャーの形式でダミーハッシュを生成し、成功した値のみ保持します。
// 生成に失敗した場合は固定のfallbackDummyHashを返し、次回呼び出しで再生成を試みます。
func (u *authUsecase) dummy() string {
	u.dummyMu.Lock()
	defer u.dummyMu.Unlock()

	if u.dummyHash == "" {
		h, err := u.hasher.Hash(dummyPassword)
		if err != nil {
			return fallbackDummyHash
		}
		u.dummyHash = h
	}
	return u.dummyHash
}
