// auth.go — аутентификация по Bearer JWT (RS256, ключи из JWKS) и проверка scope.
// Токен выпускает провайдер идентификации web-приложения; sub — владелец данных.
// Health, metrics и /public/* проходят мимо этого middleware.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	apierrors "github.com/bigkaa/goartstore/bucket-gateway/internal/api/errors"
)

// Scopes Bucket Gateway. ScopeAdmin включает ScopeWrite.
const (
	ScopeWrite = "storage:write"
	ScopeAdmin = "storage:admin"
)

// principalKey — ключ Principal в контексте запроса.
type principalKey struct{}

// Principal — вызывающий, установленный по токену.
type Principal struct {
	Subject string
	Scopes  []string
}

// WithPrincipal кладёт Principal в контекст.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext возвращает Principal и признак его наличия.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// SubjectFromContext возвращает sub вызывающего или "".
func SubjectFromContext(ctx context.Context) string {
	p, _ := PrincipalFromContext(ctx)
	return p.Subject
}

// ScopesFromContext возвращает scopes вызывающего или nil.
func ScopesFromContext(ctx context.Context) []string {
	p, _ := PrincipalFromContext(ctx)
	return p.Scopes
}

// HasScope проверяет scope вызывающего; ScopeAdmin удовлетворяет любому.
func HasScope(ctx context.Context, scope string) bool {
	scopes := ScopesFromContext(ctx)
	return slices.Contains(scopes, scope) || slices.Contains(scopes, ScopeAdmin)
}

// Claims — claims токена. Scopes приходят либо строкой "scope"
// через пробел (OAuth2), либо массивом "scopes"; учитываются оба.
type Claims struct {
	jwt.RegisteredClaims
	ScopeString string   `json:"scope,omitempty"`
	ScopeArray  []string `json:"scopes,omitempty"`
}

// Scopes объединяет оба представления.
func (c *Claims) Scopes() []string {
	return append(strings.Fields(c.ScopeString), c.ScopeArray...)
}

// JWTAuthConfig — параметры JWKS и проверки токена.
type JWTAuthConfig struct {
	JWKSURL         string
	ClientTimeout   time.Duration
	RefreshInterval time.Duration
	// JWTLeeway — допуск расхождения часов для exp/nbf
	JWTLeeway time.Duration
}

// JWTAuth проверяет Bearer-токены запросов.
type JWTAuth struct {
	keys   keyfunc.Keyfunc
	leeway time.Duration
	logger *slog.Logger
}

// NewJWTAuth загружает JWKS по URL и обновляет ключи в фоне, пока жив ctx.
// Недоступный при старте JWKS не считается ошибкой: ключи подтянутся
// при следующем обновлении.
func NewJWTAuth(ctx context.Context, cfg JWTAuthConfig, logger *slog.Logger) (*JWTAuth, error) {
	set, err := jwkset.NewStorageFromHTTP(cfg.JWKSURL, jwkset.HTTPClientStorageOptions{
		Client:                    &http.Client{Timeout: cfg.ClientTimeout},
		Ctx:                       ctx,
		NoErrorReturnFirstHTTPReq: true,
		RefreshInterval:           cfg.RefreshInterval,
		RefreshErrorHandler: func(_ context.Context, err error) {
			logger.Error("Ошибка обновления JWKS",
				slog.String("url", cfg.JWKSURL),
				slog.String("error", err.Error()),
			)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("JWKS %s: %w", cfg.JWKSURL, err)
	}

	kf, err := keyfunc.New(keyfunc.Options{Ctx: ctx, Storage: set})
	if err != nil {
		return nil, fmt.Errorf("keyfunc: %w", err)
	}
	return NewJWTAuthWithKeyfunc(kf, cfg.JWTLeeway, logger), nil
}

// NewJWTAuthWithKeyfunc собирает JWTAuth поверх готовой keyfunc
// (например, JWKS из памяти).
func NewJWTAuthWithKeyfunc(kf keyfunc.Keyfunc, leeway time.Duration, logger *slog.Logger) *JWTAuth {
	return &JWTAuth{
		keys:   kf,
		leeway: leeway,
		logger: logger.With(slog.String("component", "jwt_auth")),
	}
}

// errUnauthorized — отказ с текстом для клиента.
type errUnauthorized string

func (e errUnauthorized) Error() string { return string(e) }

// bearerToken достаёт токен из заголовка Authorization.
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errUnauthorized("Отсутствует заголовок Authorization")
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", errUnauthorized("Неверный формат Authorization: ожидается Bearer <token>")
	}
	if token = strings.TrimSpace(token); token == "" {
		return "", errUnauthorized("Пустой Bearer token")
	}
	return token, nil
}

// authenticate проверяет подпись и сроки токена и возвращает Principal.
func (j *JWTAuth) authenticate(r *http.Request) (Principal, error) {
	raw, err := bearerToken(r)
	if err != nil {
		return Principal{}, err
	}

	var claims Claims
	if _, err := jwt.ParseWithClaims(raw, &claims, j.keys.KeyfuncCtx(r.Context()),
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(j.leeway),
	); err != nil {
		j.logger.Debug("Токен отклонён",
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("error", err.Error()),
		)
		return Principal{}, errUnauthorized("Невалидный или просроченный токен")
	}

	if claims.Subject == "" {
		return Principal{}, errUnauthorized("Отсутствует sub в токене")
	}
	return Principal{Subject: claims.Subject, Scopes: claims.Scopes()}, nil
}

// Middleware отвечает 401 на запрос без действительного токена,
// иначе передаёт Principal дальше через контекст.
func (j *JWTAuth) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := j.authenticate(r)
			if err != nil {
				var reject errUnauthorized
				if !errors.As(err, &reject) {
					reject = "Невалидный токен"
				}
				apierrors.Unauthorized(w, string(reject))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// RequireScope отвечает 403, если у вызывающего нет scope.
// Ставится после JWTAuth.Middleware().
func RequireScope(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !HasScope(r.Context(), scope) {
				apierrors.Forbidden(w, "Недостаточно прав: требуется scope "+scope)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
