package middleware

import (
  "fmt"
  "net/http"
  "strings"

  "github.com/gin-gonic/gin"
  "github.com/golang-jwt/jwt/v5"
  "github.com/google/uuid"

  "github.com/shikshaloop/shikshaloop-backend/internal/logger"
  "github.com/shikshaloop/shikshaloop-backend/internal/requestdata"
  "github.com/shikshaloop/shikshaloop-backend/internal/utils"
)

const (
  RoleTeacher = "teacher"
  RoleAdmin   = "admin"
)

type AuthMiddleware struct {
  log    *logger.Logger
  secret []byte
}

func NewAuthMiddleware(baseLog *logger.Logger) *AuthMiddleware {
  middlewareLog := baseLog.With("Middleware", "AuthMiddleware")
  secret := utils.GetEnv("JWT_SECRET", "", middlewareLog)
  if secret == "" {
    middlewareLog.Warn("JWT_SECRET is empty, all tokens will be rejected")
  }
  return &AuthMiddleware{log: middlewareLog, secret: []byte(secret)}
}

// RequireAuth validates the bearer token and installs the caller identity
// into the request context.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
  return func(c *gin.Context) {
    tokenString := extractToken(c)
    if tokenString == "" {
      c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token"})
      return
    }

    rd, err := am.parseToken(tokenString)
    if err != nil {
      am.log.Debug("Token rejected", "error", err)
      c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
      return
    }

    ctx := requestdata.WithRequestData(c.Request.Context(), rd)
    c.Request = c.Request.WithContext(ctx)
    c.Next()
  }
}

// RequireRole guards a route group behind an exact role. RequireAuth must
// run first.
func (am *AuthMiddleware) RequireRole(role string) gin.HandlerFunc {
  return func(c *gin.Context) {
    rd := requestdata.GetRequestData(c.Request.Context())
    if rd == nil || rd.Role != role {
      c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
      return
    }
    c.Next()
  }
}

func (am *AuthMiddleware) parseToken(tokenString string) (*requestdata.RequestData, error) {
  token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
    if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
      return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
    }
    return am.secret, nil
  })
  if err != nil {
    return nil, err
  }
  claims, ok := token.Claims.(jwt.MapClaims)
  if !ok || !token.Valid {
    return nil, fmt.Errorf("invalid claims")
  }

  subject, err := claims.GetSubject()
  if err != nil {
    return nil, err
  }
  teacherID, err := uuid.Parse(subject)
  if err != nil {
    return nil, fmt.Errorf("subject is not a uuid: %w", err)
  }

  role := RoleTeacher
  if v, ok := claims["role"].(string); ok && v != "" {
    role = v
  }

  return &requestdata.RequestData{
    TokenString: tokenString,
    TeacherID:   teacherID,
    Role:        role,
  }, nil
}

func extractToken(c *gin.Context) string {
  if qToken := c.Query("token"); qToken != "" {
    return qToken
  }
  authHeader := c.GetHeader("Authorization")
  if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
    return authHeader[7:]
  }
  return ""
}
