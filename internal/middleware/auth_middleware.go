// auth_middleware.go
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"pedidos-hospital/internal/model"
	"pedidos-hospital/internal/repository"
	"pedidos-hospital/internal/service"

	"github.com/gin-gonic/gin"
)

// Clave bajo la que se guarda la sesión en el contexto de gin.
const SesionKey = "sesion"

// Middleware que valida el token, resuelve el rol del usuario contra
// la colección de usuarios y deja la sesión en el contexto. El rol se
// resuelve en cada petición: no hay caché de rol que invalidar.
func AuthMiddleware(authService *service.AuthService, usuarios service.UsuarioRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		token = strings.TrimSpace(token)
		user, err := authService.ValidateToken(token)

		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		rol, err := usuarios.FindRol(c.Request.Context(), user.ID)
		if errors.Is(err, repository.ErrNotFound) {
			// Usuario autenticado pero sin rol dado de alta.
			rol = model.RolSinRol
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no se pudo obtener el rol del usuario"})
			c.Abort()
			return
		}

		c.Set(SesionKey, service.Sesion{UsuarioID: user.ID, Rol: rol})
		c.Next()
	}
}

// SesionDe recupera la sesión que dejó AuthMiddleware.
func SesionDe(c *gin.Context) (service.Sesion, bool) {
	v, ok := c.Get(SesionKey)
	if !ok {
		return service.Sesion{}, false
	}
	ses, ok := v.(service.Sesion)
	return ses, ok
}
