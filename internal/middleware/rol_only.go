// rol_only.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireRol corta la petición si la sesión no tiene el rol exigido.
// Un usuario con rol "no_rol" no pasa ninguno de estos grupos.
func RequireRol(rol string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ses, ok := SesionDe(c)
		if !ok || ses.Rol != rol {
			c.JSON(http.StatusForbidden, gin.H{"error": "acceso no autorizado para este rol"})
			c.Abort()
			return
		}
		c.Next()
	}
}
