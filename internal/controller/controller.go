package controller

import (
	"errors"
	"log"
	"net/http"

	"pedidos-hospital/internal/dto"
	"pedidos-hospital/internal/middleware"
	"pedidos-hospital/internal/service"

	"github.com/gin-gonic/gin"
)

type PedidoController struct {
	Service *service.PedidoService
}

func NewPedidoController(s *service.PedidoService) *PedidoController {
	return &PedidoController{Service: s}
}

// POST /pedidos — solo farmacia
func (ctl *PedidoController) CrearPedido(c *gin.Context) {
	var req dto.CrearPedidoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pedido, err := ctl.Service.CrearPedido(c.Request.Context(), req.Habitacion, req.Medicamento)
	if errors.Is(err, service.ErrHabitacionNoExiste) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "La habitación no existe. Por favor, ingrese una habitación válida."})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, dto.PedidoResponse{
		PedidoID:    pedido.PedidoID,
		Estado:      pedido.Estado,
		Habitacion:  pedido.Habitacion,
		Medicamento: pedido.Medicamento,
		CreatedAt:   pedido.CreatedAt,
		UpdatedAt:   pedido.UpdatedAt,
	})
}

// GET /pedidos/farmacia
func (ctl *PedidoController) GetBucketsFarmacia(c *gin.Context) {
	ctl.buckets(c, "")
}

// GET /pedidos/celador
func (ctl *PedidoController) GetBucketsCelador(c *gin.Context) {
	ctl.buckets(c, "")
}

// GET /pedidos/enfermeria?control=...
func (ctl *PedidoController) GetBucketsEnfermeria(c *gin.Context) {
	ctl.buckets(c, c.Query("control"))
}

func (ctl *PedidoController) buckets(c *gin.Context, filtroControl string) {
	ses, ok := middleware.SesionDe(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "sesión no disponible"})
		return
	}

	buckets, err := ctl.Service.BucketsParaRol(c.Request.Context(), ses, filtroControl)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.BucketsResponse{Rol: ses.Rol, Buckets: bucketsToDTO(buckets)})
}

// GET /controles — filtro de enfermería
func (ctl *PedidoController) GetControles(c *gin.Context) {
	controles, err := ctl.Service.Controles(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"controles": controles})
}

// POST /pedidos/:pedidoId/avanzar
//
// Tras registrar la transición se devuelven los buckets recalculados
// con datos frescos, nunca una mutación local de los de antes.
func (ctl *PedidoController) AvanzarEstado(c *gin.Context) {
	pedidoID := c.Param("pedidoId")

	var req dto.AvanzarEstadoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ses, ok := middleware.SesionDe(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "sesión no disponible"})
		return
	}

	err := ctl.Service.AvanzarComoRol(c.Request.Context(), ses, pedidoID, req.Estado)

	var inconsistencia *service.InconsistenciaError
	switch {
	case errors.Is(err, service.ErrTransicionNoPermitida):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	case errors.Is(err, service.ErrEstadoInvalido):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.As(err, &inconsistencia):
		// El seguimiento quedó registrado: se avisa pero se sigue.
		log.Printf("⚠ inconsistencia en pedido %s: %v", pedidoID, inconsistencia)
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	buckets, errBuckets := ctl.Service.BucketsParaRol(c.Request.Context(), ses, c.Query("control"))
	if errBuckets != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": errBuckets.Error()})
		return
	}

	resp := gin.H{
		"message": "estado registrado",
		"buckets": bucketsToDTO(buckets),
	}
	if inconsistencia != nil {
		resp["warning"] = inconsistencia.Error()
	}
	c.JSON(http.StatusOK, resp)
}

func bucketsToDTO(buckets service.Buckets) map[string][]dto.PedidoView {
	out := make(map[string][]dto.PedidoView, len(buckets))
	for nombre, pedidos := range buckets {
		views := make([]dto.PedidoView, 0, len(pedidos))
		for _, p := range pedidos {
			views = append(views, dto.PedidoView{
				PedidoID:          p.PedidoID,
				Estado:            p.Estado,
				Habitacion:        p.Habitacion,
				Medicamento:       p.Medicamento,
				Control:           p.Control,
				FechaUltimoCambio: p.FechaUltimoCambio,
			})
		}
		out[string(nombre)] = views
	}
	return out
}
