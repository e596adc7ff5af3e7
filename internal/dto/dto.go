// dto.go
package dto

import "time"

// CrearPedidoRequest usado por la API y Rabbit para dar de alta un pedido
type CrearPedidoRequest struct {
	Habitacion  string `json:"habitacion" binding:"required"`
	Medicamento string `json:"medicamento" binding:"required"`
}

type AvanzarEstadoRequest struct {
	Estado string `json:"estado" binding:"required"`
}

// PedidoView es un pedido tal y como se muestra dentro de un bucket,
// con la fecha del último cambio de estado derivada del seguimiento.
type PedidoView struct {
	PedidoID          string     `json:"pedidoId"`
	Estado            string     `json:"estado"`
	Habitacion        string     `json:"habitacion"`
	Medicamento       string     `json:"medicamento"`
	Control           string     `json:"control,omitempty"`
	FechaUltimoCambio *time.Time `json:"fechaUltimoCambio"`
}

type BucketsResponse struct {
	Rol     string                  `json:"rol"`
	Buckets map[string][]PedidoView `json:"buckets"`
}

type PedidoResponse struct {
	PedidoID    string    `json:"pedidoId"`
	Estado      string    `json:"estado"`
	Habitacion  string    `json:"habitacion"`
	Medicamento string    `json:"medicamento"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
