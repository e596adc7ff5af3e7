// models.go
package model

import "time"

// Estados del pedido (por nombre, en el orden del flujo normal).
// No hay catálogo en BD.
const (
	EstadoEnProceso    = "En proceso"
	EstadoListoRecoger = "Listo para recoger"
	EstadoRecogido     = "Recogido"
	EstadoEntregado    = "Entregado"
	EstadoAdministrado = "Administrado"
)

// Roles de usuario. El rol se asigna fuera de esta aplicación.
const (
	RolFarmacia   = "farmacia"
	RolCelador    = "celador"
	RolEnfermeria = "enfermeria"
	RolSinRol     = "no_rol"
)

type Pedido struct {
	PedidoID    string    `bson:"pedido_id" json:"pedidoId"`
	Estado      string    `bson:"estado" json:"estado"` // estado actual
	Habitacion  string    `bson:"habitacion" json:"habitacion"`
	Medicamento string    `bson:"medicamento" json:"medicamento"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updatedAt"`

	// Control de la ubicación asociada a la habitación.
	// Se rellena al hacer el join con ubicacion, no se persiste aquí.
	Control string `bson:"-" json:"control,omitempty"`
}

// SeguimientoPedido es el registro de auditoría de cada cambio de estado.
// Solo se insertan filas, nunca se editan ni se borran.
type SeguimientoPedido struct {
	PedidoID string    `bson:"pedido_id" json:"pedidoId"`
	UserID   string    `bson:"user_id" json:"userId"`
	Estado   string    `bson:"estado" json:"estado"`
	Fecha    time.Time `bson:"fecha" json:"fecha"`
}

type Usuario struct {
	UserID string `bson:"user_id" json:"userId"`
	Rol    string `bson:"rol" json:"rol"`
}

type Ubicacion struct {
	Habitacion string `bson:"habitacion" json:"habitacion"`
	Control    string `bson:"control" json:"control"`
}
