package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pedidos-hospital/internal/model"
)

// Errores de negocio exportados (los usa el controller)
var (
	ErrEstadoInvalido        = errors.New("estado de pedido inválido")
	ErrTransicionNoPermitida = errors.New("el rol no puede registrar ese estado")
)

// Estados válidos (por nombre). No hay catálogo en BD.
var estadosValidos = map[string]bool{
	model.EstadoEnProceso:    true,
	model.EstadoListoRecoger: true,
	model.EstadoRecogido:     true,
	model.EstadoEntregado:    true,
	model.EstadoAdministrado: true,
}

func esEstadoValido(s string) bool {
	return estadosValidos[s]
}

// Estados que cada rol puede registrar, con el valor indicando si el
// registro además aplica el estado al pedido o solo deja constancia
// en el seguimiento. Farmacia confirma la recogida sin tocar el
// estado del pedido; el resto de transiciones sí lo actualizan.
var transicionesPorRol = map[string]map[string]bool{
	model.RolFarmacia: {
		model.EstadoListoRecoger: true,
		model.EstadoRecogido:     false, // confirmación de recogida
	},
	model.RolCelador: {
		model.EstadoRecogido:  true,
		model.EstadoEntregado: true,
	},
	model.RolEnfermeria: {
		model.EstadoEntregado:    true, // confirmación de entrega
		model.EstadoAdministrado: true,
	},
}

// InconsistenciaError indica que el seguimiento quedó registrado pero el
// estado del pedido no se pudo actualizar. La fila de seguimiento no se
// revierte, así que la auditoría sigue siendo correcta aunque la
// proyección del estado se haya quedado atrás.
type InconsistenciaError struct {
	PedidoID string
	Estado   string
	Err      error
}

func (e *InconsistenciaError) Error() string {
	return fmt.Sprintf("seguimiento registrado pero el pedido %s no refleja %q: %v", e.PedidoID, e.Estado, e.Err)
}

func (e *InconsistenciaError) Unwrap() error { return e.Err }

// Avanzar registra un cambio de estado en el seguimiento y, si
// actualizarPedido es true, lo aplica también al estado del pedido.
//
// Si falla la inserción del seguimiento, la operación se aborta entera
// y el pedido queda intacto. Si la inserción va bien pero la
// actualización posterior falla (o el pedido ya no existe), el error
// devuelto es un *InconsistenciaError: la fila de seguimiento persiste.
// No hay transacción que agrupe los dos pasos.
func (s *PedidoService) Avanzar(ctx context.Context, pedidoID, nuevoEstado, actorID string, actualizarPedido bool) error {
	if !esEstadoValido(nuevoEstado) {
		return ErrEstadoInvalido
	}

	err := s.seguimientos.Insert(ctx, &model.SeguimientoPedido{
		PedidoID: pedidoID,
		UserID:   actorID,
		Estado:   nuevoEstado,
		Fecha:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("insertando seguimiento: %w", err)
	}

	if !actualizarPedido {
		return nil
	}

	// Comprobamos primero que el pedido existe (igual que hacía el
	// flujo de farmacia) y después aplicamos el estado.
	if _, err := s.pedidos.FindByPedidoID(ctx, pedidoID); err != nil {
		return &InconsistenciaError{PedidoID: pedidoID, Estado: nuevoEstado, Err: err}
	}

	if err := s.pedidos.UpdateEstado(ctx, pedidoID, nuevoEstado); err != nil {
		return &InconsistenciaError{PedidoID: pedidoID, Estado: nuevoEstado, Err: err}
	}

	return nil
}

// AvanzarComoRol valida que el rol de la sesión puede registrar el
// estado pedido y fija el flag actualizarPedido que corresponde a ese
// rol y estado. Después, los llamantes deben reclasificar con datos
// frescos en lugar de retocar buckets en local.
func (s *PedidoService) AvanzarComoRol(ctx context.Context, ses Sesion, pedidoID, nuevoEstado string) error {
	permitidos, ok := transicionesPorRol[ses.Rol]
	if !ok {
		return ErrTransicionNoPermitida
	}
	actualizarPedido, ok := permitidos[nuevoEstado]
	if !ok {
		return ErrTransicionNoPermitida
	}

	return s.Avanzar(ctx, pedidoID, nuevoEstado, ses.UsuarioID, actualizarPedido)
}
