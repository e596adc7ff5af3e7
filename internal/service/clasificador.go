package service

import (
	"errors"
	"time"

	"pedidos-hospital/internal/model"
)

// Bucket es el nombre de una de las listas por rol en las que se
// reparten los pedidos para mostrarlos.
type Bucket string

// Buckets del celador
const (
	BucketParaRecoger         Bucket = "para_recoger"
	BucketParaEntregar        Bucket = "para_entregar"
	BucketSinConfirmarEntrega Bucket = "sin_confirmar_entrega"
	BucketAnteriores          Bucket = "anteriores"
)

// Buckets de farmacia
const (
	BucketEnPreparacion         Bucket = "en_preparacion"
	BucketListos                Bucket = "listos"
	BucketEsperandoConfirmacion Bucket = "esperando_confirmacion"
)

// Buckets de enfermería
const (
	BucketParaConfirmarEntrega Bucket = "para_confirmar_entrega"
	BucketParaAdministrar      Bucket = "para_administrar"
)

var ErrRolDesconocido = errors.New("rol sin reglas de clasificación")

// EntradaClasificacion es todo lo que necesita el clasificador: la lista
// completa de pedidos (con su control ya resuelto), el seguimiento completo
// ordenado por fecha descendente y la identidad del usuario que consulta.
type EntradaClasificacion struct {
	Pedidos      []model.Pedido
	Seguimientos []model.SeguimientoPedido // fecha descendente
	UsuarioID    string

	// IDs de los usuarios con rol farmacia. Solo lo usan las reglas
	// de farmacia para detectar recogidas confirmadas por el propio
	// servicio de farmacia.
	IDsFarmacia map[string]struct{}

	// FiltroControl limita los pedidos a los de ubicaciones con ese
	// control. Vacío = sin filtro.
	FiltroControl string
}

// PedidoClasificado es un pedido dentro de un bucket junto con la fecha
// de su último cambio de estado (nil si aún no tiene seguimiento).
type PedidoClasificado struct {
	model.Pedido
	FechaUltimoCambio *time.Time
}

type Buckets map[Bucket][]PedidoClasificado

// Una regla asigna un pedido a un bucket. Las reglas de cada rol se
// evalúan en orden y gana la primera que coincide, con lo que los
// buckets de un mismo rol son disjuntos por construcción. Un pedido
// que no coincide con ninguna regla no se muestra para ese rol.
type regla struct {
	bucket Bucket
	aplica func(e *EntradaClasificacion, p model.Pedido, segs []model.SeguimientoPedido) bool
}

func alguno(segs []model.SeguimientoPedido, cond func(model.SeguimientoPedido) bool) bool {
	for _, s := range segs {
		if cond(s) {
			return true
		}
	}
	return false
}

var reglasCelador = []regla{
	{BucketParaRecoger, func(e *EntradaClasificacion, p model.Pedido, segs []model.SeguimientoPedido) bool {
		return p.Estado == model.EstadoListoRecoger
	}},
	{BucketParaEntregar, func(e *EntradaClasificacion, p model.Pedido, segs []model.SeguimientoPedido) bool {
		return p.Estado == model.EstadoRecogido &&
			alguno(segs, func(s model.SeguimientoPedido) bool {
				return s.Estado == model.EstadoRecogido && s.UserID == e.UsuarioID
			})
	}},
	{BucketSinConfirmarEntrega, func(e *EntradaClasificacion, p model.Pedido, segs []model.SeguimientoPedido) bool {
		// Entregado por mí y todavía sin registro de entrega de nadie más.
		return p.Estado == model.EstadoEntregado &&
			alguno(segs, func(s model.SeguimientoPedido) bool {
				return s.Estado == model.EstadoEntregado && s.UserID == e.UsuarioID
			}) &&
			!alguno(segs, func(s model.SeguimientoPedido) bool {
				return s.Estado == model.EstadoEntregado && s.UserID != e.UsuarioID
			})
	}},
	{BucketAnteriores, func(e *EntradaClasificacion, p model.Pedido, segs []model.SeguimientoPedido) bool {
		return (p.Estado == model.EstadoEntregado || p.Estado == model.EstadoAdministrado) &&
			alguno(segs, func(s model.SeguimientoPedido) bool {
				return (s.Estado == model.EstadoEntregado || s.Estado == model.EstadoAdministrado) &&
					s.UserID == e.UsuarioID
			}) &&
			alguno(segs, func(s model.SeguimientoPedido) bool {
				return s.Estado != model.EstadoRecogido && s.UserID != e.UsuarioID
			})
	}},
}

var reglasFarmacia = []regla{
	{BucketEnPreparacion, func(e *EntradaClasificacion, p model.Pedido, segs []model.SeguimientoPedido) bool {
		return p.Estado == model.EstadoEnProceso
	}},
	{BucketListos, func(e *EntradaClasificacion, p model.Pedido, segs []model.SeguimientoPedido) bool {
		return p.Estado == model.EstadoListoRecoger
	}},
	{BucketAnteriores, func(e *EntradaClasificacion, p model.Pedido, segs []model.SeguimientoPedido) bool {
		// Farmacia compara por rol, no por identidad: la recogida la
		// confirma cualquier usuario de farmacia.
		return alguno(segs, func(s model.SeguimientoPedido) bool {
			if s.Estado != model.EstadoRecogido {
				return false
			}
			_, ok := e.IDsFarmacia[s.UserID]
			return ok
		})
	}},
	{BucketEsperandoConfirmacion, func(e *EntradaClasificacion, p model.Pedido, segs []model.SeguimientoPedido) bool {
		return true
	}},
}

var reglasEnfermeria = []regla{
	{BucketParaAdministrar, func(e *EntradaClasificacion, p model.Pedido, segs []model.SeguimientoPedido) bool {
		return p.Estado == model.EstadoEntregado &&
			alguno(segs, func(s model.SeguimientoPedido) bool {
				return s.Estado == model.EstadoEntregado && s.UserID == e.UsuarioID
			})
	}},
	{BucketParaConfirmarEntrega, func(e *EntradaClasificacion, p model.Pedido, segs []model.SeguimientoPedido) bool {
		return p.Estado == model.EstadoEntregado
	}},
	{BucketAnteriores, func(e *EntradaClasificacion, p model.Pedido, segs []model.SeguimientoPedido) bool {
		return p.Estado == model.EstadoAdministrado
	}},
}

func reglasParaRol(rol string) ([]regla, error) {
	switch rol {
	case model.RolCelador:
		return reglasCelador, nil
	case model.RolFarmacia:
		return reglasFarmacia, nil
	case model.RolEnfermeria:
		return reglasEnfermeria, nil
	default:
		return nil, ErrRolDesconocido
	}
}

// Clasificar reparte los pedidos de la entrada en los buckets del rol.
// Es una función pura sobre la entrada: no toca la base de datos.
// El orden dentro de cada bucket es el orden de entrada de los pedidos.
func Clasificar(rol string, e EntradaClasificacion) (Buckets, error) {
	reglas, err := reglasParaRol(rol)
	if err != nil {
		return nil, err
	}

	// Agrupar el seguimiento por pedido conservando el orden
	// fecha-descendente: el primero de cada grupo es el más reciente.
	porPedido := make(map[string][]model.SeguimientoPedido)
	for _, s := range e.Seguimientos {
		porPedido[s.PedidoID] = append(porPedido[s.PedidoID], s)
	}

	buckets := make(Buckets, len(reglas))
	for _, r := range reglas {
		buckets[r.bucket] = []PedidoClasificado{}
	}

	for _, p := range e.Pedidos {
		if e.FiltroControl != "" && p.Control != e.FiltroControl {
			continue
		}

		segs := porPedido[p.PedidoID]

		var fecha *time.Time
		if len(segs) > 0 {
			f := segs[0].Fecha
			fecha = &f
		}

		for _, r := range reglas {
			if r.aplica(&e, p, segs) {
				buckets[r.bucket] = append(buckets[r.bucket], PedidoClasificado{
					Pedido:            p,
					FechaUltimoCambio: fecha,
				})
				break
			}
		}
	}

	return buckets, nil
}
