package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"pedidos-hospital/internal/model"
)

// Interfaces que debe implementar repository
type PedidoRepository interface {
	Save(ctx context.Context, p *model.Pedido) error
	FindByPedidoID(ctx context.Context, pedidoID string) (*model.Pedido, error)
	UpdateEstado(ctx context.Context, pedidoID, estado string) error
	FindAll(ctx context.Context) ([]model.Pedido, error)
}

type SeguimientoRepository interface {
	Insert(ctx context.Context, s *model.SeguimientoPedido) error
	FindAll(ctx context.Context) ([]model.SeguimientoPedido, error)
	FindByPedidoIDs(ctx context.Context, pedidoIDs []string) ([]model.SeguimientoPedido, error)
}

type UsuarioRepository interface {
	FindRol(ctx context.Context, userID string) (string, error)
	FindUserIDsByRol(ctx context.Context, rol string) ([]string, error)
}

type UbicacionRepository interface {
	ExistsHabitacion(ctx context.Context, habitacion string) (bool, error)
	FindAll(ctx context.Context) ([]model.Ubicacion, error)
}

var ErrHabitacionNoExiste = errors.New("la habitación no existe")

// Sesion identifica al usuario autenticado y su rol durante una
// petición. Sustituye a cualquier caché de rol: el rol se resuelve en
// cada request y muere con ella.
type Sesion struct {
	UsuarioID string
	Rol       string
}

type PedidoService struct {
	pedidos      PedidoRepository
	seguimientos SeguimientoRepository
	usuarios     UsuarioRepository
	ubicaciones  UbicacionRepository
}

func NewPedidoService(p PedidoRepository, s SeguimientoRepository, u UsuarioRepository, ub UbicacionRepository) *PedidoService {
	return &PedidoService{pedidos: p, seguimientos: s, usuarios: u, ubicaciones: ub}
}

// CrearPedido da de alta un pedido en estado "En proceso" tras
// comprobar que la habitación existe. Lo invoca farmacia vía API y el
// consumer de Rabbit cuando llega una receta del sistema de arriba.
func (s *PedidoService) CrearPedido(ctx context.Context, habitacion, medicamento string) (*model.Pedido, error) {
	habitacion = strings.TrimSpace(habitacion)
	medicamento = strings.TrimSpace(medicamento)

	existe, err := s.ubicaciones.ExistsHabitacion(ctx, habitacion)
	if err != nil {
		return nil, fmt.Errorf("verificando habitación: %w", err)
	}
	if !existe {
		return nil, ErrHabitacionNoExiste
	}

	pedido := &model.Pedido{
		PedidoID:    uuid.NewString(),
		Estado:      model.EstadoEnProceso,
		Habitacion:  habitacion,
		Medicamento: medicamento,
	}

	if err := s.pedidos.Save(ctx, pedido); err != nil {
		return nil, err
	}
	return pedido, nil
}

func (s *PedidoService) GetByPedidoID(ctx context.Context, pedidoID string) (*model.Pedido, error) {
	return s.pedidos.FindByPedidoID(ctx, pedidoID)
}

// BucketsParaRol carga pedidos y seguimientos frescos y los pasa por el
// clasificador del rol de la sesión. Si falla cualquiera de las
// lecturas no se publican buckets parciales: se devuelve solo el error.
func (s *PedidoService) BucketsParaRol(ctx context.Context, ses Sesion, filtroControl string) (Buckets, error) {
	pedidos, err := s.pedidos.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("obteniendo pedidos: %w", err)
	}

	entrada := EntradaClasificacion{
		Pedidos:       pedidos,
		UsuarioID:     ses.UsuarioID,
		FiltroControl: filtroControl,
	}

	switch ses.Rol {
	case model.RolFarmacia:
		ids := pedidoIDs(pedidos)
		entrada.Seguimientos, err = s.seguimientos.FindByPedidoIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("obteniendo seguimientos: %w", err)
		}

		idsFarmacia, err := s.usuarios.FindUserIDsByRol(ctx, model.RolFarmacia)
		if err != nil {
			return nil, fmt.Errorf("obteniendo usuarios de farmacia: %w", err)
		}
		entrada.IDsFarmacia = make(map[string]struct{}, len(idsFarmacia))
		for _, id := range idsFarmacia {
			entrada.IDsFarmacia[id] = struct{}{}
		}

	case model.RolEnfermeria:
		// Enfermería filtra por control, que vive en ubicacion: hay
		// que resolver el control de cada pedido por su habitación.
		ubicaciones, err := s.ubicaciones.FindAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("obteniendo ubicaciones: %w", err)
		}
		controlPorHabitacion := make(map[string]string, len(ubicaciones))
		for _, u := range ubicaciones {
			controlPorHabitacion[u.Habitacion] = u.Control
		}
		for i := range entrada.Pedidos {
			entrada.Pedidos[i].Control = controlPorHabitacion[entrada.Pedidos[i].Habitacion]
		}

		// El seguimiento se pide solo para los pedidos que pasan el filtro.
		filtrados := entrada.Pedidos
		if filtroControl != "" {
			filtrados = nil
			for _, p := range entrada.Pedidos {
				if p.Control == filtroControl {
					filtrados = append(filtrados, p)
				}
			}
		}
		entrada.Seguimientos, err = s.seguimientos.FindByPedidoIDs(ctx, pedidoIDs(filtrados))
		if err != nil {
			return nil, fmt.Errorf("obteniendo seguimientos: %w", err)
		}

	default:
		entrada.Seguimientos, err = s.seguimientos.FindAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("obteniendo seguimientos: %w", err)
		}
	}

	return Clasificar(ses.Rol, entrada)
}

// Controles devuelve los controles distintos y no vacíos de las
// ubicaciones, para el filtro de enfermería.
func (s *PedidoService) Controles(ctx context.Context) ([]string, error) {
	ubicaciones, err := s.ubicaciones.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("obteniendo ubicaciones: %w", err)
	}

	vistos := make(map[string]bool)
	var out []string
	for _, u := range ubicaciones {
		if u.Control == "" || vistos[u.Control] {
			continue
		}
		vistos[u.Control] = true
		out = append(out, u.Control)
	}
	return out, nil
}

func pedidoIDs(pedidos []model.Pedido) []string {
	ids := make([]string, 0, len(pedidos))
	for _, p := range pedidos {
		ids = append(ids, p.PedidoID)
	}
	return ids
}
