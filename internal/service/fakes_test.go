package service_test

import (
	"context"
	"sort"

	"pedidos-hospital/internal/model"
	"pedidos-hospital/internal/repository"
)

// fakeStore implementa en memoria las cuatro interfaces de repositorio
// del servicio. Los errores inyectables simulan fallos del almacén.
type fakeStore struct {
	pedidos      []model.Pedido
	seguimientos []model.SeguimientoPedido
	usuarios     []model.Usuario
	ubicaciones  []model.Ubicacion

	errSave             error
	errInsert           error
	errUpdateEstado     error
	errFindPedidos      error
	errFindSeguimientos error
}

func (f *fakeStore) Save(ctx context.Context, p *model.Pedido) error {
	if f.errSave != nil {
		return f.errSave
	}
	for i := range f.pedidos {
		if f.pedidos[i].PedidoID == p.PedidoID {
			f.pedidos[i] = *p
			return nil
		}
	}
	f.pedidos = append(f.pedidos, *p)
	return nil
}

func (f *fakeStore) FindByPedidoID(ctx context.Context, pedidoID string) (*model.Pedido, error) {
	for i := range f.pedidos {
		if f.pedidos[i].PedidoID == pedidoID {
			p := f.pedidos[i]
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeStore) UpdateEstado(ctx context.Context, pedidoID, estado string) error {
	if f.errUpdateEstado != nil {
		return f.errUpdateEstado
	}
	for i := range f.pedidos {
		if f.pedidos[i].PedidoID == pedidoID {
			f.pedidos[i].Estado = estado
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeStore) FindAll(ctx context.Context) ([]model.Pedido, error) {
	if f.errFindPedidos != nil {
		return nil, f.errFindPedidos
	}
	out := make([]model.Pedido, len(f.pedidos))
	copy(out, f.pedidos)
	return out, nil
}

func (f *fakeStore) Insert(ctx context.Context, s *model.SeguimientoPedido) error {
	if f.errInsert != nil {
		return f.errInsert
	}
	f.seguimientos = append(f.seguimientos, *s)
	return nil
}

// Igual que el repositorio real: fecha descendente.
func (f *fakeStore) sortedSeguimientos() []model.SeguimientoPedido {
	out := make([]model.SeguimientoPedido, len(f.seguimientos))
	copy(out, f.seguimientos)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Fecha.After(out[j].Fecha)
	})
	return out
}

func (f *fakeStore) FindAllSeguimientos(ctx context.Context) ([]model.SeguimientoPedido, error) {
	if f.errFindSeguimientos != nil {
		return nil, f.errFindSeguimientos
	}
	return f.sortedSeguimientos(), nil
}

func (f *fakeStore) FindByPedidoIDs(ctx context.Context, pedidoIDs []string) ([]model.SeguimientoPedido, error) {
	if f.errFindSeguimientos != nil {
		return nil, f.errFindSeguimientos
	}
	ids := make(map[string]bool, len(pedidoIDs))
	for _, id := range pedidoIDs {
		ids[id] = true
	}
	var out []model.SeguimientoPedido
	for _, s := range f.sortedSeguimientos() {
		if ids[s.PedidoID] {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) FindRol(ctx context.Context, userID string) (string, error) {
	for _, u := range f.usuarios {
		if u.UserID == userID {
			return u.Rol, nil
		}
	}
	return "", repository.ErrNotFound
}

func (f *fakeStore) FindUserIDsByRol(ctx context.Context, rol string) ([]string, error) {
	var out []string
	for _, u := range f.usuarios {
		if u.Rol == rol {
			out = append(out, u.UserID)
		}
	}
	return out, nil
}

func (f *fakeStore) ExistsHabitacion(ctx context.Context, habitacion string) (bool, error) {
	for _, u := range f.ubicaciones {
		if u.Habitacion == habitacion {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) FindAllUbicaciones(ctx context.Context) ([]model.Ubicacion, error) {
	out := make([]model.Ubicacion, len(f.ubicaciones))
	copy(out, f.ubicaciones)
	return out, nil
}

// Adaptadores para separar los FindAll que chocan de nombre entre
// interfaces.
type fakeSeguimientos struct{ *fakeStore }

func (f fakeSeguimientos) FindAll(ctx context.Context) ([]model.SeguimientoPedido, error) {
	return f.FindAllSeguimientos(ctx)
}

type fakeUbicaciones struct{ *fakeStore }

func (f fakeUbicaciones) FindAll(ctx context.Context) ([]model.Ubicacion, error) {
	return f.FindAllUbicaciones(ctx)
}
